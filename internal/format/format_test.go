package format

import (
	"encoding/json"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askwhyharsh/geohunt/internal/diff"
	"github.com/askwhyharsh/geohunt/internal/location"
)

const sp = "\u00a0"

func TestFormat_Decimal(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		expected string
	}{
		{"two digit integer", 49.2827, sp + sp + "49.282700"},
		{"negative three digit", -123.1207, "-123.120700"},
		{"full precision", 12.345678, sp + sp + "12.345678"},
		{"rounds to six places", 1.23456789, sp + sp + sp + "1.234568"},
		{"integral value drops the point", 5, sp + sp + sp + "5" + sp + sp + sp + sp + sp + sp + sp},
		{"zero", 0, sp + sp + sp + "0" + sp + sp + sp + sp + sp + sp + sp},
		{"negative zero after rounding", -0.0000001, sp + sp + sp + "0" + sp + sp + sp + sp + sp + sp + sp},
		{"small negative", -0.5, sp + sp + "-0.500000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Format(tt.value, true, SystemDecimal))
		})
	}
}

func TestFormat_DecimalWidthIsConstant(t *testing.T) {
	for lat := -90.0; lat <= 90.0; lat += 0.37 {
		s := Format(lat, true, SystemDecimal)
		require.Equal(t, DecimalWidth, utf8.RuneCountInString(s), "%q", s)
	}
	for lng := -180.0; lng <= 180.0; lng += 0.73 {
		s := Format(lng, false, SystemDecimal)
		require.Equal(t, DecimalWidth, utf8.RuneCountInString(s), "%q", s)
	}
	for _, v := range []float64{-180, -90, 0, 90, 180, 9.999999, 10, -9.9999999} {
		assert.Equal(t, DecimalWidth, utf8.RuneCountInString(Format(v, false, SystemDecimal)))
	}
}

func TestFormat_DMSWidthIsConstant(t *testing.T) {
	for lng := -180.0; lng <= 180.0; lng += 0.91 {
		s := Format(lng, false, SystemDMS)
		require.Equal(t, DMSWidth, utf8.RuneCountInString(s), "%q", s)
	}
}

func TestFormat_DMS(t *testing.T) {
	assert.Equal(t, " 49°16'57.7200\" N", Format(49.2827, true, SystemDMS))
	assert.Equal(t, " 45°30'00.0000\" W", Format(-45.5, false, SystemDMS))
}

func TestFormat_CrossingDigitBoundaryAligns(t *testing.T) {
	prev := Format(9.999999, true, SystemDecimal)
	cur := Format(10.000001, true, SystemDecimal)
	changes := diff.ChangedIndices(prev, cur)

	// Both renderings are 11 runes, so only in-range positions are reported.
	for _, i := range changes {
		assert.Less(t, i, DecimalWidth)
	}
	assert.Contains(t, changes, 2)
	assert.Contains(t, changes, 3)
}

func TestFormatCoordinate(t *testing.T) {
	f := FormatCoordinate(location.Coordinate{Latitude: 49.2827, Longitude: -123.1207}, SystemDecimal)
	assert.Equal(t, sp+sp+"49.282700", f.Latitude)
	assert.Equal(t, "-123.120700", f.Longitude)
}

func TestParseSystem(t *testing.T) {
	s, err := ParseSystem("DMS")
	require.NoError(t, err)
	assert.Equal(t, SystemDMS, s)

	s, err = ParseSystem("decimal")
	require.NoError(t, err)
	assert.Equal(t, SystemDecimal, s)

	_, err = ParseSystem("utm")
	assert.Error(t, err)

	assert.Equal(t, SystemDMS, SystemDecimal.Toggle())
	assert.Equal(t, SystemDecimal, SystemDMS.Toggle())
}

func TestSystemJSON(t *testing.T) {
	data, err := json.Marshal(SystemDMS)
	require.NoError(t, err)
	assert.Equal(t, `"dms"`, string(data))

	var s System
	require.NoError(t, json.Unmarshal([]byte(`"decimal"`), &s))
	assert.Equal(t, SystemDecimal, s)
	assert.Error(t, json.Unmarshal([]byte(`"mgrs"`), &s))
}
