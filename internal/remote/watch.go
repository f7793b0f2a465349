package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/askwhyharsh/geohunt/internal/role"
	"github.com/askwhyharsh/geohunt/internal/store"
	apperrors "github.com/askwhyharsh/geohunt/pkg/errors"
	"github.com/gorilla/websocket"
)

type watchMessage struct {
	Type   string        `json:"type"`
	Role   role.Role     `json:"role"`
	Record *store.Record `json:"record"`
}

// Watch subscribes to live writes for r and calls fn for each one until ctx
// is done or the connection drops. The first call carries the current record
// when one exists.
func (c *Client) Watch(ctx context.Context, r role.Role, fn func(store.Record)) error {
	dialer := websocket.Dialer{HandshakeTimeout: c.httpClient.Timeout}

	conn, _, err := dialer.DialContext(ctx, c.watchURL(r), nil)
	if err != nil {
		return fmt.Errorf("%w: watch %s: %v", apperrors.ErrRemoteUnavailable, r, err)
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() {
		conn.Close()
	})
	defer stop()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("%w: watch %s: %v", apperrors.ErrRemoteUnavailable, r, err)
		}

		var msg watchMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}
		if msg.Type != "coordinates" || msg.Role != r || msg.Record == nil {
			continue
		}
		fn(*msg.Record)
	}
}

func (c *Client) watchURL(r role.Role) string {
	base := c.baseURL
	switch {
	case strings.HasPrefix(base, "https://"):
		base = "wss://" + strings.TrimPrefix(base, "https://")
	case strings.HasPrefix(base, "http://"):
		base = "ws://" + strings.TrimPrefix(base, "http://")
	}
	return base + "/coordinates/" + r.String() + "/watch"
}
