package role

// DifficultyControl is the read side every session has.
type DifficultyControl interface {
	Current() Difficulty
}

// Authority is held by predator sessions. Only it can originate a change.
type Authority struct {
	value Difficulty
}

// Current returns the difficulty this predator last chose.
func (a *Authority) Current() Difficulty {
	return a.value
}

// Set changes the difficulty and reports whether it actually changed.
func (a *Authority) Set(d Difficulty) bool {
	changed := a.value != d
	a.value = d
	return changed
}

// Mirror is held by prey sessions. It can only adopt what the paired
// predator stored.
type Mirror struct {
	value Difficulty
}

// Current returns the last adopted difficulty.
func (m *Mirror) Current() Difficulty {
	return m.value
}

// Adopt copies the predator's value and reports whether it changed.
func (m *Mirror) Adopt(d Difficulty) bool {
	changed := m.value != d
	m.value = d
	return changed
}

// ControlFor hands out the control matching r's authority.
func ControlFor(r Role, initial Difficulty) DifficultyControl {
	if IsDifficultyAuthority(r) {
		return &Authority{value: initial}
	}
	return &Mirror{value: initial}
}
