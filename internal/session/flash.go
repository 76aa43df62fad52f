package session

import (
	"fmt"
	"net/http"
)

// Level is the severity of a flash message. Templates use it as a CSS class.
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Flash is a one-shot message shown on the next rendered page.
type Flash struct {
	Level Level
	Text  string
}

// AddFlash queues a message for the next rendered page.
func (m *Manager) AddFlash(w http.ResponseWriter, r *http.Request, level Level, text string) error {
	sess, err := m.cookie(r)
	if err != nil {
		return err
	}
	sess.AddFlash(Flash{Level: level, Text: text})
	if err := sess.Save(r, w); err != nil {
		return fmt.Errorf("save flash: %w", err)
	}
	return nil
}

// Flashes returns and clears pending messages, oldest first.
func (m *Manager) Flashes(w http.ResponseWriter, r *http.Request) ([]Flash, error) {
	sess, err := m.cookie(r)
	if err != nil {
		return nil, err
	}

	raw := sess.Flashes()
	if len(raw) == 0 {
		return nil, nil
	}

	flashes := make([]Flash, 0, len(raw))
	for _, v := range raw {
		if f, ok := v.(Flash); ok {
			flashes = append(flashes, f)
		}
	}
	if err := sess.Save(r, w); err != nil {
		return nil, fmt.Errorf("save session cookie: %w", err)
	}
	return flashes, nil
}
