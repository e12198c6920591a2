package models

import (
	"fmt"
	"time"
)

// Screen tags which entry flow produced a record. The values match the
// historical data files, so they are part of the storage format.
type Screen string

const (
	// ScreenSingle is the one-label-at-a-time flow.
	ScreenSingle Screen = "LEITURA"
	// ScreenBatch is the "several volumes" flow.
	ScreenBatch Screen = "VARIOS"
)

// Valid reports whether s is one of the known screens.
func (s Screen) Valid() bool {
	return s == ScreenSingle || s == ScreenBatch
}

// CodeMaxLen is the fixed maximum length of transport and order codes.
const CodeMaxLen = 10

// RecordEntry is one row of the append-only scan log. Entries are immutable
// once written; divergent entries additionally carry the authorizing
// supervisor/admin login and a reason.
type RecordEntry struct {
	ID            int64
	RecordedAt    time.Time
	UserLogin     string
	Screen        Screen
	TransportCode string
	OrderCode     string
	Divergent     bool
	AuthorizedBy  string
	Reason        string
}

// Validate checks the entry invariants before it is handed to storage.
func (e *RecordEntry) Validate() error {
	if !e.Screen.Valid() {
		return fmt.Errorf("invalid screen %q", e.Screen)
	}
	if e.UserLogin == "" {
		return fmt.Errorf("missing user login")
	}
	if e.TransportCode == "" || e.OrderCode == "" {
		return fmt.Errorf("empty code pair")
	}
	if len(e.TransportCode) > CodeMaxLen || len(e.OrderCode) > CodeMaxLen {
		return fmt.Errorf("code longer than %d characters", CodeMaxLen)
	}
	if e.Divergent && (e.AuthorizedBy == "" || e.Reason == "") {
		return fmt.Errorf("divergent entry requires authorizer and reason")
	}
	return nil
}
