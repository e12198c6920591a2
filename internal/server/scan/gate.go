package scan

import (
	"strings"

	"github.com/gabrielslopes/labelcheck/internal/common"
	"github.com/gabrielslopes/labelcheck/internal/server/models"
)

// GateState is the override gate's current state. The two resolved
// outcomes fold straight back to idle, so only these two are observable.
type GateState int

const (
	GateIdle GateState = iota
	GateAwaiting
)

// Pending is the triple held by the gate while it waits for authorization.
type Pending struct {
	Screen        models.Screen
	TransportCode string
	OrderCode     string
	Duplicate     bool
}

// Gate holds at most one flagged divergence until a supervisor or admin
// releases it or the operator cancels it. While a divergence is pending,
// no further scans are evaluated for the owning session. Gate is not
// safe for concurrent use; the owning session serializes access.
type Gate struct {
	state   GateState
	pending Pending
}

// State returns the current state.
func (g *Gate) State() GateState {
	return g.state
}

// Pending returns the held triple while the gate is awaiting authorization.
func (g *Gate) Pending() (Pending, bool) {
	if g.state != GateAwaiting {
		return Pending{}, false
	}
	return g.pending, true
}

// Flag moves the gate from idle to awaiting, carrying the triple.
func (g *Gate) Flag(p Pending) error {
	if g.state == GateAwaiting {
		return common.ErrOverridePending
	}
	g.state = GateAwaiting
	g.pending = p
	return nil
}

// Authorize resolves the pending divergence. The caller has already
// authenticated the credentials; the gate checks the remaining rules:
// the role must be supervisor or admin and the reason non-blank. On
// success it returns the released triple and folds back to idle.
func (g *Gate) Authorize(role models.Role, reason string) (Pending, string, error) {
	if g.state != GateAwaiting {
		return Pending{}, "", common.ErrNoPendingOverride
	}

	reason = strings.TrimSpace(reason)
	if reason == "" {
		return Pending{}, "", common.ErrMissingReason
	}
	if !role.CanAuthorizeOverride() {
		return Pending{}, "", common.ErrInsufficientRole
	}

	released := g.pending
	g.state = GateIdle
	g.pending = Pending{}
	return released, reason, nil
}

// Cancel discards the pending triple without recording anything.
func (g *Gate) Cancel() error {
	if g.state != GateAwaiting {
		return common.ErrNoPendingOverride
	}
	g.state = GateIdle
	g.pending = Pending{}
	return nil
}
