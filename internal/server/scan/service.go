package scan

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gabrielslopes/labelcheck/internal/common"
	"github.com/gabrielslopes/labelcheck/internal/logging"
	"github.com/gabrielslopes/labelcheck/internal/server/models"
	"github.com/gabrielslopes/labelcheck/internal/server/records"
	"github.com/gabrielslopes/labelcheck/internal/server/users"
)

// Result is the outcome of one scan or override submission.
type Result struct {
	Verdict       Verdict
	Screen        models.Screen
	TransportCode string
	OrderCode     string
	Duplicate     bool
	Seq           int    // batch sequence number, 0 outside the batch flow
	AuthorizedBy  string // set when a supervisor released a divergence
}

// session is one operator's private state: the override gate and the
// batch list. The mutex serializes the operator's own requests; separate
// sessions never contend.
type session struct {
	mu    sync.Mutex
	login string
	gate  Gate
	batch Batch
}

// Service evaluates scans for all active operator sessions. Sessions are
// keyed by the JWT session id, so a fresh login always starts clean.
type Service struct {
	users   *users.Service
	records *records.Service
	logger  logging.Logger

	mu       sync.RWMutex
	sessions map[string]*session
}

func NewService(us *users.Service, rs *records.Service, logger logging.Logger) *Service {
	return &Service{
		users:    us,
		records:  rs,
		logger:   logger.With("module", "scan"),
		sessions: make(map[string]*session),
	}
}

// StartSession registers a fresh session for the operator.
func (s *Service) StartSession(sessionID, login string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sessionID] = &session{login: login}
}

// EndSession discards the session state and flushes buffered records so
// nothing accepted during the session is lost. Ending an unknown session
// is a no-op apart from the flush.
func (s *Service) EndSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()

	return s.records.Flush(ctx)
}

func (s *Service) session(sessionID string) (*session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("%w: unknown session", common.ErrNotFound)
	}
	return sess, nil
}

// Submit evaluates one sanitized code pair for the session. Raw input is
// sanitized again here; callers are not trusted to have done it.
//
// ACCEPT persists the entry immediately (buffered) and, on the batch
// screen, appends it to the running list. REQUIRE_OVERRIDE arms the
// session's gate; until it is resolved or cancelled, further submissions
// fail with ErrOverridePending.
func (s *Service) Submit(ctx context.Context, sessionID string, screen models.Screen, rawTransport, rawOrder string) (*Result, error) {
	if !screen.Valid() {
		return nil, fmt.Errorf("%w: invalid screen %q", common.ErrValidation, screen)
	}

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.gate.State() == GateAwaiting {
		return nil, common.ErrOverridePending
	}

	transport := Sanitize(rawTransport, models.CodeMaxLen)
	order := Sanitize(rawOrder, models.CodeMaxLen)

	var duplicate bool
	if transport != "" && order != "" {
		duplicate, err = s.records.Exists(ctx, screen, transport, order)
		if err != nil {
			return nil, err
		}
	}

	result := &Result{
		Verdict:       Decide(transport, order, duplicate),
		Screen:        screen,
		TransportCode: transport,
		OrderCode:     order,
		Duplicate:     duplicate,
	}

	switch result.Verdict {
	case VerdictRejectIncomplete:
		return result, common.ErrIncompleteScan

	case VerdictRequireOverride:
		if err := sess.gate.Flag(Pending{
			Screen:        screen,
			TransportCode: transport,
			OrderCode:     order,
			Duplicate:     duplicate,
		}); err != nil {
			return nil, err
		}
		s.logger.Info(ctx, "divergence flagged",
			"user", sess.login, "screen", screen,
			"transport", transport, "order", order, "duplicate", duplicate)
		return result, nil

	default: // VerdictAccept
		entry := &models.RecordEntry{
			RecordedAt:    time.Now(),
			UserLogin:     sess.login,
			Screen:        screen,
			TransportCode: transport,
			OrderCode:     order,
		}
		if err := s.records.Append(ctx, entry); err != nil {
			return nil, err
		}
		if screen == models.ScreenBatch {
			result.Seq = sess.batch.Add(transport, order, false)
		}
		s.logger.Info(ctx, "scan accepted",
			"user", sess.login, "screen", screen, "transport", transport)
		return result, nil
	}
}

// Override resolves the session's pending divergence. The supervisor or
// admin credentials are verified against the credential store; on success
// the divergent entry is persisted with the authorizer and reason.
func (s *Service) Override(ctx context.Context, sessionID, login, password, reason string) (*Result, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if _, ok := sess.gate.Pending(); !ok {
		return nil, common.ErrNoPendingOverride
	}

	authorizer, err := s.users.Authenticate(ctx, login, password)
	if err != nil {
		return nil, err
	}

	released, trimmedReason, err := sess.gate.Authorize(authorizer.Role, reason)
	if err != nil {
		return nil, err
	}

	entry := &models.RecordEntry{
		RecordedAt:    time.Now(),
		UserLogin:     sess.login,
		Screen:        released.Screen,
		TransportCode: released.TransportCode,
		OrderCode:     released.OrderCode,
		Divergent:     true,
		AuthorizedBy:  authorizer.Login,
		Reason:        trimmedReason,
	}
	if err := s.records.Append(ctx, entry); err != nil {
		// the divergence is resolved but not recorded; re-arm the gate so
		// the operator can retry instead of losing the attempt
		_ = sess.gate.Flag(released)
		return nil, err
	}

	result := &Result{
		Verdict:       VerdictAccept,
		Screen:        released.Screen,
		TransportCode: released.TransportCode,
		OrderCode:     released.OrderCode,
		Duplicate:     released.Duplicate,
		AuthorizedBy:  authorizer.Login,
	}
	if released.Screen == models.ScreenBatch {
		result.Seq = sess.batch.Add(released.TransportCode, released.OrderCode, true)
	}

	s.logger.Info(ctx, "divergence released",
		"user", sess.login, "authorized_by", authorizer.Login,
		"screen", released.Screen, "transport", released.TransportCode)
	return result, nil
}

// CancelOverride discards the session's pending divergence.
func (s *Service) CancelOverride(ctx context.Context, sessionID string) error {
	sess, err := s.session(sessionID)
	if err != nil {
		return err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if err := sess.gate.Cancel(); err != nil {
		return err
	}
	s.logger.Info(ctx, "divergence cancelled", "user", sess.login)
	return nil
}

// PendingOverride returns the session's pending divergence, if any.
func (s *Service) PendingOverride(sessionID string) (Pending, bool, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return Pending{}, false, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	p, ok := sess.gate.Pending()
	return p, ok, nil
}

// BatchItems returns the most recent limit items of the session's batch.
func (s *Service) BatchItems(sessionID string, limit int) ([]models.BatchItem, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	return sess.batch.Items(limit), nil
}

// ResetBatch clears the session's batch list and sequence counter.
func (s *Service) ResetBatch(sessionID string) error {
	sess, err := s.session(sessionID)
	if err != nil {
		return err
	}
	sess.batch.Reset()
	return nil
}
