package scan

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/gabrielslopes/labelcheck/internal/common"
	"github.com/gabrielslopes/labelcheck/internal/logging"
	"github.com/gabrielslopes/labelcheck/internal/server/config"
	"github.com/gabrielslopes/labelcheck/internal/server/models"
	"github.com/gabrielslopes/labelcheck/internal/server/records"
	"github.com/gabrielslopes/labelcheck/internal/server/repositories/repomanager"
	"github.com/gabrielslopes/labelcheck/internal/server/users"
)

const sessionID = "sess-1"

// newScanStack builds the whole stack on an in-memory database: operator
// "op1" (user role) and supervisor "sup1" enrolled, one session started.
func newScanStack(t *testing.T) (*Service, *records.Service) {
	t.Helper()
	ctx := context.Background()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	db.SetMaxOpenConns(1)

	rm, err := repomanager.NewManager(config.BackendSQLite)
	require.NoError(t, err)
	require.NoError(t, rm.RunMigrations(ctx, db))

	cfg := &config.Config{
		AuthTimeout:         5 * time.Second,
		RecordFlushInterval: 1, // write-through keeps assertions simple
	}
	logger := logging.NewNopLogger()

	us := users.NewService(rm.Users(db), cfg, logger)
	rs := records.NewService(db, rm, cfg, logger)

	_, err = us.Create(ctx, "boss", "Boss", models.RoleAdmin, "adminpw", true)
	require.NoError(t, err)
	_, err = us.Create(ctx, "sup1", "Supervisor", models.RoleSupervisor, "suppw", true)
	require.NoError(t, err)
	_, err = us.Create(ctx, "op1", "Operator", models.RoleUser, "oppw", true)
	require.NoError(t, err)

	svc := NewService(us, rs, logger)
	svc.StartSession(sessionID, "op1")
	return svc, rs
}

func TestService_SubmitAccept(t *testing.T) {
	ctx := context.Background()
	svc, rs := newScanStack(t)

	res, err := svc.Submit(ctx, sessionID, models.ScreenSingle, "XYZ1234567", "XYZ1234567")
	require.NoError(t, err)
	assert.Equal(t, VerdictAccept, res.Verdict)
	assert.Equal(t, 0, res.Seq)

	today := time.Now()
	entries, err := rs.Query(ctx, today, today, "", false)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "op1", entries[0].UserLogin)
	assert.False(t, entries[0].Divergent)
}

func TestService_SubmitSanitizesInput(t *testing.T) {
	ctx := context.Background()
	svc, _ := newScanStack(t)

	res, err := svc.Submit(ctx, sessionID, models.ScreenSingle, "AB-12 34!!", "ab1234")
	require.NoError(t, err)
	// "AB1234" vs "ab1234": sanitization preserves case, so this mismatches
	assert.Equal(t, VerdictRequireOverride, res.Verdict)
}

func TestService_SubmitIncomplete(t *testing.T) {
	ctx := context.Background()
	svc, _ := newScanStack(t)

	res, err := svc.Submit(ctx, sessionID, models.ScreenSingle, "!!!", "T1")
	assert.ErrorIs(t, err, common.ErrIncompleteScan)
	assert.Equal(t, VerdictRejectIncomplete, res.Verdict)

	// nothing pending afterwards
	_, ok, err := svc.PendingOverride(sessionID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestService_DuplicateRequiresOverride(t *testing.T) {
	ctx := context.Background()
	svc, _ := newScanStack(t)

	_, err := svc.Submit(ctx, sessionID, models.ScreenSingle, "T1", "T1")
	require.NoError(t, err)

	res, err := svc.Submit(ctx, sessionID, models.ScreenSingle, "T1", "T1")
	require.NoError(t, err)
	assert.Equal(t, VerdictRequireOverride, res.Verdict)
	assert.True(t, res.Duplicate)

	// same pair on the other screen is a different key
	require.NoError(t, svc.CancelOverride(ctx, sessionID))
	res, err = svc.Submit(ctx, sessionID, models.ScreenBatch, "T1", "T1")
	require.NoError(t, err)
	assert.Equal(t, VerdictAccept, res.Verdict)
}

func TestService_OverrideFlow(t *testing.T) {
	ctx := context.Background()
	svc, rs := newScanStack(t)

	res, err := svc.Submit(ctx, sessionID, models.ScreenSingle, "AAA1111111", "BBB2222222")
	require.NoError(t, err)
	require.Equal(t, VerdictRequireOverride, res.Verdict)

	// gate blocks further scans for this session
	_, err = svc.Submit(ctx, sessionID, models.ScreenSingle, "T9", "T9")
	assert.ErrorIs(t, err, common.ErrOverridePending)

	// wrong password keeps the gate armed
	_, err = svc.Override(ctx, sessionID, "sup1", "nope", "label swapped")
	assert.ErrorIs(t, err, common.ErrInvalidCredentials)

	// operator credentials are not enough, however correct
	_, err = svc.Override(ctx, sessionID, "op1", "oppw", "label swapped")
	assert.ErrorIs(t, err, common.ErrInsufficientRole)

	// blank reason is refused
	_, err = svc.Override(ctx, sessionID, "sup1", "suppw", "   ")
	assert.ErrorIs(t, err, common.ErrMissingReason)

	out, err := svc.Override(ctx, sessionID, "sup1", "suppw", "label swapped")
	require.NoError(t, err)
	assert.Equal(t, "sup1", out.AuthorizedBy)

	today := time.Now()
	entries, err := rs.Query(ctx, today, today, "", true)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].Divergent)
	assert.Equal(t, "sup1", entries[0].AuthorizedBy)
	assert.Equal(t, "label swapped", entries[0].Reason)
	assert.Equal(t, "op1", entries[0].UserLogin)

	// gate is idle again
	_, err = svc.Submit(ctx, sessionID, models.ScreenSingle, "T9", "T9")
	assert.NoError(t, err)
}

func TestService_CancelOverride(t *testing.T) {
	ctx := context.Background()
	svc, rs := newScanStack(t)

	assert.ErrorIs(t, svc.CancelOverride(ctx, sessionID), common.ErrNoPendingOverride)

	_, err := svc.Submit(ctx, sessionID, models.ScreenSingle, "A1", "B2")
	require.NoError(t, err)
	require.NoError(t, svc.CancelOverride(ctx, sessionID))

	// nothing was persisted
	today := time.Now()
	entries, err := rs.Query(ctx, today, today, "", false)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestService_BatchFlow(t *testing.T) {
	ctx := context.Background()
	svc, _ := newScanStack(t)

	res, err := svc.Submit(ctx, sessionID, models.ScreenBatch, "V1", "V1")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Seq)

	res, err = svc.Submit(ctx, sessionID, models.ScreenBatch, "V2", "V2")
	require.NoError(t, err)
	assert.Equal(t, 2, res.Seq)

	// an overridden divergence also lands in the running list
	_, err = svc.Submit(ctx, sessionID, models.ScreenBatch, "V3", "X3")
	require.NoError(t, err)
	out, err := svc.Override(ctx, sessionID, "sup1", "suppw", "torn label")
	require.NoError(t, err)
	assert.Equal(t, 3, out.Seq)

	items, err := svc.BatchItems(sessionID, 0)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.True(t, items[2].Divergent)

	require.NoError(t, svc.ResetBatch(sessionID))
	items, err = svc.BatchItems(sessionID, 0)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestService_UnknownSession(t *testing.T) {
	ctx := context.Background()
	svc, _ := newScanStack(t)

	_, err := svc.Submit(ctx, "ghost", models.ScreenSingle, "T1", "T1")
	assert.ErrorIs(t, err, common.ErrNotFound)

	require.NoError(t, svc.EndSession(ctx, sessionID))
	_, err = svc.Submit(ctx, sessionID, models.ScreenSingle, "T1", "T1")
	assert.ErrorIs(t, err, common.ErrNotFound)
}
