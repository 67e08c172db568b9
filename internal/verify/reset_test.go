package verify

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "enroll/pkg/domain-errors"
)

type recordingRemote struct {
	verifies []string
	sends    []string
	err      error
}

func (r *recordingRemote) VerifyCode(ctx context.Context, subject, code string) error {
	r.verifies = append(r.verifies, subject+":"+code)
	return r.err
}

func (r *recordingRemote) ResendCode(ctx context.Context, subject string) error {
	r.sends = append(r.sends, subject)
	return r.err
}

func newResetFixture(t *testing.T) (*ResetFlow, *recordingRemote, *time.Time) {
	t.Helper()
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	remote := &recordingRemote{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	coord := NewCoordinator(ResetCodeLength, DefaultResendCooldown, remote, logger,
		WithClock(func() time.Time { return now }))
	return NewResetFlow(coord), remote, &now
}

func TestResetSendNormalizesEmail(t *testing.T) {
	flow, remote, _ := newResetFixture(t)

	require.NoError(t, flow.Send(context.Background(), "  Priya@Example.COM "))
	require.Len(t, remote.sends, 1)
	assert.Equal(t, "priya@example.com", remote.sends[0])
}

func TestResetSendRejectsBadEmail(t *testing.T) {
	flow, remote, _ := newResetFixture(t)

	err := flow.Send(context.Background(), "not-an-email")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	assert.Empty(t, remote.sends)
}

func TestResetSendCooldownPerEmail(t *testing.T) {
	flow, remote, now := newResetFixture(t)
	ctx := context.Background()

	require.NoError(t, flow.Send(ctx, "a@example.com"))
	err := flow.Send(ctx, "a@example.com")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))

	// A different address has its own countdown.
	require.NoError(t, flow.Send(ctx, "b@example.com"))

	*now = now.Add(DefaultResendCooldown + time.Second)
	require.NoError(t, flow.Send(ctx, "a@example.com"))
	assert.Len(t, remote.sends, 3)
}

func TestResetVerifyUsesSixDigits(t *testing.T) {
	flow, remote, _ := newResetFixture(t)
	ctx := context.Background()

	err := flow.Verify(ctx, "a@example.com", "12345")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation), "OTP-length code rejected")
	assert.Empty(t, remote.verifies)

	require.NoError(t, flow.Verify(ctx, "a@example.com", "123456"))
	require.Len(t, remote.verifies, 1)
	assert.Equal(t, "a@example.com:123456", remote.verifies[0])
}

func TestResetCooldownRemaining(t *testing.T) {
	flow, _, now := newResetFixture(t)
	ctx := context.Background()

	assert.Zero(t, flow.CooldownRemaining("a@example.com"))
	require.NoError(t, flow.Send(ctx, "a@example.com"))
	assert.InDelta(t, DefaultResendCooldown.Seconds(), flow.CooldownRemaining("a@example.com"), 0.01)

	*now = now.Add(20 * time.Second)
	assert.InDelta(t, 40.0, flow.CooldownRemaining("a@example.com"), 0.01)
}
