package verify

//go:generate mockgen -source=coordinator.go -destination=mocks/mocks.go -package=mocks Remote,Login

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"enroll/internal/draft"
	"enroll/internal/verify/mocks"
	dErrors "enroll/pkg/domain-errors"
)

func testLogger() *slog.Logger { return slog.New(slog.DiscardHandler) }

func seededArtifacts(t *testing.T) *draft.Artifacts {
	t.Helper()
	ctx := context.Background()
	arts := draft.NewArtifacts(draft.NewInMemoryStore(), "run-1")
	require.NoError(t, arts.SavePendingIdentity(ctx, draft.PendingIdentity{UserID: "41"}))
	require.NoError(t, arts.SavePendingCredentials(ctx, draft.PendingCredentials{Email: "a@b.com", Password: "pw"}))
	return arts
}

func TestConfirm_CodeShape(t *testing.T) {
	ctrl := gomock.NewController(t)
	remote := mocks.NewMockRemote(ctrl)
	c := NewCoordinator(OTPCodeLength, DefaultResendCooldown, remote, testLogger())

	cases := []string{"", "1234", "123456", "12a45"}
	for _, code := range cases {
		err := c.Confirm(context.Background(), NewSession(), "41", code)
		require.Error(t, err, code)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation), code)
	}
}

func TestConfirm_ResetFlowUsesSixDigits(t *testing.T) {
	ctrl := gomock.NewController(t)
	remote := mocks.NewMockRemote(ctrl)
	remote.EXPECT().VerifyCode(gomock.Any(), "a@b.com", "123456").Return(nil)

	c := NewCoordinator(ResetCodeLength, DefaultResendCooldown, remote, testLogger())
	assert.Error(t, c.Confirm(context.Background(), NewSession(), "a@b.com", "12345"))
	assert.NoError(t, c.Confirm(context.Background(), NewSession(), "a@b.com", "123456"))
}

func TestConfirmAndLogin_SuccessClearsPendingArtifacts(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	remote := mocks.NewMockRemote(ctrl)
	login := mocks.NewMockLogin(ctrl)
	remote.EXPECT().VerifyCode(gomock.Any(), "41", "12345").Return(nil)
	login.EXPECT().Login(gomock.Any(), "a@b.com", "pw").Return(nil)

	arts := seededArtifacts(t)
	c := NewCoordinator(OTPCodeLength, DefaultResendCooldown, remote, testLogger(), WithLogin(login))

	loggedIn, err := c.ConfirmAndLogin(ctx, NewSession(), arts, "12345")
	require.NoError(t, err)
	assert.True(t, loggedIn)

	_, err = arts.LoadPendingCredentials(ctx)
	assert.ErrorIs(t, err, draft.ErrNotFound)
	_, err = arts.LoadPendingIdentity(ctx)
	assert.ErrorIs(t, err, draft.ErrNotFound)
}

func TestConfirmAndLogin_LoginFailureIsSwallowed(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	remote := mocks.NewMockRemote(ctrl)
	login := mocks.NewMockLogin(ctrl)
	remote.EXPECT().VerifyCode(gomock.Any(), "41", "12345").Return(nil)
	login.EXPECT().Login(gomock.Any(), "a@b.com", "pw").
		Return(dErrors.New(dErrors.CodeUnauthorized, "invalid credentials"))

	arts := seededArtifacts(t)
	c := NewCoordinator(OTPCodeLength, DefaultResendCooldown, remote, testLogger(), WithLogin(login))

	loggedIn, err := c.ConfirmAndLogin(ctx, NewSession(), arts, "12345")
	require.NoError(t, err, "auto-login failure must not fail verification")
	assert.False(t, loggedIn)

	// Erased on every terminal path, success or degraded alike.
	_, err = arts.LoadPendingCredentials(ctx)
	assert.ErrorIs(t, err, draft.ErrNotFound)
	_, err = arts.LoadPendingIdentity(ctx)
	assert.ErrorIs(t, err, draft.ErrNotFound)
}

func TestConfirmAndLogin_MissingCredentialsIsDegradedNotFatal(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	remote := mocks.NewMockRemote(ctrl)
	login := mocks.NewMockLogin(ctrl)
	remote.EXPECT().VerifyCode(gomock.Any(), "41", "12345").Return(nil)

	arts := draft.NewArtifacts(draft.NewInMemoryStore(), "run-1")
	require.NoError(t, arts.SavePendingIdentity(ctx, draft.PendingIdentity{UserID: "41"}))

	c := NewCoordinator(OTPCodeLength, DefaultResendCooldown, remote, testLogger(), WithLogin(login))
	loggedIn, err := c.ConfirmAndLogin(ctx, NewSession(), arts, "12345")
	require.NoError(t, err)
	assert.False(t, loggedIn)
}

func TestConfirmAndLogin_MissingIdentity(t *testing.T) {
	ctrl := gomock.NewController(t)
	remote := mocks.NewMockRemote(ctrl)

	arts := draft.NewArtifacts(draft.NewInMemoryStore(), "run-1")
	c := NewCoordinator(OTPCodeLength, DefaultResendCooldown, remote, testLogger())

	_, err := c.ConfirmAndLogin(context.Background(), NewSession(), arts, "12345")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeMissingPrecursor))
}

func TestConfirmAndLogin_RemoteRejectionKeepsArtifacts(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	remote := mocks.NewMockRemote(ctrl)
	remote.EXPECT().VerifyCode(gomock.Any(), "41", "00000").
		Return(dErrors.New(dErrors.CodeRemoteRejected, "Invalid OTP"))

	arts := seededArtifacts(t)
	c := NewCoordinator(OTPCodeLength, DefaultResendCooldown, remote, testLogger())

	_, err := c.ConfirmAndLogin(ctx, NewSession(), arts, "00000")
	require.Error(t, err)

	// A failed attempt is not a terminal path; the user retries.
	_, err = arts.LoadPendingCredentials(ctx)
	assert.NoError(t, err)
	_, err = arts.LoadPendingIdentity(ctx)
	assert.NoError(t, err)
}

func TestResend_CountdownGatesAndClearsEnteredCode(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	remote := mocks.NewMockRemote(ctrl)
	remote.EXPECT().ResendCode(gomock.Any(), "41").Return(nil).Times(2)
	remote.EXPECT().VerifyCode(gomock.Any(), "41", "11111").
		Return(dErrors.New(dErrors.CodeRemoteRejected, "Invalid OTP"))

	now := time.Now()
	clock := func() time.Time { return now }
	c := NewCoordinator(OTPCodeLength, DefaultResendCooldown, remote, testLogger(), WithClock(clock))
	sess := NewSession()

	require.NoError(t, c.Resend(ctx, sess, "41"))
	assert.Equal(t, DefaultResendCooldown, c.CooldownRemaining(sess))

	err := c.Resend(ctx, sess, "41")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))

	// A failed attempt leaves the entered code visible until resend.
	_ = c.Confirm(ctx, sess, "41", "11111")
	assert.Equal(t, "11111", sess.Entered())

	now = now.Add(DefaultResendCooldown + time.Second)
	require.NoError(t, c.Resend(ctx, sess, "41"))
	assert.Empty(t, sess.Entered())
}

func TestStartCountdown(t *testing.T) {
	ctrl := gomock.NewController(t)
	remote := mocks.NewMockRemote(ctrl)

	now := time.Now()
	c := NewCoordinator(OTPCodeLength, DefaultResendCooldown, remote, testLogger(), WithClock(func() time.Time { return now }))
	sess := NewSession()

	assert.Zero(t, c.CooldownRemaining(sess))
	c.StartCountdown(sess)
	assert.Equal(t, DefaultResendCooldown, c.CooldownRemaining(sess))
}

// blockingRemote lets a test hold a verify call open to exercise the
// in-flight guard.
type blockingRemote struct {
	release chan struct{}
	calls   sync.WaitGroup

	mu      sync.Mutex
	resends int
}

func (b *blockingRemote) VerifyCode(context.Context, string, string) error {
	<-b.release
	return nil
}

func (b *blockingRemote) ResendCode(context.Context, string) error {
	b.mu.Lock()
	b.resends++
	b.mu.Unlock()
	<-b.release
	return nil
}

func (b *blockingRemote) resendCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.resends
}

func TestConfirm_InFlightGuard(t *testing.T) {
	remote := &blockingRemote{release: make(chan struct{})}
	c := NewCoordinator(OTPCodeLength, DefaultResendCooldown, remote, testLogger())
	sess := NewSession()

	started := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		close(started)
		done <- c.Confirm(context.Background(), sess, "41", "12345")
	}()
	<-started

	// Wait until the first call is inside the remote verify.
	require.Eventually(t, func() bool {
		sess.mu.Lock()
		defer sess.mu.Unlock()
		return sess.inFlight
	}, time.Second, 5*time.Millisecond)

	err := c.Confirm(context.Background(), sess, "41", "12345")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))

	close(remote.release)
	require.NoError(t, <-done)
}

func TestResend_ConcurrentTapsSendOneCode(t *testing.T) {
	remote := &blockingRemote{release: make(chan struct{})}
	c := NewCoordinator(OTPCodeLength, DefaultResendCooldown, remote, testLogger())
	sess := NewSession()

	first := make(chan error, 1)
	go func() {
		first <- c.Resend(context.Background(), sess, "41")
	}()

	// Wait until the first tap is inside the remote call, past the
	// cooldown check.
	require.Eventually(t, func() bool {
		return remote.resendCount() == 1
	}, time.Second, 5*time.Millisecond)

	// The second tap arrives while the first is still outbound; it must
	// be refused rather than sending a second code.
	err := c.Resend(context.Background(), sess, "41")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))

	close(remote.release)
	require.NoError(t, <-first)
	assert.Equal(t, 1, remote.resendCount())
}
