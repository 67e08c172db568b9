// Package verify implements one-time-code confirmation and the best-effort
// auto-login that follows it. The OTP flow (5-digit codes) and the
// password-reset flow (6-digit codes) are parallel instances of the same
// coordinator: independent codes and timers, identical shape.
package verify

import (
	"context"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"enroll/internal/draft"
	dErrors "enroll/pkg/domain-errors"
)

// Code lengths per flow.
const (
	OTPCodeLength   = 5
	ResetCodeLength = 6
)

// DefaultResendCooldown is the visible countdown during which resend stays
// disabled.
const DefaultResendCooldown = 60 * time.Second

// Remote is the slice of the account-service client a flow confirms and
// resends codes through. Subject is the user id for the OTP flow and the
// email for the reset flow.
type Remote interface {
	VerifyCode(ctx context.Context, subject, code string) error
	ResendCode(ctx context.Context, subject string) error
}

// Login is the opaque login capability. Failures are non-fatal to the
// pipeline; they only degrade the post-verification experience.
type Login interface {
	Login(ctx context.Context, email, password string) error
}

// Session is the per-run (or per-email, for resets) verification state:
// in-flight guard, resend countdown, and the entered-code buffer that resend
// clears.
type Session struct {
	mu         sync.Mutex
	inFlight   bool
	nextResend time.Time
	entered    string
}

func NewSession() *Session { return &Session{} }

// Entered returns the last submitted code; resend clears it.
func (s *Session) Entered() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.entered
}

// Coordinator drives code confirmation for one flow.
type Coordinator struct {
	codeLen  int
	cooldown time.Duration
	remote   Remote
	login    Login
	logger   *slog.Logger
	clock    func() time.Time
}

// Option configures the Coordinator.
type Option func(*Coordinator)

// WithClock injects a clock for countdown tests.
func WithClock(clock func() time.Time) Option {
	return func(c *Coordinator) { c.clock = clock }
}

// WithLogin attaches the auto-login capability; without it Confirm never
// attempts login (the reset flow has none).
func WithLogin(login Login) Option {
	return func(c *Coordinator) { c.login = login }
}

func NewCoordinator(codeLen int, cooldown time.Duration, remote Remote, logger *slog.Logger, opts ...Option) *Coordinator {
	c := &Coordinator{
		codeLen:  codeLen,
		cooldown: cooldown,
		remote:   remote,
		logger:   logger,
		clock:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Confirm validates the code shape, guards against concurrent submission,
// and confirms the code with the remote service. It does not touch stored
// artifacts; use ConfirmAndLogin for the OTP flow's terminal behavior.
func (c *Coordinator) Confirm(ctx context.Context, sess *Session, subject, code string) error {
	if err := c.checkShape(code); err != nil {
		return err
	}
	if err := c.begin(sess, code); err != nil {
		return err
	}
	defer c.end(sess)

	return c.remote.VerifyCode(ctx, subject, code)
}

// ConfirmAndLogin runs the OTP flow's terminal step: confirm the code, then
// silently exchange the stored transient credentials for a session. The
// login outcome is reported but never fails the pipeline; PendingCredentials
// and PendingIdentity are erased on the way out regardless.
func (c *Coordinator) ConfirmAndLogin(ctx context.Context, sess *Session, arts *draft.Artifacts, code string) (loggedIn bool, err error) {
	if err := c.checkShape(code); err != nil {
		return false, err
	}
	if err := c.begin(sess, code); err != nil {
		return false, err
	}
	defer c.end(sess)

	identity, err := arts.LoadPendingIdentity(ctx)
	if err != nil {
		return false, dErrors.New(dErrors.CodeMissingPrecursor, "no account awaiting verification")
	}

	if err := c.remote.VerifyCode(ctx, identity.UserID, code); err != nil {
		return false, err
	}

	loggedIn = c.autoLogin(ctx, arts)

	// Both transient artifacts must be gone once verification reaches a
	// terminal state, whatever the login outcome was.
	if err := arts.ClearPendingCredentials(ctx); err != nil {
		c.logger.Warn("clear pending credentials", "run_id", arts.RunID(), "error", err)
	}
	if err := arts.ClearPendingIdentity(ctx); err != nil {
		c.logger.Warn("clear pending identity", "run_id", arts.RunID(), "error", err)
	}
	return loggedIn, nil
}

// Resend asks the remote service for a fresh code. It is refused while the
// countdown is running; on success the countdown restarts and the entered
// code is cleared.
func (c *Coordinator) Resend(ctx context.Context, sess *Session, subject string) error {
	sess.mu.Lock()
	if remaining := sess.nextResend.Sub(c.clock()); remaining > 0 {
		sess.mu.Unlock()
		return dErrors.New(dErrors.CodeConflict, "resend not available yet")
	}
	if sess.inFlight {
		sess.mu.Unlock()
		return dErrors.New(dErrors.CodeConflict, "verification in progress")
	}
	// Claim the guard before unlocking so a concurrent tap cannot slip
	// past the cooldown check and send a second code.
	sess.inFlight = true
	sess.mu.Unlock()
	defer c.end(sess)

	if err := c.remote.ResendCode(ctx, subject); err != nil {
		return err
	}

	sess.mu.Lock()
	sess.nextResend = c.clock().Add(c.cooldown)
	sess.entered = ""
	sess.mu.Unlock()
	return nil
}

// CooldownRemaining reports how long resend stays disabled; zero when it is
// available again.
func (c *Coordinator) CooldownRemaining(sess *Session) time.Duration {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	remaining := sess.nextResend.Sub(c.clock())
	if remaining < 0 {
		return 0
	}
	return remaining
}

// StartCountdown arms the resend countdown, used when a code has just been
// issued by another path (account creation sends the first OTP).
func (c *Coordinator) StartCountdown(sess *Session) {
	sess.mu.Lock()
	sess.nextResend = c.clock().Add(c.cooldown)
	sess.mu.Unlock()
}

func (c *Coordinator) checkShape(code string) error {
	if len(code) != c.codeLen {
		return dErrors.New(dErrors.CodeValidation, "code must be "+strconv.Itoa(c.codeLen)+" digits")
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return dErrors.New(dErrors.CodeValidation, "code must contain only digits")
		}
	}
	return nil
}

func (c *Coordinator) begin(sess *Session, code string) error {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.inFlight {
		return dErrors.New(dErrors.CodeConflict, "verification already in progress")
	}
	sess.inFlight = true
	sess.entered = code
	return nil
}

func (c *Coordinator) end(sess *Session) {
	sess.mu.Lock()
	sess.inFlight = false
	sess.mu.Unlock()
}

func (c *Coordinator) autoLogin(ctx context.Context, arts *draft.Artifacts) bool {
	if c.login == nil {
		return false
	}
	creds, err := arts.LoadPendingCredentials(ctx)
	if err != nil {
		// Degraded, not fatal: verification already succeeded, the next
		// screen invites manual login instead.
		c.logger.Warn("auto-login degraded: credentials absent", "run_id", arts.RunID())
		return false
	}
	if err := c.login.Login(ctx, creds.Email, creds.Password); err != nil {
		c.logger.Warn("auto-login degraded: login failed", "run_id", arts.RunID(), "error", err)
		return false
	}
	return true
}
