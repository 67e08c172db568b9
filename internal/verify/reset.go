package verify

import (
	"context"
	"strings"
	"sync"

	"enroll/internal/validate"
	dErrors "enroll/pkg/domain-errors"
)

// ResetFlow drives password-reset code verification. Sessions are keyed by
// email rather than run, and codes are 6 digits; otherwise the mechanics
// match the OTP flow, including the resend countdown.
type ResetFlow struct {
	coord *Coordinator

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewResetFlow(coord *Coordinator) *ResetFlow {
	return &ResetFlow{
		coord:    coord,
		sessions: make(map[string]*Session),
	}
}

// Send issues a reset code to the address. Repeat sends within the cooldown
// are refused, same as resends.
func (f *ResetFlow) Send(ctx context.Context, email string) error {
	email, err := f.normalize(email)
	if err != nil {
		return err
	}
	return f.coord.Resend(ctx, f.session(email), email)
}

// Verify confirms a reset code for the address.
func (f *ResetFlow) Verify(ctx context.Context, email, code string) error {
	email, err := f.normalize(email)
	if err != nil {
		return err
	}
	return f.coord.Confirm(ctx, f.session(email), email, code)
}

// CooldownRemaining reports the resend countdown for the address, in
// seconds.
func (f *ResetFlow) CooldownRemaining(email string) float64 {
	email, err := f.normalize(email)
	if err != nil {
		return 0
	}
	return f.coord.CooldownRemaining(f.session(email)).Seconds()
}

func (f *ResetFlow) normalize(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if res := validate.SeedEmail(email); !res.OK {
		return "", dErrors.New(dErrors.CodeValidation, res.Reason)
	}
	return email, nil
}

func (f *ResetFlow) session(email string) *Session {
	f.mu.Lock()
	defer f.mu.Unlock()
	sess, ok := f.sessions[email]
	if !ok {
		sess = NewSession()
		f.sessions[email] = sess
	}
	return sess
}
