package gateway

import "context"

// OTPRemote presents the client as a code-verification remote for the
// signup OTP flow, where the subject is the remote user id.
type OTPRemote struct {
	*Client
}

func (r OTPRemote) VerifyCode(ctx context.Context, userID, code string) error {
	return r.VerifyOTP(ctx, userID, code)
}

func (r OTPRemote) ResendCode(ctx context.Context, userID string) error {
	return r.ResendOTP(ctx, userID)
}

// ResetRemote presents the client as a code-verification remote for the
// password-reset flow, where the subject is the email address.
type ResetRemote struct {
	*Client
}

func (r ResetRemote) VerifyCode(ctx context.Context, email, code string) error {
	return r.VerifyResetCode(ctx, email, code)
}

func (r ResetRemote) ResendCode(ctx context.Context, email string) error {
	return r.SendResetCode(ctx, email)
}
