// Package pipeline orchestrates the multi-stage onboarding flow: it loads
// prior drafts, runs validators, merges stage input into the cumulative
// record, persists it, and decides the next stage or the failure route.
package pipeline

import "time"

// State identifies where a run stands in the pipeline.
type State string

const (
	StateSeedRequired   State = "SEED_REQUIRED"
	StateKycPending     State = "KYC_PENDING"
	StateDetailsPending State = "DETAILS_PENDING"
	StateSubmitting     State = "SUBMITTING"
	StateOtpPending     State = "OTP_PENDING"
	StateVerified       State = "VERIFIED"

	// StateSeedMissing is terminal: a required earlier-stage artifact could
	// not be loaded and the user must restart.
	StateSeedMissing State = "SEED_MISSING"
)

// NavTarget names a boundary the router should take the user to. The core
// only emits the instruction; it owns no navigation stack.
type NavTarget string

const (
	// NavSeedOrigin is the pipeline's entry point, where the seed is made.
	NavSeedOrigin NavTarget = "seed-origin"
	// NavSignIn is the sign-in boundary, used when the email is already
	// registered.
	NavSignIn NavTarget = "sign-in"
)

// Navigation is a fired redirect instruction. Each run fires at most one.
type Navigation struct {
	Target  NavTarget `json:"target"`
	FiredAt time.Time `json:"fired_at"`
}

// KycInput is the raw KYC stage submission. All fields arrive as strings
// from the presentation boundary; validation owns interpretation.
type KycInput struct {
	AadharNumber string `json:"aadhar_number"`
	Username     string `json:"username"`
	Age          string `json:"age"`
	Gender       string `json:"gender"`
	Occupation   string `json:"occupation"`
	PhoneNumber  string `json:"phone_number"`
}

// DetailsInput is the raw details stage submission.
type DetailsInput struct {
	InstagramUsername string `json:"instagram_username"`
	UpiID             string `json:"upi_id"`
	PanNumber         string `json:"pan_number"`
}

// Snapshot is the per-stage view the presentation boundary renders from.
type Snapshot struct {
	RunID      string      `json:"run_id"`
	State      State       `json:"state"`
	Message    string      `json:"message,omitempty"`
	LoggedIn   bool        `json:"logged_in,omitempty"`
	ResendIn   float64     `json:"resend_in_seconds,omitempty"`
	Navigation *Navigation `json:"navigation,omitempty"`
}
