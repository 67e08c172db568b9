package gateway

import "strings"

// RejectionCategory selects the user-facing branch for a remote rejection.
type RejectionCategory string

const (
	// RejectEmailRegistered triggers the delayed redirect to the sign-in
	// boundary; the draft is preserved until the redirect fires.
	RejectEmailRegistered RejectionCategory = "email_already_registered"
	RejectUsernameTaken   RejectionCategory = "username_taken"
	RejectInvalidPAN      RejectionCategory = "invalid_pan"
	RejectGeneric         RejectionCategory = "generic"
)

// Classify maps a remote rejection message onto a category. The service
// reports failures as free text, so this is substring matching by necessity;
// it is deliberately the only place in the repository that inspects remote
// message text.
func Classify(message string) RejectionCategory {
	lowered := strings.ToLower(message)
	switch {
	case strings.Contains(lowered, "already registered") || strings.Contains(lowered, "email already"):
		return RejectEmailRegistered
	case strings.Contains(lowered, "username"):
		return RejectUsernameTaken
	case strings.Contains(lowered, "pan"):
		return RejectInvalidPAN
	default:
		return RejectGeneric
	}
}
