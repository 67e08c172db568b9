// Package draft persists in-progress registration artifacts. The store is a
// device-scoped convenience cache, not the system of record; the remote
// account service remains authoritative.
package draft

import (
	"context"

	dErrors "enroll/pkg/domain-errors"
)

// ErrNotFound is returned by Load when the artifact was never written or has
// already been cleared.
var ErrNotFound = dErrors.New(dErrors.CodeNotFound, "artifact not found")

// Store is the low-level namespaced key-value contract. Keys are produced by
// Key so every artifact lives under one run's namespace. Implementations may
// fail with storage errors; read-path callers treat any failure as absence,
// write-path callers surface it.
type Store interface {
	Save(ctx context.Context, key string, value []byte) error
	Load(ctx context.Context, key string) ([]byte, error)
	Clear(ctx context.Context, key string) error
}

// Artifact names. Each key has a documented lifecycle:
//
//	signup_seed          written upstream at run creation, cleared on
//	                     successful account creation
//	registration_draft   written on leaving the KYC stage, cleared on
//	                     successful account creation
//	pending_user_id      written on successful account creation, cleared on
//	                     every terminal path out of verification
//	pending_credentials  written on successful account creation, read once
//	                     for auto-login, cleared on every terminal path out
//	                     of verification
const (
	ArtifactSeed               = "signup_seed"
	ArtifactDraft              = "registration_draft"
	ArtifactPendingIdentity    = "pending_user_id"
	ArtifactPendingCredentials = "pending_credentials"
)

const keyPrefix = "enroll:run:"

// Key builds the namespaced storage key for one artifact of one run.
func Key(runID, artifact string) string {
	return keyPrefix + runID + ":" + artifact
}
