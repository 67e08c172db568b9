package draft

import (
	"context"
	"encoding/json"

	dErrors "enroll/pkg/domain-errors"
)

// SignupSeed is produced upstream and is read-only within the pipeline.
type SignupSeed struct {
	Email        string `json:"email"`
	Password     string `json:"password"`
	ReferralCode string `json:"referral_code"`
	UserRole     string `json:"user_role"`
	Status       string `json:"status"`
}

// KycFields is owned and mutated solely by the KYC stage.
type KycFields struct {
	AadharNumber string `json:"aadhar_number"`
	Username     string `json:"username"`
	Age          int    `json:"age"`
	Gender       string `json:"gender"`
	Occupation   string `json:"occupation"`
	PhoneNumber  string `json:"phone_number"`
}

// RegistrationDraft is the cumulative record persisted after the KYC stage;
// it is the canonical resume-point artifact.
type RegistrationDraft struct {
	SignupSeed
	KycFields
}

// AdditionalDetails is owned by the details stage. It is merged into the
// final submission payload, never into the persisted draft.
type AdditionalDetails struct {
	InstagramUsername string `json:"instagram_username,omitempty"`
	UpiID             string `json:"upi_id,omitempty"`
	PanNumber         string `json:"pan_number"`
}

// PendingIdentity bridges the details stage and the verification stage.
type PendingIdentity struct {
	UserID string `json:"user_id"`
}

// PendingCredentials exists solely to enable automatic login after
// verification. Write-once, read-once.
type PendingCredentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Artifacts is the typed artifact layer over a Store, scoped to one run. It
// owns key derivation and JSON codecs so stores stay byte-oriented.
type Artifacts struct {
	store Store
	runID string
}

func NewArtifacts(store Store, runID string) *Artifacts {
	return &Artifacts{store: store, runID: runID}
}

func (a *Artifacts) RunID() string { return a.runID }

func (a *Artifacts) SaveSeed(ctx context.Context, seed SignupSeed) error {
	return a.save(ctx, ArtifactSeed, seed)
}

func (a *Artifacts) LoadSeed(ctx context.Context) (SignupSeed, error) {
	var seed SignupSeed
	err := a.load(ctx, ArtifactSeed, &seed)
	return seed, err
}

func (a *Artifacts) ClearSeed(ctx context.Context) error {
	return a.store.Clear(ctx, Key(a.runID, ArtifactSeed))
}

func (a *Artifacts) SaveDraft(ctx context.Context, d RegistrationDraft) error {
	return a.save(ctx, ArtifactDraft, d)
}

func (a *Artifacts) LoadDraft(ctx context.Context) (RegistrationDraft, error) {
	var d RegistrationDraft
	err := a.load(ctx, ArtifactDraft, &d)
	return d, err
}

func (a *Artifacts) ClearDraft(ctx context.Context) error {
	return a.store.Clear(ctx, Key(a.runID, ArtifactDraft))
}

func (a *Artifacts) SavePendingIdentity(ctx context.Context, p PendingIdentity) error {
	return a.save(ctx, ArtifactPendingIdentity, p)
}

func (a *Artifacts) LoadPendingIdentity(ctx context.Context) (PendingIdentity, error) {
	var p PendingIdentity
	err := a.load(ctx, ArtifactPendingIdentity, &p)
	return p, err
}

func (a *Artifacts) ClearPendingIdentity(ctx context.Context) error {
	return a.store.Clear(ctx, Key(a.runID, ArtifactPendingIdentity))
}

func (a *Artifacts) SavePendingCredentials(ctx context.Context, p PendingCredentials) error {
	return a.save(ctx, ArtifactPendingCredentials, p)
}

func (a *Artifacts) LoadPendingCredentials(ctx context.Context) (PendingCredentials, error) {
	var p PendingCredentials
	err := a.load(ctx, ArtifactPendingCredentials, &p)
	return p, err
}

func (a *Artifacts) ClearPendingCredentials(ctx context.Context) error {
	return a.store.Clear(ctx, Key(a.runID, ArtifactPendingCredentials))
}

func (a *Artifacts) save(ctx context.Context, artifact string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "encode "+artifact)
	}
	if err := a.store.Save(ctx, Key(a.runID, artifact), raw); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "persist "+artifact)
	}
	return nil
}

func (a *Artifacts) load(ctx context.Context, artifact string, v any) error {
	raw, err := a.store.Load(ctx, Key(a.runID, artifact))
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		// A corrupt artifact reads as absent; the store is only a cache.
		return ErrNotFound
	}
	return nil
}
