package pipeline

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"enroll/internal/audit"
	"enroll/internal/draft"
	"enroll/internal/gateway"
	"enroll/internal/platform/metrics"
	"enroll/internal/validate"
	"enroll/internal/verify"
	dErrors "enroll/pkg/domain-errors"
)

// DefaultRedirectDelay is how long the explanatory message stays visible
// before an automatic redirect instruction fires.
const DefaultRedirectDelay = 1500 * time.Millisecond

// AccountCreator is the slice of the submission gateway the controller
// drives.
type AccountCreator interface {
	CreateAccount(ctx context.Context, payload gateway.AccountPayload) (gateway.CreatedAccount, error)
}

// Service is the stage controller. It owns the run registry and every stage
// transition decision; rendering and routing stay outside.
type Service struct {
	logger        *slog.Logger
	store         draft.Store
	accounts      AccountCreator
	otp           *verify.Coordinator
	audit         *audit.Publisher
	metrics       *metrics.Metrics
	redirectDelay time.Duration

	mu   sync.RWMutex
	runs map[string]*Run
}

// Option configures the Service.
type Option func(*Service)

// WithRedirectDelay overrides the delay before automatic redirects fire.
func WithRedirectDelay(d time.Duration) Option {
	return func(s *Service) { s.redirectDelay = d }
}

func NewService(
	store draft.Store,
	accounts AccountCreator,
	otp *verify.Coordinator,
	auditor *audit.Publisher,
	m *metrics.Metrics,
	logger *slog.Logger,
	opts ...Option,
) *Service {
	s := &Service{
		logger:        logger,
		store:         store,
		accounts:      accounts,
		otp:           otp,
		audit:         auditor,
		metrics:       m,
		redirectDelay: DefaultRedirectDelay,
		runs:          make(map[string]*Run),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateRun starts a pipeline run. The seed is produced upstream; when
// present it is persisted before the run enters the KYC stage, when absent
// the run lands in SEED_MISSING with a delayed redirect to the entry point.
func (s *Service) CreateRun(ctx context.Context, seed *draft.SignupSeed) (Snapshot, error) {
	runID := uuid.NewString()
	run := newRun(runID, draft.NewArtifacts(s.store, runID))

	if seed != nil {
		if res := validate.SeedEmail(seed.Email); !res.OK {
			return Snapshot{}, dErrors.New(dErrors.CodeBadRequest, res.Reason)
		}
		if seed.Password == "" {
			return Snapshot{}, dErrors.New(dErrors.CodeBadRequest, "Password is required")
		}
		if err := run.arts.SaveSeed(ctx, *seed); err != nil {
			return Snapshot{}, err
		}
	}

	s.mu.Lock()
	s.runs[runID] = run
	s.mu.Unlock()

	s.metrics.RunsStarted.Inc()
	s.audit.Emit(ctx, audit.Event{RunID: runID, Action: audit.ActionRunStarted, Stage: string(StateSeedRequired)})

	run.mu.Lock()
	defer run.mu.Unlock()
	s.enterKycLocked(ctx, run)
	return run.snapshotLocked(), nil
}

// Snapshot returns the renderable state of a run, including the OTP resend
// countdown while verification is pending.
func (s *Service) Snapshot(runID string) (Snapshot, error) {
	run, err := s.getRun(runID)
	if err != nil {
		return Snapshot{}, err
	}
	run.mu.Lock()
	snap := run.snapshotLocked()
	run.mu.Unlock()
	if snap.State == StateOtpPending {
		snap.ResendIn = s.otp.CooldownRemaining(run.otp).Seconds()
	}
	return snap, nil
}

// EnterKyc re-evaluates KYC entry (back navigation re-enters the stage).
func (s *Service) EnterKyc(ctx context.Context, runID string) (Snapshot, error) {
	run, err := s.getRun(runID)
	if err != nil {
		return Snapshot{}, err
	}
	run.mu.Lock()
	defer run.mu.Unlock()
	if run.state == StateSeedRequired || run.state == StateKycPending || run.state == StateSeedMissing {
		s.enterKycLocked(ctx, run)
	}
	return run.snapshotLocked(), nil
}

// KycValues returns the field values the KYC screen repopulates from on
// re-entry. Only a draft written during this run qualifies; a stale draft
// left on disk by an abandoned run yields empty fields.
func (s *Service) KycValues(ctx context.Context, runID string) (KycInput, error) {
	run, err := s.getRun(runID)
	if err != nil {
		return KycInput{}, err
	}
	run.mu.Lock()
	defer run.mu.Unlock()

	if !run.sessionLoaded {
		return KycInput{}, nil
	}
	d, err := run.arts.LoadDraft(ctx)
	if err != nil {
		// Read failures read as absent; repopulation is best-effort.
		return KycInput{}, nil
	}
	return KycInput{
		AadharNumber: d.AadharNumber,
		Username:     d.Username,
		Age:          strconv.Itoa(d.Age),
		Gender:       d.Gender,
		Occupation:   d.Occupation,
		PhoneNumber:  d.PhoneNumber,
	}, nil
}

// SubmitKyc validates the KYC fields in their fixed order, merges them with
// the seed into the registration draft, persists it, and advances to the
// details stage. The first failing validator wins and the stage is kept.
func (s *Service) SubmitKyc(ctx context.Context, runID string, input KycInput) (Snapshot, error) {
	run, err := s.getRun(runID)
	if err != nil {
		return Snapshot{}, err
	}
	run.mu.Lock()
	defer run.mu.Unlock()

	if run.state != StateKycPending {
		return run.snapshotLocked(), dErrors.New(dErrors.CodeConflict, "run is not collecting KYC details")
	}

	checks := []validate.Result{
		validate.Aadhar(input.AadharNumber),
		validate.Phone(input.PhoneNumber),
		validate.Age(input.Age),
		validate.Required("Username", input.Username),
		validate.Required("Gender", input.Gender),
		validate.Required("Occupation", input.Occupation),
	}
	for _, res := range checks {
		if !res.OK {
			run.message = res.Reason
			s.audit.Emit(ctx, audit.Event{RunID: runID, Action: audit.ActionValidationRejected, Stage: string(run.state), Reason: res.Reason})
			return run.snapshotLocked(), dErrors.New(dErrors.CodeValidation, res.Reason)
		}
	}

	seed, err := run.arts.LoadSeed(ctx)
	if err != nil {
		s.routeSeedMissingLocked(ctx, run)
		return run.snapshotLocked(), dErrors.New(dErrors.CodeMissingPrecursor, "signup details are missing")
	}

	age, _ := strconv.Atoi(input.Age)
	d := draft.RegistrationDraft{
		SignupSeed: seed,
		KycFields: draft.KycFields{
			AadharNumber: input.AadharNumber,
			Username:     trimmed(input.Username),
			Age:          age,
			Gender:       trimmed(input.Gender),
			Occupation:   trimmed(input.Occupation),
			PhoneNumber:  input.PhoneNumber,
		},
	}
	if err := run.arts.SaveDraft(ctx, d); err != nil {
		run.message = "Could not save your progress. Please try again."
		return run.snapshotLocked(), err
	}

	run.sessionLoaded = true
	run.message = ""
	s.advanceLocked(ctx, run, StateDetailsPending)
	return run.snapshotLocked(), nil
}

// SubmitDetails validates the details stage, composes the final payload
// from the persisted draft, and submits it to the account service. The
// draft survives every failure so the user retries without re-entering KYC
// data.
func (s *Service) SubmitDetails(ctx context.Context, runID string, input DetailsInput) (Snapshot, error) {
	run, err := s.getRun(runID)
	if err != nil {
		return Snapshot{}, err
	}
	run.mu.Lock()

	if run.state == StateSubmitting {
		snap := run.snapshotLocked()
		run.mu.Unlock()
		return snap, dErrors.New(dErrors.CodeConflict, "submission already in progress")
	}
	if run.state != StateDetailsPending {
		snap := run.snapshotLocked()
		run.mu.Unlock()
		return snap, dErrors.New(dErrors.CodeConflict, "run is not collecting additional details")
	}

	for _, res := range []validate.Result{validate.PAN(input.PanNumber), validate.UPI(input.UpiID)} {
		if !res.OK {
			run.message = res.Reason
			snap := run.snapshotLocked()
			run.mu.Unlock()
			s.audit.Emit(ctx, audit.Event{RunID: runID, Action: audit.ActionValidationRejected, Stage: string(StateDetailsPending), Reason: res.Reason})
			return snap, dErrors.New(dErrors.CodeValidation, res.Reason)
		}
	}

	d, err := run.arts.LoadDraft(ctx)
	if err != nil {
		s.routeSeedMissingLocked(ctx, run)
		snap := run.snapshotLocked()
		run.mu.Unlock()
		return snap, dErrors.New(dErrors.CodeMissingPrecursor, "registration draft is missing")
	}

	payload := gateway.BuildPayload(d, draft.AdditionalDetails{
		InstagramUsername: trimmed(input.InstagramUsername),
		UpiID:             input.UpiID,
		PanNumber:         input.PanNumber,
	})

	run.message = ""
	run.setState(StateSubmitting)
	issuedAt := run.epoch
	run.mu.Unlock()

	start := time.Now()
	created, submitErr := s.accounts.CreateAccount(ctx, payload)
	s.metrics.RemoteLatency.Observe(time.Since(start).Seconds())

	run.mu.Lock()
	defer run.mu.Unlock()

	// Stale-response guard: the run left the state that issued this call
	// (for example via restart routing), so the outcome no longer applies.
	if run.state != StateSubmitting || run.epoch != issuedAt {
		s.logger.Info("dropping stale submission response", "run_id", runID)
		return run.snapshotLocked(), nil
	}

	if submitErr != nil {
		return s.failSubmissionLocked(ctx, run, submitErr)
	}
	return s.acceptSubmissionLocked(ctx, run, d, created)
}

// ConfirmOTP confirms the one-time code and, on success, performs the
// silent login hand-off before reporting the verified state.
func (s *Service) ConfirmOTP(ctx context.Context, runID, code string) (Snapshot, error) {
	run, err := s.getRun(runID)
	if err != nil {
		return Snapshot{}, err
	}

	run.mu.Lock()
	if run.state != StateOtpPending {
		snap := run.snapshotLocked()
		run.mu.Unlock()
		return snap, dErrors.New(dErrors.CodeConflict, "run is not awaiting verification")
	}
	issuedAt := run.epoch
	run.mu.Unlock()

	loggedIn, confirmErr := s.otp.ConfirmAndLogin(ctx, run.otp, run.arts, code)

	run.mu.Lock()
	defer run.mu.Unlock()

	if run.state != StateOtpPending || run.epoch != issuedAt {
		s.logger.Info("dropping stale verification response", "run_id", runID)
		return run.snapshotLocked(), nil
	}

	if confirmErr != nil {
		s.metrics.Verifications.WithLabelValues("failed").Inc()
		s.audit.Emit(ctx, audit.Event{RunID: runID, Action: audit.ActionVerificationFailed, Stage: string(run.state), Reason: confirmErr.Error()})
		switch dErrors.CodeOf(confirmErr) {
		case dErrors.CodeValidation:
			run.message = confirmErr.Error()
		case dErrors.CodeMissingPrecursor:
			s.routeSeedMissingLocked(ctx, run)
		case dErrors.CodeNetwork, dErrors.CodeTimeout:
			run.message = "Network error. Please try again."
		case dErrors.CodeConflict:
			// In-flight guard tripped; leave the message alone.
		default:
			run.message = "Invalid code. Please try again."
		}
		return run.snapshotLocked(), confirmErr
	}

	run.loggedIn = loggedIn
	if loggedIn {
		run.message = ""
	} else {
		run.message = "Verification complete. Please sign in to continue."
		s.metrics.AutoLoginDegraded.Inc()
		s.audit.Emit(ctx, audit.Event{RunID: runID, Action: audit.ActionAutoLoginDegraded, Stage: string(StateVerified)})
	}
	s.metrics.Verifications.WithLabelValues("succeeded").Inc()
	s.audit.Emit(ctx, audit.Event{RunID: runID, Action: audit.ActionVerificationSucceeded, Stage: string(StateVerified)})
	s.advanceLocked(ctx, run, StateVerified)
	return run.snapshotLocked(), nil
}

// ResendOTP requests a fresh code, subject to the visible countdown.
func (s *Service) ResendOTP(ctx context.Context, runID string) (Snapshot, error) {
	run, err := s.getRun(runID)
	if err != nil {
		return Snapshot{}, err
	}

	run.mu.Lock()
	if run.state != StateOtpPending {
		snap := run.snapshotLocked()
		run.mu.Unlock()
		return snap, dErrors.New(dErrors.CodeConflict, "run is not awaiting verification")
	}
	run.mu.Unlock()

	identity, err := run.arts.LoadPendingIdentity(ctx)
	if err != nil {
		run.mu.Lock()
		s.routeSeedMissingLocked(ctx, run)
		snap := run.snapshotLocked()
		run.mu.Unlock()
		return snap, dErrors.New(dErrors.CodeMissingPrecursor, "no account awaiting verification")
	}

	if err := s.otp.Resend(ctx, run.otp, identity.UserID); err != nil {
		return s.snapshotOf(run), err
	}
	return s.snapshotOf(run), nil
}

// GoBack returns from the details stage to the KYC stage. Other stages have
// no backward transition; in particular an in-flight submission cannot be
// backed out of (its response would be dropped by the stale guard anyway,
// losing the created account).
func (s *Service) GoBack(ctx context.Context, runID string) (Snapshot, error) {
	run, err := s.getRun(runID)
	if err != nil {
		return Snapshot{}, err
	}
	run.mu.Lock()
	defer run.mu.Unlock()

	if run.state != StateDetailsPending {
		return run.snapshotLocked(), dErrors.New(dErrors.CodeConflict, "cannot go back from this stage")
	}
	run.message = ""
	s.advanceLocked(ctx, run, StateKycPending)
	return run.snapshotLocked(), nil
}

// Trail exposes the audit trail for one run.
func (s *Service) Trail(ctx context.Context, runID string) ([]audit.Event, error) {
	if _, err := s.getRun(runID); err != nil {
		return nil, err
	}
	return s.audit.List(ctx, runID)
}

func (s *Service) getRun(runID string) (*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if run, ok := s.runs[runID]; ok {
		return run, nil
	}
	return nil, dErrors.New(dErrors.CodeNotFound, "unknown run")
}

func (s *Service) snapshotOf(run *Run) Snapshot {
	run.mu.Lock()
	snap := run.snapshotLocked()
	run.mu.Unlock()
	if snap.State == StateOtpPending {
		snap.ResendIn = s.otp.CooldownRemaining(run.otp).Seconds()
	}
	return snap
}

// enterKycLocked admits the run to the KYC stage when the seed loads, and
// routes to SEED_MISSING when it does not.
func (s *Service) enterKycLocked(ctx context.Context, run *Run) {
	if _, err := run.arts.LoadSeed(ctx); err != nil {
		s.routeSeedMissingLocked(ctx, run)
		return
	}
	if run.state != StateKycPending {
		s.advanceLocked(ctx, run, StateKycPending)
	}
}

// routeSeedMissingLocked is the MissingPrecursor failure route: terminal
// state, explanatory message, one delayed redirect to the entry point.
func (s *Service) routeSeedMissingLocked(ctx context.Context, run *Run) {
	if run.state == StateSeedMissing {
		return
	}
	run.setState(StateSeedMissing)
	run.message = "We could not find your signup details. Taking you back to the start."
	run.scheduleNavigation(NavSeedOrigin, s.redirectDelay)
	s.metrics.StageTransitions.WithLabelValues(string(StateSeedMissing)).Inc()
	s.audit.Emit(ctx, audit.Event{RunID: run.id, Action: audit.ActionRunRestarted, Stage: string(StateSeedMissing)})
}

func (s *Service) advanceLocked(ctx context.Context, run *Run, next State) {
	run.setState(next)
	s.metrics.StageTransitions.WithLabelValues(string(next)).Inc()
	s.audit.Emit(ctx, audit.Event{RunID: run.id, Action: audit.ActionStageAdvanced, Stage: string(next)})
}

func (s *Service) failSubmissionLocked(ctx context.Context, run *Run, submitErr error) (Snapshot, error) {
	run.setState(StateDetailsPending)

	code := dErrors.CodeOf(submitErr)
	if code == dErrors.CodeNetwork || code == dErrors.CodeTimeout {
		run.message = "Network error. Please check your connection and try again."
		s.metrics.Submissions.WithLabelValues("network_error").Inc()
		s.audit.Emit(ctx, audit.Event{RunID: run.id, Action: audit.ActionSubmissionRejected, Stage: string(StateDetailsPending), Reason: submitErr.Error()})
		return run.snapshotLocked(), submitErr
	}

	category := gateway.Classify(submitErr.Error())
	switch category {
	case gateway.RejectEmailRegistered:
		run.message = "This email is already registered. Taking you to sign in."
		run.scheduleNavigation(NavSignIn, s.redirectDelay)
	case gateway.RejectUsernameTaken:
		run.message = "That username is already taken. Please choose another."
	case gateway.RejectInvalidPAN:
		run.message = "The PAN number was rejected. Please check it and try again."
	default:
		run.message = "Registration failed. Please try again."
	}
	s.metrics.Submissions.WithLabelValues(string(category)).Inc()
	s.audit.Emit(ctx, audit.Event{RunID: run.id, Action: audit.ActionSubmissionRejected, Stage: string(StateDetailsPending), Reason: submitErr.Error()})
	return run.snapshotLocked(), submitErr
}

func (s *Service) acceptSubmissionLocked(ctx context.Context, run *Run, d draft.RegistrationDraft, created gateway.CreatedAccount) (Snapshot, error) {
	// The final submission writes must not be masked: losing these after
	// the remote account exists strands the user harder than any message.
	if err := run.arts.SavePendingCredentials(ctx, draft.PendingCredentials{Email: d.Email, Password: d.Password}); err != nil {
		return s.acceptWithStorageFailureLocked(ctx, run, err)
	}
	if err := run.arts.SavePendingIdentity(ctx, draft.PendingIdentity{UserID: created.UserID}); err != nil {
		return s.acceptWithStorageFailureLocked(ctx, run, err)
	}

	// The seed and draft are superseded by the remote record.
	if err := run.arts.ClearSeed(ctx); err != nil {
		s.logger.Warn("clear seed after account creation", "run_id", run.id, "error", err)
	}
	if err := run.arts.ClearDraft(ctx); err != nil {
		s.logger.Warn("clear draft after account creation", "run_id", run.id, "error", err)
	}

	run.message = ""
	s.metrics.Submissions.WithLabelValues("accepted").Inc()
	s.audit.Emit(ctx, audit.Event{RunID: run.id, Action: audit.ActionSubmissionAccepted, Stage: string(StateOtpPending)})
	s.advanceLocked(ctx, run, StateOtpPending)
	s.otp.StartCountdown(run.otp)
	return run.snapshotLocked(), nil
}

// acceptWithStorageFailureLocked still advances to verification (the remote
// account exists and a code is on its way) but surfaces the storage error
// instead of masking it.
func (s *Service) acceptWithStorageFailureLocked(ctx context.Context, run *Run, err error) (Snapshot, error) {
	s.logger.Error("persist transient artifacts after account creation", "run_id", run.id, "error", err)
	run.message = "Your account was created but something went wrong on this device. You may need to sign in manually."
	s.metrics.Submissions.WithLabelValues("accepted_degraded").Inc()
	s.audit.Emit(ctx, audit.Event{RunID: run.id, Action: audit.ActionSubmissionAccepted, Stage: string(StateOtpPending), Reason: "transient artifact write failed"})
	s.advanceLocked(ctx, run, StateOtpPending)
	s.otp.StartCountdown(run.otp)
	return run.snapshotLocked(), err
}

func trimmed(s string) string {
	return strings.TrimSpace(s)
}
