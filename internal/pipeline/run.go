package pipeline

import (
	"sync"
	"time"

	"enroll/internal/draft"
	"enroll/internal/verify"
)

// Run is the in-memory state of one pipeline run. Durable artifacts live in
// the draft store; everything here is run-scoped memory, which is exactly
// what the repopulation policy needs: a fresh process never inherits another
// run's session flag.
type Run struct {
	mu sync.Mutex

	id    string
	state State
	// epoch increments on every state change. Responses from calls issued
	// under an older epoch are dropped: the stale-response guard.
	epoch   uint64
	message string

	// sessionLoaded reports whether a RegistrationDraft was saved during
	// this run. Field repopulation on re-entry is gated on it so a stale
	// draft from an abandoned run never leaks into a fresh one.
	sessionLoaded bool

	loggedIn bool

	arts *draft.Artifacts
	otp  *verify.Session

	// navScheduled and nav implement the one-shot delayed redirect.
	navScheduled bool
	nav          *Navigation
}

func newRun(id string, arts *draft.Artifacts) *Run {
	return &Run{
		id:    id,
		state: StateSeedRequired,
		arts:  arts,
		otp:   verify.NewSession(),
	}
}

// setState transitions the run and invalidates any outstanding responses.
// Callers hold r.mu.
func (r *Run) setState(next State) {
	if r.state == next {
		return
	}
	r.state = next
	r.epoch++
}

// scheduleNavigation arms the one-shot delayed redirect. The delay exists so
// the explanatory message is perceptible before the restart signal fires.
// Callers hold r.mu.
func (r *Run) scheduleNavigation(target NavTarget, delay time.Duration) {
	if r.navScheduled {
		return
	}
	r.navScheduled = true
	time.AfterFunc(delay, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if r.nav == nil {
			r.nav = &Navigation{Target: target, FiredAt: time.Now()}
		}
	})
}

// snapshotLocked copies the renderable state. Callers hold r.mu.
func (r *Run) snapshotLocked() Snapshot {
	snap := Snapshot{
		RunID:    r.id,
		State:    r.state,
		Message:  r.message,
		LoggedIn: r.loggedIn,
	}
	if r.nav != nil {
		nav := *r.nav
		snap.Navigation = &nav
	}
	return snap
}
