package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"

	dErrors "enroll/pkg/domain-errors"
	"enroll/pkg/testutil"
)

type stubFlow struct {
	sendErr   error
	verifyErr error
	remaining float64
	sent      []string
	verified  []string
}

func (s *stubFlow) Send(ctx context.Context, email string) error {
	s.sent = append(s.sent, email)
	return s.sendErr
}

func (s *stubFlow) Verify(ctx context.Context, email, code string) error {
	s.verified = append(s.verified, email+":"+code)
	return s.verifyErr
}

func (s *stubFlow) CooldownRemaining(email string) float64 { return s.remaining }

func newTestRouter(t *testing.T, flow *stubFlow) chi.Router {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	r := chi.NewRouter()
	New(flow, logger).Register(r)
	return r
}

func TestHandleSend(t *testing.T) {
	flow := &stubFlow{remaining: 60}
	r := newTestRouter(t, flow)

	req := testutil.NewJSONRequest(t, http.MethodPost, "/reset/send", map[string]string{"email": "a@example.com"})
	rr := testutil.DoRequest(r, req)

	testutil.AssertStatusOK(t, rr)
	testutil.AssertJSONContains(t, rr, "status", "sent")
	testutil.AssertJSONContains(t, rr, "resend_in_seconds", 60.0)
	assert.Equal(t, []string{"a@example.com"}, flow.sent)
}

func TestHandleSendCooldownRefused(t *testing.T) {
	flow := &stubFlow{sendErr: dErrors.New(dErrors.CodeConflict, "resend not available yet")}
	r := newTestRouter(t, flow)

	req := testutil.NewJSONRequest(t, http.MethodPost, "/reset/send", map[string]string{"email": "a@example.com"})
	rr := testutil.DoRequest(r, req)

	testutil.AssertStatusAndError(t, rr, http.StatusConflict, string(dErrors.CodeConflict))
}

func TestHandleVerify(t *testing.T) {
	flow := &stubFlow{}
	r := newTestRouter(t, flow)

	req := testutil.NewJSONRequest(t, http.MethodPost, "/reset/verify", map[string]string{"email": "a@example.com", "code": "123456"})
	rr := testutil.DoRequest(r, req)

	testutil.AssertStatusOK(t, rr)
	testutil.AssertJSONContains(t, rr, "status", "verified")
	assert.Equal(t, []string{"a@example.com:123456"}, flow.verified)
}

func TestHandleVerifyRejected(t *testing.T) {
	flow := &stubFlow{verifyErr: dErrors.New(dErrors.CodeValidation, "code must be 6 digits")}
	r := newTestRouter(t, flow)

	req := testutil.NewJSONRequest(t, http.MethodPost, "/reset/verify", map[string]string{"email": "a@example.com", "code": "12"})
	rr := testutil.DoRequest(r, req)

	testutil.AssertStatus(t, rr, http.StatusBadRequest)
}

func TestHandleBadBody(t *testing.T) {
	r := newTestRouter(t, &stubFlow{})

	req := testutil.NewRequestWithBody(t, http.MethodPost, "/reset/send", "nope")
	rr := testutil.DoRequest(r, req)

	testutil.AssertStatus(t, rr, http.StatusBadRequest)
}
