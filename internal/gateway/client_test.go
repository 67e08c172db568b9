package gateway

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"enroll/internal/draft"
	dErrors "enroll/pkg/domain-errors"
)

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func samplePayload() AccountPayload {
	return BuildPayload(draft.RegistrationDraft{
		SignupSeed: draft.SignupSeed{Email: "a@b.com", Password: "pw", ReferralCode: "REF"},
		KycFields: draft.KycFields{
			AadharNumber: "299999999999",
			Username:     "ravi",
			Age:          30,
			Gender:       "male",
			Occupation:   "engineer",
			PhoneNumber:  "9876543210",
		},
	}, draft.AdditionalDetails{PanNumber: "ABCDE1234F", UpiID: "ravi@upi"})
}

func TestBuildPayload_FixedFields(t *testing.T) {
	payload := samplePayload()
	assert.Equal(t, "user", payload.UserRole)
	assert.Equal(t, "1", payload.Status)
	assert.Equal(t, "a@b.com", payload.Email)
	assert.Equal(t, "ABCDE1234F", payload.PanNumber)
}

func TestCreateAccount_Success(t *testing.T) {
	var seen map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&seen))
		_, _ = w.Write([]byte(`{"status":"success","data":{"id":41}}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, testLogger())
	created, err := client.CreateAccount(context.Background(), samplePayload())
	require.NoError(t, err)
	assert.Equal(t, "41", created.UserID)
	assert.Equal(t, ActionAddUser, seen["action"])
	assert.Equal(t, "user", seen["user_role"])
	assert.Equal(t, "1", seen["status"])
}

func TestCreateAccount_IDAliasOrder(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{"data.id", `{"status":"success","data":{"id":"7"}}`, "7"},
		{"data.user_id", `{"status":"success","data":{"user_id":8}}`, "8"},
		{"top-level id", `{"status":"success","id":"9"}`, "9"},
		{"top-level user_id", `{"status":"success","user_id":10}`, "10"},
		{"data.id wins over user_id", `{"status":"success","id":"99","data":{"id":"7","user_id":"8"}}`, "7"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			created, err := NewClient(srv.URL, testLogger()).CreateAccount(context.Background(), samplePayload())
			require.NoError(t, err)
			assert.Equal(t, tc.want, created.UserID)
		})
	}
}

func TestCreateAccount_SuccessWithoutIDIsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status":"success"}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, testLogger()).CreateAccount(context.Background(), samplePayload())
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNetwork))
}

func TestCreateAccount_RemoteRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status":"error","message":"Email already registered"}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, testLogger()).CreateAccount(context.Background(), samplePayload())
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeRemoteRejected))
	assert.Equal(t, RejectEmailRegistered, Classify(err.Error()))
}

func TestCreateAccount_EmptyBodyIsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	defer srv.Close()

	_, err := NewClient(srv.URL, testLogger()).CreateAccount(context.Background(), samplePayload())
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNetwork))
}

func TestCreateAccount_MalformedBodyIsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html>gateway error</html>`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, testLogger()).CreateAccount(context.Background(), samplePayload())
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNetwork))
}

func TestCreateAccount_UnreachableIsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close() // refuse connections

	_, err := NewClient(srv.URL, testLogger()).CreateAccount(context.Background(), samplePayload())
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNetwork))
}

func TestCreateAccount_SlowRemoteTimesOut(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		<-release
	}))
	defer func() { close(release); srv.Close() }()

	client := NewClient(srv.URL, testLogger(), WithTimeout(50*time.Millisecond))
	_, err := client.CreateAccount(context.Background(), samplePayload())
	require.Error(t, err)
	// http.Client timeout surfaces as a transport error, not a context
	// deadline, so it classifies as CodeNetwork.
	code := dErrors.CodeOf(err)
	assert.Contains(t, []dErrors.Code{dErrors.CodeNetwork, dErrors.CodeTimeout}, code)
}

func TestVerifyOTP(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, ActionVerifyOTP, body["action"])
		assert.Equal(t, "41", body["user_id"])
		if body["otp"] == "12345" {
			_, _ = w.Write([]byte(`{"status":"success"}`))
			return
		}
		_, _ = w.Write([]byte(`{"status":"error","message":"Invalid OTP"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, testLogger())
	require.NoError(t, client.VerifyOTP(context.Background(), "41", "12345"))

	err := client.VerifyOTP(context.Background(), "41", "00000")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeRemoteRejected))
	assert.Equal(t, int32(2), calls.Load())
}

func TestLogin(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body["password"] == "pw" {
			_, _ = w.Write([]byte(`{"status":"success","data":{"token":"tok-123"}}`))
			return
		}
		_, _ = w.Write([]byte(`{"status":"error","message":"Invalid credentials"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, testLogger())
	res, err := client.Login(context.Background(), "a@b.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, "tok-123", res.Token)

	_, err = client.Login(context.Background(), "a@b.com", "wrong")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}
