// Package gateway talks to the remote account service: a single
// JSON-over-HTTP endpoint discriminated by an "action" field. All response
// interpretation quirks (id aliases, message sniffing) are contained here so
// the rest of the pipeline sees coded errors and typed results.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"enroll/internal/draft"
	dErrors "enroll/pkg/domain-errors"
)

// Remote action discriminators.
const (
	ActionAddUser         = "adduser"
	ActionVerifyOTP       = "verifyotp"
	ActionResendOTP       = "resendotp"
	ActionSendResetCode   = "sendresetcode"
	ActionVerifyResetCode = "verifyresetcode"
	ActionLogin           = "login"
)

const statusSuccess = "success"

// DefaultTimeout bounds every remote call; expiry is classified as a
// network failure so drafts survive.
const DefaultTimeout = 20 * time.Second

// AccountPayload is the flat account-creation body: RegistrationDraft merged
// with AdditionalDetails plus the fixed role/status fields.
type AccountPayload struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	ReferralCode      string `json:"referral_code,omitempty"`
	UserRole          string `json:"user_role"`
	Status            string `json:"status"`
	AadharNumber      string `json:"aadhar_number"`
	Username          string `json:"username"`
	Age               int    `json:"age"`
	Gender            string `json:"gender"`
	Occupation        string `json:"occupation"`
	PhoneNumber       string `json:"phone_number"`
	InstagramUsername string `json:"instagram_username,omitempty"`
	UpiID             string `json:"upi_id,omitempty"`
	PanNumber         string `json:"pan_number"`
}

// BuildPayload composes the final submission body from the persisted draft
// and the details-stage input. user_role and status are fixed by contract.
func BuildPayload(d draft.RegistrationDraft, details draft.AdditionalDetails) AccountPayload {
	return AccountPayload{
		Email:             d.Email,
		Password:          d.Password,
		ReferralCode:      d.ReferralCode,
		UserRole:          "user",
		Status:            "1",
		AadharNumber:      d.AadharNumber,
		Username:          d.Username,
		Age:               d.Age,
		Gender:            d.Gender,
		Occupation:        d.Occupation,
		PhoneNumber:       d.PhoneNumber,
		InstagramUsername: details.InstagramUsername,
		UpiID:             details.UpiID,
		PanNumber:         details.PanNumber,
	}
}

// CreatedAccount is the successful account-creation result.
type CreatedAccount struct {
	UserID string
}

// LoginResult carries the access token handed back by the login action.
type LoginResult struct {
	Token string
}

// Client is the HTTP client for the account service.
type Client struct {
	endpoint string
	http     *http.Client
	logger   *slog.Logger
	tracer   trace.Tracer
}

// Option configures the Client.
type Option func(*Client)

// WithTimeout overrides the default per-call timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithHTTPClient swaps the underlying transport, mainly for tests.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

func NewClient(endpoint string, logger *slog.Logger, opts ...Option) *Client {
	c := &Client{
		endpoint: endpoint,
		http:     &http.Client{Timeout: DefaultTimeout},
		logger:   logger,
		tracer:   otel.Tracer("enroll/gateway"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// envelope is the remote response shape: {status, message?, data?}. The
// created account id may ride under several aliases; see accountID.
type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	ID      json.RawMessage `json:"id"`
	UserID  json.RawMessage `json:"user_id"`
}

// CreateAccount submits the completed payload. Failures are classified per
// the pipeline taxonomy: transport/parse problems are CodeNetwork or
// CodeTimeout, remote business rejections are CodeRemoteRejected with the
// remote message preserved for Classify.
func (c *Client) CreateAccount(ctx context.Context, payload AccountPayload) (CreatedAccount, error) {
	body := map[string]any{
		"email":         payload.Email,
		"password":      payload.Password,
		"user_role":     payload.UserRole,
		"status":        payload.Status,
		"aadhar_number": payload.AadharNumber,
		"username":      payload.Username,
		"age":           payload.Age,
		"gender":        payload.Gender,
		"occupation":    payload.Occupation,
		"phone_number":  payload.PhoneNumber,
		"pan_number":    payload.PanNumber,
	}
	if payload.ReferralCode != "" {
		body["referral_code"] = payload.ReferralCode
	}
	if payload.InstagramUsername != "" {
		body["instagram_username"] = payload.InstagramUsername
	}
	if payload.UpiID != "" {
		body["upi_id"] = payload.UpiID
	}

	env, err := c.do(ctx, ActionAddUser, body)
	if err != nil {
		return CreatedAccount{}, err
	}
	if env.Status != statusSuccess {
		return CreatedAccount{}, dErrors.New(dErrors.CodeRemoteRejected, env.Message)
	}
	userID, ok := env.accountID()
	if !ok {
		// A success without an id is unusable; treat like a malformed
		// response so the caller keeps the draft and can retry.
		return CreatedAccount{}, dErrors.New(dErrors.CodeNetwork, "account created but response carried no user id")
	}
	return CreatedAccount{UserID: userID}, nil
}

// VerifyOTP confirms the one-time code for a freshly created account.
func (c *Client) VerifyOTP(ctx context.Context, userID, code string) error {
	return c.simple(ctx, ActionVerifyOTP, map[string]any{"user_id": userID, "otp": code})
}

// ResendOTP asks the remote service to issue a new one-time code.
func (c *Client) ResendOTP(ctx context.Context, userID string) error {
	return c.simple(ctx, ActionResendOTP, map[string]any{"user_id": userID})
}

// SendResetCode starts the password-reset verification flow.
func (c *Client) SendResetCode(ctx context.Context, email string) error {
	return c.simple(ctx, ActionSendResetCode, map[string]any{"email": email})
}

// VerifyResetCode confirms a password-reset code.
func (c *Client) VerifyResetCode(ctx context.Context, email, code string) error {
	return c.simple(ctx, ActionVerifyResetCode, map[string]any{"email": email, "code": code})
}

// Login exchanges credentials for an access token.
func (c *Client) Login(ctx context.Context, email, password string) (LoginResult, error) {
	env, err := c.do(ctx, ActionLogin, map[string]any{"email": email, "password": password})
	if err != nil {
		return LoginResult{}, err
	}
	if env.Status != statusSuccess {
		return LoginResult{}, dErrors.New(dErrors.CodeUnauthorized, env.Message)
	}
	var data struct {
		Token string `json:"token"`
	}
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &data); err != nil {
			return LoginResult{}, dErrors.New(dErrors.CodeNetwork, "malformed login response")
		}
	}
	return LoginResult{Token: data.Token}, nil
}

func (c *Client) simple(ctx context.Context, action string, body map[string]any) error {
	env, err := c.do(ctx, action, body)
	if err != nil {
		return err
	}
	if env.Status != statusSuccess {
		return dErrors.New(dErrors.CodeRemoteRejected, env.Message)
	}
	return nil
}

func (c *Client) do(ctx context.Context, action string, body map[string]any) (*envelope, error) {
	ctx, span := c.tracer.Start(ctx, "gateway."+action,
		trace.WithAttributes(attribute.String("enroll.action", action)))
	defer span.End()

	body["action"] = action
	encoded, err := json.Marshal(body)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "encode request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(encoded))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "build request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, dErrors.Wrap(err, dErrors.CodeTimeout, "account service timed out")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeNetwork, "account service unreachable")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, dErrors.Wrap(err, dErrors.CodeNetwork, "read response")
	}
	if len(raw) == 0 {
		span.SetStatus(codes.Error, "empty body")
		return nil, dErrors.New(dErrors.CodeNetwork, "empty response from account service")
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		span.SetStatus(codes.Error, "malformed body")
		c.logger.Warn("malformed account service response", "action", action, "error", err)
		return nil, dErrors.Wrap(err, dErrors.CodeNetwork, "malformed response from account service")
	}
	return &env, nil
}

// accountID walks the known id aliases in order and returns the first one
// present: data.id, data.user_id, id, user_id. Numeric and string ids both
// occur in the wild.
func (e *envelope) accountID() (string, bool) {
	if len(e.Data) > 0 {
		var data struct {
			ID     json.RawMessage `json:"id"`
			UserID json.RawMessage `json:"user_id"`
		}
		if err := json.Unmarshal(e.Data, &data); err == nil {
			if id, ok := rawID(data.ID); ok {
				return id, true
			}
			if id, ok := rawID(data.UserID); ok {
				return id, true
			}
		}
	}
	if id, ok := rawID(e.ID); ok {
		return id, true
	}
	return rawID(e.UserID)
}

func rawID(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, s != ""
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String(), true
	}
	return "", false
}
