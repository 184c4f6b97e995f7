package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"worksphere-portal/internal/apperr"
	"worksphere-portal/internal/config"
	"worksphere-portal/internal/dto"
	"worksphere-portal/internal/model"
)

// CredentialSession is what the gateway needs from the session-context
// object: the current bearer token and the ability to clear everything
// on an authorization failure.
type CredentialSession interface {
	Credentials() model.Credentials
	Clear(ctx context.Context) error
}

type PortalClient interface {
	Signup(ctx context.Context, sess CredentialSession, req *dto.SignupRequest) error
	Login(ctx context.Context, sess CredentialSession, email, password string) (*LoginResult, error)
	Logout(ctx context.Context, sess CredentialSession) error
	RefreshToken(ctx context.Context, sess CredentialSession, refreshToken string) (*LoginResult, error)
	ForgotPassword(ctx context.Context, sess CredentialSession, email string) error
	ResetPassword(ctx context.Context, sess CredentialSession, token, newPassword string) error

	CreatePaymentIntent(ctx context.Context, sess CredentialSession, amount int64) (*CreatePaymentIntentResult, error)
	ConfirmPayment(ctx context.Context, sess CredentialSession, paymentIntentID, paymentMethodID string) (*ConfirmPaymentResult, error)
	CreateSubscription(ctx context.Context, sess CredentialSession, amount int64, userEmail string) (*CreateSubscriptionResult, error)
	GetPaymentHistory(ctx context.Context, sess CredentialSession, email string) ([]*model.PaymentHistoryItem, error)
	RefundPayment(ctx context.Context, sess CredentialSession, paymentIntentID string) (*RefundResult, error)
}

type portalClientImpl struct {
	httpClient *http.Client
	baseApiURL string
}

type LoginResult struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type CreatePaymentIntentResult struct {
	ClientSecret string `json:"clientSecret"`
}

type ConfirmPaymentResult struct {
	Status string `json:"status"`
	ID     string `json:"id"`
}

type CreateSubscriptionResult struct {
	SubscriptionID string `json:"subscriptionId"`
	ClientSecret   string `json:"clientSecret"`
}

type RefundResult struct {
	Status string `json:"status"`
}

func NewPortalClient(cfg *config.Backend) PortalClient {
	return &portalClientImpl{
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
		baseApiURL: cfg.BaseApiURL,
	}
}

// do runs one backend request. Bearer is attached when a token is
// present; a 401 clears the credential store before the error is
// returned, no matter which endpoint it came from.
func (c *portalClientImpl) do(ctx context.Context, sess CredentialSession, method, path string, payload interface{}, out interface{}) error {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal req payload: %w", err)
		}
		body = bytes.NewBuffer(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseApiURL+path, body)
	if err != nil {
		return fmt.Errorf("http new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token := sess.Credentials().AccessToken; token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		if clearErr := sess.Clear(ctx); clearErr != nil {
			return fmt.Errorf("clear credentials after 401: %w", clearErr)
		}
		return fmt.Errorf("%s %s: %w", method, path, apperr.ErrUnauthorized)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return classifyStatus(resp.StatusCode, method, path, b)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode backend response: %w", err)
		}
	}

	return nil
}

func classifyStatus(status int, method, path string, body []byte) error {
	switch status {
	case http.StatusNotFound:
		return fmt.Errorf("%s %s: %w", method, path, apperr.ErrNotFound)
	case http.StatusPaymentRequired:
		return fmt.Errorf("%s %s: %w: %s", method, path, apperr.ErrProcessor, string(body))
	default:
		return fmt.Errorf("backend error %d on %s %s: %s", status, method, path, string(body))
	}
}

func (c *portalClientImpl) Signup(ctx context.Context, sess CredentialSession, req *dto.SignupRequest) error {
	return c.do(ctx, sess, http.MethodPost, "/auth/signup", req, nil)
}

func (c *portalClientImpl) Login(ctx context.Context, sess CredentialSession, email, password string) (*LoginResult, error) {
	var result LoginResult
	err := c.do(ctx, sess, http.MethodPost, "/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, &result)
	if err != nil {
		return nil, fmt.Errorf("backend login: %w", err)
	}
	return &result, nil
}

func (c *portalClientImpl) Logout(ctx context.Context, sess CredentialSession) error {
	return c.do(ctx, sess, http.MethodPost, "/auth/logout", nil, nil)
}

func (c *portalClientImpl) RefreshToken(ctx context.Context, sess CredentialSession, refreshToken string) (*LoginResult, error) {
	var result LoginResult
	err := c.do(ctx, sess, http.MethodPost, "/auth/refresh-token", map[string]string{
		"refreshToken": refreshToken,
	}, &result)
	if err != nil {
		return nil, fmt.Errorf("backend refresh token: %w", err)
	}
	return &result, nil
}

func (c *portalClientImpl) ForgotPassword(ctx context.Context, sess CredentialSession, email string) error {
	return c.do(ctx, sess, http.MethodPost, "/auth/forgot-password", map[string]string{
		"email": email,
	}, nil)
}

func (c *portalClientImpl) ResetPassword(ctx context.Context, sess CredentialSession, token, newPassword string) error {
	return c.do(ctx, sess, http.MethodPost, "/auth/reset-password", map[string]string{
		"token":       token,
		"newPassword": newPassword,
	}, nil)
}

func (c *portalClientImpl) CreatePaymentIntent(ctx context.Context, sess CredentialSession, amount int64) (*CreatePaymentIntentResult, error) {
	var result CreatePaymentIntentResult
	err := c.do(ctx, sess, http.MethodPost, "/stripe/create-payment-intent", map[string]int64{
		"amount": amount,
	}, &result)
	if err != nil {
		return nil, fmt.Errorf("backend create payment intent: %w", err)
	}
	if result.ClientSecret == "" {
		return nil, errors.New("backend returned empty client secret")
	}
	return &result, nil
}

func (c *portalClientImpl) ConfirmPayment(ctx context.Context, sess CredentialSession, paymentIntentID, paymentMethodID string) (*ConfirmPaymentResult, error) {
	var result ConfirmPaymentResult
	err := c.do(ctx, sess, http.MethodPost, "/stripe/confirm-payment", map[string]string{
		"paymentIntentId": paymentIntentID,
		"paymentMethodId": paymentMethodID,
	}, &result)
	if err != nil {
		return nil, fmt.Errorf("backend confirm payment: %w", err)
	}
	return &result, nil
}

func (c *portalClientImpl) CreateSubscription(ctx context.Context, sess CredentialSession, amount int64, userEmail string) (*CreateSubscriptionResult, error) {
	var result CreateSubscriptionResult
	err := c.do(ctx, sess, http.MethodPost, "/payment/create-subscription", map[string]interface{}{
		"amount":    amount,
		"userEmail": userEmail,
	}, &result)
	if err != nil {
		return nil, fmt.Errorf("backend create subscription: %w", err)
	}
	if result.ClientSecret == "" {
		return nil, errors.New("backend returned empty client secret")
	}
	return &result, nil
}

func (c *portalClientImpl) GetPaymentHistory(ctx context.Context, sess CredentialSession, email string) ([]*model.PaymentHistoryItem, error) {
	var items []*model.PaymentHistoryItem
	path := "/payment/history?email=" + url.QueryEscape(email)
	if err := c.do(ctx, sess, http.MethodGet, path, nil, &items); err != nil {
		return nil, fmt.Errorf("backend payment history: %w", err)
	}
	return items, nil
}

func (c *portalClientImpl) RefundPayment(ctx context.Context, sess CredentialSession, paymentIntentID string) (*RefundResult, error) {
	var result RefundResult
	err := c.do(ctx, sess, http.MethodPost, "/payment/refund", map[string]string{
		"paymentIntentId": paymentIntentID,
	}, &result)
	if err != nil {
		return nil, fmt.Errorf("backend refund: %w", err)
	}
	return &result, nil
}
