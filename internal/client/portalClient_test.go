package client_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"worksphere-portal/internal/apperr"
	"worksphere-portal/internal/client"
	"worksphere-portal/internal/config"
	"worksphere-portal/internal/model"

	"github.com/stretchr/testify/require"
)

type stubSession struct {
	creds   model.Credentials
	cleared bool
}

func (s *stubSession) Credentials() model.Credentials { return s.creds }

func (s *stubSession) Clear(ctx context.Context) error {
	s.creds = model.Credentials{}
	s.cleared = true
	return nil
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (client.PortalClient, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return client.NewPortalClient(&config.Backend{
		BaseApiURL:     srv.URL,
		TimeoutSeconds: 5,
	}), srv
}

func TestCreatePaymentIntent_AttachesBearerToken(t *testing.T) {
	var gotAuth string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/stripe/create-payment-intent", r.URL.Path)

		var body map[string]int64
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, int64(1200), body["amount"])

		_ = json.NewEncoder(w).Encode(map[string]string{"clientSecret": "pi_test_1_secret_xyz"})
	})

	sess := &stubSession{creds: model.Credentials{AccessToken: "token-123"}}
	result, err := c.CreatePaymentIntent(context.Background(), sess, 1200)
	require.NoError(t, err)
	require.Equal(t, "pi_test_1_secret_xyz", result.ClientSecret)
	require.Equal(t, "Bearer token-123", gotAuth)
}

func TestRequest_NoBearerWhenAnonymous(t *testing.T) {
	var gotAuth string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode(map[string]string{
			"accessToken":  "at",
			"refreshToken": "rt",
		})
	})

	sess := &stubSession{}
	_, err := c.Login(context.Background(), sess, "john.doe@example.com", "password123")
	require.NoError(t, err)
	require.Empty(t, gotAuth)
}

func TestRequest_401ClearsCredentialsOnAnyEndpoint(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	sess := &stubSession{creds: model.Credentials{
		AccessToken:  "stale",
		RefreshToken: "stale-r",
		UserEmail:    "john.doe@example.com",
	}}

	_, err := c.GetPaymentHistory(context.Background(), sess, "john.doe@example.com")
	require.ErrorIs(t, err, apperr.ErrUnauthorized)
	require.True(t, sess.cleared)
	require.True(t, sess.Credentials().Empty())
}

func TestRequest_NetworkFailureIsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // nothing listening anymore

	c := client.NewPortalClient(&config.Backend{BaseApiURL: srv.URL, TimeoutSeconds: 1})
	sess := &stubSession{}

	_, err := c.CreatePaymentIntent(context.Background(), sess, 1200)
	require.ErrorIs(t, err, apperr.ErrNetwork)
	require.False(t, sess.cleared)
}

func TestConfirmPayment_DecodesStatusAndID(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/stripe/confirm-payment", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "pi_test_1", body["paymentIntentId"])
		require.Equal(t, "pm_test_1", body["paymentMethodId"])

		_ = json.NewEncoder(w).Encode(map[string]string{"status": "succeeded", "id": "pi_test_1"})
	})

	sess := &stubSession{creds: model.Credentials{AccessToken: "t"}}
	result, err := c.ConfirmPayment(context.Background(), sess, "pi_test_1", "pm_test_1")
	require.NoError(t, err)
	require.Equal(t, "succeeded", result.Status)
	require.Equal(t, "pi_test_1", result.ID)
}

func TestCreateSubscription_ReturnsSubscriptionAndSecret(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/payment/create-subscription", r.URL.Path)

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "john.doe@example.com", body["userEmail"])

		_ = json.NewEncoder(w).Encode(map[string]string{
			"subscriptionId": "sub_abc",
			"clientSecret":   "pi_sub_secret_xyz",
		})
	})

	sess := &stubSession{creds: model.Credentials{AccessToken: "t"}}
	result, err := c.CreateSubscription(context.Background(), sess, 5, "john.doe@example.com")
	require.NoError(t, err)
	require.Equal(t, "sub_abc", result.SubscriptionID)
	require.Equal(t, "pi_sub_secret_xyz", result.ClientSecret)
}

func TestGetPaymentHistory_ScopesByEmailQuery(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/payment/history", r.URL.Path)
		require.Equal(t, "john.doe@example.com", r.URL.Query().Get("email"))

		_ = json.NewEncoder(w).Encode([]map[string]interface{}{
			{"id": "pay_1", "amount": 1200, "currency": "inr", "status": "succeeded", "type": "one_time"},
			{"id": "pay_2", "amount": 5, "currency": "inr", "status": "pending", "type": "subscription", "subscriptionId": "sub_abc"},
		})
	})

	sess := &stubSession{creds: model.Credentials{AccessToken: "t"}}
	items, err := c.GetPaymentHistory(context.Background(), sess, "john.doe@example.com")
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, model.PaymentTypeSubscription, items[1].Type)
	require.Equal(t, "sub_abc", items[1].SubscriptionID)
}

func TestRefundPayment_PostsReference(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/payment/refund", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "sub_abc", body["paymentIntentId"])

		_ = json.NewEncoder(w).Encode(map[string]string{"status": "refunded"})
	})

	sess := &stubSession{creds: model.Credentials{AccessToken: "t"}}
	result, err := c.RefundPayment(context.Background(), sess, "sub_abc")
	require.NoError(t, err)
	require.Equal(t, "refunded", result.Status)
}

func TestCreatePaymentIntent_RejectsEmptySecret(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{})
	})

	sess := &stubSession{creds: model.Credentials{AccessToken: "t"}}
	_, err := c.CreatePaymentIntent(context.Background(), sess, 1200)
	require.Error(t, err)
}
