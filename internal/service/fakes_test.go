package service_test

import (
	"context"
	"fmt"

	"worksphere-portal/internal/client"
	"worksphere-portal/internal/dto"
	"worksphere-portal/internal/model"
)

// fakeSession satisfies the credential-session surface the services
// need, without cookies or a database behind it.
type fakeSession struct {
	creds   model.Credentials
	cleared bool
	saved   []model.Credentials
}

func (f *fakeSession) Credentials() model.Credentials { return f.creds }

func (f *fakeSession) Clear(ctx context.Context) error {
	f.creds = model.Credentials{}
	f.cleared = true
	return nil
}

func (f *fakeSession) Save(ctx context.Context, creds model.Credentials) error {
	f.creds = creds
	f.saved = append(f.saved, creds)
	return nil
}

// fakePortalClient counts calls and answers from canned responses.
type fakePortalClient struct {
	createIntentCalls  int
	confirmCalls       int
	subscriptionCalls  int
	refundCalls        int
	historyCalls       int
	loginCalls         int
	logoutCalls        int

	nextSecret    func() string
	confirmResult *client.ConfirmPaymentResult
	confirmErr    error
	historyItems  []*model.PaymentHistoryItem
	historyErr    error
	refundResult  *client.RefundResult
	refundErr     error
	loginResult   *client.LoginResult
	loginErr      error
	logoutErr     error
}

func (f *fakePortalClient) Signup(ctx context.Context, sess client.CredentialSession, req *dto.SignupRequest) error {
	return nil
}

func (f *fakePortalClient) Login(ctx context.Context, sess client.CredentialSession, email, password string) (*client.LoginResult, error) {
	f.loginCalls++
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	if f.loginResult != nil {
		return f.loginResult, nil
	}
	return &client.LoginResult{AccessToken: "at", RefreshToken: "rt"}, nil
}

func (f *fakePortalClient) Logout(ctx context.Context, sess client.CredentialSession) error {
	f.logoutCalls++
	return f.logoutErr
}

func (f *fakePortalClient) RefreshToken(ctx context.Context, sess client.CredentialSession, refreshToken string) (*client.LoginResult, error) {
	return &client.LoginResult{AccessToken: "at2", RefreshToken: "rt2"}, nil
}

func (f *fakePortalClient) ForgotPassword(ctx context.Context, sess client.CredentialSession, email string) error {
	return nil
}

func (f *fakePortalClient) ResetPassword(ctx context.Context, sess client.CredentialSession, token, newPassword string) error {
	return nil
}

func (f *fakePortalClient) CreatePaymentIntent(ctx context.Context, sess client.CredentialSession, amount int64) (*client.CreatePaymentIntentResult, error) {
	f.createIntentCalls++
	return &client.CreatePaymentIntentResult{ClientSecret: f.secret()}, nil
}

func (f *fakePortalClient) ConfirmPayment(ctx context.Context, sess client.CredentialSession, paymentIntentID, paymentMethodID string) (*client.ConfirmPaymentResult, error) {
	f.confirmCalls++
	if f.confirmErr != nil {
		return nil, f.confirmErr
	}
	if f.confirmResult != nil {
		return f.confirmResult, nil
	}
	return &client.ConfirmPaymentResult{Status: model.StatusSucceeded, ID: "pi_test_1"}, nil
}

func (f *fakePortalClient) CreateSubscription(ctx context.Context, sess client.CredentialSession, amount int64, userEmail string) (*client.CreateSubscriptionResult, error) {
	f.subscriptionCalls++
	return &client.CreateSubscriptionResult{
		SubscriptionID: "sub_abc",
		ClientSecret:   f.secret(),
	}, nil
}

func (f *fakePortalClient) GetPaymentHistory(ctx context.Context, sess client.CredentialSession, email string) ([]*model.PaymentHistoryItem, error) {
	f.historyCalls++
	if f.historyErr != nil {
		return nil, f.historyErr
	}
	return f.historyItems, nil
}

func (f *fakePortalClient) RefundPayment(ctx context.Context, sess client.CredentialSession, paymentIntentID string) (*client.RefundResult, error) {
	f.refundCalls++
	if f.refundErr != nil {
		return nil, f.refundErr
	}
	if f.refundResult != nil {
		return f.refundResult, nil
	}
	return &client.RefundResult{Status: "refunded"}, nil
}

func (f *fakePortalClient) secret() string {
	if f.nextSecret != nil {
		return f.nextSecret()
	}
	return fmt.Sprintf("pi_test_%d_secret_xyz", f.createIntentCalls+f.subscriptionCalls)
}

// fakeCollector echoes back a token, or an error when primed with one.
type fakeCollector struct {
	calls int
	token string
	err   error
}

func (f *fakeCollector) CollectPaymentMethod(ctx context.Context, session *model.PaymentIntentSession, instrumentRef string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	if f.token != "" {
		return f.token, nil
	}
	return instrumentRef, nil
}
