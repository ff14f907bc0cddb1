package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/example/farm-market/domain/market"
	"github.com/example/farm-market/modules/catalog"
	marketmod "github.com/example/farm-market/modules/market"
	"github.com/example/farm-market/modules/navigation"
	"github.com/example/farm-market/modules/notification"
	"github.com/example/farm-market/modules/storage"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockMarketPort struct {
	sessions map[string]*navigation.Snapshot
	applied  []navigation.Intent
	applyErr error
	failOn   navigation.IntentType
}

func newMockMarketPort() *mockMarketPort {
	return &mockMarketPort{
		sessions: map[string]*navigation.Snapshot{
			"s1": {SessionID: "s1", View: navigation.ViewLoginChoice},
		},
	}
}

func (m *mockMarketPort) CreateSession(_ context.Context) (*marketmod.CreateSessionResponse, error) {
	return &marketmod.CreateSessionResponse{
		Token:     "token-s1",
		ExpiresIn: 86400,
		Session:   *m.sessions["s1"],
	}, nil
}

func (m *mockMarketPort) ValidateToken(_ context.Context, token string) (string, error) {
	switch token {
	case "token-s1":
		return "s1", nil
	case "token-gone":
		return "", &marketmod.RejectionError{Code: marketmod.CodeSessionNotFound, Message: "session not found"}
	default:
		return "", &marketmod.RejectionError{Code: marketmod.CodeInvalidToken, Message: "invalid token"}
	}
}

func (m *mockMarketPort) GetSession(_ context.Context, sessionID string) (*navigation.Snapshot, error) {
	snap, ok := m.sessions[sessionID]
	if !ok {
		return nil, &marketmod.RejectionError{Code: marketmod.CodeSessionNotFound, Message: "session not found"}
	}
	return snap, nil
}

func (m *mockMarketPort) ApplyIntent(_ context.Context, sessionID string, intent navigation.Intent) (*navigation.Snapshot, error) {
	if m.applyErr != nil && (m.failOn == "" || m.failOn == intent.Type) {
		return nil, m.applyErr
	}
	m.applied = append(m.applied, intent)
	snap := m.sessions[sessionID]
	switch intent.Type {
	case navigation.IntentBack:
		snap.View = navigation.ViewLoginChoice
		snap.Role = market.RoleNone
	case navigation.IntentChooseRole:
		snap.View = navigation.ViewLoginForm
		snap.Role = intent.Role
	case navigation.IntentOpenSignup:
		snap.View = navigation.ViewSignupForm
	case navigation.IntentSubmitLogin:
		snap.View = navigation.ViewDashboard
		snap.Page = navigation.PageOverview
	case navigation.IntentSubmitSignup:
		snap.View = navigation.ViewLoginForm
		snap.Role = intent.Role
	}
	return snap, nil
}

func (m *mockMarketPort) ListProducts(_ context.Context, farmerID string) (*marketmod.ListProductsResponse, error) {
	products := []catalog.ProductView{{Product: market.Product{ID: "p1", Name: "Organic Tomatoes", FarmerID: "f1"}}}
	if farmerID != "" && farmerID != "f1" {
		products = nil
	}
	return &marketmod.ListProductsResponse{Products: products, Total: len(products)}, nil
}

type mockNotificationPort struct {
	limit int
}

func (m *mockNotificationPort) List(_ context.Context, limit int) (*notification.ListResponse, error) {
	m.limit = limit
	return &notification.ListResponse{Notices: []notification.Notice{{ID: "n1", Type: "order_placed"}}, Total: 1}, nil
}

type mockSchemaPort struct {
	err error
}

func (m *mockSchemaPort) SchemaInfo(_ context.Context) (*storage.SchemaInfoResponse, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &storage.SchemaInfoResponse{Driver: "sqlite", Tables: storage.Tables()}, nil
}

type blockingLimiter struct{}

func (blockingLimiter) Handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusTooManyRequests).JSON(ErrorResponse{Error: "rate_limited"})
	}
}

type testServer struct {
	app           *fiber.App
	market        *mockMarketPort
	notifications *mockNotificationPort
	schema        *mockSchemaPort
}

func newTestServer(limiter RateLimiter) *testServer {
	ts := &testServer{
		market:        newMockMarketPort(),
		notifications: &mockNotificationPort{},
		schema:        &mockSchemaPort{},
	}
	m := NewModule("")
	m.market = ts.market
	m.notifications = ts.notifications
	m.schema = ts.schema
	if limiter != nil {
		m.SetRateLimiter(limiter)
	}
	ts.app = m.newApp()
	return ts
}

func (ts *testServer) do(t *testing.T, method, path, token, body string) (*http.Response, string) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := ts.app.Test(req, -1)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	_ = resp.Body.Close()
	return resp, string(raw)
}

func TestSessionMiddleware(t *testing.T) {
	tests := []struct {
		name           string
		authHeader     string
		expectedStatus int
		expectedBody   string
	}{
		{name: "missing header", expectedStatus: http.StatusUnauthorized, expectedBody: "Authorization header is required"},
		{name: "not bearer", authHeader: "Basic abc", expectedStatus: http.StatusUnauthorized, expectedBody: "Invalid authorization header format"},
		{name: "invalid token", authHeader: "Bearer nope", expectedStatus: http.StatusUnauthorized, expectedBody: "Invalid or expired token"},
		{name: "ended session", authHeader: "Bearer token-gone", expectedStatus: http.StatusUnauthorized, expectedBody: "Session has ended"},
		{name: "valid token", authHeader: "Bearer token-s1", expectedStatus: http.StatusOK, expectedBody: `"s1"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Use(SessionMiddleware(newMockMarketPort()))
			app.Get("/test", func(c *fiber.Ctx) error {
				return c.JSON(fiber.Map{"session": c.Locals(SessionContextKey)})
			})

			req := httptest.NewRequest("GET", "/test", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
			body, _ := io.ReadAll(resp.Body)
			assert.Contains(t, string(body), tt.expectedBody)
		})
	}
}

func TestCreateSession(t *testing.T) {
	ts := newTestServer(nil)

	resp, body := ts.do(t, "POST", "/api/v1/sessions", "", "")
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var got SessionTokenResponse
	require.NoError(t, json.Unmarshal([]byte(body), &got))
	assert.Equal(t, "token-s1", got.Token)
	assert.Equal(t, "Bearer", got.TokenType)
	assert.Equal(t, navigation.ViewLoginChoice, got.Session.View)
}

func TestGetSession_RequiresToken(t *testing.T) {
	ts := newTestServer(nil)

	resp, _ := ts.do(t, "GET", "/api/v1/session", "", "")
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp, body := ts.do(t, "GET", "/api/v1/session", "token-s1", "")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `"view":"login_choice"`)
}

func TestApplyIntent(t *testing.T) {
	ts := newTestServer(nil)

	resp, body := ts.do(t, "POST", "/api/v1/session/intents", "token-s1", `{"type":"choose_role","role":"farmer"}`)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `"view":"login_form"`)
	require.Len(t, ts.market.applied, 1)
	assert.Equal(t, market.RoleFarmer, ts.market.applied[0].Role)

	resp, _ = ts.do(t, "POST", "/api/v1/session/intents", "token-s1", `{"role":"farmer"}`)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, _ = ts.do(t, "POST", "/api/v1/session/intents", "token-s1", `{not json`)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestApplyIntent_RejectionStatuses(t *testing.T) {
	tests := []struct {
		code   string
		status int
	}{
		{marketmod.CodeValidationFailed, fiber.StatusUnprocessableEntity},
		{marketmod.CodeInvalidNumber, fiber.StatusUnprocessableEntity},
		{marketmod.CodeInvalidTransition, fiber.StatusConflict},
		{marketmod.CodeNotFound, fiber.StatusNotFound},
		{marketmod.CodeBadRequest, fiber.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			ts := newTestServer(nil)
			ts.market.applyErr = &marketmod.RejectionError{Code: tt.code, Message: "Please fill in all fields"}

			resp, body := ts.do(t, "POST", "/api/v1/session/intents", "token-s1", `{"type":"submit_signup"}`)
			assert.Equal(t, tt.status, resp.StatusCode)

			var got ErrorResponse
			require.NoError(t, json.Unmarshal([]byte(body), &got))
			assert.Equal(t, tt.code, got.Error)
			assert.Equal(t, "Please fill in all fields", got.Message)
		})
	}

	ts := newTestServer(nil)
	ts.market.applyErr = errors.New("nats: timeout")
	resp, body := ts.do(t, "POST", "/api/v1/session/intents", "token-s1", `{"type":"logout"}`)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	assert.NotContains(t, body, "nats")
}

func TestLogin_ChoosesRoleFirst(t *testing.T) {
	ts := newTestServer(nil)

	resp, body := ts.do(t, "POST", "/api/v1/session/login", "token-s1", `{"role":"customer","username":"demo","password":"x"}`)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `"view":"dashboard"`)

	require.Len(t, ts.market.applied, 2)
	assert.Equal(t, navigation.IntentChooseRole, ts.market.applied[0].Type)
	assert.Equal(t, market.RoleCustomer, ts.market.applied[0].Role)
	assert.Equal(t, navigation.IntentSubmitLogin, ts.market.applied[1].Type)
	assert.Equal(t, "demo", ts.market.applied[1].Login.Username)
}

func TestLogin_FailureRestoresLoginChoice(t *testing.T) {
	ts := newTestServer(nil)
	ts.market.failOn = navigation.IntentSubmitLogin
	ts.market.applyErr = errors.New("nats: timeout")

	resp, _ := ts.do(t, "POST", "/api/v1/session/login", "token-s1", `{"role":"farmer","password":"x"}`)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)

	require.Len(t, ts.market.applied, 2)
	assert.Equal(t, navigation.IntentChooseRole, ts.market.applied[0].Type)
	assert.Equal(t, navigation.IntentBack, ts.market.applied[1].Type)
	assert.Equal(t, navigation.ViewLoginChoice, ts.market.sessions["s1"].View)
}

func TestSignup_OpensFormFirst(t *testing.T) {
	ts := newTestServer(nil)

	payload := `{"role":"farmer","full_name":"Ama","username":"ama","email":"a@b.c","phone":"1","farm_name":"Sunrise","farm_location":"Kumasi","password":"p","confirm_password":"p"}`
	resp, _ := ts.do(t, "POST", "/api/v1/session/signup", "token-s1", payload)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	require.Len(t, ts.market.applied, 2)
	assert.Equal(t, navigation.IntentOpenSignup, ts.market.applied[0].Type)
	signup := ts.market.applied[1]
	assert.Equal(t, navigation.IntentSubmitSignup, signup.Type)
	assert.Equal(t, market.RoleFarmer, signup.Role)
	assert.Equal(t, "Sunrise", signup.Signup.FarmName)
}

func TestAuthRoutes_RateLimited(t *testing.T) {
	ts := newTestServer(blockingLimiter{})

	resp, _ := ts.do(t, "POST", "/api/v1/session/login", "token-s1", `{"role":"customer"}`)
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
	resp, _ = ts.do(t, "POST", "/api/v1/session/signup", "token-s1", `{}`)
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
	assert.Empty(t, ts.market.applied)

	resp, _ = ts.do(t, "POST", "/api/v1/sessions", "", "")
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)

	resp, _ = ts.do(t, "POST", "/api/v1/session/intents", "token-s1", `{"type":"open_signup"}`)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestPublicRoutes(t *testing.T) {
	ts := newTestServer(nil)

	resp, body := ts.do(t, "GET", "/api/v1/products", "", "")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Organic Tomatoes")

	_, body = ts.do(t, "GET", "/api/v1/products?farmer_id=other", "", "")
	assert.Contains(t, body, `"total":0`)

	resp, body = ts.do(t, "GET", "/api/v1/notifications?limit=5", "", "")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "order_placed")
	assert.Equal(t, 5, ts.notifications.limit)

	resp, body = ts.do(t, "GET", "/api/v1/schema", "", "")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `"Orders"`)

	resp, body = ts.do(t, "GET", "/health", "", "")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "healthy")
}

func TestStart_RequiresDependencies(t *testing.T) {
	m := NewModule(":0")
	assert.Error(t, m.Start(context.Background()))
	assert.False(t, m.Health(context.Background()).Healthy)
	assert.NoError(t, m.Stop(context.Background()))
}
