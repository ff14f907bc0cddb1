package market

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	domain "github.com/example/farm-market/domain/market"
	"github.com/example/farm-market/modules/account"
	"github.com/example/farm-market/modules/cart"
	"github.com/example/farm-market/modules/catalog"
	"github.com/example/farm-market/modules/messaging"
	"github.com/example/farm-market/modules/navigation"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func startedModule(t *testing.T, config Config) *MarketModule {
	t.Helper()
	config.BcryptCost = bcrypt.MinCost
	config.Flags = navigation.DefaultFlags()
	m := NewModule(config)
	require.NoError(t, m.Start(context.Background()))
	t.Cleanup(func() { _ = m.Stop(context.Background()) })
	return m
}

func apply(t *testing.T, m *MarketModule, sessionID string, in navigation.Intent) SessionResponse {
	t.Helper()
	resp, err := m.applyIntent(context.Background(), ApplyIntentRequest{SessionID: sessionID, Intent: in}, nil)
	require.NoError(t, err)
	return resp
}

func TestMarketModule_StartSeedsCatalog(t *testing.T) {
	m := startedModule(t, Config{})

	resp, err := m.listProducts(context.Background(), ListProductsRequest{}, nil)
	require.NoError(t, err)
	require.Equal(t, 1, resp.Total)
	assert.Equal(t, "Organic Tomatoes", resp.Products[0].Name)

	demo := m.catalog.DemoFarmer()
	require.NotNil(t, demo)
	assert.NotEqual(t, "password", demo.Password)
	assert.True(t, m.hasher.Verify("password", demo.Password))

	health := m.Health(context.Background())
	assert.True(t, health.Healthy)
	assert.Equal(t, 1, health.Details["products"])
}

func TestMarketModule_SeedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	seed := `farmer:
  full_name: Kofi Boateng
  username: kofi
  farm_name: Ridge Farm
  password: secret
products:
  - name: Yams
    price: "3.25"
    unit: tuber
    quantity: 40
  - name: Plantain
    price: "1.10"
    unit: bunch
    quantity: 25
`
	require.NoError(t, os.WriteFile(path, []byte(seed), 0o600))

	m := startedModule(t, Config{SeedFile: path})
	resp, err := m.listProducts(context.Background(), ListProductsRequest{FarmerID: m.catalog.DemoFarmer().ID}, nil)
	require.NoError(t, err)
	require.Equal(t, 2, resp.Total)
	assert.Equal(t, "Ridge Farm", resp.Products[0].FarmName)
	assert.Equal(t, "$3.25", resp.Products[0].DisplayPrice)
}

func TestMarketModule_MissingSeedFile(t *testing.T) {
	m := NewModule(Config{SeedFile: filepath.Join(t.TempDir(), "missing.yaml"), BcryptCost: bcrypt.MinCost})
	assert.Error(t, m.Start(context.Background()))
	assert.False(t, m.Health(context.Background()).Healthy)
}

func TestMarketModule_SessionTokens(t *testing.T) {
	m := startedModule(t, Config{})
	ctx := context.Background()

	created, err := m.createSession(ctx, CreateSessionRequest{}, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, created.Token)
	assert.Equal(t, int64(24*60*60), created.ExpiresIn)
	assert.Equal(t, navigation.ViewLoginChoice, created.Session.View)

	valid, err := m.validateToken(ctx, ValidateTokenRequest{Token: created.Token}, nil)
	require.NoError(t, err)
	assert.Nil(t, valid.Rejection)
	assert.Equal(t, created.Session.SessionID, valid.SessionID)

	invalid, err := m.validateToken(ctx, ValidateTokenRequest{Token: "not-a-token"}, nil)
	require.NoError(t, err)
	require.NotNil(t, invalid.Rejection)
	assert.Equal(t, CodeInvalidToken, invalid.Rejection.Code)

	other := account.NewTokenManager(account.DefaultTokenConfig())
	orphan, err := other.Issue("no-such-session")
	require.NoError(t, err)
	unknown, err := m.validateToken(ctx, ValidateTokenRequest{Token: orphan}, nil)
	require.NoError(t, err)
	require.NotNil(t, unknown.Rejection)
	assert.Equal(t, CodeSessionNotFound, unknown.Rejection.Code)
}

func TestMarketModule_CustomerCheckout(t *testing.T) {
	m := startedModule(t, Config{})
	ctx := context.Background()
	created, err := m.createSession(ctx, CreateSessionRequest{}, nil)
	require.NoError(t, err)
	id := created.Session.SessionID
	tomato := m.catalog.Products()[0].ID

	apply(t, m, id, navigation.ChooseRole(domain.RoleCustomer))
	apply(t, m, id, navigation.SubmitLogin(account.LoginForm{Username: "anyone"}))
	apply(t, m, id, navigation.AddToCart(tomato))
	resp := apply(t, m, id, navigation.Increment(0))
	require.NotNil(t, resp.Session)
	assert.Equal(t, "$15.97", resp.Session.Cart.Totals.Total)
	assert.Equal(t, cart.Badge{Count: 2, Visible: true}, resp.Session.Cart.Badge)

	rejected := apply(t, m, id, navigation.PlaceOrder(navigation.CheckoutForm{Address: "1 Market St", Phone: "555"}))
	require.NotNil(t, rejected.Rejection)
	assert.Equal(t, CodeInvalidTransition, rejected.Rejection.Code)

	apply(t, m, id, navigation.SelectPage(navigation.PageCart))
	resp = apply(t, m, id, navigation.PlaceOrder(navigation.CheckoutForm{Address: "1 Market St", Phone: "555"}))
	require.NotNil(t, resp.Session)
	require.NotNil(t, resp.Session.LastReceipt)
	assert.Equal(t, "$15.97", resp.Session.LastReceipt.Display.Total)
	assert.False(t, resp.Session.Cart.Badge.Visible)

	got, err := m.getSession(ctx, GetSessionRequest{SessionID: id}, nil)
	require.NoError(t, err)
	assert.Equal(t, resp.Session, got.Session)

	missing, err := m.getSession(ctx, GetSessionRequest{SessionID: "nope"}, nil)
	require.NoError(t, err)
	assert.Equal(t, CodeSessionNotFound, missing.Rejection.Code)
}

func TestMarketModule_FarmerAddsProduct(t *testing.T) {
	m := startedModule(t, Config{})
	created, err := m.createSession(context.Background(), CreateSessionRequest{}, nil)
	require.NoError(t, err)
	id := created.Session.SessionID

	apply(t, m, id, navigation.ChooseRole(domain.RoleFarmer))
	apply(t, m, id, navigation.SubmitLogin(account.LoginForm{FarmName: "Hilltop"}))

	resp := apply(t, m, id, navigation.AddProduct(catalog.ProductForm{Name: "Kale", Price: "two", Unit: "bunch", Quantity: "3"}))
	require.NotNil(t, resp.Rejection)
	assert.Equal(t, CodeInvalidNumber, resp.Rejection.Code)
	assert.Equal(t, domain.InvalidNumberMessage, resp.Rejection.Message)

	resp = apply(t, m, id, navigation.AddProduct(catalog.ProductForm{Name: "", Price: "2", Unit: "bunch", Quantity: "3"}))
	require.NotNil(t, resp.Rejection)
	assert.Equal(t, CodeValidationFailed, resp.Rejection.Code)
	assert.Equal(t, catalog.MsgNameAndUnitRequired, resp.Rejection.Message)

	resp = apply(t, m, id, navigation.AddProduct(catalog.ProductForm{Name: "Kale", Price: "2.00", Unit: "bunch", Quantity: "3"}))
	require.Nil(t, resp.Rejection)

	list, err := m.listProducts(context.Background(), ListProductsRequest{FarmerID: resp.Session.Farmer.ID}, nil)
	require.NoError(t, err)
	require.Equal(t, 1, list.Total)
	assert.Equal(t, "Hilltop", list.Products[0].FarmName)
}

func TestReject(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code string
	}{
		{"validation", domain.NewValidationError(domain.ReasonMissingField, account.MsgFillAllFields), CodeValidationFailed},
		{"number", &domain.NumberFormatError{Field: "price", Input: "x"}, CodeInvalidNumber},
		{"missing index", navigation.ErrMissingPayload, CodeBadRequest},
		{"transition", fmt.Errorf("%w: logout", navigation.ErrInvalidTransition), CodeInvalidTransition},
		{"unknown intent", navigation.ErrUnknownIntent, CodeBadRequest},
		{"session", navigation.ErrSessionNotFound, CodeSessionNotFound},
		{"expired token", account.ErrExpiredToken, CodeInvalidToken},
		{"product", catalog.ErrProductNotFound, CodeNotFound},
		{"cart item", cart.ErrItemNotFound, CodeNotFound},
		{"message", messaging.ErrMessageNotFound, CodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rejection, err := reject(tt.err)
			require.NoError(t, err)
			require.NotNil(t, rejection)
			assert.Equal(t, tt.code, rejection.Code)
		})
	}

	internal := errors.New("disk on fire")
	rejection, err := reject(internal)
	assert.Nil(t, rejection)
	assert.Same(t, internal, err)
}

func TestRejectionError(t *testing.T) {
	err := fmt.Errorf("call: %w", rejectionError(&Rejection{Code: CodeInvalidTransition, Message: "invalid transition"}))
	assert.True(t, IsRejection(err, CodeInvalidTransition))
	assert.False(t, IsRejection(err, CodeNotFound))
	assert.NoError(t, rejectionError(nil))
}

func TestEventBuilders(t *testing.T) {
	at := time.Date(2024, 3, 14, 9, 0, 0, 0, time.UTC)
	product := &domain.Product{ID: "p1", Name: "Kale", Price: decimal.RequireFromString("2.5"), Unit: "bunch", Quantity: 3, FarmerID: "f1", CreatedAt: at}

	event := productAddedEvent(product, "Hilltop")
	assert.Equal(t, "Hilltop", event.FarmName)
	assert.Equal(t, "f1", event.FarmerID)

	msg := messaging.Message{ID: "m1", From: "John Doe", To: "Hilltop", Body: "Tomatoes?", SentAt: at,
		Replies: []messaging.Reply{{From: "Demo Farmer", Body: "Yes!", SentAt: at.Add(time.Hour)}}}
	sent := messageSentEvent(msg, false)
	assert.Equal(t, "Tomatoes?", sent.Body)
	reply := messageSentEvent(msg, true)
	assert.True(t, reply.Reply)
	assert.Equal(t, "Yes!", reply.Body)
	assert.Equal(t, at.Add(time.Hour), reply.SentAt)
}

func TestMarketModule_SweepsExpiredSessions(t *testing.T) {
	m := NewModule(Config{
		BcryptCost: bcrypt.MinCost,
		Flags:      navigation.DefaultFlags(),
		Token:      account.TokenConfig{SecretKey: "test", Issuer: "test", Duration: 20 * time.Millisecond},
	})
	m.sweepEvery = 10 * time.Millisecond
	require.NoError(t, m.Start(context.Background()))

	created, err := m.createSession(context.Background(), CreateSessionRequest{}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, m.manager.Count())

	assert.Eventually(t, func() bool { return m.manager.Count() == 0 }, time.Second, 10*time.Millisecond)

	resp, err := m.getSession(context.Background(), GetSessionRequest{SessionID: created.Session.SessionID}, nil)
	require.NoError(t, err)
	require.NotNil(t, resp.Rejection)
	assert.Equal(t, CodeSessionNotFound, resp.Rejection.Code)

	require.NoError(t, m.Stop(context.Background()))
	require.NoError(t, m.Stop(context.Background()))
}
