// Package market is the application core: it owns the catalog and the UI
// sessions and exposes them as request-reply services.
package market

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"log"
	"sync"
	"time"

	"github.com/example/farm-market/events"
	"github.com/example/farm-market/modules/account"
	"github.com/example/farm-market/modules/catalog"
	"github.com/example/farm-market/modules/navigation"
	"github.com/example/farm-market/modules/orders"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// Config configures the market module.
type Config struct {
	// SeedFile replaces the built-in demo data when set.
	SeedFile   string
	Flags      navigation.Flags
	Token      account.TokenConfig
	BcryptCost int
	// Images is checked for product images; nil skips the check.
	Images fs.FS
}

// MarketModule provides the session and catalog services.
type MarketModule struct {
	config   Config
	hasher   *account.PasswordHasher
	tokens   *account.TokenManager
	catalog  *catalog.Catalog
	manager  *navigation.Manager
	eventBus mono.EventBus

	sweepEvery time.Duration
	stopChan   chan struct{}
	doneChan   chan struct{}
	stopOnce   sync.Once
}

var _ mono.Module = (*MarketModule)(nil)
var _ mono.ServiceProviderModule = (*MarketModule)(nil)
var _ mono.EventEmitterModule = (*MarketModule)(nil)
var _ mono.HealthCheckableModule = (*MarketModule)(nil)

// NewModule creates a new MarketModule.
func NewModule(config Config) *MarketModule {
	if config.Token.SecretKey == "" {
		config.Token = account.DefaultTokenConfig()
	}
	if config.BcryptCost == 0 {
		config.BcryptCost = account.DefaultBcryptCost
	}
	return &MarketModule{
		config:  config,
		hasher:  account.NewPasswordHasherWithCost(config.BcryptCost),
		tokens:  account.NewTokenManager(config.Token),
		catalog: catalog.New(config.Images),

		sweepEvery: 5 * time.Minute,
	}
}

func (m *MarketModule) Name() string {
	return "market"
}

func (m *MarketModule) SetEventBus(bus mono.EventBus) {
	m.eventBus = bus
}

func (m *MarketModule) EmitEvents() []mono.BaseEventDefinition {
	return []mono.BaseEventDefinition{
		events.ProductAddedV1.ToBase(),
		events.OrderPlacedV1.ToBase(),
		events.MessageSentV1.ToBase(),
	}
}

func (m *MarketModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, "create-session", json.Unmarshal, json.Marshal, m.createSession,
	); err != nil {
		return fmt.Errorf("failed to register create-session service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "validate-token", json.Unmarshal, json.Marshal, m.validateToken,
	); err != nil {
		return fmt.Errorf("failed to register validate-token service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "get-session", json.Unmarshal, json.Marshal, m.getSession,
	); err != nil {
		return fmt.Errorf("failed to register get-session service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "apply-intent", json.Unmarshal, json.Marshal, m.applyIntent,
	); err != nil {
		return fmt.Errorf("failed to register apply-intent service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "list-products", json.Unmarshal, json.Marshal, m.listProducts,
	); err != nil {
		return fmt.Errorf("failed to register list-products service: %w", err)
	}

	log.Printf("[market] Registered services: create-session, validate-token, get-session, apply-intent, list-products")
	return nil
}

// Start seeds the catalog and prepares the session manager.
func (m *MarketModule) Start(_ context.Context) error {
	seed := catalog.DefaultSeed()
	if m.config.SeedFile != "" {
		loaded, err := catalog.LoadSeedFile(m.config.SeedFile)
		if err != nil {
			return err
		}
		seed = loaded
		log.Printf("[market] Loaded seed data from %s", m.config.SeedFile)
	}

	hash, err := m.hasher.Hash(seed.Farmer.Password)
	if err != nil {
		return fmt.Errorf("failed to hash seed password: %w", err)
	}
	seed.Farmer.Password = hash

	if err := m.catalog.Seed(seed); err != nil {
		return fmt.Errorf("failed to seed catalog: %w", err)
	}

	numberer, err := orders.NewNumberer()
	if err != nil {
		return err
	}
	reducer := navigation.NewReducer(m.catalog, account.NewValidator(m.hasher), numberer)
	m.manager = navigation.NewManager(reducer, m.config.Flags, m.config.Token.Duration)

	m.stopChan = make(chan struct{})
	m.doneChan = make(chan struct{})
	go m.sweepSessions()

	if m.eventBus == nil {
		log.Println("[market] Warning: eventBus not set, events will not be published")
	}
	log.Printf("[market] Module started with %d products", len(m.catalog.Products()))
	return nil
}

// sweepSessions drops expired sessions until Stop is called.
func (m *MarketModule) sweepSessions() {
	ticker := time.NewTicker(m.sweepEvery)
	defer ticker.Stop()
	defer close(m.doneChan)

	for {
		select {
		case <-m.stopChan:
			return
		case <-ticker.C:
			if removed := m.manager.Sweep(); removed > 0 {
				log.Printf("[market] Dropped %d expired session(s)", removed)
			}
		}
	}
}

func (m *MarketModule) Stop(ctx context.Context) error {
	if m.stopChan != nil {
		m.stopOnce.Do(func() {
			close(m.stopChan)
		})

		select {
		case <-m.doneChan:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	log.Println("[market] Module stopped")
	return nil
}

func (m *MarketModule) Health(_ context.Context) mono.HealthStatus {
	if m.manager == nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: "not started",
		}
	}
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"sessions": m.manager.Count(),
			"products": len(m.catalog.Products()),
		},
	}
}
