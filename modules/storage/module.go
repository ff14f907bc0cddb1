package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/example/farm-market/domain/market"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/jackc/pgx/v5/pgxpool"
	"gorm.io/gorm"
)

// Config selects and locates the database.
type Config struct {
	Driver string
	Path   string
	URL    string
	Debug  bool
}

// StorageModule connects to the database and creates the schema on start.
// Any failure aborts startup.
type StorageModule struct {
	config  Config
	dialect Dialect
	db      *gorm.DB
	pool    *pgxpool.Pool
	tables  []string
}

var (
	_ mono.Module                = (*StorageModule)(nil)
	_ mono.ServiceProviderModule = (*StorageModule)(nil)
	_ mono.HealthCheckableModule = (*StorageModule)(nil)
)

// NewModule creates a new StorageModule.
func NewModule(config Config) *StorageModule {
	if config.Path == "" {
		config.Path = "farm_market.db"
	}
	return &StorageModule{config: config}
}

func (m *StorageModule) Name() string {
	return "storage"
}

// RegisterServices registers the schema-info service.
func (m *StorageModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, "schema-info", json.Unmarshal, json.Marshal, m.handleSchemaInfo,
	); err != nil {
		return fmt.Errorf("failed to register schema-info service: %w", err)
	}

	log.Printf("[storage] Registered services: services.storage.schema-info")
	return nil
}

func (m *StorageModule) handleSchemaInfo(_ context.Context, _ SchemaInfoRequest, _ *mono.Msg) (SchemaInfoResponse, error) {
	return SchemaInfoResponse{
		Driver: string(m.dialect),
		Tables: append([]string(nil), m.tables...),
	}, nil
}

// Start connects and creates the four tables.
func (m *StorageModule) Start(ctx context.Context) error {
	dialect, err := ParseDialect(m.config.Driver)
	if err != nil {
		return err
	}
	m.dialect = dialect

	var exec Execer
	switch dialect {
	case DialectPostgres:
		log.Printf("[storage] Connecting to PostgreSQL...")
		pool, err := OpenPostgres(ctx, m.config.URL)
		if err != nil {
			return &market.DatabaseConnectionError{Driver: string(dialect), Err: err}
		}
		m.pool = pool
		exec = NewPoolExecer(pool)
	default:
		log.Printf("[storage] Connecting to SQLite database: %s", m.config.Path)
		db, err := OpenSQLite(m.config.Path, m.config.Debug)
		if err != nil {
			return &market.DatabaseConnectionError{Driver: string(dialect), Err: err}
		}
		m.db = db
		exec = NewGormExecer(db)
	}

	if err := CreateSchema(ctx, exec, dialect); err != nil {
		return &market.DatabaseConnectionError{Driver: string(dialect), Err: err}
	}
	m.tables = Tables()
	if m.db != nil {
		if m.tables, err = sqliteTables(ctx, m.db); err != nil {
			return &market.DatabaseConnectionError{Driver: string(dialect), Err: err}
		}
	}

	log.Printf("[storage] Schema ready: %v", m.tables)
	return nil
}

// Stop closes the connection.
func (m *StorageModule) Stop(_ context.Context) error {
	if m.pool != nil {
		log.Println("[storage] Closing database connection pool...")
		m.pool.Close()
	}
	if m.db != nil {
		log.Println("[storage] Closing database connection...")
		sqlDB, err := m.db.DB()
		if err != nil {
			return fmt.Errorf("failed to get sql.DB: %w", err)
		}
		if err := sqlDB.Close(); err != nil {
			return fmt.Errorf("failed to close database: %w", err)
		}
	}
	log.Println("[storage] Module stopped")
	return nil
}

func (m *StorageModule) Health(ctx context.Context) mono.HealthStatus {
	var err error
	switch {
	case m.pool != nil:
		err = m.pool.Ping(ctx)
	case m.db != nil:
		sqlDB, dbErr := m.db.DB()
		if dbErr != nil {
			err = dbErr
		} else {
			err = sqlDB.PingContext(ctx)
		}
	default:
		return mono.HealthStatus{
			Healthy: false,
			Message: "database not initialized",
		}
	}

	if err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("database ping failed: %v", err),
		}
	}

	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"driver": string(m.dialect),
			"tables": len(m.tables),
		},
	}
}
