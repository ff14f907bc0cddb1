// Package storage creates the relational schema at startup. It only issues
// DDL; entities are never written row by row.
package storage

import (
	"context"
	"fmt"
	"strings"
)

// Execer runs a single SQL statement.
type Execer interface {
	Exec(ctx context.Context, statement string) error
}

// Dialect selects the column types used when rendering DDL.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// column kinds rendered per dialect
const (
	kindID        = "id"
	kindRef       = "ref"
	kindText      = "text"
	kindInt       = "int"
	kindDouble    = "double"
	kindTimestamp = "timestamp"
)

type column struct {
	name string
	kind string
	size int
}

type foreignKey struct {
	column string
	table  string
}

type table struct {
	name    string
	columns []column
	refs    []foreignKey
}

// schema lists tables in creation order; referenced tables come first.
var schema = []table{
	{
		name: "Farmer",
		columns: []column{
			{name: "id", kind: kindID},
			{name: "name", kind: kindText, size: 255},
			{name: "username", kind: kindText, size: 255},
			{name: "email", kind: kindText, size: 255},
			{name: "phone", kind: kindText, size: 50},
			{name: "farmName", kind: kindText, size: 255},
			{name: "farmLocation", kind: kindText, size: 255},
			{name: "password", kind: kindText, size: 255},
		},
	},
	{
		name: "Customer",
		columns: []column{
			{name: "id", kind: kindID},
			{name: "name", kind: kindText, size: 255},
			{name: "username", kind: kindText, size: 255},
			{name: "email", kind: kindText, size: 255},
			{name: "phone", kind: kindText, size: 50},
			{name: "address", kind: kindText, size: 255},
			{name: "password", kind: kindText, size: 255},
		},
	},
	{
		name: "Product",
		columns: []column{
			{name: "id", kind: kindID},
			{name: "name", kind: kindText, size: 255},
			{name: "price", kind: kindDouble},
			{name: "description", kind: kindText, size: 1024},
			{name: "unit", kind: kindText, size: 50},
			{name: "quantity", kind: kindInt},
			{name: "farmerId", kind: kindRef},
			{name: "imagePath", kind: kindText, size: 255},
		},
		refs: []foreignKey{{column: "farmerId", table: "Farmer"}},
	},
	{
		name: "Orders",
		columns: []column{
			{name: "id", kind: kindID},
			{name: "customerId", kind: kindRef},
			{name: "productId", kind: kindRef},
			{name: "quantity", kind: kindInt},
			{name: "orderDate", kind: kindTimestamp},
			{name: "status", kind: kindText, size: 50},
		},
		refs: []foreignKey{
			{column: "customerId", table: "Customer"},
			{column: "productId", table: "Product"},
		},
	},
}

// Tables returns the table names in creation order.
func Tables() []string {
	names := make([]string, len(schema))
	for i, t := range schema {
		names[i] = t.name
	}
	return names
}

// ParseDialect maps a driver name to its Dialect.
func ParseDialect(driver string) (Dialect, error) {
	switch strings.ToLower(driver) {
	case "", "sqlite", "sqlite3":
		return DialectSQLite, nil
	case "postgres", "postgresql", "pgx":
		return DialectPostgres, nil
	default:
		return "", fmt.Errorf("unsupported database driver %q", driver)
	}
}

func (d Dialect) columnType(c column) string {
	switch c.kind {
	case kindID:
		if d == DialectPostgres {
			return "BIGSERIAL PRIMARY KEY"
		}
		return "INTEGER PRIMARY KEY AUTOINCREMENT"
	case kindRef:
		return "BIGINT"
	case kindInt:
		return "INT"
	case kindDouble:
		if d == DialectPostgres {
			return "DOUBLE PRECISION"
		}
		return "DOUBLE"
	case kindTimestamp:
		return "TIMESTAMP"
	default:
		return fmt.Sprintf("VARCHAR(%d)", c.size)
	}
}

// Statements renders the CREATE TABLE statements for d in creation order.
func Statements(d Dialect) []string {
	statements := make([]string, 0, len(schema))
	for _, t := range schema {
		defs := make([]string, 0, len(t.columns)+len(t.refs))
		for _, c := range t.columns {
			defs = append(defs, c.name+" "+d.columnType(c))
		}
		for _, fk := range t.refs {
			defs = append(defs, fmt.Sprintf("FOREIGN KEY (%s) REFERENCES %s(id)", fk.column, fk.table))
		}
		statements = append(statements, fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", t.name, strings.Join(defs, ", ")))
	}
	return statements
}

// CreateSchema issues every CREATE TABLE statement for d through exec and
// stops at the first failure.
func CreateSchema(ctx context.Context, exec Execer, d Dialect) error {
	for i, stmt := range Statements(d) {
		if err := exec.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create table %s: %w", schema[i].name, err)
		}
	}
	return nil
}
