package warehouse

import "fmt"

// Dialect decides how row limits are written in generated and fixed SQL.
type Dialect string

const (
	DialectSQLServer Dialect = "SQL Server"
	DialectPostgres  Dialect = "PostgreSQL"
	DialectDuckDB    Dialect = "DuckDB"
	DialectSQLite    Dialect = "SQLite"
)

// DialectForDriver maps a database/sql driver name to its dialect.
func DialectForDriver(driver string) Dialect {
	switch driver {
	case "pgx", "postgres":
		return DialectPostgres
	case "duckdb":
		return DialectDuckDB
	case "sqlite3":
		return DialectSQLite
	default:
		return DialectSQLServer
	}
}

// UsesTop reports whether the dialect limits rows with SELECT TOP n.
func (d Dialect) UsesTop() bool {
	return d == DialectSQLServer
}

// LimitHint is the row-limit instruction given to the model.
func (d Dialect) LimitHint(n int) string {
	if d.UsesTop() {
		return fmt.Sprintf("Use TOP %d to limit results", n)
	}
	return fmt.Sprintf("Use LIMIT %d to limit results", n)
}

// selectLimited renders "SELECT [TOP n] <body> [LIMIT n]".
func (d Dialect) selectLimited(n int, body string) string {
	if d.UsesTop() {
		return fmt.Sprintf("SELECT TOP %d %s", n, body)
	}
	return fmt.Sprintf("SELECT %s\n        LIMIT %d", body, n)
}
