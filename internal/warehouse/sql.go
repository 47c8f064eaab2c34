package warehouse

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
)

// SQL executes queries against a live warehouse. Every Execute call checks a
// dedicated connection out of the pool and returns it before exiting.
type SQL struct {
	db      *sql.DB
	dialect Dialect
}

func NewSQL(db *sql.DB, dialect Dialect) *SQL {
	return &SQL{db: db, dialect: dialect}
}

func (s *SQL) Dialect() Dialect {
	return s.dialect
}

func (s *SQL) Close() error {
	return s.db.Close()
}

func (s *SQL) Execute(ctx context.Context, query string) (*Table, error) {
	slog.Debug("Executing warehouse query", "query", query)

	conn, err := s.db.Conn(ctx)
	if err != nil {
		slog.Error("Warehouse connection failed", "error", err)
		return nil, &DatabaseError{Query: query, Err: err}
	}
	defer conn.Close()

	rows, err := conn.QueryContext(ctx, query)
	if err != nil {
		slog.Error("Warehouse query failed", "error", err)
		return nil, &DatabaseError{Query: query, Err: err}
	}
	defer rows.Close()

	table, err := scanTable(rows)
	if err != nil {
		slog.Error("Reading warehouse rows failed", "error", err)
		return nil, &DatabaseError{Query: query, Err: err}
	}

	slog.Debug("Warehouse query completed", "rows", table.Len())
	return table, nil
}

func scanTable(rows *sql.Rows) (*Table, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, err
	}

	table := &Table{Columns: columns, Rows: []Row{}}
	for rows.Next() {
		values := make([]interface{}, len(columns))
		ptrs := make([]interface{}, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}

		row := make(Row, len(columns))
		for i, col := range columns {
			row[col] = normalizeValue(values[i], types[i].DatabaseTypeName())
		}
		table.Rows = append(table.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return table, nil
}

// normalizeValue turns driver specific scan results into JSON friendly
// scalars. Exact numerics arrive as bytes from several drivers.
func normalizeValue(v interface{}, dbType string) interface{} {
	b, ok := v.([]byte)
	if !ok {
		return v
	}

	s := string(b)
	switch strings.ToUpper(dbType) {
	case "DECIMAL", "NUMERIC", "MONEY", "SMALLMONEY":
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	}
	return s
}

// buildDSN derives a connection string from discrete warehouse settings.
func buildDSN(driver, server, database, user, password string) (string, error) {
	switch driver {
	case "sqlserver":
		return urlDSN("sqlserver", server, "", user, password, map[string]string{"database": database}), nil
	case "pgx", "postgres":
		return urlDSN("postgres", server, database, user, password, nil), nil
	case "duckdb", "sqlite3":
		// file backed warehouses use the database name as the path
		return database, nil
	default:
		return "", fmt.Errorf("unsupported warehouse driver %q", driver)
	}
}
