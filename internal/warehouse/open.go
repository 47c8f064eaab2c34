package warehouse

import (
	"context"
	"database/sql"
	"log/slog"
	"net/url"
	"slices"
	"time"

	// Registered database/sql drivers for the supported warehouse engines.
	_ "github.com/duckdb/duckdb-go/v2"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
	_ "github.com/microsoft/go-mssqldb"

	"github.com/ctai-labs/clinical-trial-ai/internal/config"
)

// DriverFixtures selects the canned data adapter.
const DriverFixtures = "fixtures"

// Open returns the adapter for the configured warehouse. When no warehouse is
// configured, or its driver cannot be used, it falls back to Fixtures.
func Open(ctx context.Context, cfg config.WarehouseConfig) Adapter {
	if cfg.Driver == "" || cfg.Driver == DriverFixtures {
		slog.Warn("No warehouse configured, serving fixture data")
		return NewFixtures()
	}

	if !slices.Contains(sql.Drivers(), cfg.Driver) {
		slog.Warn("Warehouse driver unavailable, serving fixture data", "driver", cfg.Driver)
		return NewFixtures()
	}

	dsn := cfg.DSN
	if dsn == "" {
		built, err := buildDSN(cfg.Driver, cfg.Server, cfg.Database, cfg.Username, cfg.Password)
		if err != nil {
			slog.Warn("Cannot build warehouse DSN, serving fixture data", "driver", cfg.Driver, "error", err)
			return NewFixtures()
		}
		dsn = built
	}

	db, err := sql.Open(cfg.Driver, dsn)
	if err != nil {
		slog.Warn("Cannot open warehouse, serving fixture data", "driver", cfg.Driver, "error", err)
		return NewFixtures()
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		// Queries will surface the same failure; keep the real adapter.
		slog.Warn("Warehouse is not reachable yet", "driver", cfg.Driver, "server", cfg.Server, "error", err)
	}

	slog.Info("Warehouse adapter ready", "driver", cfg.Driver, "database", cfg.Database)
	return NewSQL(db, DialectForDriver(cfg.Driver))
}

func urlDSN(scheme, host, path, user, password string, query map[string]string) string {
	u := &url.URL{
		Scheme: scheme,
		User:   url.UserPassword(user, password),
		Host:   host,
	}
	if path != "" {
		u.Path = "/" + path
	}
	if len(query) > 0 {
		v := url.Values{}
		for k, val := range query {
			v.Set(k, val)
		}
		u.RawQuery = v.Encode()
	}
	return u.String()
}
