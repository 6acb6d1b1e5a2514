package postgres

import (
	"database/sql"
	"fmt"

	"spikewatch/config"

	_ "github.com/lib/pq"
)

// CreateDatabase creates the measurement database if it doesn't exist. It
// connects through the maintenance database since the target may not exist
// yet, using the same environment's credentials as the main connection.
func CreateDatabase(cfg config.PostgresConfig, env string) error {
	db, err := sql.Open("postgres", maintenanceDSN(cfg, env))
	if err != nil {
		return fmt.Errorf("connect failed: %w", err)
	}
	defer db.Close()

	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname = $1);`
	if err := db.QueryRow(query, cfg.DBName).Scan(&exists); err != nil {
		return fmt.Errorf("check db exists failed: %w", err)
	}
	if exists {
		return nil
	}

	// CREATE DATABASE cannot take bind parameters; the name comes from config,
	// not user input.
	if _, err := db.Exec(fmt.Sprintf("CREATE DATABASE %q", cfg.DBName)); err != nil {
		return fmt.Errorf("create db failed: %w", err)
	}

	return nil
}

// maintenanceDSN targets the server's default `postgres` database with the
// given environment's credentials.
func maintenanceDSN(cfg config.PostgresConfig, env string) string {
	maintenance := cfg
	maintenance.DBName = "postgres"
	return maintenance.DSN(env)
}
