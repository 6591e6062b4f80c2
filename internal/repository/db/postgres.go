package db

import (
	"database/sql"
	"fmt"

	"procurement/internal/config"

	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

func NewPostgresDB(cfg *config.PostgresConfig, log *zap.Logger) (*sql.DB, error) {
	log.Info("Connecting db", zap.String("host", cfg.Host), zap.String("database", cfg.Database))
	db, err := sql.Open("postgres", cfg.Conn)

	if err != nil {
		return nil, fmt.Errorf("db.NewPostgresDB: %w", err)
	}
	err = db.Ping()
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("db.NewPostgresDB: %w", err)
	}

	return db, nil
}
