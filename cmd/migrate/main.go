package main

import (
	"context"
	"fmt"
	"log"

	"wavenote-api/internal/config"

	"github.com/jackc/pgx/v5"
)

var migrations = []struct {
	name string
	sql  string
}{
	{
		name: "users table",
		sql: `
		CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			email VARCHAR(255) UNIQUE NOT NULL,
			password_hash VARCHAR(255) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
	},
	{
		name: "tasks table",
		sql: `
		CREATE TABLE IF NOT EXISTS tasks (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			title TEXT NOT NULL,
			description TEXT NOT NULL,
			deadline TIMESTAMPTZ NOT NULL,
			completed BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
	},
	{
		name: "tasks list index",
		sql:  "CREATE INDEX IF NOT EXISTS idx_tasks_user_created ON tasks(user_id, created_at, id)",
	},
}

func main() {
	cfg := config.LoadConfig()
	ctx := context.Background()

	// Migrations run on a single connection, not the pool
	conn, err := pgx.Connect(ctx, cfg.Database.ConnString())
	if err != nil {
		log.Fatalf("Unable to connect to database: %v", err)
	}
	defer conn.Close(ctx)

	if err := runMigrations(ctx, conn); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	log.Println("Migrations completed successfully")
}

func runMigrations(ctx context.Context, conn *pgx.Conn) error {
	log.Println("Running migrations...")

	tx, err := conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, m := range migrations {
		if _, err := tx.Exec(ctx, m.sql); err != nil {
			return fmt.Errorf("failed to create %s: %w", m.name, err)
		}
		log.Printf("Applied: %s", m.name)
	}

	return tx.Commit(ctx)
}
