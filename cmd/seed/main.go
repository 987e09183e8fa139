package main

import (
	"context"
	"crypto/rand"
	_ "embed"
	"encoding/hex"
	"log/slog"
	"os"

	"rcsapi/internal/auth"
	"rcsapi/internal/config"
	"rcsapi/internal/logging"
	"rcsapi/internal/store/pg"
	"rcsapi/internal/util"
)

//go:embed schema.sql
var schemaSQL string

// seed bootstraps the schema and provisions a demo account, user and two
// RCS templates so the API is usable out of the box. Running it twice is a
// no-op.
func main() {
	cfg := config.LoadSeed()
	logging.Init("seed", cfg.LogFormat)

	ctx := context.Background()

	db, err := pg.NewPool(ctx, cfg.DBDSN, pg.PoolOptions{})
	if err != nil {
		slog.Error("seed db connect failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	if _, err := db.Exec(ctx, schemaSQL); err != nil {
		slog.Error("seed schema failed", "err", err)
		os.Exit(1)
	}
	slog.Info("schema ready")

	var existing int
	if err := db.QueryRow(ctx, `SELECT COUNT(*) FROM accounts`).Scan(&existing); err != nil {
		slog.Error("seed account check failed", "err", err)
		os.Exit(1)
	}
	if existing > 0 {
		slog.Info("database already seeded")
		return
	}

	apiKey := newAPIKey()
	var accountID int64
	err = db.QueryRow(ctx, `
		INSERT INTO accounts (name, api_key, created_at) VALUES ($1,$2,$3) RETURNING id
	`, "Test Account", apiKey, util.NowUTC()).Scan(&accountID)
	if err != nil {
		slog.Error("seed account insert failed", "err", err)
		os.Exit(1)
	}
	slog.Info("created account", "account_id", accountID, "api_key", apiKey)

	hash, err := auth.HashPassword("password123")
	if err != nil {
		slog.Error("seed password hash failed", "err", err)
		os.Exit(1)
	}
	_, err = db.Exec(ctx, `
		INSERT INTO users (username, email, password_hash, account_id, created_at)
		VALUES ($1,$2,$3,$4,$5)
	`, "testuser", "test@example.com", hash, accountID, util.NowUTC())
	if err != nil {
		slog.Error("seed user insert failed", "err", err)
		os.Exit(1)
	}
	slog.Info("created user", "username", "testuser", "password", "password123")

	templates := []struct {
		externalID  string
		name        string
		channelType string
		content     string
	}{
		{"welcome_template", "Welcome Message", "Single",
			"Welcome to our service, {{name}}! We're glad to have you with us."},
		{"promo_template", "Promotion Message", "Basic",
			"Hi {{name}}, check out our latest promotion: {{promo_text}}. Valid until {{valid_date}}."},
	}
	for _, t := range templates {
		_, err = db.Exec(ctx, `
			INSERT INTO templates (template_id, name, channel, channel_type, content, created_at)
			VALUES ($1,$2,'RCS',$3,$4,$5)
		`, t.externalID, t.name, t.channelType, t.content, util.NowUTC())
		if err != nil {
			slog.Error("seed template insert failed", "err", err, "template_id", t.externalID)
			os.Exit(1)
		}
	}
	slog.Info("created templates", "count", len(templates))
}

func newAPIKey() string {
	b := make([]byte, 24)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return "key_" + hex.EncodeToString(b)
}
