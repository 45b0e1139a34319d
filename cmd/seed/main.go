// Package main provides a CLI tool for seeding the database with initial data.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"

	"pneutrack/internal/core/id"
	"pneutrack/internal/infrastructure/storage/postgres"
	"pneutrack/pkg/logger"
)

func main() {
	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	// Connect to database
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	poolCfg := postgres.DefaultPoolConfig(dbURL)
	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	log.Info("connected to database")

	if err := seedAdminUser(ctx, pool, log); err != nil {
		log.Fatalw("failed to seed admin user", "error", err)
	}

	// Seed demo data if requested
	if os.Getenv("SEED_DEMO_DATA") == "true" {
		if err := seedDemoData(ctx, pool, log); err != nil {
			log.Fatalw("failed to seed demo data", "error", err)
		}
	}

	log.Info("seeding completed successfully")
}

func seedAdminUser(ctx context.Context, pool *postgres.Pool, log *logger.Logger) error {
	adminEmail := os.Getenv("ADMIN_EMAIL")
	if adminEmail == "" {
		adminEmail = "admin@pneutrack.fr"
	}

	adminPassword := os.Getenv("ADMIN_PASSWORD")
	if adminPassword == "" {
		adminPassword = "Admin123!"
	}

	// Check if admin already exists
	var existingID id.ID
	err := pool.Pool.QueryRow(ctx,
		`SELECT id FROM auth_users WHERE email = $1`,
		adminEmail,
	).Scan(&existingID)
	if err == nil {
		log.Infow("admin user already exists", "email", adminEmail, "user_id", existingID)
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("check admin exists: %w", err)
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	userID := id.New()
	_, err = pool.Pool.Exec(ctx, `
		INSERT INTO auth_users (
			id, email, password_hash, first_name, last_name,
			roles, is_active, created_at, updated_at, version
		)
		VALUES ($1, $2, $3, 'System', 'Admin', ARRAY['admin'], true, NOW(), NOW(), 1)
	`, userID, adminEmail, string(passwordHash))
	if err != nil {
		return fmt.Errorf("insert admin user: %w", err)
	}

	log.Infow("admin user created", "email", adminEmail, "user_id", userID)
	return nil
}

func seedDemoData(ctx context.Context, pool *postgres.Pool, log *logger.Logger) error {
	log.Info("seeding demo data...")

	// 1. Workshop staff
	workers := []struct {
		email     string
		firstName string
		lastName  string
	}{
		{"marc@pneutrack.fr", "Marc", "Lefevre"},
		{"julie@pneutrack.fr", "Julie", "Moreau"},
	}

	workerHash, err := bcrypt.GenerateFromPassword([]byte("Worker123!"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash worker password: %w", err)
	}

	for _, w := range workers {
		_, err := pool.Pool.Exec(ctx, `
			INSERT INTO auth_users (
				id, email, password_hash, first_name, last_name,
				roles, is_active, created_at, updated_at, version
			)
			VALUES ($1, $2, $3, $4, $5, ARRAY['worker'], true, NOW(), NOW(), 1)
			ON CONFLICT (email) DO NOTHING
		`, id.New(), w.email, string(workerHash), w.firstName, w.lastName)
		if err != nil {
			log.Warnw("failed to seed worker", "email", w.email, "error", err)
		}
	}

	// 2. Clients
	clients := []struct {
		code  string
		name  string
		phone string
		email string
	}{
		{"CLI-2026-00001", "Garage Dupont", "+33 1 42 00 11 22", "contact@garage-dupont.fr"},
		{"CLI-2026-00002", "Transports Bernard", "+33 1 42 00 33 44", "flotte@transports-bernard.fr"},
		{"CLI-2026-00003", "Martin Sophie", "+33 6 12 34 56 78", ""},
	}

	for _, c := range clients {
		_, err := pool.Pool.Exec(ctx, `
			INSERT INTO cat_clients (
				id, code, name, phone, email, address,
				active, deletion_mark, version, created_at, updated_at
			)
			VALUES ($1, $2, $3, $4, $5, '', true, false, 1, NOW(), NOW())
			ON CONFLICT (code) DO NOTHING
		`, id.New(), c.code, c.name, c.phone, c.email)
		if err != nil {
			log.Warnw("failed to seed client", "code", c.code, "error", err)
		}
	}

	// 3. Tyres
	products := []struct {
		code    string
		name    string
		brand   string
		model   string
		width   int
		aspect  int
		diam    int
		season  string
		stock   int
		price   float64
	}{
		{"PRD-2026-00001", "Michelin Primacy 4 205/55R16", "Michelin", "Primacy 4", 205, 55, 16, "ete", 24, 98.50},
		{"PRD-2026-00002", "Continental WinterContact 195/65R15", "Continental", "WinterContact TS 870", 195, 65, 15, "hiver", 16, 84.90},
		{"PRD-2026-00003", "Goodyear Vector 4Seasons 225/45R17", "Goodyear", "Vector 4Seasons Gen-3", 225, 45, 17, "4saisons", 8, 112.00},
	}

	for _, p := range products {
		_, err := pool.Pool.Exec(ctx, `
			INSERT INTO cat_products (
				id, code, name, brand, model, width, aspect_ratio, diameter,
				season, stock, unit_price, active, deletion_mark, version,
				created_at, updated_at
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, true, false, 1, NOW(), NOW())
			ON CONFLICT (code) DO NOTHING
		`, id.New(), p.code, p.name, p.brand, p.model, p.width, p.aspect, p.diam, p.season, p.stock, p.price)
		if err != nil {
			log.Warnw("failed to seed product", "code", p.code, "error", err)
		}
	}

	// 4. Workshop services
	prestations := []struct {
		code  string
		name  string
		desc  string
		price float64
	}{
		{"PRE-2026-00001", "Montage pneu", "Montage et equilibrage, par pneu", 15.00},
		{"PRE-2026-00002", "Permutation", "Permutation avant/arriere des quatre roues", 25.00},
		{"PRE-2026-00003", "Reparation crevaison", "Reparation par champignon, par pneu", 22.00},
		{"PRE-2026-00004", "Geometrie", "Controle et reglage de la geometrie", 69.00},
	}

	for _, p := range prestations {
		_, err := pool.Pool.Exec(ctx, `
			INSERT INTO cat_prestations (
				id, code, name, description, unit_price,
				active, deletion_mark, version, created_at, updated_at
			)
			VALUES ($1, $2, $3, $4, $5, true, false, 1, NOW(), NOW())
			ON CONFLICT (code) DO NOTHING
		`, id.New(), p.code, p.name, p.desc, p.price)
		if err != nil {
			log.Warnw("failed to seed prestation", "code", p.code, "error", err)
		}
	}

	log.Info("demo data seeded")
	return nil
}
