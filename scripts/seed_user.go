package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/khoahotran/portfolio-builder/internal/config"
	"github.com/khoahotran/portfolio-builder/pkg/auth"
)

// Creates a user, or resets the name and password of an existing one.
// Usage: SEED_NAME=Ann SEED_EMAIL=ann@x.com SEED_PASSWORD=... go run ./scripts
func main() {
	fmt.Println("adding user into database...")

	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("cannot load config: %v", err)
	}

	name := strings.TrimSpace(os.Getenv("SEED_NAME"))
	email := strings.TrimSpace(os.Getenv("SEED_EMAIL"))
	password := os.Getenv("SEED_PASSWORD")
	if name == "" || email == "" || password == "" {
		log.Fatal("SEED_NAME, SEED_EMAIL and SEED_PASSWORD are required")
	}

	hash, err := auth.NewBcryptHasher(cfg.Auth.BcryptCost).Hash(password)
	if err != nil {
		log.Fatalf("cannot hash password: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.DB.DSN)
	if err != nil {
		log.Fatalf("cannot connect DB: %v", err)
	}
	defer pool.Close()

	query := `
		INSERT INTO users (id, name, email, password_hash, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (email) DO UPDATE SET name = $2, password_hash = $4
	`
	_, err = pool.Exec(ctx, query, uuid.New(), name, email, hash)
	if err != nil {
		log.Fatalf("cannot add user: %v", err)
	}

	fmt.Printf("added or updated user '%s' successfully!\n", email)
}
