// seed creates the schema and inserts a confirmed demo user into the
// local dev database. Run: go run ./cmd/seed
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/amirzhanov/jobboard-auth/internal/infrastructure/postgres"
	"golang.org/x/crypto/bcrypt"
)

const (
	seedEmail    = "seed@test.local"
	seedPassword = "p@ssw0rd1"
)

const schema = `
CREATE EXTENSION IF NOT EXISTS pgcrypto;

CREATE TABLE IF NOT EXISTS users (
	id             uuid PRIMARY KEY DEFAULT gen_random_uuid(),
	first_name     text NOT NULL,
	last_name      text NOT NULL,
	username       text NOT NULL UNIQUE,
	email          text NOT NULL UNIQUE,
	password_hash  text NOT NULL,
	recovery_email text NOT NULL,
	dob            date NOT NULL,
	mobile_number  text NOT NULL UNIQUE,
	role           text NOT NULL DEFAULT 'user',
	status         text NOT NULL DEFAULT 'offline',
	is_confirmed   boolean NOT NULL DEFAULT false,
	created_at     timestamptz NOT NULL DEFAULT now(),
	updated_at     timestamptz NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS otps (
	id         uuid PRIMARY KEY DEFAULT gen_random_uuid(),
	email      text NOT NULL UNIQUE,
	code       text NOT NULL,
	created_at timestamptz NOT NULL DEFAULT now(),
	expires_at timestamptz NOT NULL
);
`

func main() {
	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	pool, err := postgres.NewPool(ctx, dbURL)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer pool.Close()

	if _, err := pool.Exec(ctx, schema); err != nil {
		log.Fatalf("create schema: %v", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(seedPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}

	var userID string
	err = pool.QueryRow(ctx, `
		INSERT INTO users (
			first_name, last_name, username, email, password_hash,
			recovery_email, dob, mobile_number, is_confirmed, status
		) VALUES ('Seed', 'User', 'SeedUser0001', $1, $2,
			'recovery@test.local', '1990-01-01', '+10000000001', true, 'offline')
		ON CONFLICT (email) DO UPDATE SET updated_at = NOW()
		RETURNING id`,
		seedEmail, string(hash),
	).Scan(&userID)
	if err != nil {
		log.Fatalf("seed user: %v", err)
	}

	fmt.Printf("seeded user %s (%s / %s)\n", userID, seedEmail, seedPassword)
}
