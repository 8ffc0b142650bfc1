// CLI tool to seed a user account when /auth/signup is not exposed. Applies
// the same validation, hashing and token rules as signup.
// Usage: go run ./cmd/create-user
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"

	"lg/moodhabit-api/internal/credentials"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Error loading .env file: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	conn, err := pgx.Connect(ctx, os.Getenv("DB_URL"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer conn.Close(ctx)

	reader := bufio.NewReader(os.Stdin)
	prompt := func(label string) string {
		fmt.Print(label)
		s, _ := reader.ReadString('\n')
		return strings.TrimSpace(s)
	}

	acct, err := credentials.NewAccount(prompt("Name: "), prompt("Email: "), prompt("Password: "))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid account: %v\n", err)
		os.Exit(1)
	}

	var userID int
	err = conn.QueryRow(ctx,
		`INSERT INTO users (name, email, password, auth_token)
		 VALUES ($1, $2, $3, $4) RETURNING id`,
		acct.Name, acct.Email, acct.PasswordHash, acct.AuthToken,
	).Scan(&userID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating user: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("\nUser created successfully!\n")
	fmt.Printf("  ID:         %d\n", userID)
	fmt.Printf("  Email:      %s\n", acct.Email)
	fmt.Printf("  Auth Token: %s\n", acct.AuthToken)
}
