package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gatehouse/gatehouse/internal/repository"
	"github.com/gatehouse/gatehouse/internal/service"
)

type output struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	FullName  string    `json:"fullname,omitempty"`
	Email     string    `json:"email,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func main() {
	var (
		databaseURL = flag.String("database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection string")
		username    = flag.String("username", "", "Account username (required)")
		password    = flag.String("password", os.Getenv("ACCOUNT_PASSWORD"), "Account password (or ACCOUNT_PASSWORD)")
		fullName    = flag.String("fullname", "", "Full name")
		email       = flag.String("email", "", "Email address")
		migrate     = flag.Bool("migrate", true, "Apply pending migrations first")
		format      = flag.String("format", "plain", "Output format: plain or json")
	)
	flag.Parse()

	if *databaseURL == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is required")
		os.Exit(1)
	}
	if *username == "" || *password == "" {
		fmt.Fprintln(os.Stderr, "-username and -password are required")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if *migrate {
		if err := repository.Migrate(ctx, *databaseURL); err != nil {
			fmt.Fprintln(os.Stderr, "migrate:", err)
			os.Exit(1)
		}
	}

	repo, err := repository.New(ctx, *databaseURL, repository.PoolOptions{MaxConns: 2})
	if err != nil {
		fmt.Fprintln(os.Stderr, "connect database:", err)
		os.Exit(1)
	}
	defer repo.Close()

	accounts := service.NewAccountService(repo, nil, nil)
	account, err := accounts.Register(ctx, service.RegisterInput{
		FullName:        *fullName,
		Email:           *email,
		Username:        *username,
		Password:        *password,
		ConfirmPassword: *password,
	})
	if errors.Is(err, service.ErrAccountExists) {
		fmt.Fprintf(os.Stderr, "account %q already exists\n", *username)
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "create account:", err)
		os.Exit(1)
	}

	out := output{
		ID:        account.ID,
		Username:  account.Username,
		FullName:  account.FullName,
		Email:     account.Email,
		CreatedAt: account.CreatedAt,
	}

	switch strings.ToLower(*format) {
	case "plain":
		fmt.Println(out.ID)
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(out)
	default:
		fmt.Fprintln(os.Stderr, "invalid format; use plain or json")
		os.Exit(1)
	}
}
