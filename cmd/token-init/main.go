// Command token-init bootstraps a user and prints a bearer token for it.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"fintrack/internal/auth"
	"fintrack/internal/cli"
	"fintrack/internal/core"
	"fintrack/internal/services"
)

func main() {
	email := flag.String("email", "", "user email (required)")
	name := flag.String("name", "", "display name, used when the user is created")
	staff := flag.Bool("staff", false, "create the user as staff")
	ttl := flag.Duration("ttl", 0, "token lifetime (default: JWT_TTL)")
	flag.Parse()

	if *email == "" {
		fmt.Fprintln(os.Stderr, "usage: token-init -email user@example.com [-name Name] [-staff] [-ttl 24h]")
		os.Exit(2)
	}

	cli.LoadEnvFile()
	logger := cli.SetupLogger("warn")
	cfg := cli.LoadAndValidateConfig(logger)

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	users := services.NewUserService(repo)
	ctx := context.Background()

	user, err := users.GetByEmail(ctx, *email)
	switch {
	case core.IsNotFound(err):
		displayName := *name
		if displayName == "" {
			displayName = *email
		}
		user, err = users.Create(ctx, displayName, *email, *staff)
		if err != nil {
			logger.Error("Failed to create user", "error", err)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "Created user %s (%s)\n", user.ID, user.Email)
	case err != nil:
		logger.Error("Failed to look up user", "error", err)
		os.Exit(1)
	}

	lifetime := cfg.JWTTTL
	if *ttl > 0 {
		lifetime = *ttl
	}
	token, err := auth.IssueToken([]byte(cfg.JWTSecret), user, lifetime, time.Now())
	if err != nil {
		logger.Error("Failed to issue token", "error", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
