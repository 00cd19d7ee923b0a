// Command nextcash-token mints HS256 identity tokens for local development.
//
//	nextcash-token -sub alice -email alice@example.com -ttl 24h
//
// The secret and issuer default to AUTH_JWT_SECRET and AUTH_JWT_ISSUER.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"nextcash/internal/auth"
	"nextcash/internal/cli"
	"nextcash/internal/config"
	"nextcash/internal/log"
)

func main() {
	cli.LoadEnvFile()
	cfg := config.Load()
	logger := cli.SetupLogger(cfg.LogLevel)

	var (
		subject = flag.String("sub", "", "owner id placed in the subject claim (required)")
		email   = flag.String("email", "", "optional email claim")
		ttl     = flag.Duration("ttl", 24*time.Hour, "token lifetime")
		secret  = flag.String("secret", cfg.AuthJWTSecret, "HS256 signing secret")
		issuer  = flag.String("issuer", cfg.AuthJWTIssuer, "issuer claim")
	)
	flag.Parse()

	if len(*secret) < config.MinJWTSecretLen {
		logger.Error("Signing secret too short", "min_length", config.MinJWTSecretLen)
		os.Exit(2)
	}

	token, err := auth.IssueToken(*secret, *issuer, *subject, *email, *ttl)
	if err != nil {
		logger.Error("Failed to issue token", log.FieldError, err)
		os.Exit(1)
	}
	fmt.Println(token)
}
