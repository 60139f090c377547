// Command signer-token issues a bearer token for the signed endpoints,
// reading the same SOULBOUND_* configuration the server does. With no
// flags it issues a token for the configured administrator, valid for
// the configured token TTL.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	jwttoken "soulbound/internal/jwt_token"
	"soulbound/internal/platform/config"
	"soulbound/pkg/domain"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "signer-token: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		address = flag.String("address", "", "signer address the token authenticates (default: the configured administrator)")
		ttl     = flag.Duration("ttl", 0, "token lifetime (default: SOULBOUND_TOKEN_TTL)")
	)
	flag.Parse()

	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}

	signer := cfg.Registry.Administrator
	if *address != "" {
		signer, err = domain.ParseAddress(*address)
		if err != nil {
			return err
		}
	}
	lifetime := cfg.Auth.TokenTTL
	if *ttl > 0 {
		lifetime = *ttl
	}

	svc := jwttoken.NewJWTService(cfg.Auth.JWTSigningKey, jwttoken.Issuer, jwttoken.Audience)
	token, err := svc.GenerateSignerToken(signer, lifetime)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(map[string]string{
		"token":      token,
		"address":    signer.Hex(),
		"expires_at": time.Now().Add(lifetime).UTC().Format(time.RFC3339),
	})
}
