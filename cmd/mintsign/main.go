// Command mintsign produces an authority signature over a mint payload,
// for operators issuing tokens without EVM tooling. The output is the
// JSON body POST /v1/tokens/mint accepts.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/holiman/uint256"

	"soulbound/internal/crypto"
	"soulbound/internal/issuance/codec"
	"soulbound/pkg/domain"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "mintsign: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		keyHex    = flag.String("key", os.Getenv("SOULBOUND_AUTHORITY_KEY"), "authority private key, hex (or SOULBOUND_AUTHORITY_KEY)")
		recipient = flag.String("recipient", "", "recipient address, 0x-prefixed")
		ids       = flag.String("skill-ids", "", "comma-separated skill ids")
		values    = flag.String("skill-values", "", "comma-separated decimal skill values")
		hashOnly  = flag.Bool("hash-only", false, "print the digests without signing")
	)
	flag.Parse()

	to, err := domain.ParseAddress(*recipient)
	if err != nil {
		return err
	}
	skillIDs, err := parseIDs(*ids)
	if err != nil {
		return err
	}
	skillValues, err := parseValues(*values)
	if err != nil {
		return err
	}
	if len(skillIDs) != len(skillValues) {
		return fmt.Errorf("%d skill ids but %d values", len(skillIDs), len(skillValues))
	}

	digest := codec.MessageDigest(to, skillIDs, skillValues)
	signedHash := codec.SignedHash(to, skillIDs, skillValues)

	out := map[string]any{
		"digest":      digest.Hex(),
		"signed_hash": signedHash.Hex(),
	}
	if !*hashOnly {
		if *keyHex == "" {
			return fmt.Errorf("-key is required unless -hash-only is set")
		}
		key, err := crypto.ParsePrivateKey(*keyHex)
		if err != nil {
			return err
		}
		sig, err := crypto.Sign(signedHash, key)
		if err != nil {
			return err
		}

		rawValues := make([]string, len(skillValues))
		for i, v := range skillValues {
			rawValues[i] = v.Dec()
		}
		out = map[string]any{
			"recipient":    to.Hex(),
			"skill_ids":    skillIDs,
			"skill_values": rawValues,
			"signature":    sig.Hex(),
			"signer":       crypto.AddressOf(key).Hex(),
		}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func parseIDs(raw string) ([]domain.SkillID, error) {
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	out := make([]domain.SkillID, 0, len(parts))
	for _, p := range parts {
		id, err := domain.ParseSkillID(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("skill id %q: %w", p, err)
		}
		out = append(out, id)
	}
	return out, nil
}

func parseValues(raw string) ([]*uint256.Int, error) {
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	out := make([]*uint256.Int, 0, len(parts))
	for _, p := range parts {
		v, err := uint256.FromDecimal(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("skill value %q: %w", p, err)
		}
		out = append(out, v)
	}
	return out, nil
}
