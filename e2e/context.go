// Package e2e drives a running registry instance over HTTP, replaying the
// credential lifecycle as black-box scenarios. The harness holds its own
// copies of the signing and token primitives so it exercises the real wire
// formats instead of the server's helpers.
package e2e

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"strings"
	"time"

	"github.com/btcsuite/btcd/btcec"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/sha3"
)

const personalMessagePrefix = "\x19Ethereum Signed Message:\n32"

// TestContext carries the state of one scenario: the target server, the
// authority key, and the last response.
type TestContext struct {
	baseURL string
	client  *http.Client

	authorityKey *btcec.PrivateKey
	jwtKey       []byte

	holder   string
	skillIDs []uint64
	tokenID  uint64

	lastStatus int
	lastBody   map[string]any
}

// NewTestContext builds a harness against baseURL. authorityKeyHex is the
// hex scalar of the mint-signing key; jwtKey is the server's HS256 secret.
func NewTestContext(baseURL, authorityKeyHex, jwtKey string) (*TestContext, error) {
	raw, err := hex.DecodeString(strings.TrimPrefix(authorityKeyHex, "0x"))
	if err != nil || len(raw) != 32 {
		return nil, fmt.Errorf("authority key must be 32 hex-encoded bytes")
	}
	key, _ := btcec.PrivKeyFromBytes(btcec.S256(), raw)
	return &TestContext{
		baseURL:      strings.TrimRight(baseURL, "/"),
		client:       &http.Client{Timeout: 10 * time.Second},
		authorityKey: key,
		jwtKey:       []byte(jwtKey),
	}, nil
}

// Reset clears per-scenario state.
func (tc *TestContext) Reset() {
	tc.holder = ""
	tc.skillIDs = nil
	tc.tokenID = 0
	tc.lastStatus = 0
	tc.lastBody = nil
}

// AuthorityAddress derives the account address of the authority key.
func (tc *TestContext) AuthorityAddress() string {
	return pubkeyAddress(tc.authorityKey.PubKey())
}

// NewHolder generates a random holder address for the scenario, so runs
// against a long-lived server never collide on the one-token cap.
func (tc *TestContext) NewHolder() string {
	raw := make([]byte, 20)
	if _, err := rand.Read(raw); err != nil {
		panic(err)
	}
	tc.holder = "0x" + hex.EncodeToString(raw)
	return tc.holder
}

// Holder returns the scenario's holder address.
func (tc *TestContext) Holder() string { return tc.holder }

// RememberSkill records a catalog id returned by the server.
func (tc *TestContext) RememberSkill(id uint64) { tc.skillIDs = append(tc.skillIDs, id) }

// SkillIDs returns the catalog ids created in this scenario.
func (tc *TestContext) SkillIDs() []uint64 { return tc.skillIDs }

// RememberToken records the minted token id.
func (tc *TestContext) RememberToken(id uint64) { tc.tokenID = id }

// TokenID returns the minted token id.
func (tc *TestContext) TokenID() uint64 { return tc.tokenID }

// Status returns the last response status code.
func (tc *TestContext) Status() int { return tc.lastStatus }

// ResponseField returns a top-level field of the last JSON response.
func (tc *TestContext) ResponseField(field string) (any, error) {
	if tc.lastBody == nil {
		return nil, fmt.Errorf("no response captured")
	}
	value, ok := tc.lastBody[field]
	if !ok {
		return nil, fmt.Errorf("field %q not in response: %v", field, tc.lastBody)
	}
	return value, nil
}

// Request performs one HTTP call. A non-empty signer address attaches a
// bearer token bound to it.
func (tc *TestContext) Request(method, path, signer string, body any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}
	req, err := http.NewRequest(method, tc.baseURL+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if signer != "" {
		token, err := tc.signerToken(signer)
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := tc.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	tc.lastStatus = resp.StatusCode
	tc.lastBody = nil
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if len(raw) > 0 {
		var parsed map[string]any
		if err := json.Unmarshal(raw, &parsed); err == nil {
			tc.lastBody = parsed
		}
	}
	return nil
}

// SignMint produces the [R || S || V] hex signature over the canonical
// mint encoding: recipient bytes, then ids and values as 32-byte words.
func (tc *TestContext) SignMint(recipient string, ids []uint64, values []string) (string, error) {
	raw, err := hex.DecodeString(strings.TrimPrefix(recipient, "0x"))
	if err != nil || len(raw) != 20 {
		return "", fmt.Errorf("recipient must be a 20-byte hex address")
	}

	packed := raw
	for _, id := range ids {
		packed = append(packed, word(new(big.Int).SetUint64(id))...)
	}
	for _, value := range values {
		n, ok := new(big.Int).SetString(value, 10)
		if !ok {
			return "", fmt.Errorf("value %q is not decimal", value)
		}
		packed = append(packed, word(n)...)
	}

	digest := keccak256(packed)
	framed := keccak256(append([]byte(personalMessagePrefix), digest...))

	compact, err := btcec.SignCompact(btcec.S256(), tc.authorityKey, framed, false)
	if err != nil {
		return "", err
	}
	// compact is [V || R || S]; the wire layout is [R || S || V].
	wire := make([]byte, 65)
	copy(wire[:64], compact[1:])
	wire[64] = compact[0]
	return "0x" + hex.EncodeToString(wire), nil
}

func (tc *TestContext) signerToken(address string) (string, error) {
	claims := jwt.MapClaims{
		"address": address,
		"iss":     "soulbound-registry",
		"aud":     []string{"soulbound-registry"},
		"iat":     jwt.NewNumericDate(time.Now()),
		"exp":     jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(tc.jwtKey)
}

func keccak256(data []byte) []byte {
	h := sha3.NewLegacyKeccak256()
	h.Write(data)
	return h.Sum(nil)
}

func word(n *big.Int) []byte {
	return n.FillBytes(make([]byte, 32))
}

func pubkeyAddress(pub *btcec.PublicKey) string {
	raw := pub.SerializeUncompressed()
	sum := keccak256(raw[1:])
	return "0x" + hex.EncodeToString(sum[12:])
}
