package data

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/nacl/secretbox"

	"github.com/carokun/sachathescheduler/internal/biz/repo"
)

const nonceSize = 24

// stateRepo seals the OAuth state so the callback can trust the account it names
type stateRepo struct {
	key    [32]byte
	maxAge time.Duration
	now    func() time.Time
}

type statePayload struct {
	AccountID string `json:"a"`
	IssuedAt  int64  `json:"t"`
}

// NewStateRepo creates a state sealer. An empty secret generates a random
// key, so links only survive until restart.
func NewStateRepo(secret string, maxAge time.Duration) (repo.StateRepo, error) {
	r := &stateRepo{maxAge: maxAge, now: time.Now}
	if secret == "" {
		if _, err := rand.Read(r.key[:]); err != nil {
			return nil, fmt.Errorf("failed to generate state key: %w", err)
		}
		fmt.Println("[State] LINK_STATE_SECRET not set, using a random key")
	} else {
		r.key = sha256.Sum256([]byte(secret))
	}
	return r, nil
}

// Seal encrypts and authenticates the account ID
func (r *stateRepo) Seal(accountID string) (string, error) {
	payload, err := json.Marshal(statePayload{AccountID: accountID, IssuedAt: r.now().Unix()})
	if err != nil {
		return "", fmt.Errorf("encode state: %w", err)
	}

	var nonce [nonceSize]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}

	sealed := secretbox.Seal(nonce[:], payload, &nonce, &r.key)
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

// Open verifies the state and returns the account ID inside
func (r *stateRepo) Open(state string) (string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(state)
	if err != nil || len(raw) < nonceSize+secretbox.Overhead {
		return "", errors.New("malformed state")
	}

	var nonce [nonceSize]byte
	copy(nonce[:], raw[:nonceSize])
	payload, ok := secretbox.Open(nil, raw[nonceSize:], &nonce, &r.key)
	if !ok {
		return "", errors.New("state failed authentication")
	}

	var p statePayload
	if err := json.Unmarshal(payload, &p); err != nil || p.AccountID == "" {
		return "", errors.New("malformed state payload")
	}
	if r.maxAge > 0 && r.now().Sub(time.Unix(p.IssuedAt, 0)) > r.maxAge {
		return "", errors.New("state expired")
	}
	return p.AccountID, nil
}
