// Package otp issues and verifies one-time login codes. Codes live in an
// injectable Store keyed by username, so a deployment can keep them in
// process memory, Redis or MongoDB.
package otp

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"
	"time"
)

const (
	DefaultTTL = 5 * time.Minute
	keyPrefix  = "otp:"
)

var (
	// ErrNotFound is returned by a Store when no live record exists.
	ErrNotFound = errors.New("otp: not found")
	// ErrInvalid covers absent, expired, mismatched and already used codes.
	ErrInvalid = errors.New("otp: expired or invalid")
)

// Record is a pending code and the instant it stops being accepted.
type Record struct {
	Code      string    `json:"code"       bson:"code"`
	ExpiresAt time.Time `json:"expires_at" bson:"expires_at"`
}

// Store is a key/value store with per-key TTL. DeleteIfCode removes the
// record only while it still holds code, which lets Verify consume exactly
// the code it compared and never a newer one issued in between.
type Store interface {
	Set(ctx context.Context, key string, rec Record, ttl time.Duration) error
	Get(ctx context.Context, key string) (Record, error)
	Delete(ctx context.Context, key string) (bool, error)
	DeleteIfCode(ctx context.Context, key, code string) (bool, error)
}

// Manager owns the OTP lifecycle: one outstanding code per username,
// overwritten on every new login.
type Manager struct {
	store    Store
	ttl      time.Duration
	now      func() time.Time
	generate func() (string, error)
}

type Option func(*Manager)

// WithClock overrides the time source used for expiry checks.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithGenerator overrides code generation.
func WithGenerator(gen func() (string, error)) Option {
	return func(m *Manager) { m.generate = gen }
}

func NewManager(store Store, ttl time.Duration, opts ...Option) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	m := &Manager{store: store, ttl: ttl, now: time.Now, generate: Generate}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// TTL is the validity window of issued codes.
func (m *Manager) TTL() time.Duration { return m.ttl }

// Issue creates a fresh code for username, replacing any pending one.
func (m *Manager) Issue(ctx context.Context, username string) (string, error) {
	code, err := m.generate()
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	rec := Record{Code: code, ExpiresAt: m.now().Add(m.ttl)}
	if err := m.store.Set(ctx, keyPrefix+username, rec, m.ttl); err != nil {
		return "", fmt.Errorf("store otp: %w", err)
	}
	return code, nil
}

// Verify consumes the pending code for username. The expiry check runs
// before the comparison, so an expired record is rejected even when the
// code matches.
func (m *Manager) Verify(ctx context.Context, username, code string) error {
	key := keyPrefix + username

	rec, err := m.store.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return ErrInvalid
	}
	if err != nil {
		return fmt.Errorf("load otp: %w", err)
	}

	if !m.now().Before(rec.ExpiresAt) {
		_, _ = m.store.DeleteIfCode(ctx, key, rec.Code)
		return ErrInvalid
	}
	if subtle.ConstantTimeCompare([]byte(rec.Code), []byte(code)) != 1 {
		return ErrInvalid
	}

	deleted, err := m.store.DeleteIfCode(ctx, key, rec.Code)
	if err != nil {
		return fmt.Errorf("consume otp: %w", err)
	}
	if !deleted {
		// Consumed by a concurrent verification or replaced by a new login.
		return ErrInvalid
	}
	return nil
}

// Discard drops any pending code for username.
func (m *Manager) Discard(ctx context.Context, username string) error {
	_, err := m.store.Delete(ctx, keyPrefix+username)
	return err
}

// Generate returns a uniformly random 6-digit code without a leading zero.
func Generate() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
