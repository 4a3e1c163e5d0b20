// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package resetcode stores short-lived password reset verification codes.
//
// A code is bound to an account email and carries the hash of the password
// the user asked to switch to. Codes expire after a TTL, can be redeemed
// once, and are discarded after too many wrong guesses.
package resetcode

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/olegiv/exhibit-cms/internal/auth"
	"github.com/olegiv/exhibit-cms/internal/cache"
)

// Defaults used when Options leaves a field zero.
const (
	DefaultTTL         = 15 * time.Minute
	DefaultMaxAttempts = 5
)

var (
	// ErrExpired is returned when no live code exists for the account.
	ErrExpired = errors.New("verification code expired or invalid")
	// ErrInvalidCode is returned for a wrong code with attempts remaining.
	ErrInvalidCode = errors.New("invalid verification code")
	// ErrTooManyAttempts is returned when the attempt limit is hit; the code is discarded.
	ErrTooManyAttempts = errors.New("too many verification attempts")
)

type entry struct {
	Code         string `json:"code"`
	PasswordHash string `json:"password_hash"`
	Attempts     int    `json:"attempts"`
}

// Store issues and redeems reset codes.
type Store struct {
	entries     *cache.TypedCache[entry]
	ttl         time.Duration
	maxAttempts int
	generate    func() (string, error)
}

// Options configures a Store.
type Options struct {
	TTL         time.Duration
	MaxAttempts int
}

// New creates a Store backed by c.
func New(c cache.Cache, opts Options) *Store {
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = DefaultMaxAttempts
	}
	return &Store{
		entries:     cache.NewTypedCache[entry](c, "reset:", opts.TTL),
		ttl:         opts.TTL,
		maxAttempts: opts.MaxAttempts,
		generate:    auth.VerificationCode,
	}
}

// TTL returns how long an issued code stays valid.
func (s *Store) TTL() time.Duration {
	return s.ttl
}

func key(scope, email string) string {
	return scope + ":" + strings.ToLower(strings.TrimSpace(email))
}

// Issue creates a new code for email in scope, replacing any earlier one.
func (s *Store) Issue(ctx context.Context, scope, email, passwordHash string) (string, error) {
	code, err := s.generate()
	if err != nil {
		return "", err
	}

	e := &entry{Code: code, PasswordHash: passwordHash}
	if err := s.entries.SetWithTTL(ctx, key(scope, email), e, s.ttl); err != nil {
		return "", fmt.Errorf("storing reset code: %w", err)
	}
	return code, nil
}

// Redeem checks code and, on success, consumes it and returns the stored
// password hash.
func (s *Store) Redeem(ctx context.Context, scope, email, code string) (string, error) {
	k := key(scope, email)

	e, ok := s.entries.Get(ctx, k)
	if !ok {
		return "", ErrExpired
	}

	if subtle.ConstantTimeCompare([]byte(strings.TrimSpace(code)), []byte(e.Code)) != 1 {
		return "", s.recordFailure(ctx, k, e)
	}

	// A concurrent redeem may have won the race.
	taken, ok := s.entries.Take(ctx, k)
	if !ok || taken.Code != e.Code {
		return "", ErrExpired
	}
	return taken.PasswordHash, nil
}

func (s *Store) recordFailure(ctx context.Context, k string, e *entry) error {
	e.Attempts++
	if e.Attempts >= s.maxAttempts {
		_ = s.entries.Delete(ctx, k)
		return ErrTooManyAttempts
	}

	remaining, err := s.entries.TTL(ctx, k)
	if err != nil || remaining <= 0 {
		return ErrExpired
	}
	if err := s.entries.SetWithTTL(ctx, k, e, remaining); err != nil {
		return fmt.Errorf("updating reset attempts: %w", err)
	}
	return ErrInvalidCode
}
