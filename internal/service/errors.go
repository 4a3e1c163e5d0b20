// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/olegiv/exhibit-cms/internal/validation"
)

// Service errors. Handlers map them to HTTP status codes.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("already exists")
	ErrUnauthorized = errors.New("invalid credentials")
	ErrForbidden    = errors.New("forbidden")

	// ErrTenantLanguagesNotFound is returned when a client has no language
	// configuration. It matches ErrNotFound.
	ErrTenantLanguagesNotFound = fmt.Errorf("language settings %w", ErrNotFound)
)

// ErrAccountBlocked is returned on login by a blocked account.
var ErrAccountBlocked = fmt.Errorf("account is blocked: %w", ErrForbidden)

// ErrAccountInactive is returned on login by an account that is not active.
var ErrAccountInactive = fmt.Errorf("account is inactive: %w", ErrForbidden)

// ValidationError carries per-field messages keyed by JSON field name.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// invalid returns a ValidationError for a single field.
func invalid(field, message string) error {
	return &ValidationError{Fields: map[string]string{field: message}}
}

// fieldErrors returns a ValidationError when fields is non-empty.
func fieldErrors(fields map[string]string) error {
	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: fields}
}

// validateStruct runs struct tag validation.
func validateStruct(s any) error {
	return fieldErrors(validation.Struct(s))
}

// notFound maps sql.ErrNoRows to ErrNotFound and wraps everything else.
func notFound(err error, what string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %w", what, ErrNotFound)
	}
	return fmt.Errorf("loading %s: %w", what, err)
}
