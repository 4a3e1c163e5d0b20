// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package auth

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const (
	digits          = "0123456789"
	upperAlnum      = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	lowerAlnum      = "abcdefghijklmnopqrstuvwxyz0123456789"
	passwordCharset = "ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz23456789!@#%*"
)

// RandomString returns n characters drawn uniformly from charset.
func RandomString(n int, charset string) (string, error) {
	limit := big.NewInt(int64(len(charset)))
	b := make([]byte, n)
	for i := range b {
		idx, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", fmt.Errorf("generating random string: %w", err)
		}
		b[i] = charset[idx.Int64()]
	}
	return string(b), nil
}

// TempPassword returns a 12-character temporary password.
func TempPassword() (string, error) {
	return RandomString(12, passwordCharset)
}

// VerificationCode returns a 6-digit numeric code.
func VerificationCode() (string, error) {
	return RandomString(6, digits)
}

// ExhibitCode returns a 6-character upper-case alphanumeric code.
func ExhibitCode() (string, error) {
	return RandomString(6, upperAlnum)
}

// LinkSuffix returns a 4-character lower-case suffix for client links.
func LinkSuffix() (string, error) {
	return RandomString(4, lowerAlnum)
}
