// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

// Pagination limits.
const (
	DefaultPerPage = 20
	MaxPerPage     = 100
)

// Page selects a slice of a list. Number starts at 1.
type Page struct {
	Number  int
	PerPage int
}

func (p Page) limit() int64 {
	switch {
	case p.PerPage <= 0:
		return DefaultPerPage
	case p.PerPage > MaxPerPage:
		return MaxPerPage
	}
	return int64(p.PerPage)
}

func (p Page) offset() int64 {
	if p.Number <= 1 {
		return 0
	}
	return int64(p.Number-1) * p.limit()
}
