// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package util

import (
	"errors"
	"fmt"
	"net"
	"net/netip"
	"net/url"
	"strings"
)

// reservedPrefixes are ranges a QR redirect must never point at and that
// carry no country for scan statistics.
var reservedPrefixes = []netip.Prefix{
	netip.MustParsePrefix("10.0.0.0/8"),      // RFC 1918
	netip.MustParsePrefix("172.16.0.0/12"),   // RFC 1918
	netip.MustParsePrefix("192.168.0.0/16"),  // RFC 1918
	netip.MustParsePrefix("127.0.0.0/8"),     // loopback
	netip.MustParsePrefix("169.254.0.0/16"),  // link-local
	netip.MustParsePrefix("0.0.0.0/8"),       // "this" network
	netip.MustParsePrefix("100.64.0.0/10"),   // CGNAT
	netip.MustParsePrefix("192.0.0.0/24"),    // IETF assignments
	netip.MustParsePrefix("192.0.2.0/24"),    // documentation
	netip.MustParsePrefix("198.18.0.0/15"),   // benchmarking
	netip.MustParsePrefix("198.51.100.0/24"), // documentation
	netip.MustParsePrefix("203.0.113.0/24"),  // documentation
	netip.MustParsePrefix("224.0.0.0/4"),     // multicast
	netip.MustParsePrefix("240.0.0.0/4"),     // reserved
	netip.MustParsePrefix("::1/128"),
	netip.MustParsePrefix("::/128"),
	netip.MustParsePrefix("fe80::/10"),
	netip.MustParsePrefix("fc00::/7"),
}

// IsPrivateIP reports whether ip is private, loopback or otherwise
// reserved. IPv4-mapped IPv6 addresses are checked as IPv4. A nil or
// invalid ip counts as private.
func IsPrivateIP(ip net.IP) bool {
	addr, ok := netip.AddrFromSlice(ip)
	if !ok {
		return true
	}
	addr = addr.Unmap()
	for _, p := range reservedPrefixes {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

// MaxRedirectURLLength is the maximum allowed length for a redirect target.
const MaxRedirectURLLength = 2048

// Redirect target errors.
var (
	ErrRedirectScheme   = errors.New("URL must use http or https scheme")
	ErrRedirectHost     = errors.New("URL must have a hostname")
	ErrRedirectUserinfo = errors.New("URL must not contain credentials")
	ErrRedirectPrivate  = errors.New("private, reserved or localhost targets are not allowed")
)

// ValidateRedirectURL checks that a QR redirect target is an absolute
// http(s) URL with a host and no userinfo. Private hosts are rejected unless
// allowPrivate is set.
func ValidateRedirectURL(rawURL string, allowPrivate bool) error {
	if len(rawURL) > MaxRedirectURLLength {
		return fmt.Errorf("URL exceeds maximum length of %d characters", MaxRedirectURLLength)
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL format: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ErrRedirectScheme
	}
	// "https://museum.example@evil.example/" reads as the museum on a poster.
	if u.User != nil {
		return ErrRedirectUserinfo
	}

	host := strings.ToLower(u.Hostname())
	if host == "" {
		return ErrRedirectHost
	}
	if allowPrivate {
		return nil
	}

	if host == "localhost" || strings.HasSuffix(host, ".localhost") {
		return ErrRedirectPrivate
	}
	if ip := net.ParseIP(host); ip != nil && IsPrivateIP(ip) {
		return ErrRedirectPrivate
	}
	return nil
}
