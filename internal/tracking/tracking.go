// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package tracking extracts visitor details (IP, device type) from requests
// for exhibit view logs, landing visits, and QR scans.
package tracking

import (
	"net"
	"net/http"
	"strings"

	"github.com/mileusna/useragent"
)

// Device types stored in logs.
const (
	DeviceDesktop = "Desktop"
	DeviceMobile  = "Mobile"
	DeviceTablet  = "Tablet"
	DeviceBot     = "Bot"
)

// Visit describes who made a public request.
type Visit struct {
	IP         string
	UserAgent  string
	DeviceType string
	Mobile     string // visitor mobile number, when the client supplied one
}

// FromRequest builds a Visit from r.
func FromRequest(r *http.Request) Visit {
	ua := r.UserAgent()
	return Visit{
		IP:         ClientIP(r),
		UserAgent:  ua,
		DeviceType: DeviceType(ua),
	}
}

// DeviceType classifies a user agent string.
func DeviceType(uaString string) string {
	ua := useragent.Parse(uaString)
	switch {
	case ua.Tablet:
		return DeviceTablet
	case ua.Mobile:
		return DeviceMobile
	case ua.Bot:
		return DeviceBot
	default:
		return DeviceDesktop
	}
}

// ClientIP returns the originating client address, preferring the first
// X-Forwarded-For entry, then X-Real-IP, then RemoteAddr.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}

	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}

	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
