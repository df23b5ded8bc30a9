package models

import (
	"strings"
	"time"
)

// Class groups routes that share one per-IP budget.
type Class string

const (
	// ClassRegistryLookup covers the live taxpayer check. Each request may
	// cost a paid DGI call.
	ClassRegistryLookup Class = "registry_lookup"
	// ClassProfileWrite covers profile create/update and the email check.
	ClassProfileWrite Class = "profile_write"
)

// Limit is the number of requests allowed per sliding window.
type Limit struct {
	Requests int
	Window   time.Duration
}

// Result is the outcome of one admission check.
type Result struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetAt    time.Time
	RetryAfter int // seconds, set only when denied
}

// ExceededResponse is the 429 body.
type ExceededResponse struct {
	Error      string `json:"error"`
	Message    string `json:"message"`
	RetryAfter int    `json:"retry_after"`
}

// Key builds the bucket key for an IP within a class.
// Colons in the IP (IPv6) are escaped so they cannot forge another segment.
func Key(class Class, ip string) string {
	return "fiscalid:rl:" + string(class) + ":" + strings.ReplaceAll(ip, ":", "_")
}

// RetryAfterSeconds rounds the wait up to whole seconds, never below one.
func RetryAfterSeconds(now, resetAt time.Time) int {
	d := resetAt.Sub(now)
	secs := int((d + time.Second - 1) / time.Second)
	if secs < 1 {
		return 1
	}
	return secs
}
