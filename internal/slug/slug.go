// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package slug provides URL-friendly key generation from arbitrary strings.
package slug

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

var (
	// nonAlphanumeric matches anything that isn't a letter, digit, or space.
	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9\s-]`)
	// multipleHyphens collapses consecutive hyphens into one.
	multipleHyphens = regexp.MustCompile(`-{2,}`)
)

// maxUniqueAttempts caps suffix probing before falling back to a
// timestamp-suffixed key.
const maxUniqueAttempts = 100

// Generate creates a URL-friendly key from the given string.
// Example: "Summer Wedding!!" → "summer-wedding"
func Generate(s string) string {
	result := strings.ToLower(strings.TrimSpace(s))
	result = nonAlphanumeric.ReplaceAllString(result, "")
	result = strings.ReplaceAll(result, " ", "-")
	result = multipleHyphens.ReplaceAllString(result, "-")
	result = strings.Trim(result, "-")
	return result
}

// Unique derives a key from name that does not collide with any existing
// key at the moment of check. exists reports whether a candidate key is
// already taken; a lookup error counts as taken so we never return a key
// we could not verify. After 100 suffix attempts a timestamp suffix
// guarantees termination.
//
// This is best-effort only: two concurrent callers racing the same name
// can both pass the check. The categories.key unique constraint is the
// authoritative guard; callers must treat a unique-violation on insert
// as the conflict signal.
func Unique(name string, exists func(key string) (bool, error)) (string, error) {
	base := Generate(name)
	if base == "" {
		base = "untitled"
	}

	taken, err := exists(base)
	if err != nil {
		return "", fmt.Errorf("check key %q: %w", base, err)
	}
	if !taken {
		return base, nil
	}

	for i := 1; i <= maxUniqueAttempts; i++ {
		candidate := fmt.Sprintf("%s-%d", base, i)
		taken, err := exists(candidate)
		if err != nil {
			return "", fmt.Errorf("check key %q: %w", candidate, err)
		}
		if !taken {
			return candidate, nil
		}
	}

	return fmt.Sprintf("%s-%d", base, time.Now().UnixMilli()), nil
}
