// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package slug

import (
	"errors"
	"strings"
	"testing"
)

func TestGenerate(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Summer Wedding!!", "summer-wedding"},
		{"Hello, World! 2026", "hello-world-2026"},
		{"  leading and trailing  ", "leading-and-trailing"},
		{"multiple   spaces", "multiple-spaces"},
		{"already-a-key", "already-a-key"},
		{"UPPERCASE", "uppercase"},
		{"!!!", ""},
		{"", ""},
		{"émigré café", "migr-caf"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := Generate(tt.input)
			if got != tt.want {
				t.Errorf("Generate(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestUnique(t *testing.T) {
	t.Run("no conflict returns base", func(t *testing.T) {
		got, err := Unique("Summer Wedding!!", func(string) (bool, error) { return false, nil })
		if err != nil {
			t.Fatalf("Unique: %v", err)
		}
		if got != "summer-wedding" {
			t.Errorf("got %q, want %q", got, "summer-wedding")
		}
	})

	t.Run("single conflict appends -1", func(t *testing.T) {
		got, err := Unique("Summer Wedding", func(key string) (bool, error) {
			return key == "summer-wedding", nil
		})
		if err != nil {
			t.Fatalf("Unique: %v", err)
		}
		if got != "summer-wedding-1" {
			t.Errorf("got %q, want %q", got, "summer-wedding-1")
		}
	})

	t.Run("probes successive suffixes", func(t *testing.T) {
		taken := map[string]bool{
			"portraits":   true,
			"portraits-1": true,
			"portraits-2": true,
		}
		got, err := Unique("Portraits", func(key string) (bool, error) {
			return taken[key], nil
		})
		if err != nil {
			t.Fatalf("Unique: %v", err)
		}
		if got != "portraits-3" {
			t.Errorf("got %q, want %q", got, "portraits-3")
		}
	})

	t.Run("timestamp fallback after 100 attempts", func(t *testing.T) {
		calls := 0
		got, err := Unique("Busy", func(string) (bool, error) {
			calls++
			return true, nil
		})
		if err != nil {
			t.Fatalf("Unique: %v", err)
		}
		// base + 100 suffix probes, then unconditional timestamp key.
		if calls != 101 {
			t.Errorf("exists calls: got %d, want 101", calls)
		}
		if !strings.HasPrefix(got, "busy-") {
			t.Errorf("got %q, want busy-<timestamp>", got)
		}
	})

	t.Run("empty name falls back to untitled", func(t *testing.T) {
		got, err := Unique("!!!", func(string) (bool, error) { return false, nil })
		if err != nil {
			t.Fatalf("Unique: %v", err)
		}
		if got != "untitled" {
			t.Errorf("got %q, want %q", got, "untitled")
		}
	})

	t.Run("lookup error propagates", func(t *testing.T) {
		boom := errors.New("db down")
		_, err := Unique("Weddings", func(string) (bool, error) { return false, boom })
		if !errors.Is(err, boom) {
			t.Errorf("expected wrapped lookup error, got %v", err)
		}
	})
}
