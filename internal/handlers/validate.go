package handlers

import (
	"strings"
	"unicode/utf8"
)

// Validation limits for category and media fields.
const (
	maxCategoryNameLen = 120
	maxDescriptionLen  = 2_000
	maxMediaTitleLen   = 300
)

// validateCategoryName checks a category name and returns the first error
// found, or "" when valid.
func validateCategoryName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "Name is required."
	}
	if utf8.RuneCountInString(name) > maxCategoryNameLen {
		return "Name is too long (max 120 characters)."
	}
	return ""
}

// validateDescription checks an optional description field.
func validateDescription(desc string) string {
	if utf8.RuneCountInString(desc) > maxDescriptionLen {
		return "Description is too long (max 2,000 characters)."
	}
	return ""
}

// validateMediaTitle checks a media title derived from the upload filename.
func validateMediaTitle(title string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return "Title is required."
	}
	if utf8.RuneCountInString(title) > maxMediaTitleLen {
		return "Title is too long (max 300 characters)."
	}
	return ""
}
