// Package validate provides input validation for path and query
// parameters of the analytics API.
package validate

import (
	"errors"
	"fmt"
	"regexp"
	"unicode/utf8"
)

// Validation errors.
var (
	ErrEmpty             = errors.New("value is empty")
	ErrTooLong           = errors.New("value is too long")
	ErrInvalidCharacters = errors.New("value contains invalid characters")
)

// MaxSlugLength bounds workspace and lesson slugs.
const MaxSlugLength = 64

// MaxTokenLength bounds free-form filter tokens.
const MaxTokenLength = 64

var (
	slugPattern  = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
	tokenPattern = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)
)

// Slug validates a workspace or lesson slug taken from the URL path.
// Slugs are lowercase alphanumerics separated by single hyphens.
func Slug(s string) (string, error) {
	if s == "" {
		return "", ErrEmpty
	}
	if utf8.RuneCountInString(s) > MaxSlugLength {
		return "", fmt.Errorf("%w: maximum %d characters", ErrTooLong, MaxSlugLength)
	}
	if !slugPattern.MatchString(s) {
		return "", fmt.Errorf("%w: expected lowercase letters, digits and hyphens", ErrInvalidCharacters)
	}
	return s, nil
}

// FilterToken validates an optional query filter value such as an engine
// name, a BCP 47 language tag or a stop reason. Empty values pass through
// unchanged; they mean "no filter".
func FilterToken(s string) (string, error) {
	if s == "" {
		return "", nil
	}
	if utf8.RuneCountInString(s) > MaxTokenLength {
		return "", fmt.Errorf("%w: maximum %d characters", ErrTooLong, MaxTokenLength)
	}
	if !tokenPattern.MatchString(s) {
		return "", fmt.Errorf("%w: expected letters, digits, dots, underscores and hyphens", ErrInvalidCharacters)
	}
	return s, nil
}
