// Copyright (c) 2025 Resmirror

// Package assetdb resolves asset database URL patterns such as
// db://internal/resources/**/* to asset uuids.
package assetdb

import (
	"context"
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// ErrBadPattern is returned for URL patterns doublestar cannot parse
var ErrBadPattern = doublestar.ErrBadPattern

// Querier looks up the assets whose URL matches a pattern.
// Results are ordered by URL.
type Querier interface {
	QueryAssets(ctx context.Context, pattern string) ([]string, error)
}

// Source is a Querier backed by a resource that must be released
type Source interface {
	Querier
	Close() error
}

// Row is one entry of the asset database
type Row struct {
	UUID string `json:"uuid"`
	URL  string `json:"url"`
}

// Match reports whether url matches pattern. Both must use the same scheme;
// the remainder is matched with doublestar semantics, so ** spans directories.
func Match(pattern, url string) bool {
	pScheme, pPath := splitScheme(pattern)
	uScheme, uPath := splitScheme(url)
	if pScheme != uScheme {
		return false
	}
	ok, err := doublestar.Match(pPath, uPath)
	return err == nil && ok
}

func validatePattern(pattern string) error {
	_, p := splitScheme(pattern)
	if p == "" || !doublestar.ValidatePattern(p) {
		return fmt.Errorf("%w: %q", ErrBadPattern, pattern)
	}
	return nil
}

func splitScheme(s string) (string, string) {
	if scheme, rest, ok := strings.Cut(s, "://"); ok {
		return scheme, rest
	}
	return "", s
}

// literalPrefix returns the part of pattern before its first glob metacharacter
func literalPrefix(pattern string) string {
	if i := strings.IndexAny(pattern, `*?[{\`); i >= 0 {
		return pattern[:i]
	}
	return pattern
}

// filterRows keeps the uuids of rows matching pattern, preserving row order
// and dropping duplicate uuids
func filterRows(rows []Row, pattern string) []string {
	seen := make(map[string]bool)
	var uuids []string
	for _, r := range rows {
		if r.UUID == "" || seen[r.UUID] {
			continue
		}
		if Match(pattern, r.URL) {
			seen[r.UUID] = true
			uuids = append(uuids, r.UUID)
		}
	}
	return uuids
}
