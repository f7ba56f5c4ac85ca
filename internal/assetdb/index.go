// Copyright (c) 2025 Resmirror

package assetdb

import (
	"context"
	"sort"
)

// IndexQuerier reads an exported asset index: a JSON array of {uuid, url}.
// The file is read on every query so a re-export is picked up without restart.
type IndexQuerier struct {
	path string
}

// NewIndexQuerier creates a querier over the index file at path
func NewIndexQuerier(path string) *IndexQuerier {
	return &IndexQuerier{path: path}
}

// QueryAssets returns the uuids whose url matches pattern
func (q *IndexQuerier) QueryAssets(ctx context.Context, pattern string) ([]string, error) {
	if err := validatePattern(pattern); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rows, err := ReadIndex(q.path)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].URL < rows[j].URL })

	return filterRows(rows, pattern), nil
}

// Close is a no-op
func (q *IndexQuerier) Close() error {
	return nil
}
