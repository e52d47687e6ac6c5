// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package syncuc

import (
	"context"
	"fmt"
)

// lookupChunk is the maximum number of external ids which are passed
// to one IDs query, keeping the statements and their parameters small.
const lookupChunk = 200

// lookupFunc maps a chunk of external ids to their local IDs.
type lookupFunc func(ctx context.Context, externalIDs []string) (map[string]int64, error)

// lookup resolves the distinct non-empty ids in chunks and merges the
// results in one map. Unknown ids are absent from the map.
func lookup(ctx context.Context, ids []string, f lookupFunc) (map[string]int64, error) {
	ids = distinct(ids)
	m := make(map[string]int64, len(ids))
	for start := 0; start < len(ids); start += lookupChunk {
		end := min(start+lookupChunk, len(ids))
		chunk, err := f(ctx, ids[start:end])
		if err != nil {
			return nil, fmt.Errorf("looking up ids [%d:%d]: %w", start, end, err)
		}
		for k, v := range chunk {
			m[k] = v
		}
	}
	return m, nil
}

func distinct(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// collectIDs extracts one id from each record.
func collectIDs[T any](recs []T, id func(*T) string) []string {
	ids := make([]string, 0, len(recs))
	for i := range recs {
		ids = append(ids, id(&recs[i]))
	}
	return ids
}
