// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package syncuc

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDedupeKeepsLastValueAtFirstPosition(t *testing.T) {
	type row struct{ k, v string }
	rows := []row{{"a", "1"}, {"b", "2"}, {"a", "3"}, {"c", "4"}, {"b", "5"}}
	got := dedupe(rows, func(r *row) string { return r.k })
	assert.Equal(t, []row{{"a", "3"}, {"b", "5"}, {"c", "4"}}, got)
	assert.Equal(t, "1", rows[0].v, "input is not modified")
}

func TestLookupChunksDistinctIDs(t *testing.T) {
	var ids []string
	for i := 0; i < 450; i++ {
		ids = append(ids, fmt.Sprintf("id-%d", i), "")
	}
	ids = append(ids, "id-0")
	var chunks []int
	m, err := lookup(context.Background(), ids, func(_ context.Context, chunk []string) (map[string]int64, error) {
		chunks = append(chunks, len(chunk))
		out := make(map[string]int64)
		for _, id := range chunk {
			if id != "id-7" {
				out[id] = int64(len(id))
			}
		}
		return out, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int{200, 200, 50}, chunks)
	assert.Len(t, m, 449)
	assert.NotContains(t, m, "id-7")
}
