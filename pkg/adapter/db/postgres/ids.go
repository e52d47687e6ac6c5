// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package postgres

import (
	"context"
	"fmt"
)

type idRow struct {
	ID         int64
	ExternalID string
}

// IDs maps the externalIDs of table rows to their local IDs. If the
// parkID is not zero, only the rows of that park are considered.
// Unknown external ids are absent from the returned map.
func IDs[Q Queryer](
	ctx context.Context, q Q, table string, parkID int64,
	externalIDs []string,
) (map[string]int64, error) {
	m := make(map[string]int64, len(externalIDs))
	if len(externalIDs) == 0 {
		return m, nil
	}
	var rows []idRow
	gdb := q.GORM(ctx).Table(table).Select("id", "external_id").Where(
		"external_id IN ?", externalIDs,
	)
	if parkID != 0 {
		gdb = gdb.Where("park_id = ?", parkID)
	}
	if err := gdb.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("finding %s ids: %w", table, err)
	}
	for _, r := range rows {
		m[r.ExternalID] = r.ID
	}
	return m, nil
}
