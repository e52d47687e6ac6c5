// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package fleet

import (
	"context"
	"errors"
)

// ErrPagerDone is returned by NextPage when it is called after the
// last page was returned or after a failed page.
var ErrPagerDone = errors.New("no more pages")

// FetchFunc fetches the page which starts at the cursor. It returns
// the page records and the cursor of the next page, or an empty next
// cursor if this page was the last one. The first page is fetched
// with an empty cursor.
//
// Offset based endpoints may encode the offset of the next page as
// the cursor, so both pagination styles share the Pager type.
type FetchFunc[T any] func(
	ctx context.Context, cursor string,
) (page []T, next string, err error)

// Pager lazily iterates over the pages of a paginated resource.
// It fetches one page per NextPage call, so callers may persist each
// page before the next one is requested. A Pager is finite and can not
// be restarted. It is not safe for concurrent use.
type Pager[T any] struct {
	fetch  FetchFunc[T]
	cursor string
	more   bool
	pages  int
}

// NewPager creates a Pager which calls fetch for each page.
func NewPager[T any](fetch FetchFunc[T]) *Pager[T] {
	return &Pager[T]{fetch: fetch, more: true}
}

// More reports whether NextPage may return another page. It is true
// before the first page and false after the last page or an error.
func (p *Pager[T]) More() bool {
	return p.more
}

// Pages returns the number of pages which were fetched successfully.
func (p *Pager[T]) Pages() int {
	return p.pages
}

// NextPage fetches the next page. Errors are terminal, that is, the
// pager will not retry the failed page by itself.
func (p *Pager[T]) NextPage(ctx context.Context) ([]T, error) {
	if !p.more {
		return nil, ErrPagerDone
	}
	if err := ctx.Err(); err != nil {
		p.more = false
		return nil, err
	}
	page, next, err := p.fetch(ctx, p.cursor)
	if err != nil {
		p.more = false
		return nil, err
	}
	p.pages++
	p.cursor = next
	p.more = next != ""
	return page, nil
}

// Collect fetches all pages of p and returns their concatenation in
// page order. It fully materializes the result set, so it should be
// used only for resources with a bounded size.
func Collect[T any](ctx context.Context, p *Pager[T]) ([]T, error) {
	var all []T
	for p.More() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
	}
	return all, nil
}

// SinglePage returns a Pager with exactly one page of records.
// It is useful for fakes and for resources which are not paginated.
func SinglePage[T any](records []T) *Pager[T] {
	return NewPager(func(context.Context, string) ([]T, string, error) {
		return records, "", nil
	})
}
