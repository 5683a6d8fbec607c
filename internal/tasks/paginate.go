package tasks

import (
	"context"
	"fmt"

	"github.com/desertthunder/spotsort/internal/shared"
)

// PageFunc fetches one page of items starting at offset. It returns the page
// items, the offset of the following page (nil on the final page), and the
// collection total as reported by the catalog.
type PageFunc[T any] func(ctx context.Context, offset int) (items []T, next *int, total int, err error)

// Paginate walks a paginated collection to exhaustion and returns every item
// in catalog order.
//
// limit > 0 caps the number of items collected; no request is issued for
// pages entirely past the cap, and a final page that overshoots it is
// truncated. An empty first page yields an empty result and no error. Any
// page error aborts the walk and discards items collected so far.
func Paginate[T any](ctx context.Context, fetch PageFunc[T], limit int) ([]T, error) {
	if fetch == nil {
		return nil, fmt.Errorf("%w: nil page fetcher", shared.ErrInvalidArgument)
	}

	var collected []T
	offset := 0

	for {
		items, next, _, err := fetch(ctx, offset)
		if err != nil {
			return nil, fmt.Errorf("page at offset %d: %w", offset, err)
		}

		collected = append(collected, items...)

		if limit > 0 && len(collected) >= limit {
			return collected[:limit], nil
		}

		if next == nil || len(items) == 0 {
			return collected, nil
		}
		offset = *next
	}
}
