package service

import (
	"math"

	"github.com/itchan-dev/threads/shared/config"
	"github.com/itchan-dev/threads/shared/domain"
)

// normalizePage applies defaults: page numbers start at 1, a missing size
// falls back to feed_page_size, and max_page_size caps it when set.
func normalizePage(page domain.Page, cfg config.Public) domain.Page {
	page.Number = max(1, page.Number)
	if page.Size < 1 {
		page.Size = cfg.FeedPageSize
	}
	if cfg.MaxPageSize > 0 {
		page.Size = min(page.Size, cfg.MaxPageSize)
	}
	return page
}

// Window converts a normalized page into the skip/limit applied to sorted root threads.
// ok is false when the skip does not fit in an int64; no thread can be that far.
func Window(page domain.Page) (window domain.Window, ok bool) {
	size := int64(page.Size)
	skipped := int64(page.Number - 1)
	if size > 0 && skipped > math.MaxInt64/size {
		return domain.Window{}, false
	}
	return domain.Window{Skip: skipped * size, Limit: size}, true
}

// HasNext reports whether root threads exist beyond the returned window.
func HasNext(total int64, window domain.Window, returned int) bool {
	return total > window.Skip+int64(returned)
}
