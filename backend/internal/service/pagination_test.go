package service

import (
	"math"
	"testing"

	"github.com/itchan-dev/threads/shared/config"
	"github.com/itchan-dev/threads/shared/domain"
	"github.com/stretchr/testify/assert"
)

func TestNormalizePage(t *testing.T) {
	cfg := config.Public{FeedPageSize: 20}
	capped := config.Public{FeedPageSize: 20, MaxPageSize: 50}

	testCases := []struct {
		name     string
		page     domain.Page
		cfg      config.Public
		expected domain.Page
	}{
		{"Zero values use defaults", domain.Page{}, cfg, domain.Page{Number: 1, Size: 20}},
		{"Negative number", domain.Page{Number: -3, Size: 5}, cfg, domain.Page{Number: 1, Size: 5}},
		{"Negative size", domain.Page{Number: 2, Size: -1}, cfg, domain.Page{Number: 2, Size: 20}},
		{"Uncapped large size", domain.Page{Number: 1, Size: 500}, cfg, domain.Page{Number: 1, Size: 500}},
		{"Capped large size", domain.Page{Number: 1, Size: 500}, capped, domain.Page{Number: 1, Size: 50}},
		{"Below cap", domain.Page{Number: 3, Size: 10}, capped, domain.Page{Number: 3, Size: 10}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, normalizePage(tc.page, tc.cfg))
		})
	}
}

func TestWindow(t *testing.T) {
	testCases := []struct {
		name     string
		page     domain.Page
		expected domain.Window
		ok       bool
	}{
		{"First page", domain.Page{Number: 1, Size: 20}, domain.Window{Skip: 0, Limit: 20}, true},
		{"Third page", domain.Page{Number: 3, Size: 20}, domain.Window{Skip: 40, Limit: 20}, true},
		{"Odd size", domain.Page{Number: 2, Size: 7}, domain.Window{Skip: 7, Limit: 7}, true},
		{"Largest representable skip", domain.Page{Number: math.MaxInt64/20 + 1, Size: 20}, domain.Window{Skip: math.MaxInt64 / 20 * 20, Limit: 20}, true},
		{"Skip overflows", domain.Page{Number: math.MaxInt64 / 10, Size: 20}, domain.Window{}, false},
		{"Max page number", domain.Page{Number: math.MaxInt64, Size: 1}, domain.Window{}, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			window, ok := Window(tc.page)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.expected, window)
			if ok {
				assert.GreaterOrEqual(t, window.Skip, int64(0))
			}
		})
	}
}

func TestHasNext(t *testing.T) {
	testCases := []struct {
		name     string
		total    int64
		window   domain.Window
		returned int
		expected bool
	}{
		{"Empty store", 0, domain.Window{Skip: 0, Limit: 20}, 0, false},
		{"Exactly one page", 20, domain.Window{Skip: 0, Limit: 20}, 20, false},
		{"One more than a page", 21, domain.Window{Skip: 0, Limit: 20}, 20, true},
		{"Partial last page", 25, domain.Window{Skip: 20, Limit: 20}, 5, false},
		{"Past the end", 25, domain.Window{Skip: 40, Limit: 20}, 0, false},
		{"Middle page", 100, domain.Window{Skip: 20, Limit: 20}, 20, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, HasNext(tc.total, tc.window, tc.returned))
		})
	}
}
