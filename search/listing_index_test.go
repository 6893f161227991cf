package search

import (
	"campus-market/domain"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

func newTestIndex(t *testing.T) *ListingIndex {
	t.Helper()
	writer, err := OpenWriter(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = writer.Close() })
	return NewListingIndex(writer, logs.GetLoggerFromLevel(slog.LevelDebug))
}

func listing(id, title, description string, category domain.Category) domain.Listing {
	return domain.Listing{
		ID: id, SellerID: "seller-1", Title: title, Description: description,
		Category: category, Status: domain.ListingActive, CreatedAt: time.Now().UTC(),
	}
}

func TestListingIndex_Search(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	index := newTestIndex(t)

	// Given three active listings
	req.NoError(index.Index(listing("l-1", "Wooden desk", "Solid oak, a few scratches", domain.CategoryFurniture)))
	req.NoError(index.Index(listing("l-2", "Desk lamp", "LED, warm light", domain.CategoryElectronics)))
	req.NoError(index.Index(listing("l-3", "Calculus textbook", "Barely used, fits a desk drawer", domain.CategoryTextbooks)))

	tests := []struct {
		name     string
		query    string
		category domain.Category
		expected []string
	}{
		{name: "Title match ranks first", query: "desk", expected: []string{"l-1", "l-2", "l-3"}},
		{name: "Category filter", query: "desk", category: domain.CategoryElectronics, expected: []string{"l-2"}},
		{name: "Description only", query: "oak", expected: []string{"l-1"}},
		{name: "Case insensitive", query: "CALCULUS", expected: []string{"l-3"}},
		{name: "No hit", query: "bicycle", expected: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ids, err := index.Search(ctx, tt.query, tt.category, 10)
			require.NoError(t, err)
			if tt.name == "Title match ranks first" {
				require.ElementsMatch(t, tt.expected, ids)
				require.NotEqual(t, "l-3", ids[0])
				return
			}
			require.Equal(t, tt.expected, ids)
		})
	}
}

func TestListingIndex_OnlyActiveListings(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	index := newTestIndex(t)

	desk := listing("l-1", "Wooden desk", "", domain.CategoryFurniture)
	req.NoError(index.Index(desk))
	req.NoError(index.Index(listing("l-2", "Standing desk", "", domain.CategoryFurniture)))

	// When the first desk is sold and re-indexed
	desk.Status = domain.ListingSold
	req.NoError(index.Index(desk))

	// Then it no longer shows up
	ids, err := index.Search(ctx, "desk", "", 10)
	req.NoError(err)
	req.Equal([]string{"l-2"}, ids)

	// And an empty query lists every active listing of the category
	ids, err = index.Search(ctx, "", domain.CategoryFurniture, 10)
	req.NoError(err)
	req.Equal([]string{"l-2"}, ids)

	req.NoError(index.Remove("l-2"))
	ids, err = index.Search(ctx, "", "", 10)
	req.NoError(err)
	req.Empty(ids)
}

func TestParseQuery(t *testing.T) {
	tests := []struct {
		input    string
		expected Query
	}{
		{
			input:    "desk lamp --category Furniture --limit 5",
			expected: Query{Terms: "desk lamp", Category: domain.CategoryFurniture, Limit: 5},
		},
		{
			input:    "bike --limit nope --color red",
			expected: Query{Terms: "bike", Limit: DefaultLimit},
		},
		{
			input:    "",
			expected: Query{Limit: DefaultLimit},
		},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			query := ParseQuery(tt.input)
			tt.expected.RawInput = tt.input
			require.Equal(t, tt.expected, query)
		})
	}
}
