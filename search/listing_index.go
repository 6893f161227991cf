//go:generate go run go.uber.org/mock/mockgen -source=listing_index.go -destination=../mocks/mock_listing_index.go -package=mocks
package search

import (
	"campus-market/domain"
	"context"
	"fmt"
	"log/slog"

	"github.com/blugelabs/bluge"
)

const (
	fieldID          = "_id"
	fieldTitle       = "title"
	fieldDescription = "description"
	fieldCategory    = "category"
	fieldStatus      = "status"
	fieldSeller      = "seller_id"
)

// IListingIndex is the full-text index of listings.
// The store stays the source of truth, the index only returns candidate ids.
type IListingIndex interface {
	Index(listing domain.Listing) error
	Remove(listingID string) error
	// Search returns the ids of active listings matching query, best match first.
	// An empty query matches every active listing of the category.
	Search(ctx context.Context, query string, category domain.Category, limit int) ([]string, error)
}

type ListingIndex struct {
	writer *bluge.Writer
	log    *slog.Logger
}

func NewListingIndex(writer *bluge.Writer, log *slog.Logger) *ListingIndex {
	return &ListingIndex{writer: writer, log: log}
}

// OpenWriter opens (or creates) the on-disk index at path.
func OpenWriter(path string) (*bluge.Writer, error) {
	writer, err := bluge.OpenWriter(bluge.DefaultConfig(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open bluge writer: %w", err)
	}
	return writer, nil
}

// Index adds the listing or replaces its previous version.
func (i *ListingIndex) Index(listing domain.Listing) error {
	doc := bluge.NewDocument(listing.ID).
		AddField(bluge.NewTextField(fieldTitle, listing.Title).StoreValue()).
		AddField(bluge.NewTextField(fieldDescription, listing.Description)).
		AddField(bluge.NewKeywordField(fieldCategory, string(listing.Category)).StoreValue()).
		AddField(bluge.NewKeywordField(fieldStatus, string(listing.Status)).StoreValue()).
		AddField(bluge.NewKeywordField(fieldSeller, listing.SellerID))

	if err := i.writer.Update(doc.ID(), doc); err != nil {
		return fmt.Errorf("index listing %s: %w", listing.ID, err)
	}
	i.log.Debug("Listing indexed", "listing_id", listing.ID, "status", listing.Status)
	return nil
}

func (i *ListingIndex) Remove(listingID string) error {
	if err := i.writer.Delete(bluge.Identifier(listingID)); err != nil {
		return fmt.Errorf("remove listing %s: %w", listingID, err)
	}
	return nil
}

func (i *ListingIndex) Search(ctx context.Context, query string, category domain.Category, limit int) ([]string, error) {
	reader, err := i.writer.Reader()
	if err != nil {
		return nil, fmt.Errorf("open index reader: %w", err)
	}
	defer func() { _ = reader.Close() }()

	request := bluge.NewTopNSearch(limit, buildQuery(query, category))
	matches, err := reader.Search(ctx, request)
	if err != nil {
		return nil, fmt.Errorf("search listings: %w", err)
	}

	ids := make([]string, 0, limit)
	match, err := matches.Next()
	for err == nil && match != nil {
		visitErr := match.VisitStoredFields(func(field string, value []byte) bool {
			if field == fieldID {
				ids = append(ids, string(value))
				return false
			}
			return true
		})
		if visitErr != nil {
			return nil, fmt.Errorf("read search hit: %w", visitErr)
		}
		match, err = matches.Next()
	}
	if err != nil {
		return nil, fmt.Errorf("iterate search hits: %w", err)
	}
	return ids, nil
}

// buildQuery matches the terms on title (boosted) or description, restricted
// to active listings and optionally to one category.
func buildQuery(terms string, category domain.Category) bluge.Query {
	query := bluge.NewBooleanQuery()
	if terms == "" {
		query.AddMust(bluge.NewMatchAllQuery())
	} else {
		text := bluge.NewBooleanQuery().
			AddShould(bluge.NewMatchQuery(terms).SetField(fieldTitle).SetBoost(2)).
			AddShould(bluge.NewMatchQuery(terms).SetField(fieldDescription)).
			SetMinShould(1)
		query.AddMust(text)
	}
	if category != "" {
		query.AddMust(bluge.NewTermQuery(string(category)).SetField(fieldCategory))
	}
	query.AddMust(bluge.NewTermQuery(string(domain.ListingActive)).SetField(fieldStatus))
	return query
}
