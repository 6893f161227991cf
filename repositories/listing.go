package repositories

import (
	"campus-market/domain"
	"campus-market/errors"
	"context"
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

func listingKey(id string) string {
	return "listing:" + id
}

func getListing(txn *badger.Txn, id string) (domain.Listing, error) {
	var listing domain.Listing
	err := get(txn, listingKey(id), func(value []byte) error {
		var err error
		listing, err = decodeListing(value)
		return err
	})
	return listing, err
}

func (s BadgerStore) CreateListing(_ context.Context, listing domain.Listing) error {
	return s.update("create listing", func(txn *badger.Txn) error {
		found, err := exists(txn, listingKey(listing.ID))
		if err != nil {
			return err
		}
		if found {
			return fmt.Errorf("listing %s: %w", listing.ID, errors.ErrAlreadyExists)
		}
		return txn.Set([]byte(listingKey(listing.ID)), encodeListing(listing))
	})
}

func (s BadgerStore) GetListing(_ context.Context, id string) (domain.Listing, error) {
	var listing domain.Listing
	err := s.view("get listing", func(txn *badger.Txn) error {
		var err error
		listing, err = getListing(txn, id)
		return err
	})
	return listing, err
}

// UpdateListingStatus reads and rewrites the listing in one transaction.
// Two confirmations racing on the same listing both read it, so only the first
// commit succeeds; the second is aborted by badger and surfaces as ErrConflict.
func (s BadgerStore) UpdateListingStatus(_ context.Context, id string, expected, next domain.ListingStatus,
	update domain.ListingUpdate) (domain.Listing, error) {
	var updated domain.Listing
	err := s.update("update listing status", func(txn *badger.Txn) error {
		listing, err := getListing(txn, id)
		if err != nil {
			return err
		}
		if listing.Status != expected {
			return fmt.Errorf("%w: listing %s is %s, expected %s",
				errors.ErrConflict, id, listing.Status, expected)
		}
		updated = update.Apply(listing, next, s.now())
		return txn.Set([]byte(listingKey(id)), encodeListing(updated))
	})
	if err != nil {
		return domain.Listing{}, err
	}
	s.log.Debug("Listing status updated", "listing_id", id, "from", expected, "to", next)
	return updated, nil
}
