package repositories

import (
	"campus-market/domain"
	"campus-market/errors"
	"context"
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

func reviewKey(reviewerID, listingID string) string {
	return fmt.Sprintf("review:%s:%s", reviewerID, listingID)
}

func sellerReviewPrefix(sellerID string) string {
	return fmt.Sprintf("idx:review:%s:", sellerID)
}

func (s BadgerStore) GetReview(_ context.Context, reviewerID, listingID string) (domain.Review, error) {
	var review domain.Review
	err := s.view("get review", func(txn *badger.Txn) error {
		return get(txn, reviewKey(reviewerID, listingID), func(value []byte) error {
			var err error
			review, err = decodeReview(value)
			return err
		})
	})
	return review, err
}

// InsertReview stores the review under its (reviewer, listing) key. The key is
// the uniqueness constraint: an existing key fails with ErrAlreadyExists, and a
// concurrent insert of the same key is aborted at commit.
func (s BadgerStore) InsertReview(_ context.Context, review domain.Review) (domain.Review, error) {
	key := reviewKey(review.ReviewerID, review.ListingID)
	if review.CreatedAt.IsZero() {
		review.CreatedAt = s.now()
	}
	err := s.update("insert review", func(txn *badger.Txn) error {
		found, err := exists(txn, key)
		if err != nil {
			return err
		}
		if found {
			return fmt.Errorf("review by %s for listing %s: %w",
				review.ReviewerID, review.ListingID, errors.ErrAlreadyExists)
		}
		seq, _, err := s.ids.next(review.CreatedAt)
		if err != nil {
			return err
		}
		if err = txn.Set([]byte(key), encodeReview(review)); err != nil {
			return err
		}
		return txn.Set([]byte(sellerReviewPrefix(review.SellerID)+seq.String()), []byte(key))
	})
	if err != nil {
		return domain.Review{}, err
	}
	return review, nil
}

func (s BadgerStore) ListSellerReviews(_ context.Context, sellerID string) ([]domain.Review, error) {
	var reviews []domain.Review
	err := s.view("list seller reviews", func(txn *badger.Txn) error {
		var keys []string
		err := scan(txn, sellerReviewPrefix(sellerID), true, func(_, value []byte) error {
			keys = append(keys, string(value))
			return nil
		})
		if err != nil {
			return err
		}
		for _, key := range keys {
			err = get(txn, key, func(value []byte) error {
				review, err := decodeReview(value)
				if err != nil {
					return err
				}
				reviews = append(reviews, review)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return reviews, nil
}
