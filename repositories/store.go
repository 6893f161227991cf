//go:generate go run go.uber.org/mock/mockgen -source=store.go -destination=../mocks/mock_market_store.go -package=mocks
package repositories

import (
	"campus-market/domain"
	"campus-market/errors"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
)

type IListingRepository interface {
	CreateListing(ctx context.Context, listing domain.Listing) error
	GetListing(ctx context.Context, id string) (domain.Listing, error)
	// UpdateListingStatus is a compare-and-swap: the listing moves to next only
	// if its current status is expected, otherwise errors.ErrConflict is returned
	// and nothing is written.
	UpdateListingStatus(ctx context.Context, id string, expected, next domain.ListingStatus,
		update domain.ListingUpdate) (domain.Listing, error)
}

type IConversationRepository interface {
	// CreateConversation fails with errors.ErrAlreadyExists when the buyer
	// already has a conversation about the same listing (or with the same seller
	// for listing-less conversations).
	CreateConversation(ctx context.Context, conversation domain.Conversation) error
	GetConversation(ctx context.Context, id string) (domain.Conversation, error)
	FindConversation(ctx context.Context, listingID, sellerID, buyerID string) (domain.Conversation, error)
	// ListConversations returns the conversations the user takes part in as
	// buyer or seller, newest first.
	ListConversations(ctx context.Context, userID string) ([]domain.Conversation, error)
}

type IMessageRepository interface {
	// ListMessages returns the conversation history in ascending store order.
	ListMessages(ctx context.Context, conversationID string) ([]domain.Message, error)
	// AppendMessage assigns the message id and timestamp. Ids sort in append order.
	AppendMessage(ctx context.Context, conversationID, senderID string,
		messageType domain.MessageType, content string) (domain.Message, error)
}

type IReviewRepository interface {
	GetReview(ctx context.Context, reviewerID, listingID string) (domain.Review, error)
	// InsertReview fails with errors.ErrAlreadyExists if (reviewer, listing) was already reviewed.
	InsertReview(ctx context.Context, review domain.Review) (domain.Review, error)
	// ListSellerReviews returns the reviews received by a seller, newest first.
	ListSellerReviews(ctx context.Context, sellerID string) ([]domain.Review, error)
}

type IReportRepository interface {
	GetReport(ctx context.Context, reporterID, targetID string) (domain.Report, error)
	// InsertReport fails with errors.ErrAlreadyExists if (reporter, target) was already reported.
	InsertReport(ctx context.Context, report domain.Report) (domain.Report, error)
	// ListReports returns every report, newest first.
	ListReports(ctx context.Context) ([]domain.Report, error)
}

// IMarketStore is the persistence boundary of the marketplace.
// Missing rows are reported with errors.ErrNotFound and store failures with
// errors.ErrPersistence.
type IMarketStore interface {
	IListingRepository
	IConversationRepository
	IMessageRepository
	IReviewRepository
	IReportRepository

	// RunInTx runs fn against a store bound to a single transaction. Every write
	// made through tx commits together or not at all. A transaction aborted by
	// a concurrent commit returns errors.ErrConflict and is never retried.
	//
	// How concurrent transactions touching the same rows end depends on the
	// backend. BadgerStore is optimistic: when two transactions read then write
	// the same key, the second to commit aborts with errors.ErrConflict, even if
	// its writes would still be valid afterwards. The MySQL store takes row
	// locks on read, so the second transaction waits and then runs against the
	// committed state. Two buyers confirming a services listing (which stays
	// active) therefore both succeed on MySQL, while on Badger the loser gets
	// errors.ErrConflict and may simply retry.
	RunInTx(ctx context.Context, fn func(tx IMarketStore) error) error
}

// BadgerStore implements IMarketStore on BadgerDB.
//
// Key layout:
//
//	listing:{id}                        listing record
//	conv:{id}                           conversation record
//	idx:conv:{listing_id}:{buyer_id}    conversation id (uniqueness of buyer/listing)
//	idx:conv:direct:{seller}:{buyer}    conversation id (listing-less conversations)
//	idx:conv:user:{user_id}:{conv_id}   conversation id, once per participant (inbox)
//	head:{conversation_id}              id of the last appended message
//	msg:{conversation_id}:{ulid}        message record, ULIDs sort in append order
//	review:{reviewer_id}:{listing_id}   review record (uniqueness of reviewer/listing)
//	idx:review:{seller_id}:{ulid}       review key, by seller in insertion order
//	report:{reporter_id}:{target_id}    report record (uniqueness of reporter/target)
//
// Badger transactions are serializable snapshot isolated: two transactions
// reading then writing the same key cannot both commit, which is what makes
// UpdateListingStatus a real compare-and-swap and serialises appends per
// conversation through the head key.
type BadgerStore struct {
	db  *badger.DB
	txn *badger.Txn
	log *slog.Logger
	ids *idGenerator
	now func() time.Time
}

func NewBadgerStore(db *badger.DB, log *slog.Logger) BadgerStore {
	return BadgerStore{
		db:  db,
		log: log,
		ids: newIDGenerator(),
		now: func() time.Time { return time.Now().UTC() },
	}
}

func (s BadgerStore) RunInTx(ctx context.Context, fn func(tx IMarketStore) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.txn != nil {
		return fn(s)
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		bound := s
		bound.txn = txn
		return fn(bound)
	})
	return mapBadgerError("transaction", err)
}

// view runs fn in the bound transaction, or in a fresh read-only one.
func (s BadgerStore) view(op string, fn func(txn *badger.Txn) error) error {
	if s.txn != nil {
		return fn(s.txn)
	}
	return mapBadgerError(op, s.db.View(fn))
}

// update runs fn in the bound transaction, or in a fresh read-write one.
func (s BadgerStore) update(op string, fn func(txn *badger.Txn) error) error {
	if s.txn != nil {
		return fn(s.txn)
	}
	return mapBadgerError(op, s.db.Update(fn))
}

// get decodes the value stored at key. A missing key is errors.ErrNotFound.
func get(txn *badger.Txn, key string, decode func([]byte) error) error {
	item, err := txn.Get([]byte(key))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return fmt.Errorf("%s: %w", key, errors.ErrNotFound)
	}
	if err != nil {
		return err
	}
	return item.Value(decode)
}

// exists reports whether key is present. The lookup is part of the
// transaction's read set, so a concurrent insert of the same key conflicts.
func exists(txn *badger.Txn, key string) (bool, error) {
	_, err := txn.Get([]byte(key))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, badger.ErrKeyNotFound):
		return false, nil
	default:
		return false, err
	}
}

// scan visits every value under prefix, in key order or reversed.
func scan(txn *badger.Txn, prefix string, reverse bool, visit func(key, value []byte) error) error {
	options := badger.DefaultIteratorOptions
	options.Prefix = []byte(prefix)
	options.Reverse = reverse
	it := txn.NewIterator(options)
	defer it.Close()

	seek := []byte(prefix)
	if reverse {
		// Last possible key of the prefix range
		seek = append(seek, 0xFF)
	}
	for it.Seek(seek); it.ValidForPrefix([]byte(prefix)); it.Next() {
		item := it.Item()
		key := item.KeyCopy(nil)
		if err := item.Value(func(value []byte) error {
			return visit(key, value)
		}); err != nil {
			return err
		}
	}
	return nil
}

// mapBadgerError keeps workflow errors as they are, turns aborted transactions
// into errors.ErrConflict and wraps everything else as a persistence failure.
func mapBadgerError(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, badger.ErrConflict):
		return fmt.Errorf("%w: %s: transaction aborted by a concurrent write", errors.ErrConflict, op)
	case isWorkflowError(err):
		return err
	default:
		return errors.Persistence(op, err)
	}
}

func isWorkflowError(err error) bool {
	for _, target := range []error{
		errors.ErrNotFound, errors.ErrAlreadyExists, errors.ErrConflict,
		errors.ErrAuthorization, errors.ErrInvalidState, errors.ErrInvalidArgument,
		errors.ErrPersistence, context.Canceled, context.DeadlineExceeded,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
