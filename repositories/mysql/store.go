// Package mysql implements the marketplace store on MySQL.
//
// Uniqueness (one conversation per thread, one review per reviewer and listing,
// one report per reporter and target) is enforced by UNIQUE keys, listing
// status changes are conditional UPDATEs, and appends inside a transaction lock
// the conversation row so checks made on the history hold until commit.
// The DSN must carry parseTime=true.
package mysql

import (
	"campus-market/domain"
	"campus-market/errors"
	"campus-market/repositories"
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"
	"strings"
	"time"

	driver "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"github.com/oklog/ulid/v2"
	"github.com/samber/lo"
)

//go:embed schema.sql
var schema string

const (
	errDuplicateEntry  = 1062
	errLockWaitTimeout = 1205
	errDeadlock        = 1213
)

type Store struct {
	db   *sqlx.DB
	q    sqlx.ExtContext
	inTx bool
	log  *slog.Logger
	now  func() time.Time
}

// Open connects to MySQL and checks the connection.
func Open(ctx context.Context, dsn string) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, "mysql", dsn)
	if err != nil {
		return nil, errors.Persistence("connect", err)
	}
	return db, nil
}

func NewStore(db *sqlx.DB, log *slog.Logger) Store {
	return Store{
		db:  db,
		q:   db,
		log: log,
		now: func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) },
	}
}

// Migrate creates the tables if they do not exist yet.
func (s Store) Migrate(ctx context.Context) error {
	for _, statement := range strings.Split(schema, ";") {
		if strings.TrimSpace(statement) == "" {
			continue
		}
		if _, err := s.db.ExecContext(ctx, statement); err != nil {
			return errors.Persistence("migrate", err)
		}
	}
	return nil
}

func (s Store) RunInTx(ctx context.Context, fn func(tx repositories.IMarketStore) error) error {
	if s.inTx {
		return fn(s)
	}
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return mapError("begin", err)
	}
	bound := s
	bound.q = tx
	bound.inTx = true
	if err = fn(bound); err != nil {
		if rollbackErr := tx.Rollback(); rollbackErr != nil {
			s.log.Warn("Rollback failed", "error", rollbackErr)
		}
		return err
	}
	return mapError("commit", tx.Commit())
}

// lockClause makes reads inside a transaction take row locks.
func (s Store) lockClause() string {
	if s.inTx {
		return " FOR UPDATE"
	}
	return ""
}

type listingRow struct {
	ID            string         `db:"id"`
	SellerID      string         `db:"seller_id"`
	Title         string         `db:"title"`
	Description   string         `db:"description"`
	PriceCents    int64          `db:"price_cents"`
	Category      string         `db:"category"`
	Status        string         `db:"status"`
	SoldToBuyerID sql.NullString `db:"sold_to_buyer_id"`
	TimesSold     int            `db:"times_sold"`
	CreatedAt     time.Time      `db:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at"`
}

func (r listingRow) toDomain() domain.Listing {
	listing := domain.Listing{
		ID:          r.ID,
		SellerID:    r.SellerID,
		Title:       r.Title,
		Description: r.Description,
		PriceCents:  r.PriceCents,
		Category:    domain.Category(r.Category),
		Status:      domain.ListingStatus(r.Status),
		TimesSold:   r.TimesSold,
		CreatedAt:   r.CreatedAt.UTC(),
		UpdatedAt:   r.UpdatedAt.UTC(),
	}
	if r.SoldToBuyerID.Valid {
		listing.SoldToBuyerID = lo.ToPtr(r.SoldToBuyerID.String)
	}
	return listing
}

const listingColumns = `id, seller_id, title, description, price_cents, category, status,
	sold_to_buyer_id, times_sold, created_at, updated_at`

func (s Store) CreateListing(ctx context.Context, listing domain.Listing) error {
	if listing.UpdatedAt.IsZero() {
		listing.UpdatedAt = listing.CreatedAt
	}
	_, err := s.q.ExecContext(ctx, `INSERT INTO listings (`+listingColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		listing.ID, listing.SellerID, listing.Title, listing.Description, listing.PriceCents,
		listing.Category, listing.Status, listing.SoldToBuyerID, listing.TimesSold,
		listing.CreatedAt, listing.UpdatedAt)
	return mapError("create listing", err)
}

func (s Store) GetListing(ctx context.Context, id string) (domain.Listing, error) {
	var row listingRow
	err := sqlx.GetContext(ctx, s.q, &row,
		`SELECT `+listingColumns+` FROM listings WHERE id = ?`+s.lockClause(), id)
	if err != nil {
		return domain.Listing{}, mapError("get listing "+id, err)
	}
	return row.toDomain(), nil
}

// UpdateListingStatus is a single conditional UPDATE: the WHERE clause on the
// expected status makes the database arbitrate concurrent confirmations.
func (s Store) UpdateListingStatus(ctx context.Context, id string, expected, next domain.ListingStatus,
	update domain.ListingUpdate) (domain.Listing, error) {
	increment := lo.Ternary(update.IncrementTimesSold, 1, 0)
	result, err := s.q.ExecContext(ctx, `UPDATE listings
		SET status = ?, sold_to_buyer_id = COALESCE(?, sold_to_buyer_id),
		    times_sold = times_sold + ?, updated_at = ?
		WHERE id = ? AND status = ?`,
		next, update.SoldToBuyerID, increment, s.now(), id, expected)
	if err != nil {
		return domain.Listing{}, mapError("update listing status", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return domain.Listing{}, mapError("update listing status", err)
	}

	listing, err := s.GetListing(ctx, id)
	if err != nil {
		return domain.Listing{}, err
	}
	if affected == 0 {
		return domain.Listing{}, fmt.Errorf("%w: listing %s is %s, expected %s",
			errors.ErrConflict, id, listing.Status, expected)
	}
	return listing, nil
}

type conversationRow struct {
	ID        string         `db:"id"`
	BuyerID   string         `db:"buyer_id"`
	SellerID  string         `db:"seller_id"`
	ListingID sql.NullString `db:"listing_id"`
	CreatedAt time.Time      `db:"created_at"`
}

func (r conversationRow) toDomain() domain.Conversation {
	return domain.Conversation{
		ID:        r.ID,
		BuyerID:   r.BuyerID,
		SellerID:  r.SellerID,
		ListingID: r.ListingID.String,
		CreatedAt: r.CreatedAt.UTC(),
	}
}

func threadKey(listingID, sellerID, buyerID string) string {
	if listingID == "" {
		return fmt.Sprintf("direct:%s:%s", sellerID, buyerID)
	}
	return fmt.Sprintf("listing:%s:%s", listingID, buyerID)
}

func (s Store) CreateConversation(ctx context.Context, conversation domain.Conversation) error {
	_, err := s.q.ExecContext(ctx, `INSERT INTO conversations
		(id, thread_key, buyer_id, seller_id, listing_id, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		conversation.ID,
		threadKey(conversation.ListingID, conversation.SellerID, conversation.BuyerID),
		conversation.BuyerID, conversation.SellerID,
		sql.NullString{String: conversation.ListingID, Valid: conversation.ListingID != ""},
		conversation.CreatedAt)
	return mapError("create conversation", err)
}

func (s Store) GetConversation(ctx context.Context, id string) (domain.Conversation, error) {
	var row conversationRow
	err := sqlx.GetContext(ctx, s.q, &row, `SELECT id, buyer_id, seller_id, listing_id, created_at
		FROM conversations WHERE id = ?`+s.lockClause(), id)
	if err != nil {
		return domain.Conversation{}, mapError("get conversation "+id, err)
	}
	return row.toDomain(), nil
}

func (s Store) FindConversation(ctx context.Context, listingID, sellerID, buyerID string) (domain.Conversation, error) {
	var row conversationRow
	err := sqlx.GetContext(ctx, s.q, &row, `SELECT id, buyer_id, seller_id, listing_id, created_at
		FROM conversations WHERE thread_key = ?`, threadKey(listingID, sellerID, buyerID))
	if err != nil {
		return domain.Conversation{}, mapError("find conversation", err)
	}
	return row.toDomain(), nil
}

// ListConversations returns every thread the user takes part in, newest first.
func (s Store) ListConversations(ctx context.Context, userID string) ([]domain.Conversation, error) {
	var rows []conversationRow
	err := sqlx.SelectContext(ctx, s.q, &rows, `SELECT id, buyer_id, seller_id, listing_id, created_at
		FROM conversations WHERE buyer_id = ? OR seller_id = ?
		ORDER BY created_at DESC, id`, userID, userID)
	if err != nil {
		return nil, mapError("list conversations of "+userID, err)
	}
	return lo.Map(rows, func(row conversationRow, _ int) domain.Conversation {
		return row.toDomain()
	}), nil
}

type messageRow struct {
	Seq            int64     `db:"seq"`
	ID             string    `db:"id"`
	ConversationID string    `db:"conversation_id"`
	SenderID       string    `db:"sender_id"`
	Content        string    `db:"content"`
	Type           string    `db:"type"`
	CreatedAt      time.Time `db:"created_at"`
}

func (r messageRow) toDomain() domain.Message {
	return domain.Message{
		ID:             r.ID,
		ConversationID: r.ConversationID,
		SenderID:       r.SenderID,
		Content:        r.Content,
		Type:           domain.MessageType(r.Type),
		CreatedAt:      r.CreatedAt.UTC(),
	}
}

// ListMessages orders by the AUTO_INCREMENT sequence assigned at insert, which
// cannot tie the way two timestamps can.
func (s Store) ListMessages(ctx context.Context, conversationID string) ([]domain.Message, error) {
	var rows []messageRow
	err := sqlx.SelectContext(ctx, s.q, &rows, `SELECT seq, id, conversation_id, sender_id, content, type, created_at
		FROM messages WHERE conversation_id = ? ORDER BY seq`, conversationID)
	if err != nil {
		return nil, mapError("list messages", err)
	}
	return lo.Map(rows, func(row messageRow, _ int) domain.Message { return row.toDomain() }), nil
}

func (s Store) AppendMessage(ctx context.Context, conversationID, senderID string,
	messageType domain.MessageType, content string) (domain.Message, error) {
	var message domain.Message
	err := s.RunInTx(ctx, func(tx repositories.IMarketStore) error {
		bound := tx.(Store)
		// Locks the conversation row until commit
		if _, err := bound.GetConversation(ctx, conversationID); err != nil {
			return err
		}
		// created_at must not go below the previous message of the thread
		var last sql.NullTime
		if err := sqlx.GetContext(ctx, bound.q, &last,
			`SELECT MAX(created_at) FROM messages WHERE conversation_id = ?`, conversationID); err != nil {
			return mapError("append message", err)
		}
		at := bound.now()
		if last.Valid && at.Before(last.Time) {
			at = last.Time.UTC()
		}
		message = domain.Message{
			ID:             ulid.Make().String(),
			ConversationID: conversationID,
			SenderID:       senderID,
			Content:        content,
			Type:           messageType,
			CreatedAt:      at,
		}
		_, err := bound.q.ExecContext(ctx, `INSERT INTO messages
			(id, conversation_id, sender_id, content, type, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
			message.ID, message.ConversationID, message.SenderID, message.Content, message.Type, message.CreatedAt)
		return mapError("append message", err)
	})
	if err != nil {
		return domain.Message{}, err
	}
	return message, nil
}

type reviewRow struct {
	ID         string         `db:"id"`
	ReviewerID string         `db:"reviewer_id"`
	SellerID   string         `db:"seller_id"`
	ListingID  string         `db:"listing_id"`
	Rating     int            `db:"rating"`
	Comment    sql.NullString `db:"comment"`
	CreatedAt  time.Time      `db:"created_at"`
}

func (r reviewRow) toDomain() domain.Review {
	return domain.Review{
		ID:         r.ID,
		ReviewerID: r.ReviewerID,
		SellerID:   r.SellerID,
		ListingID:  r.ListingID,
		Rating:     r.Rating,
		Comment:    r.Comment.String,
		CreatedAt:  r.CreatedAt.UTC(),
	}
}

const reviewColumns = `id, reviewer_id, seller_id, listing_id, rating, comment, created_at`

func (s Store) GetReview(ctx context.Context, reviewerID, listingID string) (domain.Review, error) {
	var row reviewRow
	err := sqlx.GetContext(ctx, s.q, &row, `SELECT `+reviewColumns+`
		FROM reviews WHERE reviewer_id = ? AND listing_id = ?`, reviewerID, listingID)
	if err != nil {
		return domain.Review{}, mapError("get review", err)
	}
	return row.toDomain(), nil
}

func (s Store) InsertReview(ctx context.Context, review domain.Review) (domain.Review, error) {
	if review.CreatedAt.IsZero() {
		review.CreatedAt = s.now()
	}
	_, err := s.q.ExecContext(ctx, `INSERT INTO reviews (`+reviewColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		review.ID, review.ReviewerID, review.SellerID, review.ListingID, review.Rating,
		sql.NullString{String: review.Comment, Valid: review.Comment != ""}, review.CreatedAt)
	if err != nil {
		return domain.Review{}, mapError("insert review", err)
	}
	return review, nil
}

func (s Store) ListSellerReviews(ctx context.Context, sellerID string) ([]domain.Review, error) {
	var rows []reviewRow
	err := sqlx.SelectContext(ctx, s.q, &rows, `SELECT `+reviewColumns+`
		FROM reviews WHERE seller_id = ? ORDER BY created_at DESC, id DESC`, sellerID)
	if err != nil {
		return nil, mapError("list seller reviews", err)
	}
	return lo.Map(rows, func(row reviewRow, _ int) domain.Review { return row.toDomain() }), nil
}

type reportRow struct {
	ID         string         `db:"id"`
	ReporterID string         `db:"reporter_id"`
	TargetType string         `db:"target_type"`
	TargetID   string         `db:"target_id"`
	Reason     string         `db:"reason"`
	Detail     sql.NullString `db:"detail"`
	CreatedAt  time.Time      `db:"created_at"`
}

func (r reportRow) toDomain() domain.Report {
	return domain.Report{
		ID:         r.ID,
		ReporterID: r.ReporterID,
		TargetType: domain.ReportTarget(r.TargetType),
		TargetID:   r.TargetID,
		Reason:     domain.ReportReason(r.Reason),
		Detail:     r.Detail.String,
		CreatedAt:  r.CreatedAt.UTC(),
	}
}

const reportColumns = `id, reporter_id, target_type, target_id, reason, detail, created_at`

func (s Store) GetReport(ctx context.Context, reporterID, targetID string) (domain.Report, error) {
	var row reportRow
	err := sqlx.GetContext(ctx, s.q, &row, `SELECT `+reportColumns+`
		FROM reports WHERE reporter_id = ? AND target_id = ?`, reporterID, targetID)
	if err != nil {
		return domain.Report{}, mapError("get report", err)
	}
	return row.toDomain(), nil
}

func (s Store) InsertReport(ctx context.Context, report domain.Report) (domain.Report, error) {
	if report.CreatedAt.IsZero() {
		report.CreatedAt = s.now()
	}
	_, err := s.q.ExecContext(ctx, `INSERT INTO reports (`+reportColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		report.ID, report.ReporterID, report.TargetType, report.TargetID, report.Reason,
		sql.NullString{String: report.Detail, Valid: report.Detail != ""}, report.CreatedAt)
	if err != nil {
		return domain.Report{}, mapError("insert report", err)
	}
	return report, nil
}

func (s Store) ListReports(ctx context.Context) ([]domain.Report, error) {
	var rows []reportRow
	err := sqlx.SelectContext(ctx, s.q, &rows, `SELECT `+reportColumns+` FROM reports ORDER BY created_at DESC`)
	if err != nil {
		return nil, mapError("list reports", err)
	}
	return lo.Map(rows, func(row reportRow, _ int) domain.Report { return row.toDomain() }), nil
}

// mapError converts driver errors into workflow errors: duplicate keys are
// uniqueness violations, deadlocks and lock timeouts lost a race.
func mapError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, errors.ErrNotFound)
	}
	var mysqlErr *driver.MySQLError
	if errors.As(err, &mysqlErr) {
		switch mysqlErr.Number {
		case errDuplicateEntry:
			return fmt.Errorf("%s: %w", op, errors.ErrAlreadyExists)
		case errDeadlock, errLockWaitTimeout:
			return fmt.Errorf("%w: %s: %s", errors.ErrConflict, op, mysqlErr.Message)
		}
	}
	for _, known := range []error{
		errors.ErrNotFound, errors.ErrAlreadyExists, errors.ErrConflict, errors.ErrPersistence,
		errors.ErrAuthorization, errors.ErrInvalidState, errors.ErrInvalidArgument,
		context.Canceled, context.DeadlineExceeded,
	} {
		if errors.Is(err, known) {
			return err
		}
	}
	return errors.Persistence(op, err)
}
