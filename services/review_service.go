package services

import (
	"campus-market/contract"
	"campus-market/domain"
	"campus-market/errors"
	"campus-market/repositories"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
)

type IReviewService interface {
	ReviewPrompt(ctx context.Context, conversationID, actorID string) (bool, error)
	SubmitReview(ctx context.Context, cmd domain.SubmitReviewCommand) (domain.Review, error)
	SellerReviews(ctx context.Context, sellerID string) (domain.SellerRating, error)
}

type ReviewService struct {
	log      *slog.Logger
	store    repositories.IMarketStore
	notifier contract.INotifier
}

func NewReviewService(log *slog.Logger, store repositories.IMarketStore, notifier contract.INotifier) *ReviewService {
	return &ReviewService{log: log, store: store, notifier: notifier}
}

// ReviewPrompt is true iff the actor is the buyer of the conversation, the sale
// is confirmed and the buyer has not reviewed the listing yet.
func (s *ReviewService) ReviewPrompt(ctx context.Context, conversationID, actorID string) (bool, error) {
	t, err := loadThread(ctx, s.store, conversationID)
	if err != nil {
		return false, err
	}
	if t.listing == nil || t.conversation.RoleOf(actorID) != domain.RoleBuyer {
		return false, nil
	}
	if t.state() != domain.SaleConfirmed {
		return false, nil
	}
	reviewed, err := hasReviewed(ctx, s.store, actorID, t.listing.ID)
	if err != nil {
		return false, err
	}
	return !reviewed, nil
}

// SubmitReview stores the buyer's review of the seller. A second review of the
// same listing is rejected by the store with errors.ErrAlreadyExists.
func (s *ReviewService) SubmitReview(ctx context.Context, cmd domain.SubmitReviewCommand) (domain.Review, error) {
	cmd.Comment = strings.TrimSpace(cmd.Comment)
	if err := validateCommand(cmd); err != nil {
		return domain.Review{}, err
	}

	t, err := loadThread(ctx, s.store, cmd.ConversationID)
	if err != nil {
		return domain.Review{}, err
	}
	if t.conversation.RoleOf(cmd.ReviewerID) != domain.RoleBuyer {
		return domain.Review{}, fmt.Errorf("%w: only the buyer can review the seller", errors.ErrAuthorization)
	}
	if t.listing == nil {
		return domain.Review{}, fmt.Errorf("%w: conversation is not about a listing", errors.ErrInvalidState)
	}
	if state := t.state(); state != domain.SaleConfirmed {
		return domain.Review{}, fmt.Errorf("%w: sale is not confirmed (state %s)", errors.ErrInvalidState, state)
	}

	review, err := s.store.InsertReview(ctx, domain.Review{
		ID:         uuid.NewString(),
		ReviewerID: cmd.ReviewerID,
		SellerID:   t.conversation.SellerID,
		ListingID:  t.listing.ID,
		Rating:     cmd.Rating,
		Comment:    cmd.Comment,
		CreatedAt:  time.Now().UTC(),
	})
	if err != nil {
		return domain.Review{}, err
	}

	s.log.Info("Review submitted", "review_id", review.ID, "seller_id", review.SellerID, "rating", review.Rating)
	s.notifier.Notify(ctx, domain.Notification{Type: domain.NotifyReviewReceived, ID: review.ID})
	return review, nil
}

func (s *ReviewService) SellerReviews(ctx context.Context, sellerID string) (domain.SellerRating, error) {
	if sellerID == "" {
		return domain.SellerRating{}, fmt.Errorf("%w: seller id is required", errors.ErrInvalidArgument)
	}
	reviews, err := s.store.ListSellerReviews(ctx, sellerID)
	if err != nil {
		return domain.SellerRating{}, err
	}
	return domain.NewSellerRating(reviews), nil
}
