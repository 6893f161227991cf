package services

import (
	"campus-market/contract"
	"campus-market/domain"
	"campus-market/errors"
	"campus-market/repositories"
	"campus-market/search"
	"context"
	"fmt"
	"log/slog"
)

type ISaleService interface {
	OfferSale(ctx context.Context, cmd domain.OfferSaleCommand) (domain.Message, error)
	ConfirmSale(ctx context.Context, cmd domain.ConfirmSaleCommand) (domain.Message, error)
	SaleView(ctx context.Context, conversationID, actorID string) (domain.SaleView, error)
}

// SaleService drives the offer/confirm handshake of a conversation.
// Every precondition is checked against the history read inside the same
// store transaction as the write it guards.
type SaleService struct {
	log      *slog.Logger
	store    repositories.IMarketStore
	index    search.IListingIndex
	notifier contract.INotifier
}

func NewSaleService(log *slog.Logger, store repositories.IMarketStore,
	index search.IListingIndex, notifier contract.INotifier) *SaleService {
	return &SaleService{log: log, store: store, index: index, notifier: notifier}
}

// OfferSale appends a sale_offer from the buyer. The listing is left untouched.
func (s *SaleService) OfferSale(ctx context.Context, cmd domain.OfferSaleCommand) (domain.Message, error) {
	if err := validateCommand(cmd); err != nil {
		return domain.Message{}, err
	}

	var offer domain.Message
	err := s.store.RunInTx(ctx, func(tx repositories.IMarketStore) error {
		t, err := loadThread(ctx, tx, cmd.ConversationID)
		if err != nil {
			return err
		}
		if t.conversation.RoleOf(cmd.ActorID) != domain.RoleBuyer {
			return fmt.Errorf("%w: only the buyer can offer a sale", errors.ErrAuthorization)
		}
		if t.listing == nil {
			return fmt.Errorf("%w: conversation is not about a listing", errors.ErrInvalidState)
		}
		if t.listing.Status != domain.ListingActive {
			return fmt.Errorf("%w: listing is %s", errors.ErrInvalidState, t.listing.Status)
		}
		if t.state() == domain.SaleOffered {
			return fmt.Errorf("%w: a sale offer is already pending", errors.ErrInvalidState)
		}

		offer, err = tx.AppendMessage(ctx, cmd.ConversationID, cmd.ActorID,
			domain.MessageSaleOffer, domain.SaleOfferContent)
		return err
	})
	if err != nil {
		return domain.Message{}, err
	}

	s.log.Info("Sale offered", "conversation_id", cmd.ConversationID, "message_id", offer.ID)
	s.notifier.Notify(ctx, domain.Notification{Type: domain.NotifySaleOffered, ID: offer.ID})
	return offer, nil
}

// ConfirmSale records the sale on the listing and appends a sale_confirmed from
// the seller, both in one transaction. The listing moves with a compare-and-swap
// so only the first confirmation of a non-repeatable listing wins; the others
// get errors.ErrConflict and write nothing. It is never retried here.
func (s *SaleService) ConfirmSale(ctx context.Context, cmd domain.ConfirmSaleCommand) (domain.Message, error) {
	if err := validateCommand(cmd); err != nil {
		return domain.Message{}, err
	}

	var (
		confirmation domain.Message
		listing      domain.Listing
	)
	err := s.store.RunInTx(ctx, func(tx repositories.IMarketStore) error {
		t, err := loadThread(ctx, tx, cmd.ConversationID)
		if err != nil {
			return err
		}
		if t.conversation.RoleOf(cmd.ActorID) != domain.RoleSeller {
			return fmt.Errorf("%w: only the seller can confirm a sale", errors.ErrAuthorization)
		}
		if t.listing == nil {
			return fmt.Errorf("%w: conversation is not about a listing", errors.ErrInvalidState)
		}
		if state := t.state(); state != domain.SaleOffered {
			return fmt.Errorf("%w: no pending sale offer (state %s)", errors.ErrInvalidState, state)
		}
		if t.listing.Status == domain.ListingArchived {
			return fmt.Errorf("%w: listing is archived", errors.ErrInvalidState)
		}

		if t.listing.Category.IsRepeatable() {
			listing, err = tx.UpdateListingStatus(ctx, t.listing.ID, domain.ListingActive, domain.ListingActive,
				domain.ListingUpdate{IncrementTimesSold: true})
		} else {
			buyerID := t.conversation.BuyerID
			listing, err = tx.UpdateListingStatus(ctx, t.listing.ID, domain.ListingActive, domain.ListingSold,
				domain.ListingUpdate{SoldToBuyerID: &buyerID})
		}
		if err != nil {
			return err
		}

		confirmation, err = tx.AppendMessage(ctx, cmd.ConversationID, cmd.ActorID,
			domain.MessageSaleConfirmed, domain.SaleConfirmedContent)
		return err
	})
	if err != nil {
		if errors.Is(err, errors.ErrConflict) {
			s.log.Warn("Sale confirmation lost the race", "conversation_id", cmd.ConversationID, "error", err)
		}
		return domain.Message{}, err
	}

	s.log.Info("Sale confirmed", "conversation_id", cmd.ConversationID, "listing_id", listing.ID,
		"status", listing.Status, "times_sold", listing.TimesSold)
	if listing.Status != domain.ListingActive {
		if err := s.index.Index(listing); err != nil {
			s.log.Warn("Failed to reindex sold listing", "listing_id", listing.ID, "error", err)
		}
	}
	s.notifier.Notify(ctx, domain.Notification{Type: domain.NotifySaleConfirmed, ID: confirmation.ID})
	return confirmation, nil
}

// SaleView returns the derived state of the conversation and the actions the
// actor may take in it.
func (s *SaleService) SaleView(ctx context.Context, conversationID, actorID string) (domain.SaleView, error) {
	t, err := loadThread(ctx, s.store, conversationID)
	if err != nil {
		return domain.SaleView{}, err
	}
	if !t.conversation.IsParticipant(actorID) {
		return domain.SaleView{}, fmt.Errorf("%w: not a participant", errors.ErrAuthorization)
	}

	reviewed := false
	if t.listing != nil && t.conversation.RoleOf(actorID) == domain.RoleBuyer {
		if reviewed, err = hasReviewed(ctx, s.store, actorID, t.listing.ID); err != nil {
			return domain.SaleView{}, err
		}
	}
	return domain.NewSaleView(t.conversation, t.listing, t.messages, actorID, reviewed), nil
}

func hasReviewed(ctx context.Context, store repositories.IReviewRepository, reviewerID, listingID string) (bool, error) {
	_, err := store.GetReview(ctx, reviewerID, listingID)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, errors.ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}
