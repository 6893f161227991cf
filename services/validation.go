package services

import (
	"campus-market/domain"
	"campus-market/errors"
	"campus-market/repositories"
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

func validateCommand(cmd any) error {
	if err := validate.Struct(cmd); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrInvalidArgument, err)
	}
	return nil
}

// thread is a conversation with everything the sale reducer needs.
type thread struct {
	conversation domain.Conversation
	listing      *domain.Listing
	messages     []domain.Message
}

func (t thread) state() domain.SaleState {
	return domain.DeriveSaleState(t.messages, t.listing, t.conversation.BuyerID)
}

func loadThread(ctx context.Context, store repositories.IMarketStore, conversationID string) (thread, error) {
	conversation, err := store.GetConversation(ctx, conversationID)
	if err != nil {
		return thread{}, err
	}
	t := thread{conversation: conversation}
	if conversation.HasListing() {
		listing, err := store.GetListing(ctx, conversation.ListingID)
		if err != nil {
			return thread{}, err
		}
		t.listing = &listing
	}
	if t.messages, err = store.ListMessages(ctx, conversationID); err != nil {
		return thread{}, err
	}
	return t, nil
}
