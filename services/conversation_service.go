package services

import (
	"campus-market/contract"
	"campus-market/domain"
	"campus-market/errors"
	"campus-market/moderation"
	"campus-market/repositories"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

type IConversationService interface {
	StartConversation(ctx context.Context, cmd domain.StartConversationCommand) (domain.Conversation, error)
	Conversation(ctx context.Context, conversationID, actorID string) (domain.Conversation, error)
	SendMessage(ctx context.Context, cmd domain.SendMessageCommand) (domain.Message, error)
	Messages(ctx context.Context, conversationID, actorID string) ([]domain.Message, error)
	ListConversations(ctx context.Context, actorID string) ([]domain.Conversation, error)
}

type ConversationService struct {
	log              *slog.Logger
	store            repositories.IMarketStore
	moderator        moderation.IModerator
	notifier         contract.INotifier
	maxContentLength int
}

func NewConversationService(log *slog.Logger, store repositories.IMarketStore, moderator moderation.IModerator,
	notifier contract.INotifier, maxContentLength int) *ConversationService {
	return &ConversationService{
		log:              log,
		store:            store,
		moderator:        moderator,
		notifier:         notifier,
		maxContentLength: maxContentLength,
	}
}

// StartConversation returns the buyer's thread about the listing (or with the
// seller), creating it on first contact.
func (s *ConversationService) StartConversation(ctx context.Context, cmd domain.StartConversationCommand) (domain.Conversation, error) {
	if err := validateCommand(cmd); err != nil {
		return domain.Conversation{}, err
	}

	sellerID := cmd.SellerID
	var listing *domain.Listing
	if cmd.ListingID != "" {
		l, err := s.store.GetListing(ctx, cmd.ListingID)
		if err != nil {
			return domain.Conversation{}, err
		}
		listing, sellerID = &l, l.SellerID
	}
	if sellerID == cmd.BuyerID {
		return domain.Conversation{}, fmt.Errorf("%w: cannot start a conversation with yourself", errors.ErrInvalidArgument)
	}

	existing, err := s.store.FindConversation(ctx, cmd.ListingID, sellerID, cmd.BuyerID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, errors.ErrNotFound) {
		return domain.Conversation{}, err
	}
	if listing != nil && listing.Status == domain.ListingArchived {
		return domain.Conversation{}, fmt.Errorf("%w: listing is archived", errors.ErrInvalidState)
	}

	conversation := domain.Conversation{
		ID:        uuid.NewString(),
		BuyerID:   cmd.BuyerID,
		SellerID:  sellerID,
		ListingID: cmd.ListingID,
		CreatedAt: time.Now().UTC(),
	}
	err = s.store.CreateConversation(ctx, conversation)
	switch {
	case err == nil:
		s.log.Info("Conversation started", "conversation_id", conversation.ID, "listing_id", conversation.ListingID)
		return conversation, nil
	case errors.Is(err, errors.ErrAlreadyExists), errors.Is(err, errors.ErrConflict):
		// Created concurrently by another request of the same buyer
		return s.store.FindConversation(ctx, cmd.ListingID, sellerID, cmd.BuyerID)
	default:
		return domain.Conversation{}, err
	}
}

func (s *ConversationService) Conversation(ctx context.Context, conversationID, actorID string) (domain.Conversation, error) {
	conversation, err := s.store.GetConversation(ctx, conversationID)
	if err != nil {
		return domain.Conversation{}, err
	}
	if !conversation.IsParticipant(actorID) {
		return domain.Conversation{}, fmt.Errorf("%w: not a participant", errors.ErrAuthorization)
	}
	return conversation, nil
}

// SendMessage appends a moderated text message from one of the participants.
func (s *ConversationService) SendMessage(ctx context.Context, cmd domain.SendMessageCommand) (domain.Message, error) {
	cmd.Content = strings.TrimSpace(cmd.Content)
	if err := validateCommand(cmd); err != nil {
		return domain.Message{}, err
	}
	if utf8.RuneCountInString(cmd.Content) > s.maxContentLength {
		return domain.Message{}, fmt.Errorf("%w: message longer than %d characters", errors.ErrInvalidArgument, s.maxContentLength)
	}

	if _, err := s.Conversation(ctx, cmd.ConversationID, cmd.SenderID); err != nil {
		return domain.Message{}, err
	}

	moderated := s.moderator.Moderate(cmd.Content)
	message, err := s.store.AppendMessage(ctx, cmd.ConversationID, cmd.SenderID, domain.MessageText, moderated.Content)
	if err != nil {
		return domain.Message{}, err
	}

	s.log.Debug("Message sent", "conversation_id", message.ConversationID, "message_id", message.ID,
		"lang", moderated.Language, "censored", len(moderated.CensoredWords))
	s.notifier.Notify(ctx, domain.Notification{Type: domain.NotifyMessageReceived, ID: message.ID})
	return message, nil
}

// Messages returns the history of the conversation in append order.
func (s *ConversationService) Messages(ctx context.Context, conversationID, actorID string) ([]domain.Message, error) {
	if _, err := s.Conversation(ctx, conversationID, actorID); err != nil {
		return nil, err
	}
	return s.store.ListMessages(ctx, conversationID)
}

// ListConversations is the actor's inbox: every thread they are buyer or
// seller in, newest first.
func (s *ConversationService) ListConversations(ctx context.Context, actorID string) ([]domain.Conversation, error) {
	if strings.TrimSpace(actorID) == "" {
		return nil, errors.ErrMissingIdentity
	}
	return s.store.ListConversations(ctx, actorID)
}
