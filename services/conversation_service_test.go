package services

import (
	"campus-market/domain"
	"campus-market/errors"
	"campus-market/mocks"
	"campus-market/moderation"
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestConversationService_StartConversation_GetOrCreate(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	m := newMarket(t)
	listing := m.listing(t, "S", domain.CategoryFurniture)

	first := m.conversation(t, "B", listing.ID)
	again := m.conversation(t, "B", listing.ID)
	req.Equal(first.ID, again.ID)
	req.Equal("S", first.SellerID)

	other := m.conversation(t, "B2", listing.ID)
	req.NotEqual(first.ID, other.ID)

	// A direct conversation is a separate thread
	direct, err := m.conversations.StartConversation(ctx, domain.StartConversationCommand{BuyerID: "B", SellerID: "S"})
	req.NoError(err)
	req.NotEqual(first.ID, direct.ID)
	req.False(direct.HasListing())

	_, err = m.conversations.StartConversation(ctx, domain.StartConversationCommand{BuyerID: "S", ListingID: listing.ID})
	req.ErrorIs(err, errors.ErrInvalidArgument)
	_, err = m.conversations.StartConversation(ctx, domain.StartConversationCommand{BuyerID: "B"})
	req.ErrorIs(err, errors.ErrInvalidArgument)
	_, err = m.conversations.StartConversation(ctx, domain.StartConversationCommand{BuyerID: "B", ListingID: "missing"})
	req.ErrorIs(err, errors.ErrNotFound)
}

func TestConversationService_StartConversation_Concurrent(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	m := newMarket(t)
	listing := m.listing(t, "S", domain.CategoryFurniture)

	const attempts = 6
	var wg sync.WaitGroup
	ids := make([]string, attempts)
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c, err := m.conversations.StartConversation(ctx, domain.StartConversationCommand{BuyerID: "B", ListingID: listing.ID})
			ids[i], errs[i] = c.ID, err
		}(i)
	}
	wg.Wait()

	for i := range ids {
		req.NoError(errs[i])
		req.Equal(ids[0], ids[i])
	}
}

func TestConversationService_SendMessage(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	m := newMarket(t)
	listing := m.listing(t, "S", domain.CategoryFurniture)
	conversation := m.conversation(t, "B", listing.ID)

	message, err := m.conversations.SendMessage(ctx, domain.SendMessageCommand{
		ConversationID: conversation.ID, SenderID: "B", Content: "  Is it still available, scammer?  ",
	})
	req.NoError(err)
	req.Equal("Is it still available, *******?", message.Content)
	req.Equal(domain.MessageText, message.Type)
	req.Equal(message.ID, m.sent(domain.NotifyMessageReceived)[0].ID)

	tests := []struct {
		name     string
		cmd      domain.SendMessageCommand
		expected error
	}{
		{"Blank content", domain.SendMessageCommand{ConversationID: conversation.ID, SenderID: "B", Content: "   "}, errors.ErrInvalidArgument},
		{"Too long", domain.SendMessageCommand{ConversationID: conversation.ID, SenderID: "B", Content: strings.Repeat("a", 2001)}, errors.ErrInvalidArgument},
		{"Stranger", domain.SendMessageCommand{ConversationID: conversation.ID, SenderID: "X", Content: "hi"}, errors.ErrAuthorization},
		{"Unknown conversation", domain.SendMessageCommand{ConversationID: "missing", SenderID: "B", Content: "hi"}, errors.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.conversations.SendMessage(ctx, tt.cmd)
			require.ErrorIs(t, err, tt.expected)
		})
	}

	messages, err := m.conversations.Messages(ctx, conversation.ID, "S")
	req.NoError(err)
	req.Len(messages, 1)
	_, err = m.conversations.Messages(ctx, conversation.ID, "X")
	req.ErrorIs(err, errors.ErrAuthorization)
}

func TestConversationService_SendMessage_UsesModeratedContent(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	f := newUnitFixture(t)
	moderator := mocks.NewMockIModerator(ctrl)
	sent := domain.Message{ID: "m-1", ConversationID: "conv-1", SenderID: "seller-1", Content: "clean", Type: domain.MessageText}

	// Given the moderator rewrites the message
	moderator.EXPECT().Moderate("dirty").Return(moderation.Moderation{Content: "clean", CensoredWords: []string{"dirty"}})
	// Then the moderated content is appended and notified
	f.store.EXPECT().AppendMessage(gomock.Any(), "conv-1", "seller-1", domain.MessageText, "clean").Return(sent, nil)
	f.notifier.EXPECT().Notify(gomock.Any(), domain.Notification{Type: domain.NotifyMessageReceived, ID: "m-1"})

	service := NewConversationService(log, f.store, moderator, f.notifier, 100)
	message, err := service.SendMessage(ctx, domain.SendMessageCommand{ConversationID: "conv-1", SenderID: "seller-1", Content: "dirty"})
	req.NoError(err)
	req.Equal("clean", message.Content)
}

func TestConversationService_ListConversations_SellerConfirmsFromInbox(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	m := newMarket(t)
	lamp := m.listing(t, "S", domain.CategoryFurniture)
	other := m.listing(t, "S2", domain.CategoryTextbooks)

	// Given a buyer who offered on the seller's listing, without telling the seller the thread id
	thread := m.conversation(t, "B", lamp.ID)
	m.conversation(t, "B", other.ID)
	_, err := m.sales.OfferSale(ctx, domain.OfferSaleCommand{ConversationID: thread.ID, ActorID: "B"})
	req.NoError(err)

	// When the seller opens the inbox
	inbox, err := m.conversations.ListConversations(ctx, "S")
	req.NoError(err)

	// Then the buyer's thread is there and the sale can be confirmed through it
	req.Len(inbox, 1)
	req.Equal(thread.ID, inbox[0].ID)
	req.Equal("B", inbox[0].BuyerID)
	confirmation, err := m.sales.ConfirmSale(ctx, domain.ConfirmSaleCommand{ConversationID: inbox[0].ID, ActorID: "S"})
	req.NoError(err)
	req.Equal(domain.MessageSaleConfirmed, confirmation.Type)
	sold, err := m.listings.GetListing(ctx, lamp.ID)
	req.NoError(err)
	req.True(sold.IsSoldTo("B"))

	// And the buyer sees both of their threads
	buyerInbox, err := m.conversations.ListConversations(ctx, "B")
	req.NoError(err)
	req.Len(buyerInbox, 2)

	empty, err := m.conversations.ListConversations(ctx, "nobody")
	req.NoError(err)
	req.Empty(empty)

	_, err = m.conversations.ListConversations(ctx, " ")
	req.ErrorIs(err, errors.ErrMissingIdentity)
}
