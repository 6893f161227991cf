package services

import (
	"campus-market/domain"
	"campus-market/mocks"
	"campus-market/moderation"
	"campus-market/repositories"
	"campus-market/search"
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

// market wires every service on a real badger store and bluge index.
type market struct {
	store         repositories.BadgerStore
	sales         *SaleService
	reviews       *ReviewService
	conversations *ConversationService
	listings      *ListingService
	reports       *ReportService

	mu            sync.Mutex
	notifications []domain.Notification
}

func newMarket(t *testing.T) *market {
	t.Helper()
	log := logs.GetLoggerFromLevel(slog.LevelDebug)

	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	store := repositories.NewBadgerStore(db, log)

	writer, err := search.OpenWriter(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = writer.Close() })
	index := search.NewListingIndex(writer, log)

	moderator, err := moderation.NewModerator([]string{"scammer"}, '*', log)
	require.NoError(t, err)

	m := &market{store: store}
	notifier := mocks.NewMockINotifier(gomock.NewController(t))
	notifier.EXPECT().Notify(gomock.Any(), gomock.Any()).
		Do(func(_ context.Context, n domain.Notification) {
			m.mu.Lock()
			defer m.mu.Unlock()
			m.notifications = append(m.notifications, n)
		}).AnyTimes()

	m.sales = NewSaleService(log, store, index, notifier)
	m.reviews = NewReviewService(log, store, notifier)
	m.conversations = NewConversationService(log, store, moderator, notifier, 2000)
	m.listings = NewListingService(log, store, index, notifier)
	m.reports = NewReportService(log, store)
	return m
}

func (m *market) sent(kind domain.NotificationType) []domain.Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Notification
	for _, n := range m.notifications {
		if n.Type == kind {
			out = append(out, n)
		}
	}
	return out
}

func (m *market) listing(t *testing.T, sellerID string, category domain.Category) domain.Listing {
	t.Helper()
	listing, err := m.listings.CreateListing(context.Background(), domain.CreateListingCommand{
		SellerID: sellerID, Title: "Item " + uuid.NewString()[:6], PriceCents: 1000, Category: category,
	})
	require.NoError(t, err)
	return listing
}

func (m *market) conversation(t *testing.T, buyerID, listingID string) domain.Conversation {
	t.Helper()
	conversation, err := m.conversations.StartConversation(context.Background(), domain.StartConversationCommand{
		BuyerID: buyerID, ListingID: listingID,
	})
	require.NoError(t, err)
	return conversation
}

// unitFixture is a conversation served by a mocked store for authorization tests.
type unitFixture struct {
	store        *mocks.MockIMarketStore
	notifier     *mocks.MockINotifier
	conversation domain.Conversation
	listing      domain.Listing
}

func newUnitFixture(t *testing.T, messages ...domain.Message) unitFixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	f := unitFixture{
		store:    mocks.NewMockIMarketStore(ctrl),
		notifier: mocks.NewMockINotifier(ctrl),
		conversation: domain.Conversation{
			ID: "conv-1", BuyerID: "buyer-1", SellerID: "seller-1", ListingID: "listing-1",
		},
		listing: domain.Listing{
			ID: "listing-1", SellerID: "seller-1", Category: domain.CategoryFurniture,
			Status: domain.ListingActive, CreatedAt: time.Now().UTC(),
		},
	}
	f.store.EXPECT().RunInTx(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, fn func(repositories.IMarketStore) error) error {
			return fn(f.store)
		}).AnyTimes()
	f.store.EXPECT().GetConversation(gomock.Any(), f.conversation.ID).Return(f.conversation, nil).AnyTimes()
	f.store.EXPECT().GetListing(gomock.Any(), f.listing.ID).Return(f.listing, nil).AnyTimes()
	f.store.EXPECT().ListMessages(gomock.Any(), f.conversation.ID).Return(messages, nil).AnyTimes()
	return f
}

func saleMessage(sender string, messageType domain.MessageType) domain.Message {
	return domain.Message{ID: uuid.NewString(), ConversationID: "conv-1", SenderID: sender, Type: messageType}
}
