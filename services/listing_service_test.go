package services

import (
	"campus-market/domain"
	"campus-market/errors"
	"campus-market/mocks"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"testing"

	"github.com/mama165/sdk-go/logs"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestListingService_CreateListing_Validation(t *testing.T) {
	ctx := context.Background()
	m := newMarket(t)
	valid := domain.CreateListingCommand{SellerID: "S", Title: "Desk", PriceCents: 1000, Category: domain.CategoryFurniture}

	tests := []struct {
		name   string
		modify func(cmd *domain.CreateListingCommand)
	}{
		{"Missing title", func(cmd *domain.CreateListingCommand) { cmd.Title = "  " }},
		{"Title too long", func(cmd *domain.CreateListingCommand) { cmd.Title = strings.Repeat("a", 121) }},
		{"Negative price", func(cmd *domain.CreateListingCommand) { cmd.PriceCents = -1 }},
		{"Unknown category", func(cmd *domain.CreateListingCommand) { cmd.Category = "boats" }},
		{"Missing seller", func(cmd *domain.CreateListingCommand) { cmd.SellerID = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := valid
			tt.modify(&cmd)
			_, err := m.listings.CreateListing(ctx, cmd)
			require.ErrorIs(t, err, errors.ErrInvalidArgument)
		})
	}

	listing, err := m.listings.CreateListing(ctx, valid)
	require.NoError(t, err)
	require.Equal(t, domain.ListingActive, listing.Status)
	require.Equal(t, listing.ID, m.sent(domain.NotifyNewListing)[0].ID)
}

func TestListingService_ArchiveAndRelist(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	m := newMarket(t)
	listing := m.listing(t, "S", domain.CategoryFurniture)

	_, err := m.listings.ArchiveListing(ctx, domain.ListingActionCommand{ListingID: listing.ID, ActorID: "B"})
	req.ErrorIs(err, errors.ErrAuthorization)
	_, err = m.listings.RelistListing(ctx, domain.ListingActionCommand{ListingID: listing.ID, ActorID: "S"})
	req.ErrorIs(err, errors.ErrInvalidState)

	archived, err := m.listings.ArchiveListing(ctx, domain.ListingActionCommand{ListingID: listing.ID, ActorID: "S"})
	req.NoError(err)
	req.Equal(domain.ListingArchived, archived.Status)

	// New buyers cannot open a thread on an archived listing
	_, err = m.conversations.StartConversation(ctx, domain.StartConversationCommand{BuyerID: "B", ListingID: listing.ID})
	req.ErrorIs(err, errors.ErrInvalidState)

	relisted, err := m.listings.RelistListing(ctx, domain.ListingActionCommand{ListingID: listing.ID, ActorID: "S"})
	req.NoError(err)
	req.Equal(domain.ListingActive, relisted.Status)
}

func TestListingService_SearchListings(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	m := newMarket(t)

	create := func(title string, category domain.Category) domain.Listing {
		listing, err := m.listings.CreateListing(ctx, domain.CreateListingCommand{
			SellerID: "S", Title: title, Category: category,
		})
		req.NoError(err)
		return listing
	}
	desk := create("Wooden desk", domain.CategoryFurniture)
	lamp := create("Desk lamp", domain.CategoryElectronics)
	chair := create("Desk chair", domain.CategoryFurniture)

	listings, err := m.listings.SearchListings(ctx, domain.SearchListingsCommand{Query: "desk"})
	req.NoError(err)
	req.ElementsMatch([]string{desk.ID, lamp.ID, chair.ID}, lo.Map(listings, func(l domain.Listing, _ int) string { return l.ID }))

	// Inline flags of the search box
	listings, err = m.listings.SearchListings(ctx, domain.SearchListingsCommand{Query: "desk --category electronics"})
	req.NoError(err)
	req.Len(listings, 1)
	req.Equal(lamp.ID, listings[0].ID)

	// A sold listing leaves the results
	conversation := m.conversation(t, "B", chair.ID)
	_, err = m.sales.OfferSale(ctx, domain.OfferSaleCommand{ConversationID: conversation.ID, ActorID: "B"})
	req.NoError(err)
	_, err = m.sales.ConfirmSale(ctx, domain.ConfirmSaleCommand{ConversationID: conversation.ID, ActorID: "S"})
	req.NoError(err)
	listings, err = m.listings.SearchListings(ctx, domain.SearchListingsCommand{Query: "desk", Category: domain.CategoryFurniture})
	req.NoError(err)
	req.Len(listings, 1)
	req.Equal(desk.ID, listings[0].ID)

	_, err = m.listings.SearchListings(ctx, domain.SearchListingsCommand{Query: "desk", Limit: 1000})
	req.ErrorIs(err, errors.ErrInvalidArgument)
}

func TestListingService_SearchListings_StaleIndex(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	f := newUnitFixture(t)
	index := mocks.NewMockIListingIndex(ctrl)
	service := NewListingService(log, f.store, index, f.notifier)

	sold := f.listing
	sold.ID, sold.Status = "listing-sold", domain.ListingSold

	// Given an index still returning a sold and a deleted listing
	index.EXPECT().Search(gomock.Any(), "desk", domain.CategoryFurniture, 5).
		Return([]string{"listing-sold", f.listing.ID, "listing-gone"}, nil)
	f.store.EXPECT().GetListing(gomock.Any(), "listing-sold").Return(sold, nil)
	f.store.EXPECT().GetListing(gomock.Any(), "listing-gone").Return(domain.Listing{}, errors.ErrNotFound)

	// When searching with inline flags
	listings, err := service.SearchListings(ctx, domain.SearchListingsCommand{Query: "desk --category furniture --limit 5"})

	// Then only the active listing is returned
	req.NoError(err)
	req.Len(listings, 1)
	req.Equal(f.listing.ID, listings[0].ID)

	// Index failures surface as persistence errors
	index.EXPECT().Search(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, fmt.Errorf("segment corrupted"))
	_, err = service.SearchListings(ctx, domain.SearchListingsCommand{Query: "desk"})
	req.ErrorIs(err, errors.ErrPersistence)
}

func TestListingService_TakeDownListing(t *testing.T) {
	ctx := context.Background()
	m := newMarket(t)
	listing := m.listing(t, "S", domain.CategoryElectronics)
	takeDown := domain.TakeDownListingCommand{ListingID: listing.ID, ActorID: "mod", IsAdmin: true, Reason: "counterfeit"}

	t.Run("refused without the admin role, even to the seller", func(t *testing.T) {
		req := require.New(t)
		_, err := m.listings.TakeDownListing(ctx, domain.TakeDownListingCommand{ListingID: listing.ID, ActorID: "S"})
		req.ErrorIs(err, errors.ErrAuthorization)
		unchanged, err := m.listings.GetListing(ctx, listing.ID)
		req.NoError(err)
		req.Equal(domain.ListingActive, unchanged.Status)
	})

	t.Run("admin archives the listing and it leaves the search", func(t *testing.T) {
		req := require.New(t)
		archived, err := m.listings.TakeDownListing(ctx, takeDown)
		req.NoError(err)
		req.Equal(domain.ListingArchived, archived.Status)

		listings, err := m.listings.SearchListings(ctx, domain.SearchListingsCommand{Query: listing.Title})
		req.NoError(err)
		req.Empty(listings)
	})

	t.Run("only active listings can be taken down", func(t *testing.T) {
		req := require.New(t)
		_, err := m.listings.TakeDownListing(ctx, takeDown)
		req.ErrorIs(err, errors.ErrInvalidState)
		_, err = m.listings.TakeDownListing(ctx, domain.TakeDownListingCommand{ListingID: "missing", ActorID: "mod", IsAdmin: true})
		req.ErrorIs(err, errors.ErrNotFound)
		_, err = m.listings.TakeDownListing(ctx, domain.TakeDownListingCommand{ActorID: "mod", IsAdmin: true})
		req.ErrorIs(err, errors.ErrInvalidArgument)
	})
}

func TestListingService_TakeDownListing_IndexFailureKeepsTakedown(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	f := newUnitFixture(t)
	index := mocks.NewMockIListingIndex(gomock.NewController(t))
	service := NewListingService(log, f.store, index, f.notifier)

	archived := f.listing
	archived.Status = domain.ListingArchived
	f.store.EXPECT().UpdateListingStatus(gomock.Any(), f.listing.ID, domain.ListingActive, domain.ListingArchived,
		domain.ListingUpdate{}).Return(archived, nil)
	index.EXPECT().Remove(f.listing.ID).Return(fmt.Errorf("index closed"))

	listing, err := service.TakeDownListing(ctx, domain.TakeDownListingCommand{ListingID: f.listing.ID, ActorID: "mod", IsAdmin: true})
	req.NoError(err)
	req.Equal(domain.ListingArchived, listing.Status)
}
