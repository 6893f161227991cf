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
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

type IListingService interface {
	CreateListing(ctx context.Context, cmd domain.CreateListingCommand) (domain.Listing, error)
	GetListing(ctx context.Context, listingID string) (domain.Listing, error)
	ArchiveListing(ctx context.Context, cmd domain.ListingActionCommand) (domain.Listing, error)
	RelistListing(ctx context.Context, cmd domain.ListingActionCommand) (domain.Listing, error)
	TakeDownListing(ctx context.Context, cmd domain.TakeDownListingCommand) (domain.Listing, error)
	SearchListings(ctx context.Context, cmd domain.SearchListingsCommand) ([]domain.Listing, error)
}

type ListingService struct {
	log      *slog.Logger
	store    repositories.IMarketStore
	index    search.IListingIndex
	notifier contract.INotifier
}

func NewListingService(log *slog.Logger, store repositories.IMarketStore,
	index search.IListingIndex, notifier contract.INotifier) *ListingService {
	return &ListingService{log: log, store: store, index: index, notifier: notifier}
}

func (s *ListingService) CreateListing(ctx context.Context, cmd domain.CreateListingCommand) (domain.Listing, error) {
	cmd.Title = strings.TrimSpace(cmd.Title)
	cmd.Description = strings.TrimSpace(cmd.Description)
	if err := validateCommand(cmd); err != nil {
		return domain.Listing{}, err
	}

	now := time.Now().UTC()
	listing := domain.Listing{
		ID:          uuid.NewString(),
		SellerID:    cmd.SellerID,
		Title:       cmd.Title,
		Description: cmd.Description,
		PriceCents:  cmd.PriceCents,
		Category:    cmd.Category,
		Status:      domain.ListingActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.CreateListing(ctx, listing); err != nil {
		return domain.Listing{}, err
	}
	s.reindex(listing)

	s.log.Info("Listing created", "listing_id", listing.ID, "category", listing.Category)
	s.notifier.Notify(ctx, domain.Notification{Type: domain.NotifyNewListing, ID: listing.ID})
	return listing, nil
}

func (s *ListingService) GetListing(ctx context.Context, listingID string) (domain.Listing, error) {
	return s.store.GetListing(ctx, listingID)
}

// ArchiveListing takes an active listing down. Pending offers can no longer be confirmed.
func (s *ListingService) ArchiveListing(ctx context.Context, cmd domain.ListingActionCommand) (domain.Listing, error) {
	return s.transition(ctx, cmd, domain.ListingActive, domain.ListingArchived)
}

// RelistListing puts an archived listing back on the market.
func (s *ListingService) RelistListing(ctx context.Context, cmd domain.ListingActionCommand) (domain.Listing, error) {
	return s.transition(ctx, cmd, domain.ListingArchived, domain.ListingActive)
}

func (s *ListingService) transition(ctx context.Context, cmd domain.ListingActionCommand,
	from, to domain.ListingStatus) (domain.Listing, error) {
	if err := validateCommand(cmd); err != nil {
		return domain.Listing{}, err
	}
	listing, err := s.store.GetListing(ctx, cmd.ListingID)
	if err != nil {
		return domain.Listing{}, err
	}
	if listing.SellerID != cmd.ActorID {
		return domain.Listing{}, fmt.Errorf("%w: only the seller can change the listing", errors.ErrAuthorization)
	}
	if listing.Status != from {
		return domain.Listing{}, fmt.Errorf("%w: listing is %s, expected %s", errors.ErrInvalidState, listing.Status, from)
	}

	updated, err := s.store.UpdateListingStatus(ctx, listing.ID, from, to, domain.ListingUpdate{})
	if err != nil {
		return domain.Listing{}, err
	}
	s.reindex(updated)
	s.log.Info("Listing status changed", "listing_id", updated.ID, "from", from, "to", to)
	return updated, nil
}

// TakeDownListing lets an admin archive an active listing of any seller, e.g.
// after a report. The listing leaves the search index right away.
func (s *ListingService) TakeDownListing(ctx context.Context, cmd domain.TakeDownListingCommand) (domain.Listing, error) {
	if err := validateCommand(cmd); err != nil {
		return domain.Listing{}, err
	}
	if !cmd.IsAdmin {
		return domain.Listing{}, fmt.Errorf("%w: only an admin can take a listing down", errors.ErrAuthorization)
	}
	listing, err := s.store.GetListing(ctx, cmd.ListingID)
	if err != nil {
		return domain.Listing{}, err
	}
	if listing.Status != domain.ListingActive {
		return domain.Listing{}, fmt.Errorf("%w: listing is %s, expected %s", errors.ErrInvalidState, listing.Status, domain.ListingActive)
	}

	updated, err := s.store.UpdateListingStatus(ctx, listing.ID, domain.ListingActive, domain.ListingArchived, domain.ListingUpdate{})
	if err != nil {
		return domain.Listing{}, err
	}
	if err := s.index.Remove(updated.ID); err != nil {
		s.log.Warn("Failed to remove listing from index", "listing_id", updated.ID, "error", err)
	}
	s.log.Warn("Listing taken down", "listing_id", updated.ID, "seller_id", updated.SellerID,
		"admin_id", cmd.ActorID, "reason", cmd.Reason)
	return updated, nil
}

// SearchListings runs a full-text search. Inline flags of the query
// ("--category", "--limit") apply when the command leaves them unset.
func (s *ListingService) SearchListings(ctx context.Context, cmd domain.SearchListingsCommand) ([]domain.Listing, error) {
	if err := validateCommand(cmd); err != nil {
		return nil, err
	}
	query := search.ParseQuery(cmd.Query)
	category := lo.Ternary(cmd.Category != "", cmd.Category, query.Category)
	limit := lo.Ternary(cmd.Limit > 0, cmd.Limit, query.Limit)

	ids, err := s.index.Search(ctx, query.Terms, category, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrPersistence, err)
	}

	listings := make([]domain.Listing, 0, len(ids))
	for _, id := range ids {
		listing, err := s.store.GetListing(ctx, id)
		if errors.Is(err, errors.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		// The index may lag behind the store
		if listing.Status == domain.ListingActive {
			listings = append(listings, listing)
		}
	}
	return listings, nil
}

func (s *ListingService) reindex(listing domain.Listing) {
	if err := s.index.Index(listing); err != nil {
		s.log.Warn("Failed to index listing", "listing_id", listing.ID, "error", err)
	}
}
