// Package domain contains core concepts of the marketplace.
// This file defines Listing entities and their status lifecycle.
// No runtime, network, or storage logic should be added here.
package domain

import "time"

type ListingStatus string

const (
	ListingActive   ListingStatus = "active"
	ListingSold     ListingStatus = "sold"
	ListingArchived ListingStatus = "archived"
)

func (s ListingStatus) Valid() bool {
	switch s {
	case ListingActive, ListingSold, ListingArchived:
		return true
	}
	return false
}

type Category string

const (
	CategoryTextbooks      Category = "textbooks"
	CategoryFurniture      Category = "furniture"
	CategoryElectronics    Category = "electronics"
	CategoryClothing       Category = "clothing"
	CategorySchoolSupplies Category = "school_supplies"
	CategoryEventTickets   Category = "event_tickets"
	CategoryRides          Category = "rides"
	CategoryServices       Category = "services"
	CategoryFree           Category = "free"
)

// Categories lists every category a listing can be filed under.
var Categories = []Category{
	CategoryTextbooks, CategoryFurniture, CategoryElectronics, CategoryClothing,
	CategorySchoolSupplies, CategoryEventTickets, CategoryRides, CategoryServices,
	CategoryFree,
}

// IsRepeatable reports whether a listing of this category can be sold
// several times without leaving the active status (tutoring, rides given...).
func (c Category) IsRepeatable() bool {
	return c == CategoryServices
}

// Listing is an item or a service offered by a seller.
type Listing struct {
	ID            string
	SellerID      string
	Title         string
	Description   string
	PriceCents    int64
	Category      Category
	Status        ListingStatus
	SoldToBuyerID *string
	TimesSold     int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IsSoldTo reports whether the listing was sold to the given buyer.
func (l Listing) IsSoldTo(buyerID string) bool {
	return buyerID != "" && l.Status == ListingSold &&
		l.SoldToBuyerID != nil && *l.SoldToBuyerID == buyerID
}

// ListingUpdate carries the extra fields written together with a status change.
type ListingUpdate struct {
	SoldToBuyerID      *string
	IncrementTimesSold bool
}

// Apply returns a copy of the listing moved to next with the update applied.
func (u ListingUpdate) Apply(l Listing, next ListingStatus, at time.Time) Listing {
	l.Status = next
	if u.SoldToBuyerID != nil {
		buyer := *u.SoldToBuyerID
		l.SoldToBuyerID = &buyer
	}
	if u.IncrementTimesSold {
		l.TimesSold++
	}
	l.UpdatedAt = at
	return l
}
