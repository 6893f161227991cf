package domain

import (
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

const (
	buyer  = "buyer-1"
	seller = "seller-1"
)

func message(typ MessageType, sender string, at time.Time) Message {
	return Message{ConversationID: "conv-1", SenderID: sender, Type: typ, Content: string(typ), CreatedAt: at}
}

func activeListing(category Category) *Listing {
	return &Listing{ID: "listing-1", SellerID: seller, Category: category, Status: ListingActive}
}

func TestDeriveSaleState(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	sold := &Listing{ID: "listing-1", SellerID: seller, Status: ListingSold, SoldToBuyerID: lo.ToPtr(buyer)}

	tests := []struct {
		name     string
		messages []Message
		listing  *Listing
		viewer   string
		expected SaleState
	}{
		{
			name:     "No messages",
			listing:  activeListing(CategoryFurniture),
			viewer:   buyer,
			expected: SaleNone,
		},
		{
			name: "Only text messages",
			messages: []Message{
				message(MessageText, buyer, t0),
				message(MessageText, seller, t0.Add(time.Minute)),
			},
			listing:  activeListing(CategoryFurniture),
			viewer:   buyer,
			expected: SaleNone,
		},
		{
			name: "Offer followed by chatter",
			messages: []Message{
				message(MessageSaleOffer, buyer, t0),
				message(MessageText, seller, t0.Add(time.Minute)),
			},
			listing:  activeListing(CategoryFurniture),
			viewer:   buyer,
			expected: SaleOffered,
		},
		{
			name: "Confirmation after offer",
			messages: []Message{
				message(MessageSaleOffer, buyer, t0),
				message(MessageSaleConfirmed, seller, t0.Add(time.Minute)),
			},
			listing:  activeListing(CategoryFurniture),
			viewer:   buyer,
			expected: SaleConfirmed,
		},
		{
			name: "New offer supersedes an older confirmation",
			messages: []Message{
				message(MessageSaleOffer, buyer, t0),
				message(MessageSaleConfirmed, seller, t0.Add(time.Minute)),
				message(MessageSaleOffer, buyer, t0.Add(2*time.Minute)),
			},
			listing:  activeListing(CategoryServices),
			viewer:   buyer,
			expected: SaleOffered,
		},
		{
			name: "Latest of two offers is used",
			messages: []Message{
				message(MessageSaleOffer, buyer, t0),
				message(MessageSaleOffer, buyer, t0.Add(time.Second)),
			},
			listing:  activeListing(CategoryFurniture),
			viewer:   buyer,
			expected: SaleOffered,
		},
		{
			name:     "Listing sold to viewer outside the chat",
			messages: []Message{message(MessageText, buyer, t0)},
			listing:  sold,
			viewer:   buyer,
			expected: SaleConfirmed,
		},
		{
			name:     "Listing sold to somebody else",
			listing:  sold,
			viewer:   "buyer-2",
			expected: SaleNone,
		},
		{
			name:     "Conversation without listing",
			messages: []Message{message(MessageText, buyer, t0)},
			viewer:   buyer,
			expected: SaleNone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			req.Equal(tt.expected, DeriveSaleState(tt.messages, tt.listing, tt.viewer))
		})
	}
}

func TestDeriveSaleState_IsIdempotent(t *testing.T) {
	req := require.New(t)
	t0 := time.Now().UTC()
	messages := []Message{
		message(MessageText, buyer, t0),
		message(MessageSaleOffer, buyer, t0.Add(time.Second)),
		message(MessageSaleConfirmed, seller, t0.Add(2*time.Second)),
	}
	listing := activeListing(CategoryTextbooks)
	snapshot := append([]Message(nil), messages...)

	first := DeriveSaleState(messages, listing, buyer)
	second := DeriveSaleState(messages, listing, buyer)

	req.Equal(first, second)
	req.Equal(SaleConfirmed, first)
	// Then the input history was not touched
	req.Equal(snapshot, messages)
}

func TestNewSaleView(t *testing.T) {
	t0 := time.Now().UTC()
	conversation := Conversation{ID: "conv-1", BuyerID: buyer, SellerID: seller, ListingID: "listing-1"}
	offered := []Message{message(MessageSaleOffer, buyer, t0)}
	confirmed := append(offered, message(MessageSaleConfirmed, seller, t0.Add(time.Second)))
	soldListing := &Listing{ID: "listing-1", Status: ListingSold, SoldToBuyerID: lo.ToPtr(buyer)}

	t.Run("buyer can offer on an active listing", func(t *testing.T) {
		req := require.New(t)
		view := NewSaleView(conversation, activeListing(CategoryFurniture), nil, buyer, false)
		req.Equal(SaleNone, view.State)
		req.Equal(RoleBuyer, view.Role)
		req.True(view.CanOffer)
		req.False(view.CanConfirm)
		req.False(view.ShowReviewPrompt)
	})

	t.Run("pending offer blocks a second offer and unlocks confirmation", func(t *testing.T) {
		req := require.New(t)
		listing := activeListing(CategoryFurniture)
		req.False(NewSaleView(conversation, listing, offered, buyer, false).CanOffer)
		req.True(NewSaleView(conversation, listing, offered, seller, false).CanConfirm)
	})

	t.Run("confirmed sale prompts the buyer for a review until reviewed", func(t *testing.T) {
		req := require.New(t)
		view := NewSaleView(conversation, soldListing, confirmed, buyer, false)
		req.Equal(SaleConfirmed, view.State)
		req.True(view.ShowReviewPrompt)
		req.False(view.CanOffer)

		req.False(NewSaleView(conversation, soldListing, confirmed, buyer, true).ShowReviewPrompt)
		req.False(NewSaleView(conversation, soldListing, confirmed, seller, false).ShowReviewPrompt)
	})

	t.Run("services can be offered again after confirmation", func(t *testing.T) {
		req := require.New(t)
		view := NewSaleView(conversation, activeListing(CategoryServices), confirmed, buyer, false)
		req.True(view.CanOffer)
		req.True(view.ShowReviewPrompt)
	})

	t.Run("outsider gets no action", func(t *testing.T) {
		req := require.New(t)
		view := NewSaleView(conversation, activeListing(CategoryFurniture), offered, "stranger", false)
		req.Equal(RoleNone, view.Role)
		req.False(view.CanOffer || view.CanConfirm || view.ShowReviewPrompt)
	})

	t.Run("sold-to fallback follows the conversation buyer whoever views", func(t *testing.T) {
		req := require.New(t)
		req.Equal(SaleConfirmed, NewSaleView(conversation, soldListing, nil, seller, false).State)
		req.Equal(SaleConfirmed, NewSaleView(conversation, soldListing, nil, buyer, false).State)
		req.Equal(SaleConfirmed, NewSaleView(conversation, soldListing, nil, "stranger", false).State)
	})

	t.Run("conversation without listing has no sale action", func(t *testing.T) {
		req := require.New(t)
		direct := Conversation{ID: "conv-2", BuyerID: buyer, SellerID: seller}
		view := NewSaleView(direct, nil, nil, buyer, false)
		req.False(view.CanOffer || view.CanConfirm || view.ShowReviewPrompt)
	})
}

func TestListingUpdate_Apply(t *testing.T) {
	req := require.New(t)
	at := time.Now().UTC()
	listing := *activeListing(CategoryServices)

	next := ListingUpdate{IncrementTimesSold: true}.Apply(listing, ListingActive, at)
	req.Equal(1, next.TimesSold)
	req.Equal(ListingActive, next.Status)
	req.Equal(0, listing.TimesSold)

	sold := ListingUpdate{SoldToBuyerID: lo.ToPtr(buyer)}.Apply(*activeListing(CategoryFurniture), ListingSold, at)
	req.True(sold.IsSoldTo(buyer))
	req.Equal(at, sold.UpdatedAt)
}

func TestNewSellerRating(t *testing.T) {
	req := require.New(t)
	req.Equal(0, NewSellerRating(nil).Count)

	rating := NewSellerRating([]Review{{Rating: 5}, {Rating: 4}, {Rating: 3}})
	req.Equal(3, rating.Count)
	req.InDelta(4.0, rating.Average, 0.001)
}
