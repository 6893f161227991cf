package domain

import "github.com/samber/lo"

// SaleState is the step reached by the offer/confirm handshake of a conversation.
// It is never stored: it is derived from the message history on demand.
type SaleState int

const (
	SaleNone SaleState = iota
	SaleOffered
	SaleConfirmed
)

func (s SaleState) String() string {
	switch s {
	case SaleOffered:
		return "OFFERED"
	case SaleConfirmed:
		return "CONFIRMED"
	default:
		return "NONE"
	}
}

// DeriveSaleState folds the ordered message history of a conversation into its
// sale state. The most recent sale_offer or sale_confirmed message wins, so a
// repeatable listing can be offered again after a previous confirmation.
//
// When no sale message exists but the listing was marked sold to viewerID
// through another path, the sale is still recognised as confirmed.
//
// messages must be in ascending store order. listing may be nil for
// conversations that are not about a listing.
func DeriveSaleState(messages []Message, listing *Listing, viewerID string) SaleState {
	last, _, found := lo.FindLastIndexOf(messages, func(m Message) bool {
		return m.Type.IsSaleEvent()
	})
	if found {
		if last.Type == MessageSaleConfirmed {
			return SaleConfirmed
		}
		return SaleOffered
	}
	if listing != nil && listing.IsSoldTo(viewerID) {
		return SaleConfirmed
	}
	return SaleNone
}

// SaleView is what a participant may do in a conversation right now.
type SaleView struct {
	State            SaleState
	Role             Role
	CanOffer         bool
	CanConfirm       bool
	ShowReviewPrompt bool
}

// NewSaleView derives the actions offered to actorID. reviewed tells whether
// actorID already reviewed the conversation's listing.
// The sold-to fallback is evaluated for the conversation's buyer, not for
// actorID, so buyer and seller see the same state.
func NewSaleView(conversation Conversation, listing *Listing, messages []Message,
	actorID string, reviewed bool) SaleView {
	state := DeriveSaleState(messages, listing, conversation.BuyerID)
	role := conversation.RoleOf(actorID)
	view := SaleView{State: state, Role: role}
	if listing == nil {
		return view
	}

	switch role {
	case RoleBuyer:
		view.CanOffer = listing.Status == ListingActive && state != SaleOffered
		view.ShowReviewPrompt = state == SaleConfirmed && !reviewed
	case RoleSeller:
		view.CanConfirm = state == SaleOffered && listing.Status != ListingArchived
	}
	return view
}
