package domain

type OfferSaleCommand struct {
	ConversationID string `validate:"required"`
	ActorID        string `validate:"required"`
}

type ConfirmSaleCommand struct {
	ConversationID string `validate:"required"`
	ActorID        string `validate:"required"`
}

type SubmitReviewCommand struct {
	ConversationID string `validate:"required"`
	ReviewerID     string `validate:"required"`
	Rating         int    `validate:"min=1,max=5"`
	Comment        string `validate:"max=1000"`
}

type ReportCommand struct {
	ReporterID string       `validate:"required"`
	TargetType ReportTarget `validate:"required,oneof=conversation listing"`
	TargetID   string       `validate:"required"`
	Reason     ReportReason `validate:"required,oneof=spam scam inappropriate harassment prohibited_item other"`
	Detail     string       `validate:"max=1000"`
}

// StartConversationCommand opens a thread about ListingID, or a direct thread
// with SellerID when ListingID is empty.
type StartConversationCommand struct {
	BuyerID   string `validate:"required"`
	ListingID string `validate:"required_without=SellerID"`
	SellerID  string `validate:"required_without=ListingID"`
}

type SendMessageCommand struct {
	ConversationID string `validate:"required"`
	SenderID       string `validate:"required"`
	Content        string `validate:"required"`
}

type CreateListingCommand struct {
	SellerID    string   `validate:"required"`
	Title       string   `validate:"required,max=120"`
	Description string   `validate:"max=4000"`
	PriceCents  int64    `validate:"gte=0"`
	Category    Category `validate:"required,oneof=textbooks furniture electronics clothing school_supplies event_tickets rides services free"`
}

type SearchListingsCommand struct {
	Query    string
	Category Category
	Limit    int `validate:"gte=0,lte=100"`
}

// ListingActionCommand covers the seller-only listing transitions (archive, relist).
type ListingActionCommand struct {
	ListingID string `validate:"required"`
	ActorID   string `validate:"required"`
}

// TakeDownListingCommand archives someone else's listing on behalf of an
// admin. IsAdmin is resolved from the caller's roles, not from the request.
type TakeDownListingCommand struct {
	ListingID string `validate:"required"`
	ActorID   string `validate:"required"`
	IsAdmin   bool
	Reason    string `validate:"max=500"`
}
