package market

import (
	"campus-market/domain"
	"time"
)

type Empty struct{}

type HealthResponse struct {
	Status               string    `cbor:"status"`
	PID                  int32     `cbor:"pid"`
	CPUPercent           float64   `cbor:"cpu_percent"`
	RSSBytes             uint64    `cbor:"rss_bytes"`
	Goroutines           int       `cbor:"goroutines"`
	NotificationsSent    uint64    `cbor:"notifications_sent"`
	NotificationsFailed  uint64    `cbor:"notifications_failed"`
	NotificationsDropped uint64    `cbor:"notifications_dropped"`
	QueueLength          int       `cbor:"queue_length"`
	QueueCapacity        int       `cbor:"queue_capacity"`
	SampledAt            time.Time `cbor:"sampled_at"`
}

type CreateListingRequest struct {
	Title       string          `cbor:"title"`
	Description string          `cbor:"description"`
	PriceCents  int64           `cbor:"price_cents"`
	Category    domain.Category `cbor:"category"`
}

type ListingRequest struct {
	ListingID string `cbor:"listing_id"`
}

type TakeDownListingRequest struct {
	ListingID string `cbor:"listing_id"`
	Reason    string `cbor:"reason"`
}

type SearchListingsRequest struct {
	Query    string          `cbor:"query"`
	Category domain.Category `cbor:"category"`
	Limit    int             `cbor:"limit"`
}

type ListingResponse struct {
	Listing domain.Listing `cbor:"listing"`
}

type ListingsResponse struct {
	Listings []domain.Listing `cbor:"listings"`
}

// StartConversationRequest targets a listing, or the seller directly when
// ListingID is empty.
type StartConversationRequest struct {
	ListingID string `cbor:"listing_id"`
	SellerID  string `cbor:"seller_id"`
}

type ConversationRequest struct {
	ConversationID string `cbor:"conversation_id"`
}

type ConversationResponse struct {
	Conversation domain.Conversation `cbor:"conversation"`
}

type ConversationsResponse struct {
	Conversations []domain.Conversation `cbor:"conversations"`
}

type SendMessageRequest struct {
	ConversationID string `cbor:"conversation_id"`
	Content        string `cbor:"content"`
}

type MessageResponse struct {
	Message domain.Message `cbor:"message"`
}

type MessagesResponse struct {
	Messages []domain.Message `cbor:"messages"`
}

type SaleViewResponse struct {
	View domain.SaleView `cbor:"view"`
}

type ReviewPromptResponse struct {
	ShowReviewPrompt bool `cbor:"show_review_prompt"`
}

type SubmitReviewRequest struct {
	ConversationID string `cbor:"conversation_id"`
	Rating         int    `cbor:"rating"`
	Comment        string `cbor:"comment"`
}

type ReviewResponse struct {
	Review domain.Review `cbor:"review"`
}

type SellerReviewsRequest struct {
	SellerID string `cbor:"seller_id"`
}

type SellerReviewsResponse struct {
	Rating domain.SellerRating `cbor:"rating"`
}

type ReportRequest struct {
	TargetType domain.ReportTarget `cbor:"target_type"`
	TargetID   string              `cbor:"target_id"`
	Reason     domain.ReportReason `cbor:"reason"`
	Detail     string              `cbor:"detail"`
}

type ReportResponse struct {
	Report domain.Report `cbor:"report"`
}

type ReportsResponse struct {
	Reports []domain.Report `cbor:"reports"`
}
