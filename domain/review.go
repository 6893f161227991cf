package domain

import "time"

const (
	MinRating = 1
	MaxRating = 5
)

// Review is left once by a buyer about a seller for a listing, and never edited.
type Review struct {
	ID         string
	ReviewerID string
	SellerID   string
	ListingID  string
	Rating     int
	Comment    string
	CreatedAt  time.Time
}

// SellerRating summarises the reviews received by a seller.
type SellerRating struct {
	Reviews []Review
	Average float64
	Count   int
}

func NewSellerRating(reviews []Review) SellerRating {
	rating := SellerRating{Reviews: reviews, Count: len(reviews)}
	if len(reviews) == 0 {
		return rating
	}
	total := 0
	for _, r := range reviews {
		total += r.Rating
	}
	rating.Average = float64(total) / float64(len(reviews))
	return rating
}
