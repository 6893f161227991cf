package repositories

import (
	"campus-market/domain"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"
)

func TestCodec_Listing_SoldToBuyer(t *testing.T) {
	req := require.New(t)
	at := time.Date(2026, 2, 3, 4, 5, 6, 7, time.UTC)
	listing := domain.Listing{
		ID: "l-1", SellerID: "s-1", Title: "Calculus, 8th edition", PriceCents: 2500,
		Category: domain.CategoryTextbooks, Status: domain.ListingSold,
		SoldToBuyerID: lo.ToPtr("b-1"), TimesSold: 0, CreatedAt: at, UpdatedAt: at.Add(time.Hour),
	}

	decoded, err := decodeListing(encodeListing(listing))
	req.NoError(err)
	req.Equal(listing, decoded)
}

func TestCodec_SkipsUnknownFields(t *testing.T) {
	req := require.New(t)
	message := domain.Message{ID: "01J", ConversationID: "c-1", SenderID: "b-1", Content: "hi", Type: domain.MessageText}

	// Given a record written by a newer binary with extra fields
	b := encodeMessage(message)
	b = protowire.AppendTag(b, 42, protowire.Fixed64Type)
	b = protowire.AppendFixed64(b, 7)
	b = protowire.AppendTag(b, 43, protowire.BytesType)
	b = protowire.AppendString(b, "future")

	decoded, err := decodeMessage(b)
	req.NoError(err)
	req.Equal(message, decoded)
}

func TestCodec_RejectsTruncatedRecord(t *testing.T) {
	req := require.New(t)
	b := encodeReview(domain.Review{ID: "r-1", ReviewerID: "b-1", Rating: 4, Comment: "smooth pickup"})

	_, err := decodeReview(b[:len(b)-3])
	req.Error(err)
}

func TestDescribeRecord(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value []byte
		kind  string
	}{
		{"listing", "listing:l-1", encodeListing(domain.Listing{ID: "l-1", Title: "Desk", Status: domain.ListingActive}), "LISTING"},
		{"message", "msg:c-1:01J", encodeMessage(domain.Message{ID: "01J", Content: "hi", Type: domain.MessageText}), "MESSAGE"},
		{"index", "idx:conv:l-1:b-1", []byte("c-1"), "INDEX"},
		{"unknown", "other", []byte("x"), "UNKNOWN"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, summary, err := DescribeRecord(tt.key, tt.value)
			require.NoError(t, err)
			require.Equal(t, tt.kind, kind)
			require.NotEmpty(t, summary)
		})
	}
}
