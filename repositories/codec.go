package repositories

import (
	"campus-market/domain"
	"fmt"
	"time"

	"google.golang.org/protobuf/encoding/protowire"
)

// Records are stored in protobuf wire format. Field numbers below are part of
// the on-disk format: never renumber, only append.

const (
	listingID protowire.Number = iota + 1
	listingSellerID
	listingTitle
	listingDescription
	listingPriceCents
	listingCategory
	listingStatus
	listingSoldToBuyerID
	listingTimesSold
	listingCreatedAt
	listingUpdatedAt
)

const (
	conversationID protowire.Number = iota + 1
	conversationBuyerID
	conversationSellerID
	conversationListingID
	conversationCreatedAt
)

const (
	messageID protowire.Number = iota + 1
	messageConversationID
	messageSenderID
	messageContent
	messageType
	messageCreatedAt
)

const (
	reviewID protowire.Number = iota + 1
	reviewReviewerID
	reviewSellerID
	reviewListingID
	reviewRating
	reviewComment
	reviewCreatedAt
)

const (
	reportID protowire.Number = iota + 1
	reportReporterID
	reportTargetType
	reportTargetID
	reportReason
	reportDetail
	reportCreatedAt
)

type recordWriter struct {
	b []byte
}

func (w *recordWriter) string(num protowire.Number, value string) {
	if value == "" {
		return
	}
	w.b = protowire.AppendTag(w.b, num, protowire.BytesType)
	w.b = protowire.AppendString(w.b, value)
}

func (w *recordWriter) int(num protowire.Number, value int64) {
	if value == 0 {
		return
	}
	w.b = protowire.AppendTag(w.b, num, protowire.VarintType)
	w.b = protowire.AppendVarint(w.b, protowire.EncodeZigZag(value))
}

func (w *recordWriter) time(num protowire.Number, value time.Time) {
	if value.IsZero() {
		return
	}
	w.int(num, value.UnixNano())
}

// field is a decoded scalar: either a string or a signed integer.
type field struct {
	str string
	num int64
}

func (f field) time() time.Time {
	return time.Unix(0, f.num).UTC()
}

// decodeRecord walks the fields of a record. Unknown fields and wire types are
// skipped so older binaries can read records written by newer ones.
func decodeRecord(b []byte, visit func(num protowire.Number, f field)) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]

		switch typ {
		case protowire.BytesType:
			value, m := protowire.ConsumeString(b)
			if m < 0 {
				return protowire.ParseError(m)
			}
			visit(num, field{str: value})
			n = m
		case protowire.VarintType:
			value, m := protowire.ConsumeVarint(b)
			if m < 0 {
				return protowire.ParseError(m)
			}
			visit(num, field{num: protowire.DecodeZigZag(value)})
			n = m
		default:
			n = protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return protowire.ParseError(n)
			}
		}
		b = b[n:]
	}
	return nil
}

func encodeListing(l domain.Listing) []byte {
	w := recordWriter{}
	w.string(listingID, l.ID)
	w.string(listingSellerID, l.SellerID)
	w.string(listingTitle, l.Title)
	w.string(listingDescription, l.Description)
	w.int(listingPriceCents, l.PriceCents)
	w.string(listingCategory, string(l.Category))
	w.string(listingStatus, string(l.Status))
	if l.SoldToBuyerID != nil {
		w.string(listingSoldToBuyerID, *l.SoldToBuyerID)
	}
	w.int(listingTimesSold, int64(l.TimesSold))
	w.time(listingCreatedAt, l.CreatedAt)
	w.time(listingUpdatedAt, l.UpdatedAt)
	return w.b
}

func decodeListing(b []byte) (domain.Listing, error) {
	var l domain.Listing
	err := decodeRecord(b, func(num protowire.Number, f field) {
		switch num {
		case listingID:
			l.ID = f.str
		case listingSellerID:
			l.SellerID = f.str
		case listingTitle:
			l.Title = f.str
		case listingDescription:
			l.Description = f.str
		case listingPriceCents:
			l.PriceCents = f.num
		case listingCategory:
			l.Category = domain.Category(f.str)
		case listingStatus:
			l.Status = domain.ListingStatus(f.str)
		case listingSoldToBuyerID:
			buyer := f.str
			l.SoldToBuyerID = &buyer
		case listingTimesSold:
			l.TimesSold = int(f.num)
		case listingCreatedAt:
			l.CreatedAt = f.time()
		case listingUpdatedAt:
			l.UpdatedAt = f.time()
		}
	})
	if err != nil {
		return domain.Listing{}, fmt.Errorf("decode listing: %w", err)
	}
	return l, nil
}

func encodeConversation(c domain.Conversation) []byte {
	w := recordWriter{}
	w.string(conversationID, c.ID)
	w.string(conversationBuyerID, c.BuyerID)
	w.string(conversationSellerID, c.SellerID)
	w.string(conversationListingID, c.ListingID)
	w.time(conversationCreatedAt, c.CreatedAt)
	return w.b
}

func decodeConversation(b []byte) (domain.Conversation, error) {
	var c domain.Conversation
	err := decodeRecord(b, func(num protowire.Number, f field) {
		switch num {
		case conversationID:
			c.ID = f.str
		case conversationBuyerID:
			c.BuyerID = f.str
		case conversationSellerID:
			c.SellerID = f.str
		case conversationListingID:
			c.ListingID = f.str
		case conversationCreatedAt:
			c.CreatedAt = f.time()
		}
	})
	if err != nil {
		return domain.Conversation{}, fmt.Errorf("decode conversation: %w", err)
	}
	return c, nil
}

func encodeMessage(m domain.Message) []byte {
	w := recordWriter{}
	w.string(messageID, m.ID)
	w.string(messageConversationID, m.ConversationID)
	w.string(messageSenderID, m.SenderID)
	w.string(messageContent, m.Content)
	w.string(messageType, string(m.Type))
	w.time(messageCreatedAt, m.CreatedAt)
	return w.b
}

func decodeMessage(b []byte) (domain.Message, error) {
	var m domain.Message
	err := decodeRecord(b, func(num protowire.Number, f field) {
		switch num {
		case messageID:
			m.ID = f.str
		case messageConversationID:
			m.ConversationID = f.str
		case messageSenderID:
			m.SenderID = f.str
		case messageContent:
			m.Content = f.str
		case messageType:
			m.Type = domain.MessageType(f.str)
		case messageCreatedAt:
			m.CreatedAt = f.time()
		}
	})
	if err != nil {
		return domain.Message{}, fmt.Errorf("decode message: %w", err)
	}
	return m, nil
}

func encodeReview(r domain.Review) []byte {
	w := recordWriter{}
	w.string(reviewID, r.ID)
	w.string(reviewReviewerID, r.ReviewerID)
	w.string(reviewSellerID, r.SellerID)
	w.string(reviewListingID, r.ListingID)
	w.int(reviewRating, int64(r.Rating))
	w.string(reviewComment, r.Comment)
	w.time(reviewCreatedAt, r.CreatedAt)
	return w.b
}

func decodeReview(b []byte) (domain.Review, error) {
	var r domain.Review
	err := decodeRecord(b, func(num protowire.Number, f field) {
		switch num {
		case reviewID:
			r.ID = f.str
		case reviewReviewerID:
			r.ReviewerID = f.str
		case reviewSellerID:
			r.SellerID = f.str
		case reviewListingID:
			r.ListingID = f.str
		case reviewRating:
			r.Rating = int(f.num)
		case reviewComment:
			r.Comment = f.str
		case reviewCreatedAt:
			r.CreatedAt = f.time()
		}
	})
	if err != nil {
		return domain.Review{}, fmt.Errorf("decode review: %w", err)
	}
	return r, nil
}

func encodeReport(r domain.Report) []byte {
	w := recordWriter{}
	w.string(reportID, r.ID)
	w.string(reportReporterID, r.ReporterID)
	w.string(reportTargetType, string(r.TargetType))
	w.string(reportTargetID, r.TargetID)
	w.string(reportReason, string(r.Reason))
	w.string(reportDetail, r.Detail)
	w.time(reportCreatedAt, r.CreatedAt)
	return w.b
}

func decodeReport(b []byte) (domain.Report, error) {
	var r domain.Report
	err := decodeRecord(b, func(num protowire.Number, f field) {
		switch num {
		case reportID:
			r.ID = f.str
		case reportReporterID:
			r.ReporterID = f.str
		case reportTargetType:
			r.TargetType = domain.ReportTarget(f.str)
		case reportTargetID:
			r.TargetID = f.str
		case reportReason:
			r.Reason = domain.ReportReason(f.str)
		case reportDetail:
			r.Detail = f.str
		case reportCreatedAt:
			r.CreatedAt = f.time()
		}
	})
	if err != nil {
		return domain.Report{}, fmt.Errorf("decode report: %w", err)
	}
	return r, nil
}
