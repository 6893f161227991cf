package repositories

import (
	"fmt"
	"strings"
)

// DescribeRecord decodes a raw badger entry into a kind and a one-line summary
// for inspection tools. Index entries are reported with the key they point to.
func DescribeRecord(key string, value []byte) (kind, summary string, err error) {
	switch {
	case strings.HasPrefix(key, "idx:"), strings.HasPrefix(key, "head:"):
		return "INDEX", string(value), nil
	case strings.HasPrefix(key, "listing:"):
		l, err := decodeListing(value)
		if err != nil {
			return "", "", err
		}
		buyer := "-"
		if l.SoldToBuyerID != nil {
			buyer = *l.SoldToBuyerID
		}
		return "LISTING", fmt.Sprintf("%s [%s/%s] seller=%s buyer=%s sold=%d",
			l.Title, l.Category, l.Status, l.SellerID, buyer, l.TimesSold), nil
	case strings.HasPrefix(key, "conv:"):
		c, err := decodeConversation(value)
		if err != nil {
			return "", "", err
		}
		return "CONVERSATION", fmt.Sprintf("buyer=%s seller=%s listing=%s", c.BuyerID, c.SellerID, c.ListingID), nil
	case strings.HasPrefix(key, "msg:"):
		m, err := decodeMessage(value)
		if err != nil {
			return "", "", err
		}
		return "MESSAGE", fmt.Sprintf("%s %s: %s", m.Type, m.SenderID, m.Content), nil
	case strings.HasPrefix(key, "review:"):
		r, err := decodeReview(value)
		if err != nil {
			return "", "", err
		}
		return "REVIEW", fmt.Sprintf("%d/5 seller=%s %s", r.Rating, r.SellerID, r.Comment), nil
	case strings.HasPrefix(key, "report:"):
		r, err := decodeReport(value)
		if err != nil {
			return "", "", err
		}
		return "REPORT", fmt.Sprintf("%s %s %s", r.TargetType, r.TargetID, r.Reason), nil
	}
	return "UNKNOWN", fmt.Sprintf("%d bytes", len(value)), nil
}
