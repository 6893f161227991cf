package domain

import "time"

type ReportTarget string

const (
	ReportConversation ReportTarget = "conversation"
	ReportListing      ReportTarget = "listing"
)

type ReportReason string

const (
	ReasonSpam           ReportReason = "spam"
	ReasonScam           ReportReason = "scam"
	ReasonInappropriate  ReportReason = "inappropriate"
	ReasonHarassment     ReportReason = "harassment"
	ReasonProhibitedItem ReportReason = "prohibited_item"
	ReasonOther          ReportReason = "other"
)

// Report flags a conversation or a listing for the moderation view.
// Reports never influence the sale workflow.
type Report struct {
	ID         string
	ReporterID string
	TargetType ReportTarget
	TargetID   string
	Reason     ReportReason
	Detail     string
	CreatedAt  time.Time
}
