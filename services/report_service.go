package services

import (
	"campus-market/domain"
	"campus-market/errors"
	"campus-market/repositories"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
)

type IReportService interface {
	Report(ctx context.Context, cmd domain.ReportCommand) (domain.Report, error)
	ListReports(ctx context.Context) ([]domain.Report, error)
}

// ReportService records abuse reports for the moderation view.
// Reports never change the sale workflow.
type ReportService struct {
	log   *slog.Logger
	store repositories.IMarketStore
}

func NewReportService(log *slog.Logger, store repositories.IMarketStore) *ReportService {
	return &ReportService{log: log, store: store}
}

func (s *ReportService) Report(ctx context.Context, cmd domain.ReportCommand) (domain.Report, error) {
	cmd.Detail = strings.TrimSpace(cmd.Detail)
	if err := validateCommand(cmd); err != nil {
		return domain.Report{}, err
	}

	switch cmd.TargetType {
	case domain.ReportConversation:
		conversation, err := s.store.GetConversation(ctx, cmd.TargetID)
		if err != nil {
			return domain.Report{}, err
		}
		if !conversation.IsParticipant(cmd.ReporterID) {
			return domain.Report{}, fmt.Errorf("%w: only participants can report a conversation", errors.ErrAuthorization)
		}
	case domain.ReportListing:
		if _, err := s.store.GetListing(ctx, cmd.TargetID); err != nil {
			return domain.Report{}, err
		}
	}

	report, err := s.store.InsertReport(ctx, domain.Report{
		ID:         uuid.NewString(),
		ReporterID: cmd.ReporterID,
		TargetType: cmd.TargetType,
		TargetID:   cmd.TargetID,
		Reason:     cmd.Reason,
		Detail:     cmd.Detail,
		CreatedAt:  time.Now().UTC(),
	})
	if err != nil {
		return domain.Report{}, err
	}
	s.log.Info("Report filed", "report_id", report.ID, "target_type", report.TargetType, "reason", report.Reason)
	return report, nil
}

// ListReports returns every report, newest first. Callers must hold the admin role.
func (s *ReportService) ListReports(ctx context.Context) ([]domain.Report, error) {
	return s.store.ListReports(ctx)
}
