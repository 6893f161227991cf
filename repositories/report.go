package repositories

import (
	"campus-market/domain"
	"campus-market/errors"
	"context"
	"fmt"
	"slices"

	"github.com/dgraph-io/badger/v4"
)

const reportPrefix = "report:"

func reportKey(reporterID, targetID string) string {
	return fmt.Sprintf("%s%s:%s", reportPrefix, reporterID, targetID)
}

func (s BadgerStore) GetReport(_ context.Context, reporterID, targetID string) (domain.Report, error) {
	var report domain.Report
	err := s.view("get report", func(txn *badger.Txn) error {
		return get(txn, reportKey(reporterID, targetID), func(value []byte) error {
			var err error
			report, err = decodeReport(value)
			return err
		})
	})
	return report, err
}

// InsertReport stores the report under its (reporter, target) key, which acts
// as the uniqueness constraint.
func (s BadgerStore) InsertReport(_ context.Context, report domain.Report) (domain.Report, error) {
	key := reportKey(report.ReporterID, report.TargetID)
	if report.CreatedAt.IsZero() {
		report.CreatedAt = s.now()
	}
	err := s.update("insert report", func(txn *badger.Txn) error {
		found, err := exists(txn, key)
		if err != nil {
			return err
		}
		if found {
			return fmt.Errorf("report by %s on %s: %w", report.ReporterID, report.TargetID, errors.ErrAlreadyExists)
		}
		return txn.Set([]byte(key), encodeReport(report))
	})
	if err != nil {
		return domain.Report{}, err
	}
	return report, nil
}

func (s BadgerStore) ListReports(_ context.Context) ([]domain.Report, error) {
	var reports []domain.Report
	err := s.view("list reports", func(txn *badger.Txn) error {
		return scan(txn, reportPrefix, false, func(_, value []byte) error {
			report, err := decodeReport(value)
			if err != nil {
				return err
			}
			reports = append(reports, report)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(reports, func(a, b domain.Report) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return reports, nil
}
