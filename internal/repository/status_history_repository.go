package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stuurdean/municipality-dashboards/internal/domain"
)

// StatusHistoryRepository reads the audit trail of a report. Entries are only
// ever written inside ReportRepository transactions, never directly.
type StatusHistoryRepository interface {
	ListByReport(ctx context.Context, reportID string) ([]domain.StatusHistory, error)
}

type statusHistoryRepository struct {
	pool *pgxpool.Pool
}

// NewStatusHistoryRepository builds the repository.
func NewStatusHistoryRepository(pool *pgxpool.Pool) StatusHistoryRepository {
	return &statusHistoryRepository{pool: pool}
}

func (r *statusHistoryRepository) ListByReport(ctx context.Context, reportID string) ([]domain.StatusHistory, error) {
	const query = `
        SELECT id, report_id, old_status, new_status, changed_by, changed_by_user, notes, automatic_flag, ts
        FROM report_status_history WHERE report_id=$1 ORDER BY ts ASC`
	rows, err := r.pool.Query(ctx, query, reportID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.StatusHistory
	for rows.Next() {
		var entry domain.StatusHistory
		if err := rows.Scan(
			&entry.ID,
			&entry.ReportID,
			&entry.OldStatus,
			&entry.NewStatus,
			&entry.ChangedBy,
			&entry.ChangedByUser,
			&entry.Notes,
			&entry.Automatic,
			&entry.Timestamp,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}
