package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stuurdean/municipality-dashboards/internal/domain"
)

// CommentRepository manages the append-only comment thread of a report.
type CommentRepository interface {
	Create(ctx context.Context, comment *domain.Comment) error
	ListByReport(ctx context.Context, reportID string) ([]domain.Comment, error)
}

type commentRepository struct {
	pool *pgxpool.Pool
}

// NewCommentRepository builds the repository.
func NewCommentRepository(pool *pgxpool.Pool) CommentRepository {
	return &commentRepository{pool: pool}
}

// Create inserts the comment and bumps the parent report's updated_at in the
// same transaction.
func (r *commentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if err := insertComment(ctx, tx, comment); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `UPDATE reports SET updated_at=NOW() WHERE id=$1`, comment.ReportID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *commentRepository) ListByReport(ctx context.Context, reportID string) ([]domain.Comment, error) {
	const query = `
        SELECT id, report_id, user_id, user_email, user_type, content, created_at, updated_at
        FROM report_comments WHERE report_id=$1 ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, query, reportID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Comment
	for rows.Next() {
		var comment domain.Comment
		if err := rows.Scan(
			&comment.ID,
			&comment.ReportID,
			&comment.UserID,
			&comment.UserEmail,
			&comment.UserType,
			&comment.Content,
			&comment.CreatedAt,
			&comment.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, comment)
	}
	return result, rows.Err()
}
