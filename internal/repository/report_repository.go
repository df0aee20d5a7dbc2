package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stuurdean/municipality-dashboards/internal/domain"
)

// ReportFilter captures listing/export query parameters.
type ReportFilter struct {
	Statuses         []domain.ReportStatus
	AssignedToID     *string
	AssignedTo       *string
	IssueType        *domain.IssueType
	Department       *string
	MLStatus         *domain.MLProcessingStatus
	CreatedFrom      *time.Time
	CreatedTo        *time.Time
	IncludeArchived  bool
	Limit            int
}

// ClassificationUpdate carries the ML pipeline output for one report.
type ClassificationUpdate struct {
	AIConfidenceScore    float64
	MLConfidenceScore    float64
	MLSuggestions        []domain.MLSuggestion
	ImageClassifications []domain.ImageClassification
	TextAnalysis         *domain.TextAnalysis
}

// ReportRepository encapsulates report persistence. Mutations that touch the
// audit trail run the report update and the history/comment inserts in one
// transaction, so the trail always reflects the stored state.
type ReportRepository interface {
	Create(ctx context.Context, report *domain.Report) error
	GetByID(ctx context.Context, id string) (*domain.Report, error)
	List(ctx context.Context, filter ReportFilter) ([]domain.Report, error)
	UpdateStatus(ctx context.Context, id string, newStatus domain.ReportStatus, entry *domain.StatusHistory) error
	Assign(ctx context.Context, id string, assignee *domain.User, entry *domain.StatusHistory, comment *domain.Comment) error
	Unassign(ctx context.Context, id string, entry *domain.StatusHistory, comment *domain.Comment) error
	Archive(ctx context.Context, id string) error
	MarkMLProcessing(ctx context.Context, id string) error
	CompleteClassification(ctx context.Context, id string, update ClassificationUpdate, entry *domain.StatusHistory) error
	FailClassification(ctx context.Context, id string, reason string) error
}

const reportColumns = `id, user_id, municipality_id, title, description, issue_type, image_urls,
       location, address, ai_confidence_score, status, priority,
       assigned_to, assigned_to_id, assigned_at, assigned_department,
       ml_processing_status, ml_processing_completed_at, ml_confidence_score,
       ml_suggestions, image_classifications, text_analysis, ml_processing_error,
       rating, feedback, created_at, updated_at, resolved_at, archived_at`

type reportRepository struct {
	pool *pgxpool.Pool
}

// NewReportRepository instantiates the repository.
func NewReportRepository(pool *pgxpool.Pool) ReportRepository {
	return &reportRepository{pool: pool}
}

func (r *reportRepository) Create(ctx context.Context, report *domain.Report) error {
	const query = `
        INSERT INTO reports (user_id, municipality_id, title, description, issue_type, image_urls,
            location, address, ai_confidence_score, status, priority, ml_processing_status, rating, feedback)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		report.UserID,
		report.MunicipalityID,
		report.Title,
		report.Description,
		report.IssueType,
		report.ImageURLs,
		report.Location,
		report.Address,
		report.AIConfidenceScore,
		report.Status,
		report.Priority,
		report.MLProcessingStatus,
		report.Rating,
		report.Feedback,
	).Scan(&report.ID, &report.CreatedAt, &report.UpdatedAt)
}

func (r *reportRepository) GetByID(ctx context.Context, id string) (*domain.Report, error) {
	query := `SELECT ` + reportColumns + ` FROM reports WHERE id=$1`
	var report domain.Report
	if err := scanReport(r.pool.QueryRow(ctx, query, id), &report); err != nil {
		return nil, err
	}
	return &report, nil
}

func (r *reportRepository) List(ctx context.Context, filter ReportFilter) ([]domain.Report, error) {
	query := `SELECT ` + reportColumns + ` FROM reports`
	clauses := []string{}
	args := []any{}

	if !filter.IncludeArchived {
		clauses = append(clauses, "archived_at IS NULL")
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.AssignedToID != nil {
		args = append(args, *filter.AssignedToID)
		clauses = append(clauses, fmt.Sprintf("assigned_to_id=$%d", len(args)))
	}
	if filter.AssignedTo != nil {
		args = append(args, *filter.AssignedTo)
		clauses = append(clauses, fmt.Sprintf("assigned_to=$%d", len(args)))
	}
	if filter.IssueType != nil {
		args = append(args, *filter.IssueType)
		clauses = append(clauses, fmt.Sprintf("issue_type=$%d", len(args)))
	}
	if filter.Department != nil {
		args = append(args, *filter.Department)
		clauses = append(clauses, fmt.Sprintf("assigned_department=$%d", len(args)))
	}
	if filter.MLStatus != nil {
		args = append(args, *filter.MLStatus)
		clauses = append(clauses, fmt.Sprintf("ml_processing_status=$%d", len(args)))
	}
	if filter.CreatedFrom != nil {
		args = append(args, *filter.CreatedFrom)
		clauses = append(clauses, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if filter.CreatedTo != nil {
		args = append(args, *filter.CreatedTo)
		clauses = append(clauses, fmt.Sprintf("created_at <= $%d", len(args)))
	}

	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	// newest first with id as tiebreaker so repeated listings keep a stable
	// order; the dashboard reads whole collections, so no default limit
	query += " ORDER BY created_at DESC, id"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanReports(rows)
}

func (r *reportRepository) UpdateStatus(ctx context.Context, id string, newStatus domain.ReportStatus, entry *domain.StatusHistory) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	var oldStatus domain.ReportStatus
	if err := tx.QueryRow(ctx, `SELECT status FROM reports WHERE id=$1 FOR UPDATE`, id).Scan(&oldStatus); err != nil {
		return err
	}

	const update = `
        UPDATE reports SET status=$1, updated_at=NOW(),
            resolved_at = CASE WHEN $2 THEN COALESCE(resolved_at, NOW()) ELSE resolved_at END
        WHERE id=$3`
	if _, err := tx.Exec(ctx, update, newStatus, newStatus.Terminal(), id); err != nil {
		return err
	}

	entry.ReportID = id
	entry.OldStatus = string(oldStatus)
	entry.NewStatus = string(newStatus)
	if err := insertHistory(ctx, tx, entry); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *reportRepository) Assign(ctx context.Context, id string, assignee *domain.User, entry *domain.StatusHistory, comment *domain.Comment) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	const update = `
        UPDATE reports SET assigned_to=$1, assigned_to_id=$2, assigned_at=NOW(),
            assigned_department=NULLIF($3,''), updated_at=NOW()
        WHERE id=$4`
	cmd, err := tx.Exec(ctx, update, assignee.FullName, assignee.ID, assignee.Department, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}

	entry.ReportID = id
	if err := insertHistory(ctx, tx, entry); err != nil {
		return err
	}
	comment.ReportID = id
	if err := insertComment(ctx, tx, comment); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *reportRepository) Unassign(ctx context.Context, id string, entry *domain.StatusHistory, comment *domain.Comment) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	const update = `
        UPDATE reports SET assigned_to=NULL, assigned_to_id=NULL, assigned_at=NULL,
            assigned_department=NULL, updated_at=NOW()
        WHERE id=$1`
	cmd, err := tx.Exec(ctx, update, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}

	entry.ReportID = id
	if err := insertHistory(ctx, tx, entry); err != nil {
		return err
	}
	comment.ReportID = id
	if err := insertComment(ctx, tx, comment); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *reportRepository) Archive(ctx context.Context, id string) error {
	const query = `UPDATE reports SET archived_at=NOW(), updated_at=NOW() WHERE id=$1 AND archived_at IS NULL`
	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *reportRepository) MarkMLProcessing(ctx context.Context, id string) error {
	const query = `
        UPDATE reports SET ml_processing_status=$1, updated_at=NOW()
        WHERE id=$2 AND ml_processing_status=$3`
	cmd, err := r.pool.Exec(ctx, query, domain.MLStatusProcessing, id, domain.MLStatusPending)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *reportRepository) CompleteClassification(ctx context.Context, id string, update ClassificationUpdate, entry *domain.StatusHistory) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	var oldStatus domain.ReportStatus
	if err := tx.QueryRow(ctx, `SELECT status FROM reports WHERE id=$1 FOR UPDATE`, id).Scan(&oldStatus); err != nil {
		return err
	}

	// freshly submitted reports advance to ai_processed; anything a human
	// already touched keeps its status
	newStatus := oldStatus
	if oldStatus == domain.ReportStatusSubmitted {
		newStatus = domain.ReportStatusAIProcessed
	}

	const query = `
        UPDATE reports SET
            ml_processing_status=$1, ml_processing_completed_at=NOW(), ml_processing_error=NULL,
            ai_confidence_score=$2, ml_confidence_score=$3,
            ml_suggestions=$4, image_classifications=$5, text_analysis=$6,
            status=$7, updated_at=NOW()
        WHERE id=$8`
	if _, err := tx.Exec(ctx, query,
		domain.MLStatusCompleted,
		update.AIConfidenceScore,
		update.MLConfidenceScore,
		update.MLSuggestions,
		update.ImageClassifications,
		update.TextAnalysis,
		newStatus,
		id,
	); err != nil {
		return err
	}

	if entry != nil && newStatus != oldStatus {
		entry.ReportID = id
		entry.OldStatus = string(oldStatus)
		entry.NewStatus = string(newStatus)
		entry.Automatic = true
		if err := insertHistory(ctx, tx, entry); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (r *reportRepository) FailClassification(ctx context.Context, id string, reason string) error {
	const query = `
        UPDATE reports SET ml_processing_status=$1, ml_processing_error=$2, updated_at=NOW()
        WHERE id=$3`
	cmd, err := r.pool.Exec(ctx, query, domain.MLStatusFailed, reason, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func insertHistory(ctx context.Context, tx pgx.Tx, entry *domain.StatusHistory) error {
	const query = `
        INSERT INTO report_status_history (report_id, old_status, new_status, changed_by, changed_by_user, notes, automatic_flag)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, ts`
	return tx.QueryRow(ctx, query,
		entry.ReportID,
		entry.OldStatus,
		entry.NewStatus,
		entry.ChangedBy,
		entry.ChangedByUser,
		entry.Notes,
		entry.Automatic,
	).Scan(&entry.ID, &entry.Timestamp)
}

func insertComment(ctx context.Context, tx pgx.Tx, comment *domain.Comment) error {
	const query = `
        INSERT INTO report_comments (report_id, user_id, user_email, user_type, content)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at, updated_at`
	return tx.QueryRow(ctx, query,
		comment.ReportID,
		comment.UserID,
		comment.UserEmail,
		comment.UserType,
		comment.Content,
	).Scan(&comment.ID, &comment.CreatedAt, &comment.UpdatedAt)
}

type reportRow interface {
	Scan(dest ...any) error
}

func scanReport(row reportRow, report *domain.Report) error {
	return row.Scan(
		&report.ID,
		&report.UserID,
		&report.MunicipalityID,
		&report.Title,
		&report.Description,
		&report.IssueType,
		&report.ImageURLs,
		&report.Location,
		&report.Address,
		&report.AIConfidenceScore,
		&report.Status,
		&report.Priority,
		&report.AssignedTo,
		&report.AssignedToID,
		&report.AssignedAt,
		&report.AssignedDepartment,
		&report.MLProcessingStatus,
		&report.MLProcessingCompletedAt,
		&report.MLConfidenceScore,
		&report.MLSuggestions,
		&report.ImageClassifications,
		&report.TextAnalysis,
		&report.MLProcessingError,
		&report.Rating,
		&report.Feedback,
		&report.CreatedAt,
		&report.UpdatedAt,
		&report.ResolvedAt,
		&report.ArchivedAt,
	)
}

func scanReports(rows pgx.Rows) ([]domain.Report, error) {
	var result []domain.Report
	for rows.Next() {
		var report domain.Report
		if err := scanReport(rows, &report); err != nil {
			return nil, err
		}
		result = append(result, report)
	}
	return result, rows.Err()
}
