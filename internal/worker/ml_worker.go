package worker

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/stuurdean/municipality-dashboards/internal/config"
	"github.com/stuurdean/municipality-dashboards/internal/domain"
	"github.com/stuurdean/municipality-dashboards/internal/events"
	"github.com/stuurdean/municipality-dashboards/internal/ml"
	"github.com/stuurdean/municipality-dashboards/internal/observability"
	"github.com/stuurdean/municipality-dashboards/internal/repository"
)

// MLWorker polls for pending reports and runs them through the classifier.
// Multiple instances are safe: MarkMLProcessing only advances a pending
// report, so a raced report is simply skipped.
type MLWorker struct {
	reports    repository.ReportRepository
	classifier ml.Classifier
	dispatcher events.Dispatcher
	logger     *zap.Logger
	metrics    *observability.Metrics
	interval   time.Duration
	batchSize  int
}

// NewMLWorker constructs the enrichment worker.
func NewMLWorker(
	cfg config.MLConfig,
	reports repository.ReportRepository,
	classifier ml.Classifier,
	dispatcher events.Dispatcher,
	logger *zap.Logger,
	metrics *observability.Metrics,
) *MLWorker {
	batch := cfg.BatchSize
	if batch <= 0 {
		batch = 10
	}
	return &MLWorker{
		reports:    reports,
		classifier: classifier,
		dispatcher: dispatcher,
		logger:     logger,
		metrics:    metrics,
		interval:   cfg.PollInterval(),
		batchSize:  batch,
	}
}

// Start runs the polling loop until ctx is cancelled.
func (w *MLWorker) Start(ctx context.Context) {
	w.logger.Info("ml worker started",
		zap.Duration("interval", w.interval),
		zap.Int("batch_size", w.batchSize),
	)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("ml worker stopped")
			return
		case <-ticker.C:
			w.processBatch(ctx)
		}
	}
}

func (w *MLWorker) processBatch(ctx context.Context) {
	pending := domain.MLStatusPending
	batch, err := w.reports.List(ctx, repository.ReportFilter{
		MLStatus: &pending,
		Limit:    w.batchSize,
	})
	if err != nil {
		w.logger.Error("ml worker batch query failed", zap.Error(err))
		return
	}

	for i := range batch {
		if ctx.Err() != nil {
			return
		}
		w.processReport(ctx, &batch[i])
	}
}

func (w *MLWorker) processReport(ctx context.Context, report *domain.Report) {
	if err := w.reports.MarkMLProcessing(ctx, report.ID); err != nil {
		// another instance claimed the report first
		if errors.Is(err, pgx.ErrNoRows) {
			return
		}
		w.logger.Error("failed to claim report for classification",
			zap.String("report_id", report.ID), zap.Error(err))
		return
	}

	result, err := w.classifier.Classify(ctx, report)
	if err != nil {
		w.fail(ctx, report.ID, err)
		return
	}

	entry := &domain.StatusHistory{
		ChangedBy:     "system",
		ChangedByUser: "ml-pipeline",
		Notes:         "Automatic classification completed",
	}
	update := repository.ClassificationUpdate{
		AIConfidenceScore:    result.Confidence,
		MLConfidenceScore:    result.Confidence,
		MLSuggestions:        result.Suggestions,
		ImageClassifications: result.ImageClassifications,
		TextAnalysis:         result.TextAnalysis,
	}
	if err := w.reports.CompleteClassification(ctx, report.ID, update, entry); err != nil {
		w.fail(ctx, report.ID, err)
		return
	}

	w.metrics.RecordMLProcessed()
	w.logger.Info("report classified",
		zap.String("report_id", report.ID),
		zap.Float64("confidence", result.Confidence),
		zap.Bool("fallback", result.Fallback),
	)
	w.publish(ctx, report.ID, events.ReportMLProcessedPayload{
		Status:     domain.MLStatusCompleted,
		Confidence: result.Confidence,
		Fallback:   result.Fallback,
	})
}

func (w *MLWorker) fail(ctx context.Context, reportID string, cause error) {
	w.metrics.RecordMLFailed()
	w.logger.Error("classification failed",
		zap.String("report_id", reportID), zap.Error(cause))
	if err := w.reports.FailClassification(ctx, reportID, cause.Error()); err != nil {
		w.logger.Error("failed to record classification error",
			zap.String("report_id", reportID), zap.Error(err))
	}
	w.publish(ctx, reportID, events.ReportMLProcessedPayload{
		Status: domain.MLStatusFailed,
	})
}

func (w *MLWorker) publish(ctx context.Context, reportID string, payload events.ReportMLProcessedPayload) {
	_ = w.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventReportMLProcessed,
		ReportID:  reportID,
		Actor:     events.Actor{System: true},
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	})
}
