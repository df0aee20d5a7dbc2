package domain

import "time"

// MLProcessingStatus tracks the enrichment pipeline state for a report.
type MLProcessingStatus string

const (
	MLStatusPending    MLProcessingStatus = "pending"
	MLStatusProcessing MLProcessingStatus = "processing"
	MLStatusCompleted  MLProcessingStatus = "completed"
	MLStatusFailed     MLProcessingStatus = "failed"
)

// MLSuggestion proposes a field correction derived from model output.
type MLSuggestion struct {
	Field          string  `json:"field"`
	SuggestedValue string  `json:"suggestedValue"`
	Confidence     float64 `json:"confidence"`
	Reason         string  `json:"reason"`
}

// ImagePrediction is one label/confidence pair from the image model.
type ImagePrediction struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// ImageClassification holds the model output for a single report image.
type ImageClassification struct {
	ImageURL       string            `json:"imageURL"`
	ImageIndex     int               `json:"imageIndex"`
	Label          string            `json:"label"`
	Confidence     float64           `json:"confidence"`
	ModelVersion   string            `json:"modelVersion"`
	ProcessingTime int64             `json:"processingTime"`
	Timestamp      time.Time         `json:"timestamp"`
	AllPredictions []ImagePrediction `json:"allPredictions"`
	Fallback       bool              `json:"fallback,omitempty"`
	Error          string            `json:"error,omitempty"`
}

// SentimentLabel classifies the overall tone of a report description.
type SentimentLabel string

const (
	SentimentPositive SentimentLabel = "POSITIVE"
	SentimentNegative SentimentLabel = "NEGATIVE"
	SentimentNeutral  SentimentLabel = "NEUTRAL"
)

// SentimentAnalysis is the text-model sentiment output.
type SentimentAnalysis struct {
	Score      float64        `json:"score"`
	Magnitude  float64        `json:"magnitude"`
	Label      SentimentLabel `json:"label"`
	Confidence float64        `json:"confidence"`
	Source     string         `json:"source"`
	Fallback   bool           `json:"fallback,omitempty"`
}

// TextAnalysis aggregates NLP output for a report's text content.
type TextAnalysis struct {
	Sentiment          *SentimentAnalysis `json:"sentiment,omitempty"`
	Keywords           []string           `json:"keywords,omitempty"`
	SuggestedCategory  string             `json:"suggestedCategory,omitempty"`
	SuggestedPriority  string             `json:"suggestedPriority,omitempty"`
	CategoryConfidence float64            `json:"categoryConfidence,omitempty"`
	Fallback           bool               `json:"fallback,omitempty"`
}
