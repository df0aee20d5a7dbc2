package ml

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/stuurdean/municipality-dashboards/internal/config"
	"github.com/stuurdean/municipality-dashboards/internal/domain"
)

// Result is the classification output for one report.
type Result struct {
	Confidence           float64
	ImageClassifications []domain.ImageClassification
	TextAnalysis         *domain.TextAnalysis
	Suggestions          []domain.MLSuggestion
	Fallback             bool
}

// Classifier produces classification metadata for a report.
type Classifier interface {
	Classify(ctx context.Context, report *domain.Report) (*Result, error)
}

type inferenceRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	ImageURLs   []string `json:"imageUrls"`
}

type inferenceResponse struct {
	Label       string  `json:"label"`
	Confidence  float64 `json:"confidence"`
	Predictions []struct {
		Label      string  `json:"label"`
		Confidence float64 `json:"confidence"`
	} `json:"predictions"`
	Sentiment *struct {
		Score      float64 `json:"score"`
		Magnitude  float64 `json:"magnitude"`
		Label      string  `json:"label"`
		Confidence float64 `json:"confidence"`
	} `json:"sentiment"`
	Keywords          []string `json:"keywords"`
	SuggestedPriority string   `json:"suggestedPriority"`
}

// HTTPClassifier calls an external inference endpoint and falls back to
// keyword heuristics when the endpoint is unset or unreachable.
type HTTPClassifier struct {
	endpoint     string
	apiKey       string
	modelVersion string
	client       *http.Client
	logger       *zap.Logger
}

// NewHTTPClassifier builds a classifier from config.
func NewHTTPClassifier(cfg config.MLConfig, logger *zap.Logger) *HTTPClassifier {
	timeout := time.Duration(cfg.RequestTimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &HTTPClassifier{
		endpoint:     cfg.EndpointURL,
		apiKey:       cfg.APIKey,
		modelVersion: cfg.ModelVersion,
		client:       &http.Client{Timeout: timeout},
		logger:       logger,
	}
}

// Classify sends the report text and image URLs to the inference endpoint.
func (c *HTTPClassifier) Classify(ctx context.Context, report *domain.Report) (*Result, error) {
	if c.endpoint == "" {
		return c.fallbackClassify(report), nil
	}

	payload, err := json.Marshal(inferenceRequest{
		Title:       report.Title,
		Description: report.Description,
		ImageURLs:   report.ImageURLs,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Warn("inference request failed, using fallback", zap.Error(err))
		return c.fallbackClassify(report), nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("inference endpoint returned non-200, using fallback", zap.Int("status", resp.StatusCode))
		return c.fallbackClassify(report), nil
	}

	var decoded inferenceResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		c.logger.Warn("inference response decode failed, using fallback", zap.Error(err))
		return c.fallbackClassify(report), nil
	}

	return c.buildResult(report, decoded, time.Since(start)), nil
}

func (c *HTTPClassifier) buildResult(report *domain.Report, decoded inferenceResponse, elapsed time.Duration) *Result {
	result := &Result{Confidence: decoded.Confidence}

	predictions := make([]domain.ImagePrediction, 0, len(decoded.Predictions))
	for _, p := range decoded.Predictions {
		predictions = append(predictions, domain.ImagePrediction{Label: p.Label, Confidence: p.Confidence})
	}
	for i, url := range report.ImageURLs {
		result.ImageClassifications = append(result.ImageClassifications, domain.ImageClassification{
			ImageURL:       url,
			ImageIndex:     i,
			Label:          decoded.Label,
			Confidence:     decoded.Confidence,
			ModelVersion:   c.modelVersion,
			ProcessingTime: elapsed.Milliseconds(),
			Timestamp:      time.Now(),
			AllPredictions: predictions,
		})
	}

	analysis := &domain.TextAnalysis{
		Keywords:           decoded.Keywords,
		SuggestedCategory:  decoded.Label,
		SuggestedPriority:  decoded.SuggestedPriority,
		CategoryConfidence: decoded.Confidence,
	}
	if decoded.Sentiment != nil {
		analysis.Sentiment = &domain.SentimentAnalysis{
			Score:      decoded.Sentiment.Score,
			Magnitude:  decoded.Sentiment.Magnitude,
			Label:      domain.SentimentLabel(decoded.Sentiment.Label),
			Confidence: decoded.Sentiment.Confidence,
			Source:     c.modelVersion,
		}
	}
	result.TextAnalysis = analysis
	result.Suggestions = suggestions(report, decoded.Label, decoded.Confidence, "model classification")
	return result
}

// fallbackClassify derives a best-effort category from keyword matching when
// no model is reachable.
func (c *HTTPClassifier) fallbackClassify(report *domain.Report) *Result {
	label, confidence := keywordCategory(report.Title + " " + report.Description)
	result := &Result{
		Confidence: confidence,
		Fallback:   true,
		TextAnalysis: &domain.TextAnalysis{
			SuggestedCategory:  label,
			CategoryConfidence: confidence,
			Fallback:           true,
			Sentiment: &domain.SentimentAnalysis{
				Label:    domain.SentimentNeutral,
				Source:   "keyword-fallback",
				Fallback: true,
			},
		},
		Suggestions: suggestions(report, label, confidence, "keyword match"),
	}
	for i, url := range report.ImageURLs {
		result.ImageClassifications = append(result.ImageClassifications, domain.ImageClassification{
			ImageURL:   url,
			ImageIndex: i,
			Label:      label,
			Confidence: confidence,
			Timestamp:  time.Now(),
			Fallback:   true,
		})
	}
	return result
}

var keywordCategories = []struct {
	category domain.IssueType
	keywords []string
}{
	{domain.IssuePothole, []string{"pothole", "road hole", "asphalt", "pavement"}},
	{domain.IssueWaterLeak, []string{"water leak", "pipe", "burst", "flooding"}},
	{domain.IssueGarbage, []string{"garbage", "trash", "litter", "waste", "dumping"}},
	{domain.IssueStreetLight, []string{"street light", "streetlight", "lamp"}},
	{domain.IssueTrafficSignal, []string{"traffic light", "traffic signal", "stop sign"}},
	{domain.IssueDrainage, []string{"drain", "sewer", "storm water"}},
	{domain.IssueVegetation, []string{"tree", "branch", "weeds", "overgrown", "vegetation"}},
}

func keywordCategory(text string) (string, float64) {
	text = strings.ToLower(text)
	for _, entry := range keywordCategories {
		for _, kw := range entry.keywords {
			if strings.Contains(text, kw) {
				return string(entry.category), 0.5
			}
		}
	}
	return string(domain.IssueOther), 0.2
}

func suggestions(report *domain.Report, label string, confidence float64, reason string) []domain.MLSuggestion {
	if label == "" || label == string(report.IssueType) {
		return nil
	}
	return []domain.MLSuggestion{{
		Field:          "issueType",
		SuggestedValue: label,
		Confidence:     confidence,
		Reason:         fmt.Sprintf("%s suggests %q over %q", reason, label, report.IssueType),
	}}
}
