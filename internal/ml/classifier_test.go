package ml

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/stuurdean/municipality-dashboards/internal/config"
	"github.com/stuurdean/municipality-dashboards/internal/domain"
)

func TestKeywordCategory(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"Deep pothole near the intersection", "pothole"},
		{"Water leak flooding the sidewalk", "water_leak"},
		{"Overflowing trash cans in the park", "garbage"},
		{"The streetlight has been dark for a week", "street_light"},
		{"Broken traffic light at 5th and Long", "traffic_signal"},
		{"Blocked storm water drain", "drainage"},
		{"Fallen tree branch across the path", "vegetation"},
		{"Something odd happened here", "other"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got, _ := keywordCategory(tt.text)
			if got != tt.want {
				t.Errorf("keywordCategory(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestFallbackClassifyWithoutEndpoint(t *testing.T) {
	classifier := NewHTTPClassifier(config.MLConfig{}, zap.NewNop())
	report := &domain.Report{
		Title:       "Pothole on Main Street",
		Description: "Large pothole damaging cars",
		IssueType:   domain.IssueGarbage,
		ImageURLs:   []string{"https://example.com/a.jpg"},
	}

	result, err := classifier.Classify(context.Background(), report)
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if !result.Fallback {
		t.Error("expected fallback result when no endpoint configured")
	}
	if result.TextAnalysis == nil || result.TextAnalysis.SuggestedCategory != "pothole" {
		t.Fatalf("textAnalysis = %+v", result.TextAnalysis)
	}
	if len(result.ImageClassifications) != 1 || !result.ImageClassifications[0].Fallback {
		t.Errorf("imageClassifications = %+v", result.ImageClassifications)
	}
	// the keyword label differs from the filed issue type, so a suggestion is emitted
	if len(result.Suggestions) != 1 || result.Suggestions[0].Field != "issueType" || result.Suggestions[0].SuggestedValue != "pothole" {
		t.Errorf("suggestions = %+v", result.Suggestions)
	}
}

func TestNoSuggestionWhenCategoryMatches(t *testing.T) {
	classifier := NewHTTPClassifier(config.MLConfig{}, zap.NewNop())
	report := &domain.Report{
		Title:     "Pothole on Main Street",
		IssueType: domain.IssuePothole,
	}
	result, err := classifier.Classify(context.Background(), report)
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if len(result.Suggestions) != 0 {
		t.Errorf("suggestions = %+v, want none when category already matches", result.Suggestions)
	}
}
