package domain

// QualityScore is a structured multi-dimension assessment of a generated
// caption. All dimensions are 0-100. Issues and Strengths carry at most
// three entries each. QualityTier is derived from OverallScore.
type QualityScore struct {
	BrandConsistency int      `json:"brand_consistency"`
	LocalRelevance   int      `json:"local_relevance"`
	GoalAlignment    int      `json:"goal_alignment"`
	OverallQuality   int      `json:"overall_quality"`
	OverallScore     int      `json:"overall_score"`
	Issues           []string `json:"issues"`
	Strengths        []string `json:"strengths"`
	Recommendation   string   `json:"recommendation"`
	QualityTier      string   `json:"quality_tier"`

	// Error is set when scoring degraded to the fallback result.
	Error string `json:"error,omitempty"`
}
