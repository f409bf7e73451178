package scoring

// Dispatch recommendations, keyed off the composite score.
const (
	RecommendationExcellent = "Excellent"
	RecommendationGood      = "Good"
	RecommendationModerate  = "Moderate"
	RecommendationLow       = "Low"
)

// CompositeScore is the final grade for one load against one driver.
type CompositeScore struct {
	Score          int    `json:"score"`
	Profit         int    `json:"profit"`
	Connectivity   int    `json:"connectivity"`
	Ease           int    `json:"ease"`
	Recommendation string `json:"recommendation"`
}

// Composite blends the three component scores under the configured weights.
func Composite(params Params, profit ProfitData, market MarketScores) CompositeScore {
	score := clampScore(
		params.ProfitWeight*float64(profit.Score) +
			params.ConnectivityWeight*float64(market.Connectivity) +
			params.EaseWeight*float64(market.Ease),
	)

	return CompositeScore{
		Score:          score,
		Profit:         profit.Score,
		Connectivity:   market.Connectivity,
		Ease:           market.Ease,
		Recommendation: Recommend(score),
	}
}

// Recommend maps a composite score to its dispatch recommendation.
func Recommend(score int) string {
	switch {
	case score >= 90:
		return RecommendationExcellent
	case score >= 75:
		return RecommendationGood
	case score >= 60:
		return RecommendationModerate
	default:
		return RecommendationLow
	}
}
