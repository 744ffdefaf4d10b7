package analytics

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

const (
	RiskLow    = "LOW"
	RiskMedium = "MEDIUM"
	RiskHigh   = "HIGH"

	SeriesWorsening    = "worsening"
	SeriesImproving    = "improving"
	SeriesStable       = "stable"
	SeriesInsufficient = "insufficient_data"
)

type RiskAssessment struct {
	Score              int      `json:"risk_score"`
	Level              string   `json:"risk_level"`
	HRDeviationPct     float64  `json:"hr_deviation_percent"`
	HRVDeviationPct    float64  `json:"hrv_deviation_percent"`
	HRTrend            string   `json:"hr_trend"`
	HRVTrend           string   `json:"hrv_trend"`
	Factors            []string `json:"risk_factors"`
	RecommendedActions []string `json:"recommended_actions"`
	Reasoning          string   `json:"clinical_reasoning"`
}

// seriesTrend compares the mean of the first third with the mean of the last
// third. polarity is +1 when rising values are bad (heart rate) and -1 when
// falling values are bad (HRV).
func seriesTrend(values []float64, polarity float64) string {
	if len(values) < 3 {
		return SeriesInsufficient
	}
	third := len(values) / 3
	early := stat.Mean(values[:third], nil)
	late := stat.Mean(values[len(values)-third:], nil)
	if early == 0 {
		return SeriesStable
	}

	change := (late - early) / early * 100 * polarity
	switch {
	case change > 5:
		return SeriesWorsening
	case change < -5:
		return SeriesImproving
	default:
		return SeriesStable
	}
}

// AssessRisk scores decompensation risk for the current reading on a 0-100 scale.
// history is ascending in time and may be empty.
func AssessRisk(current Reading, baseline *Baseline, history []Reading) RiskAssessment {
	ra := RiskAssessment{HRTrend: SeriesStable, HRVTrend: SeriesStable, Factors: []string{}}
	if baseline.Valid() {
		ra.HRDeviationPct = PercentChange(current.HeartRate, baseline.HeartRate)
		ra.HRVDeviationPct = PercentChange(current.HRV, baseline.HRV)
	}

	switch {
	case ra.HRDeviationPct > 20:
		ra.Score += 30
		ra.Factors = append(ra.Factors, fmt.Sprintf("Elevated HR (+%.0f%% from baseline)", ra.HRDeviationPct))
	case ra.HRDeviationPct > 10:
		ra.Score += 15
		ra.Factors = append(ra.Factors, fmt.Sprintf("Mildly elevated HR (+%.0f%%)", ra.HRDeviationPct))
	}

	switch {
	case ra.HRVDeviationPct < -30:
		ra.Score += 40
		ra.Factors = append(ra.Factors, fmt.Sprintf("Significantly reduced HRV (%.0f%%)", ra.HRVDeviationPct))
	case ra.HRVDeviationPct < -15:
		ra.Score += 20
		ra.Factors = append(ra.Factors, fmt.Sprintf("Reduced HRV (%.0f%%)", ra.HRVDeviationPct))
	}

	if len(history) >= 3 {
		hr, hrv := split(history)
		ra.HRTrend = seriesTrend(hr, 1)
		ra.HRVTrend = seriesTrend(hrv, -1)

		switch {
		case ra.HRTrend == SeriesWorsening && ra.HRVTrend == SeriesWorsening:
			ra.Score += 20
			ra.Factors = append(ra.Factors, "Consistent worsening trend over recent days")
		case ra.HRTrend == SeriesWorsening || ra.HRVTrend == SeriesWorsening:
			ra.Score += 10
			ra.Factors = append(ra.Factors, "Partial worsening trend detected")
		}
	}

	ra.Score = min(ra.Score, 100)
	switch {
	case ra.Score >= 70:
		ra.Level = RiskHigh
	case ra.Score >= 31:
		ra.Level = RiskMedium
	default:
		ra.Level = RiskLow
	}

	ra.RecommendedActions = recommendedActions[ra.Level]
	ra.Reasoning = reasoning(ra)
	ra.HRDeviationPct = Round(ra.HRDeviationPct, 1)
	ra.HRVDeviationPct = Round(ra.HRVDeviationPct, 1)
	return ra
}

var recommendedActions = map[string][]string{
	RiskHigh: {
		"Schedule urgent telehealth consultation within 48 hours",
		"Notify care team immediately",
		"Monitor for additional symptoms: shortness of breath, leg swelling, weight gain",
		"Review current medication compliance",
		"Consider emergency visit if symptoms worsen",
	},
	RiskMedium: {
		"Increase monitoring frequency to twice daily",
		"Consider notifying healthcare provider",
		"Track fluid intake and weight daily",
		"Watch for symptom changes",
		"Schedule follow-up within 1 week if no improvement",
	},
	RiskLow: {
		"Continue daily monitoring as scheduled",
		"Maintain current medication regimen",
		"Keep up healthy lifestyle habits",
		"Report any new symptoms promptly",
	},
}

func reasoning(ra RiskAssessment) string {
	switch ra.Level {
	case RiskHigh:
		return fmt.Sprintf("Significant cardiac stress. HR %+.0f%% above baseline indicates increased workload. HRV %+.0f%% below baseline suggests autonomic dysfunction. Pattern consistent with decompensation requiring urgent evaluation.",
			ra.HRDeviationPct, ra.HRVDeviationPct)
	case RiskMedium:
		return fmt.Sprintf("Moderate deviation from baseline. HR elevated %+.0f%%, HRV reduced %.0f%%. Early cardiac stress pattern. Enhanced monitoring recommended.",
			ra.HRDeviationPct, math.Abs(ra.HRVDeviationPct))
	default:
		return fmt.Sprintf("Vitals within acceptable range. Minor deviations (HR %+.1f%%, HRV %+.1f%%) not clinically significant. Continue routine monitoring.",
			ra.HRDeviationPct, ra.HRVDeviationPct)
	}
}
