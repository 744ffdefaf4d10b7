package analytics

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

const (
	TrendStable     = "stable"
	TrendDeclining  = "declining"
	TrendConcerning = "concerning"
	TrendImproving  = "improving"

	DirectionRising  = "rising"
	DirectionFalling = "falling"
	DirectionStable  = "stable"

	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityCritical = "critical"

	AlertHighHR            = "high_hr"
	AlertLowHR             = "low_hr"
	AlertLowHRV            = "low_hrv"
	AlertBaselineDeviation = "baseline_deviation"

	MinTrendReadings = 3
	// days of readings averaged for the baseline comparison
	ComparisonWindowDays = 3
)

var (
	ErrNoReadings    = errors.New("analytics: no readings")
	ErrNotEnoughData = errors.New("analytics: not enough data for trend analysis (need at least 3 readings)")
	ErrNoBaseline    = errors.New("analytics: no baseline established for patient")
)

var DefaultThresholds = Thresholds{
	HRHigh:       100,
	HRCritical:   120,
	HRLow:        50,
	HRVLow:       30,
	HRVCritical:  20,
	HRChangePct:  20,
	HRVChangePct: 30,
}

type Reading struct {
	HeartRate    float64
	HRV          float64
	QualityScore float64
}

type Baseline struct {
	HeartRate float64 `json:"heart_rate"`
	HRV       float64 `json:"hrv"`
}

func (b *Baseline) Valid() bool {
	return b != nil && b.HeartRate > 0 && b.HRV > 0
}

type Thresholds struct {
	HRHigh       float64
	HRCritical   float64
	HRLow        float64
	HRVLow       float64
	HRVCritical  float64
	HRChangePct  float64
	HRVChangePct float64
}

type Stats struct {
	AvgHR  float64 `json:"avg_hr"`
	AvgHRV float64 `json:"avg_hrv"`
	MinHR  float64 `json:"min_hr"`
	MaxHR  float64 `json:"max_hr"`
	MinHRV float64 `json:"min_hrv"`
	MaxHRV float64 `json:"max_hrv"`
	Count  int     `json:"count"`
}

func split(readings []Reading) (hr, hrv []float64) {
	hr = make([]float64, len(readings))
	hrv = make([]float64, len(readings))
	for i, r := range readings {
		hr[i] = r.HeartRate
		hrv[i] = r.HRV
	}
	return hr, hrv
}

func CalculateStats(readings []Reading) (*Stats, error) {
	if len(readings) == 0 {
		return nil, ErrNoReadings
	}

	hr, hrv := split(readings)
	return &Stats{
		AvgHR:  stat.Mean(hr, nil),
		AvgHRV: stat.Mean(hrv, nil),
		MinHR:  floats.Min(hr),
		MaxHR:  floats.Max(hr),
		MinHRV: floats.Min(hrv),
		MaxHRV: floats.Max(hrv),
		Count:  len(readings),
	}, nil
}

// Slope is the least-squares change per reading.
func Slope(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	x := make([]float64, len(values))
	for i := range x {
		x[i] = float64(i)
	}
	_, beta := stat.LinearRegression(x, values, nil, false)
	if math.IsNaN(beta) {
		return 0
	}
	return beta
}

type SeriesTrend struct {
	Direction string  `json:"direction"`
	Slope     float64 `json:"slope"`
}

type TrendReport struct {
	ReadingsAnalyzed int         `json:"readings_analyzed"`
	HeartRate        SeriesTrend `json:"heart_rate"`
	HRV              SeriesTrend `json:"hrv"`
	Status           string      `json:"status"`
	Concerns         []string    `json:"concerns"`
}

func direction(slope float64) string {
	switch {
	case slope > 1:
		return DirectionRising
	case slope < -1:
		return DirectionFalling
	default:
		return DirectionStable
	}
}

// AnalyzeTrends expects readings in ascending time order.
func AnalyzeTrends(readings []Reading) (*TrendReport, error) {
	if len(readings) < MinTrendReadings {
		return nil, ErrNotEnoughData
	}

	hr, hrv := split(readings)
	hrSlope := Slope(hr)
	hrvSlope := Slope(hrv)

	report := &TrendReport{
		ReadingsAnalyzed: len(readings),
		HeartRate:        SeriesTrend{Direction: direction(hrSlope), Slope: Round(hrSlope, 2)},
		HRV:              SeriesTrend{Direction: direction(hrvSlope), Slope: Round(hrvSlope, 2)},
		Status:           TrendStable,
		Concerns:         []string{},
	}

	switch {
	case hrSlope > 2 && hrvSlope < -2:
		report.Status = TrendDeclining
		report.Concerns = append(report.Concerns, "Heart rate rising while HRV declining - possible decompensation")
	case hrSlope > 3:
		report.Status = TrendConcerning
		report.Concerns = append(report.Concerns, "Heart rate trending upward")
	case hrvSlope < -3:
		report.Status = TrendConcerning
		report.Concerns = append(report.Concerns, "HRV trending downward")
	case hrSlope < -2 && hrvSlope > 2:
		report.Status = TrendImproving
	}
	return report, nil
}

type Alert struct {
	Type     string `json:"type"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

// CheckAlerts compares a reading against absolute thresholds and, when a
// baseline exists, against the patient's own baseline.
func CheckAlerts(heartRate, hrv float64, baseline *Baseline, th Thresholds) []Alert {
	alerts := []Alert{}

	switch {
	case heartRate > th.HRCritical:
		alerts = append(alerts, Alert{AlertHighHR, SeverityCritical, fmt.Sprintf("Heart rate critically high: %s bpm", num(heartRate))})
	case heartRate > th.HRHigh:
		alerts = append(alerts, Alert{AlertHighHR, SeverityWarning, fmt.Sprintf("Heart rate elevated: %s bpm", num(heartRate))})
	}
	if heartRate < th.HRLow {
		alerts = append(alerts, Alert{AlertLowHR, SeverityWarning, fmt.Sprintf("Heart rate low: %s bpm", num(heartRate))})
	}

	switch {
	case hrv < th.HRVCritical:
		alerts = append(alerts, Alert{AlertLowHRV, SeverityWarning, fmt.Sprintf("HRV critically low: %s ms", num(hrv))})
	case hrv < th.HRVLow:
		alerts = append(alerts, Alert{AlertLowHRV, SeverityInfo, fmt.Sprintf("HRV below optimal: %s ms", num(hrv))})
	}

	if baseline.Valid() {
		hrChange := PercentChange(heartRate, baseline.HeartRate)
		hrvChange := PercentChange(hrv, baseline.HRV)
		if hrChange > th.HRChangePct {
			alerts = append(alerts, Alert{AlertBaselineDeviation, SeverityWarning, fmt.Sprintf("Heart rate %.0f%% above baseline", hrChange)})
		}
		if hrvChange < -th.HRVChangePct {
			alerts = append(alerts, Alert{AlertBaselineDeviation, SeverityWarning, fmt.Sprintf("HRV %.0f%% below baseline", math.Abs(hrvChange))})
		}
	}
	return alerts
}

type Deviation struct {
	Absolute float64 `json:"absolute"`
	Percent  float64 `json:"percent"`
}

type Comparison struct {
	Baseline   Baseline  `json:"baseline"`
	CurrentHR  float64   `json:"current_avg_heart_rate"`
	CurrentHRV float64   `json:"current_avg_hrv"`
	HeartRate  Deviation `json:"heart_rate_deviation"`
	HRV        Deviation `json:"hrv_deviation"`
	Assessment string    `json:"assessment"`
}

// CompareToBaseline averages the recent readings and reports how far they sit
// from the baseline.
func CompareToBaseline(recent []Reading, baseline *Baseline) (*Comparison, error) {
	if !baseline.Valid() {
		return nil, ErrNoBaseline
	}
	stats, err := CalculateStats(recent)
	if err != nil {
		return nil, err
	}

	hrDiff := stats.AvgHR - baseline.HeartRate
	hrvDiff := stats.AvgHRV - baseline.HRV
	hrPct := hrDiff / baseline.HeartRate * 100
	hrvPct := hrvDiff / baseline.HRV * 100

	return &Comparison{
		Baseline:   *baseline,
		CurrentHR:  Round(stats.AvgHR, 1),
		CurrentHRV: Round(stats.AvgHRV, 1),
		HeartRate:  Deviation{Absolute: Round(hrDiff, 1), Percent: Round(hrPct, 1)},
		HRV:        Deviation{Absolute: Round(hrvDiff, 1), Percent: Round(hrvPct, 1)},
		Assessment: Assessment(hrPct, hrvPct),
	}, nil
}

func Assessment(hrPct, hrvPct float64) string {
	switch {
	case hrPct > 20 && hrvPct < -25:
		return "ALERT: Significant deviation from baseline. Possible cardiac decompensation. Consider clinical review."
	case hrPct > 15 || hrvPct < -20:
		return "WARNING: Moderate deviation from baseline. Continue monitoring closely."
	case hrPct > 10 || hrvPct < -10:
		return "CAUTION: Mild deviation from baseline. Monitor for trends."
	case hrPct < -10 && hrvPct > 10:
		return "POSITIVE: Vitals improving relative to baseline."
	default:
		return "STABLE: Vitals within normal range of baseline."
	}
}

func PercentChange(value, base float64) float64 {
	if base == 0 {
		return 0
	}
	return (value - base) / base * 100
}

// Round rounds half away from zero to the given number of decimals.
func Round(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}

// num prints whole numbers without a fractional part.
func num(v float64) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%g", v)
}
