package sentiment

import (
	"strings"

	"github.com/jonreiter/govader"
)

const (
	Positive = "positive"
	Negative = "negative"
	Neutral  = "neutral"

	negativeThreshold = -0.3
	positiveThreshold = 0.3
)

var distressIndicators = []string{
	"help", "scared", "afraid", "worried", "anxious", "panic",
	"pain", "hurt", "can't", "cannot", "struggling", "terrible",
	"awful", "horrible", "worst", "emergency", "please",
	"dying", "die", "dead", "bad", "worse", "suffering",
}

// Scores are polarity scores; Compound is normalized to [-1, 1].
type Scores struct {
	Negative float64
	Neutral  float64
	Positive float64
	Compound float64
}

func (s Scores) Map() map[string]float64 {
	return map[string]float64{
		"neg":      s.Negative,
		"neu":      s.Neutral,
		"pos":      s.Positive,
		"compound": s.Compound,
	}
}

// Scorer produces polarity scores for free text.
type Scorer interface {
	Score(text string) Scores
}

type VaderScorer struct {
	analyzer *govader.SentimentIntensityAnalyzer
}

func NewVaderScorer() *VaderScorer {
	return &VaderScorer{analyzer: govader.NewSentimentIntensityAnalyzer()}
}

func (v *VaderScorer) Score(text string) Scores {
	s := v.analyzer.PolarityScores(text)
	return Scores{
		Negative: s.Negative,
		Neutral:  s.Neutral,
		Positive: s.Positive,
		Compound: s.Compound,
	}
}

type Result struct {
	IsDistressed bool               `json:"is_distressed"`
	Sentiment    string             `json:"sentiment"`
	Scores       map[string]float64 `json:"scores"`
}

// Classifier runs locally and cannot fail. Without a scorer it relies on the distress lexicon alone.
type Classifier struct {
	scorer Scorer
}

func NewClassifier(scorer Scorer) *Classifier {
	return &Classifier{scorer: scorer}
}

func (c *Classifier) ScorerAvailable() bool {
	return c.scorer != nil
}

func (c *Classifier) Classify(text string) Result {
	res := Result{Sentiment: Neutral, Scores: map[string]float64{}}

	if c.scorer == nil {
		res.IsDistressed = IsDistressed(text)
		if res.IsDistressed {
			res.Sentiment = Negative
		}
		return res
	}

	scores := c.scorer.Score(text)
	res.Scores = scores.Map()
	switch {
	case scores.Compound <= negativeThreshold:
		res.Sentiment = Negative
		res.IsDistressed = true
	case scores.Compound >= positiveThreshold:
		res.Sentiment = Positive
	default:
		// neutral text can still carry distress keywords
		res.IsDistressed = IsDistressed(text)
	}
	return res
}

// IsDistressed is the keyword check: two or more distress indicators, or one
// indicator together with at least two '!' or '?' marks.
func IsDistressed(text string) bool {
	if text == "" {
		return false
	}

	lower := strings.ToLower(text)
	count := 0
	for _, word := range distressIndicators {
		if strings.Contains(lower, word) {
			count++
		}
	}

	urgency := strings.Count(text, "!") + strings.Count(text, "?")
	return count >= 2 || (count >= 1 && urgency >= 2)
}
