package sentiment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type fixedScorer float64

func (f fixedScorer) Score(string) Scores {
	return Scores{Compound: float64(f)}
}

func TestIsDistressed(t *testing.T) {
	tests := []struct {
		name string
		text string
		want bool
	}{
		{name: "empty", text: "", want: false},
		{name: "two indicators", text: "I'm scared and in pain", want: true},
		{name: "one indicator", text: "I'm a little worried", want: false},
		{name: "one indicator with urgency", text: "Is this an emergency?!", want: true},
		{name: "one indicator single mark", text: "should I be worried?", want: false},
		{name: "case insensitive", text: "PLEASE HELP", want: true},
		{name: "calm", text: "I had a lovely walk today", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsDistressed(tt.text))
		})
	}
}

func TestClassifyWithScorer(t *testing.T) {
	tests := []struct {
		name          string
		compound      float64
		text          string
		wantSentiment string
		wantDistress  bool
	}{
		{name: "negative compound", compound: -0.3, text: "meh", wantSentiment: Negative, wantDistress: true},
		{name: "positive compound", compound: 0.3, text: "please help I am in pain", wantSentiment: Positive, wantDistress: false},
		{name: "neutral calm", compound: 0.0, text: "it is Tuesday", wantSentiment: Neutral, wantDistress: false},
		{name: "neutral escalated by lexicon", compound: 0.1, text: "please help", wantSentiment: Neutral, wantDistress: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewClassifier(fixedScorer(tt.compound))
			got := c.Classify(tt.text)
			assert.Equal(t, tt.wantSentiment, got.Sentiment)
			assert.Equal(t, tt.wantDistress, got.IsDistressed)
			assert.Equal(t, tt.compound, got.Scores["compound"])
		})
	}
}

func TestClassifyLexiconOnly(t *testing.T) {
	c := NewClassifier(nil)
	assert.False(t, c.ScorerAvailable())

	got := c.Classify("I'm scared, please help")
	assert.True(t, got.IsDistressed)
	assert.Equal(t, Negative, got.Sentiment)
	assert.Empty(t, got.Scores)

	got = c.Classify("Feeling fine today")
	assert.False(t, got.IsDistressed)
	assert.Equal(t, Neutral, got.Sentiment)
}

func TestVaderScorer(t *testing.T) {
	c := NewClassifier(NewVaderScorer())
	assert.True(t, c.ScorerAvailable())

	neg := c.Classify("I feel terrible and hopeless, everything is awful.")
	assert.Equal(t, Negative, neg.Sentiment)
	assert.True(t, neg.IsDistressed)
	assert.Less(t, neg.Scores["compound"], -0.3)

	pos := c.Classify("I feel great today, thank you so much!")
	assert.Equal(t, Positive, pos.Sentiment)
	assert.False(t, pos.IsDistressed)
}
