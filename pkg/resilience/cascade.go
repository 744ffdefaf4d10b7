package resilience

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"pulse-companion-be/pkg/llm"
	"pulse-companion-be/pkg/sentiment"

	"go.uber.org/zap"
)

const (
	DefaultPrimaryTimeout   = 5 * time.Second
	DefaultSecondaryTimeout = 8 * time.Second
	DefaultTemperature      = 0.7
	DefaultMaxTokens        = 500

	ProviderLocalSentiment = "local_sentiment"
	ProviderHardcoded      = "hardcoded"

	TierPrimary   = "primary"
	TierSecondary = "secondary"

	ReasonPrimaryUnavailable = "primary_unavailable"
	ReasonAllLLMUnavailable  = "all_llm_unavailable"

	// default heart rate used for the band message when no reading exists
	fallbackHeartRate = 75
)

var ErrNoRemoteProvider = errors.New("resilience: no remote LLM provider configured")

type Request struct {
	Prompt       string
	SystemPrompt string
	History      []llm.Message
	Context      map[string]any
	Temperature  float64
	MaxTokens    int
}

type Response struct {
	Success        bool           `json:"success"`
	Text           string         `json:"text"`
	Provider       string         `json:"provider"`
	LatencyMs      float64        `json:"latency_ms"`
	FallbackUsed   bool           `json:"fallback_used"`
	FallbackReason string         `json:"fallback_reason,omitempty"`
	Sentiment      string         `json:"sentiment,omitempty"`
	Metadata       map[string]any `json:"metadata,omitempty"`
}

// ShouldAlert reports whether the reply asks for a human to be notified.
func (r Response) ShouldAlert() bool {
	if alert, ok := r.Metadata["should_alert"].(bool); ok && alert {
		return true
	}
	if vf, ok := r.Metadata["vital_fallback"].(VitalFallback); ok {
		return vf.ShouldAlertClinician
	}
	return false
}

type Vitals struct {
	HeartRate    *float64 `json:"heart_rate"`
	HRV          *float64 `json:"hrv"`
	QualityScore *float64 `json:"quality_score"`
}

type PatientContext struct {
	Name       string
	Age        int
	Conditions []string
}

type CascadeConfig struct {
	PrimaryTimeout   time.Duration
	SecondaryTimeout time.Duration
	// RequireRemote turns a missing primary and secondary into a construction error.
	RequireRemote bool
}

func DefaultCascadeConfig() CascadeConfig {
	return CascadeConfig{
		PrimaryTimeout:   DefaultPrimaryTimeout,
		SecondaryTimeout: DefaultSecondaryTimeout,
	}
}

// ResponseObserver receives every response the cascade hands back.
type ResponseObserver func(Response)

type CascadeOption func(*Cascade)

func WithResponseObserver(obs ResponseObserver) CascadeOption {
	return func(c *Cascade) { c.observer = obs }
}

func WithCascadeLogger(logger *zap.Logger) CascadeOption {
	return func(c *Cascade) {
		if logger != nil {
			c.logger = logger
		}
	}
}

type tier struct {
	label    string
	provider llm.LLMProvider
	breaker  *Breaker
	timeout  time.Duration
	reason   string
}

// BreakerKey names the breaker of one tier. Tiers never share a breaker, even
// when both run the same provider kind.
func BreakerKey(tierLabel, providerName string) string {
	return tierLabel + ":" + providerName
}

func newTier(label string, provider llm.LLMProvider, breakers *Registry, timeout time.Duration, reason string) tier {
	t := tier{label: label, provider: provider, timeout: timeout, reason: reason}
	if provider != nil {
		t.breaker = breakers.Get(BreakerKey(label, provider.Name()))
	}
	return t
}

type Cascade struct {
	primary    tier
	secondary  tier
	classifier *sentiment.Classifier
	observer   ResponseObserver
	logger     *zap.Logger
}

// NewCascade wires the providers in priority order. Either provider may be nil.
func NewCascade(primary, secondary llm.LLMProvider, breakers *Registry, classifier *sentiment.Classifier, cfg CascadeConfig, opts ...CascadeOption) (*Cascade, error) {
	if cfg.RequireRemote && primary == nil && secondary == nil {
		return nil, ErrNoRemoteProvider
	}
	if cfg.PrimaryTimeout <= 0 {
		cfg.PrimaryTimeout = DefaultPrimaryTimeout
	}
	if cfg.SecondaryTimeout <= 0 {
		cfg.SecondaryTimeout = DefaultSecondaryTimeout
	}
	if breakers == nil {
		breakers = NewRegistry(BreakerConfig{})
	}
	if classifier == nil {
		classifier = sentiment.NewClassifier(nil)
	}

	c := &Cascade{
		primary:    newTier(TierPrimary, primary, breakers, cfg.PrimaryTimeout, ""),
		secondary:  newTier(TierSecondary, secondary, breakers, cfg.SecondaryTimeout, ReasonPrimaryUnavailable),
		classifier: classifier,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Generate always produces a reply; the last two tiers need no network.
func (c *Cascade) Generate(ctx context.Context, req Request) Response {
	start := time.Now()
	resp := c.generate(context.WithoutCancel(ctx), req)
	resp.LatencyMs = float64(time.Since(start).Microseconds()) / 1000
	c.logger.Info("cascade_response",
		zap.String("provider", resp.Provider),
		zap.Bool("fallback_used", resp.FallbackUsed),
		zap.String("fallback_reason", resp.FallbackReason),
		zap.Float64("latency_ms", resp.LatencyMs),
	)
	if c.observer != nil {
		c.observer(resp)
	}
	return resp
}

func (c *Cascade) generate(ctx context.Context, req Request) Response {
	if req.Temperature == 0 {
		req.Temperature = DefaultTemperature
	}
	if req.MaxTokens == 0 {
		req.MaxTokens = DefaultMaxTokens
	}

	for _, t := range []tier{c.primary, c.secondary} {
		if t.provider == nil {
			continue
		}
		breaker := t.breaker
		if !breaker.Allow() {
			c.logger.Debug("cascade_tier_skipped", zap.String("provider", t.provider.Name()), zap.String("reason", "circuit_open"))
			continue
		}

		a := c.attempt(ctx, t, req)
		if a.outcome == attemptOK {
			breaker.RecordSuccess()
			return Response{
				Success:        true,
				Text:           a.text,
				Provider:       t.provider.Name(),
				FallbackUsed:   t.reason != "",
				FallbackReason: t.reason,
			}
		}

		breaker.RecordFailure()
		c.logger.Warn("cascade_tier_failed",
			zap.String("provider", t.provider.Name()),
			zap.String("outcome", a.outcome.String()),
			zap.Duration("elapsed", a.elapsed),
			zap.Error(a.err),
		)
	}

	result := c.classifier.Classify(req.Prompt)
	if result.IsDistressed {
		return Response{
			Success:        true,
			Text:           EmergencyContact.Message,
			Provider:       ProviderLocalSentiment,
			FallbackUsed:   true,
			FallbackReason: ReasonAllLLMUnavailable,
			Sentiment:      result.Sentiment,
			Metadata: map[string]any{
				"should_alert":     true,
				"sentiment_scores": result.Scores,
			},
		}
	}

	return Response{
		Success:        true,
		Text:           NeutralFallback.Message,
		Provider:       ProviderHardcoded,
		FallbackUsed:   true,
		FallbackReason: ReasonAllLLMUnavailable,
		Sentiment:      sentiment.Neutral,
		Metadata: map[string]any{
			"sentiment_scores": result.Scores,
		},
	}
}

// GenerateWithVitals adds the latest vitals to the system prompt and swaps the
// static reply for a heart-rate band message.
func (c *Cascade) GenerateWithVitals(ctx context.Context, req Request, vitals Vitals, patient PatientContext) Response {
	req.SystemPrompt += VitalsBlock(vitals)

	resp := c.Generate(ctx, req)
	if resp.Provider != ProviderHardcoded {
		return resp
	}

	hr := float64(fallbackHeartRate)
	if vitals.HeartRate != nil {
		hr = *vitals.HeartRate
	}
	name := patient.Name
	if name == "" {
		name = "there"
	}
	vf := VitalResponseFallback(hr, name)
	resp.Text = vf.Message
	if resp.Metadata == nil {
		resp.Metadata = map[string]any{}
	}
	resp.Metadata["vital_fallback"] = vf
	return resp
}

func VitalsBlock(v Vitals) string {
	var sb strings.Builder
	sb.WriteString("\n\nCURRENT VITALS:\n")
	fmt.Fprintf(&sb, "- Heart Rate: %s BPM\n", formatVital(v.HeartRate, "%.0f"))
	fmt.Fprintf(&sb, "- HRV: %s ms\n", formatVital(v.HRV, "%.1f"))
	fmt.Fprintf(&sb, "- Quality Score: %s%%\n", formatVital(v.QualityScore, "%.0f"))
	return sb.String()
}

func formatVital(v *float64, format string) string {
	if v == nil {
		return "N/A"
	}
	return fmt.Sprintf(format, *v)
}

type ProviderHealth struct {
	Name        string `json:"name"`
	Tier        string `json:"tier"`
	Available   bool   `json:"available"`
	CircuitOpen bool   `json:"circuit_open"`
	Failures    int    `json:"failures"`
	State       string `json:"state"`
}

type Health struct {
	Providers          []ProviderHealth `json:"providers"`
	SentimentAvailable bool             `json:"sentiment_available"`
}

func (c *Cascade) Health() Health {
	h := Health{SentimentAvailable: c.classifier.ScorerAvailable()}
	for _, t := range []tier{c.primary, c.secondary} {
		if t.provider == nil {
			h.Providers = append(h.Providers, ProviderHealth{Tier: t.label, State: StateClosed.String()})
			continue
		}
		snap := t.breaker.Snapshot()
		h.Providers = append(h.Providers, ProviderHealth{
			Name:        t.provider.Name(),
			Tier:        t.label,
			Available:   snap.Available,
			CircuitOpen: snap.CircuitOpen,
			Failures:    snap.Failures,
			State:       snap.State,
		})
	}
	return h
}

type attemptOutcome int

const (
	attemptOK attemptOutcome = iota
	attemptTimeout
	attemptError
	attemptEmpty
)

func (o attemptOutcome) String() string {
	switch o {
	case attemptOK:
		return "ok"
	case attemptTimeout:
		return "timeout"
	case attemptError:
		return "error"
	default:
		return "empty"
	}
}

type attempt struct {
	outcome attemptOutcome
	text    string
	err     error
	elapsed time.Duration
}

// attempt runs one provider call under the tier deadline. A provider that ignores
// the context keeps running in its goroutine; its result lands in a buffered
// channel nobody reads.
func (c *Cascade) attempt(ctx context.Context, t tier, req Request) attempt {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	messages := make([]llm.Message, 0, len(req.History)+1)
	messages = append(messages, req.History...)
	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: req.Prompt})
	opts := []llm.Option{
		llm.WithTemperature(req.Temperature),
		llm.WithMaxTokens(req.MaxTokens),
	}
	if req.SystemPrompt != "" {
		opts = append(opts, llm.WithSystemPrompt(req.SystemPrompt))
	}

	type result struct {
		text string
		err  error
	}
	done := make(chan result, 1)
	start := time.Now()
	go func() {
		text, err := t.provider.Chat(ctx, messages, opts...)
		done <- result{text: text, err: err}
	}()

	select {
	case r := <-done:
		elapsed := time.Since(start)
		switch {
		case r.err != nil && errors.Is(r.err, context.DeadlineExceeded):
			return attempt{outcome: attemptTimeout, err: r.err, elapsed: elapsed}
		case r.err != nil:
			return attempt{outcome: attemptError, err: r.err, elapsed: elapsed}
		case strings.TrimSpace(r.text) == "":
			return attempt{outcome: attemptEmpty, err: errors.New("empty completion"), elapsed: elapsed}
		default:
			return attempt{outcome: attemptOK, text: r.text, elapsed: elapsed}
		}
	case <-ctx.Done():
		return attempt{outcome: attemptTimeout, err: ctx.Err(), elapsed: time.Since(start)}
	}
}
