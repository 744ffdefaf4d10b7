package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"pulse-companion-be/internal/dto"
	"pulse-companion-be/internal/entity"
	"pulse-companion-be/internal/events"
	"pulse-companion-be/internal/pkg/logger"
	"pulse-companion-be/internal/repository/cache"
	"pulse-companion-be/internal/repository/memory"
	"pulse-companion-be/internal/repository/specification"
	"pulse-companion-be/internal/repository/unitofwork"
	"pulse-companion-be/pkg/gatekeeper"
	"pulse-companion-be/pkg/llm"
	"pulse-companion-be/pkg/resilience"
	"pulse-companion-be/pkg/rppg"

	"github.com/google/uuid"
)

const (
	ProviderGatekeeper = "gatekeeper"

	DefaultHistoryLimit = 20
	MaxHistoryLimit     = 100
)

const companionPrompt = `You are PULSE, a friendly health companion who checks in with patients every day.

How you talk:
- Be warm and encouraging, like a caring friend rather than a clinician.
- Keep replies short, two or three sentences.
- Ask open questions so the patient keeps talking about how they feel.
- Avoid medical jargon. Say "heart rate" and "breathing", not clinical terms.
- Never diagnose. If something sounds serious, suggest contacting their care team.

When vitals are shown below, mention them naturally and only when they matter.`

type ICheckinService interface {
	Chat(ctx context.Context, req *dto.ChatRequest) (*dto.ChatResponse, error)
	Greeting(ctx context.Context, patientId string) (*dto.GreetingResponse, error)
	History(ctx context.Context, patientId string, query dto.CheckinHistoryQuery) (*dto.CheckinHistoryResponse, error)
	Health() resilience.Health
}

type checkinService struct {
	uowFactory    unitofwork.RepositoryFactory
	cascade       *resilience.Cascade
	conversations *memory.ConversationRepository
	live          cache.LiveVitalsCache
	publisher     events.Publisher
	logger        logger.ILogger
	now           func() time.Time
}

func NewCheckinService(
	uowFactory unitofwork.RepositoryFactory,
	cascade *resilience.Cascade,
	conversations *memory.ConversationRepository,
	live cache.LiveVitalsCache,
	publisher events.Publisher,
	logger logger.ILogger,
) ICheckinService {
	return &checkinService{
		uowFactory:    uowFactory,
		cascade:       cascade,
		conversations: conversations,
		live:          live,
		publisher:     publisher,
		logger:        logger,
		now:           time.Now,
	}
}

func (s *checkinService) Chat(ctx context.Context, req *dto.ChatRequest) (*dto.ChatResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	patient, err := findPatient(ctx, uow, req.PatientId)
	if err != nil {
		return nil, err
	}

	gate := gatekeeper.Process(req.Message)
	vitals := s.currentVitals(ctx, uow, patient.Id)

	turn := &entity.CheckinTurn{
		Id:        uuid.New(),
		PatientId: patient.Id,
		Prompt:    gate.Sanitized,
		Intent:    string(gate.Intent),
		CreatedAt: s.now(),
	}

	if gate.BypassLLM {
		turn.Reply = gate.BypassMessage
		turn.Provider = ProviderGatekeeper
		turn.Metadata = map[string]any{"flags": gate.Flags}
		if gate.BypassAction == gatekeeper.ActionLogSecurityEvent {
			s.logger.Warn("SECURITY", "Prompt injection blocked", map[string]interface{}{
				"patient_id": patient.Id,
				"flags":      gate.Flags,
			})
			turn.Metadata["action"] = gate.BypassAction
		}
	} else {
		conv := s.conversations.Get(patient.Id)
		request := resilience.Request{
			Prompt:       gate.Sanitized,
			SystemPrompt: buildSystemPrompt(patient),
			History:      conv.Messages(),
			Context:      map[string]any{"patient_id": patient.Id, "intent": string(gate.Intent)},
		}
		if req.Temperature != nil {
			request.Temperature = *req.Temperature
		}

		resp := s.cascade.GenerateWithVitals(ctx, request, vitals, resilience.PatientContext{
			Name:       patient.Name,
			Age:        patient.Age,
			Conditions: patient.Conditions,
		})

		conv.Append(
			llm.Message{Role: llm.RoleUser, Content: gate.Sanitized},
			llm.Message{Role: llm.RoleAssistant, Content: resp.Text},
		)

		turn.Reply = resp.Text
		turn.Provider = resp.Provider
		turn.LatencyMs = int64(math.Round(resp.LatencyMs))
		turn.FallbackUsed = resp.FallbackUsed
		turn.FallbackReason = resp.FallbackReason
		turn.Sentiment = resp.Sentiment
		turn.ShouldAlert = resp.ShouldAlert()
		turn.Metadata = resp.Metadata
	}

	if gate.Intent == gatekeeper.IntentEmergency {
		turn.ShouldAlert = true
	}

	// The reply is still returned when the turn cannot be stored.
	if err := uow.CheckinTurnRepository().Create(ctx, turn); err != nil {
		s.logger.Error("CHECKIN", "Failed to store check-in turn", map[string]interface{}{
			"patient_id": patient.Id,
			"error":      err.Error(),
		})
	}

	if turn.ShouldAlert && s.publisher != nil {
		s.publisher.PublishCheckinAlert(ctx, turn)
	}

	s.logger.Info("CHECKIN", "Check-in reply", map[string]interface{}{
		"patient_id":    patient.Id,
		"intent":        turn.Intent,
		"provider":      turn.Provider,
		"fallback_used": turn.FallbackUsed,
		"latency_ms":    turn.LatencyMs,
		"should_alert":  turn.ShouldAlert,
	})

	res := &dto.ChatResponse{
		TurnId:         turn.Id,
		Reply:          turn.Reply,
		Intent:         turn.Intent,
		Provider:       turn.Provider,
		LatencyMs:      turn.LatencyMs,
		FallbackUsed:   turn.FallbackUsed,
		FallbackReason: turn.FallbackReason,
		Sentiment:      turn.Sentiment,
		ShouldAlert:    turn.ShouldAlert,
	}
	if vitals.HeartRate != nil || vitals.HRV != nil {
		res.Vitals = &dto.ChatVitals{HeartRate: vitals.HeartRate, HRV: vitals.HRV, QualityScore: vitals.QualityScore}
	}
	return res, nil
}

// Greeting opens a session. The icebreaker rotates with the number of stored turns.
func (s *checkinService) Greeting(ctx context.Context, patientId string) (*dto.GreetingResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	patient, err := findPatient(ctx, uow, patientId)
	if err != nil {
		return nil, err
	}

	turns, err := uow.CheckinTurnRepository().Count(ctx, specification.ByPatientID{PatientID: patientId})
	if err != nil {
		return nil, err
	}

	calibrating := false
	if s.live != nil {
		if live, err := s.live.Get(ctx, patientId); err == nil && live != nil {
			calibrating = live.Status == string(rppg.StatusCalibrating)
		}
	}

	return &dto.GreetingResponse{
		PatientId:  patientId,
		Greeting:   resilience.GreetingFallback(patient.Name, calibrating),
		Icebreaker: resilience.IcebreakerQuestion(int(turns)),
	}, nil
}

// History returns stored turns newest first.
func (s *checkinService) History(ctx context.Context, patientId string, query dto.CheckinHistoryQuery) (*dto.CheckinHistoryResponse, error) {
	limit := query.Limit
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if _, err := findPatient(ctx, uow, patientId); err != nil {
		return nil, err
	}

	specs := []specification.Specification{specification.ByPatientID{PatientID: patientId}}
	if query.AlertsOnly {
		specs = append(specs, specification.AlertsOnly{})
	}
	specs = append(specs,
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: limit},
	)

	turns, err := uow.CheckinTurnRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}

	res := &dto.CheckinHistoryResponse{PatientId: patientId, Turns: make([]*dto.CheckinTurnResponse, 0, len(turns))}
	for _, t := range turns {
		res.Turns = append(res.Turns, &dto.CheckinTurnResponse{
			Id:             t.Id,
			Prompt:         t.Prompt,
			Reply:          t.Reply,
			Intent:         t.Intent,
			Provider:       t.Provider,
			FallbackUsed:   t.FallbackUsed,
			FallbackReason: t.FallbackReason,
			Sentiment:      t.Sentiment,
			ShouldAlert:    t.ShouldAlert,
			CreatedAt:      t.CreatedAt,
		})
	}
	res.Count = len(res.Turns)
	return res, nil
}

func (s *checkinService) Health() resilience.Health {
	return s.cascade.Health()
}

// currentVitals prefers the live camera estimate and falls back to the last
// stored reading. Quality is reported to the model as a percentage.
func (s *checkinService) currentVitals(ctx context.Context, uow unitofwork.UnitOfWork, patientId string) resilience.Vitals {
	if s.live != nil {
		if live, err := s.live.Get(ctx, patientId); err == nil && live != nil && live.HeartRate != nil {
			confidence := float64(live.Confidence)
			return resilience.Vitals{HeartRate: live.HeartRate, HRV: live.HRV, QualityScore: &confidence}
		}
	}

	latest, err := latestReading(ctx, uow, patientId)
	if err != nil {
		s.logger.Warn("CHECKIN", "Failed to load latest vitals", map[string]interface{}{
			"patient_id": patientId,
			"error":      err.Error(),
		})
		return resilience.Vitals{}
	}
	if latest == nil {
		return resilience.Vitals{}
	}

	hr, hrv, quality := latest.HeartRate, latest.HRV, latest.QualityScore*100
	return resilience.Vitals{HeartRate: &hr, HRV: &hrv, QualityScore: &quality}
}

func buildSystemPrompt(p *entity.Patient) string {
	var sb strings.Builder
	sb.WriteString(companionPrompt)
	sb.WriteString("\n\nPATIENT CONTEXT:\n")
	fmt.Fprintf(&sb, "- Name: %s\n", p.Name)
	if p.Age > 0 {
		fmt.Fprintf(&sb, "- Age: %d\n", p.Age)
	}
	if len(p.Conditions) > 0 {
		fmt.Fprintf(&sb, "- Known conditions: %s\n", strings.Join(p.Conditions, ", "))
	}
	if p.BaselineHeartRate != nil {
		fmt.Fprintf(&sb, "- Typical heart rate: %.0f BPM\n", *p.BaselineHeartRate)
	}
	return sb.String()
}
