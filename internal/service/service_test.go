package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"pulse-companion-be/internal/entity"
	"pulse-companion-be/internal/pkg/logger"
	"pulse-companion-be/internal/repository/cache"
	"pulse-companion-be/internal/repository/memory"
	"pulse-companion-be/internal/repository/unitofwork"
	"pulse-companion-be/pkg/analytics"
	"pulse-companion-be/pkg/llm"

	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	mu       sync.Mutex
	recorded []*entity.VitalReading
	alerts   [][]analytics.Alert
	checkins []*entity.CheckinTurn
}

func (p *recordingPublisher) PublishVitalsRecorded(ctx context.Context, reading *entity.VitalReading) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.recorded = append(p.recorded, reading)
}

func (p *recordingPublisher) PublishVitalsAlert(ctx context.Context, reading *entity.VitalReading, alerts []analytics.Alert) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(alerts) > 0 {
		p.alerts = append(p.alerts, alerts)
	}
}

func (p *recordingPublisher) PublishCheckinAlert(ctx context.Context, turn *entity.CheckinTurn) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.checkins = append(p.checkins, turn)
}

type scriptedProvider struct {
	name  string
	reply string
	err   error

	mu       sync.Mutex
	calls    int
	lastMsgs []llm.Message
	lastOpts llm.Options
}

func (p *scriptedProvider) Name() string { return p.name }

func (p *scriptedProvider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	p.lastMsgs = history
	p.lastOpts = llm.Apply(llm.Options{}, options...)
	return p.reply, p.err
}

func (p *scriptedProvider) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return p.Chat(ctx, []llm.Message{{Role: llm.RoleUser, Content: prompt}}, options...)
}

type testDeps struct {
	store         *memory.Store
	factory       unitofwork.RepositoryFactory
	conversations *memory.ConversationRepository
	live          *cache.MemoryLiveVitalsCache
	publisher     *recordingPublisher
	log           logger.ILogger
}

func newTestDeps(t *testing.T) *testDeps {
	t.Helper()
	store := memory.NewStore()
	return &testDeps{
		store:         store,
		factory:       unitofwork.NewMemoryRepositoryFactory(store),
		conversations: memory.NewConversationRepository(10),
		live:          cache.NewMemoryLiveVitalsCache(time.Minute),
		publisher:     &recordingPublisher{},
		log:           logger.NewNop(),
	}
}

func ptr[T any](v T) *T { return &v }

func (d *testDeps) seedPatient(t *testing.T) *entity.Patient {
	t.Helper()
	p := &entity.Patient{
		Id:                "maria_001",
		Name:              "Maria Garcia",
		Age:               67,
		Conditions:        []string{"hypertension"},
		BaselineHeartRate: ptr(68.0),
		BaselineHRV:       ptr(45.0),
		CreatedAt:         time.Now(),
	}
	require.NoError(t, d.store.PatientRepository().Create(context.Background(), p))
	return p
}

func (d *testDeps) seedReading(t *testing.T, patientId string, at time.Time, hr, hrv float64) {
	t.Helper()
	require.NoError(t, d.store.VitalReadingRepository().Create(context.Background(), &entity.VitalReading{
		PatientId:    patientId,
		RecordedAt:   at,
		HeartRate:    hr,
		HRV:          hrv,
		QualityScore: 0.9,
		Source:       entity.VitalSourceSeed,
	}))
}

func (p *recordingPublisher) recordedCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.recorded)
}
