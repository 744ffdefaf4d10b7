package memory

import (
	"sync"
	"time"

	"pulse-companion-be/pkg/llm"
	"pulse-companion-be/pkg/ringbuf"

	"github.com/patrickmn/go-cache"
)

// Conversation is the bounded chat history kept for one patient.
type Conversation struct {
	mu      sync.Mutex
	history *ringbuf.Ring[llm.Message]
}

func (c *Conversation) Messages() []llm.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.history.Values()
}

func (c *Conversation) Append(msgs ...llm.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, m := range msgs {
		c.history.Push(m)
	}
}

type ConversationRepository struct {
	cache       *cache.Cache
	maxMessages int
}

// NewConversationRepository keeps up to maxMessages per patient. Idle
// conversations expire after an hour.
func NewConversationRepository(maxMessages int) *ConversationRepository {
	if maxMessages <= 0 {
		maxMessages = 10
	}
	c := cache.New(1*time.Hour, 10*time.Minute)
	return &ConversationRepository{
		cache:       c,
		maxMessages: maxMessages,
	}
}

// Get returns the patient's conversation, starting a new one if needed, and
// refreshes its expiry.
func (r *ConversationRepository) Get(patientId string) *Conversation {
	if x, found := r.cache.Get(patientId); found {
		conv := x.(*Conversation)
		r.cache.Set(patientId, conv, cache.DefaultExpiration)
		return conv
	}

	conv := &Conversation{history: ringbuf.New[llm.Message](r.maxMessages)}
	if err := r.cache.Add(patientId, conv, cache.DefaultExpiration); err != nil {
		// Lost the race with another request for the same patient.
		if x, found := r.cache.Get(patientId); found {
			return x.(*Conversation)
		}
	}
	return conv
}

func (r *ConversationRepository) Delete(patientId string) {
	r.cache.Delete(patientId)
}
