package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"catalog_admin/internal/models"
)

const subscriberBuffer = 16

func draftChannel(draftID string) string { return "draft:" + draftID }

// RedisBus diffuse les événements de brouillon via Redis pub/sub pour que
// chaque instance servant l'admin les reçoive.
type RedisBus struct {
	client *redis.Client
	log    zerolog.Logger
}

func NewRedisBus(client *redis.Client, log zerolog.Logger) *RedisBus {
	return &RedisBus{client: client, log: log}
}

func (b *RedisBus) Publish(ctx context.Context, ev models.DraftEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	if err := b.client.Publish(ctx, draftChannel(ev.DraftID), payload).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", ev.Type, err)
	}
	return nil
}

// Subscribe diffuse les événements d'un brouillon jusqu'à l'appel de cancel.
func (b *RedisBus) Subscribe(ctx context.Context, draftID string) (<-chan models.DraftEvent, func(), error) {
	ps := b.client.Subscribe(ctx, draftChannel(draftID))
	if _, err := ps.Receive(ctx); err != nil {
		ps.Close()
		return nil, nil, fmt.Errorf("subscribe %s: %w", draftID, err)
	}

	out := make(chan models.DraftEvent, subscriberBuffer)
	go func() {
		defer close(out)
		for msg := range ps.Channel() {
			var ev models.DraftEvent
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				b.log.Warn().Err(err).Str("channel", msg.Channel).Msg("⚠️ Événement de brouillon invalide")
				continue
			}
			select {
			case out <- ev:
			default:
				b.log.Warn().Str("draft", draftID).Msg("⚠️ Abonné trop lent, événement ignoré")
			}
		}
	}()
	return out, func() { _ = ps.Close() }, nil
}

// MemoryBus distribue les événements de brouillon dans un seul processus.
type MemoryBus struct {
	mu   sync.Mutex
	subs map[string]map[chan models.DraftEvent]struct{}
}

func NewMemoryBus() *MemoryBus {
	return &MemoryBus{subs: make(map[string]map[chan models.DraftEvent]struct{})}
}

func (b *MemoryBus) Publish(_ context.Context, ev models.DraftEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs[ev.DraftID] {
		select {
		case ch <- ev:
		default:
		}
	}
	return nil
}

func (b *MemoryBus) Subscribe(_ context.Context, draftID string) (<-chan models.DraftEvent, func(), error) {
	ch := make(chan models.DraftEvent, subscriberBuffer)
	b.mu.Lock()
	if b.subs[draftID] == nil {
		b.subs[draftID] = make(map[chan models.DraftEvent]struct{})
	}
	b.subs[draftID][ch] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs[draftID], ch)
			if len(b.subs[draftID]) == 0 {
				delete(b.subs, draftID)
			}
			b.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel, nil
}
