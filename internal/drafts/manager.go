package drafts

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"catalog_admin/internal/models"
	"catalog_admin/internal/productform"
)

// ErrNotFound est renvoyé pour un brouillon inconnu, expiré ou d'un autre admin.
var ErrNotFound = errors.New("draft not found")

// Publisher reçoit les événements de cycle de vie des brouillons.
type Publisher interface {
	Publish(ctx context.Context, ev models.DraftEvent) error
}

// ProductSource charge un produit existant pour la modification.
type ProductSource interface {
	Product(ctx context.Context, id string) (*models.Product, error)
}

type Options struct {
	Staging productform.Staging
	Catalog ProductSource
	Writer  productform.ProductWriter
	Events  Publisher
	// TTL est la durée d'inactivité avant que le nettoyage supprime un brouillon.
	TTL time.Duration
	Log zerolog.Logger
	Now func() time.Time
}

type session struct {
	mu        sync.Mutex
	draft     *productform.Draft
	owner     string
	lastTouch time.Time
	closed    bool
}

// Manager garde les sessions d'édition ouvertes. Chaque session a son propre
// mutex : les modifications d'un brouillon ne s'entremêlent jamais.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*session

	staging productform.Staging
	catalog ProductSource
	writer  productform.ProductWriter
	events  Publisher
	ttl     time.Duration
	log     zerolog.Logger
	now     func() time.Time
}

func NewManager(opts Options) *Manager {
	m := &Manager{
		sessions: make(map[string]*session),
		staging:  opts.Staging,
		catalog:  opts.Catalog,
		writer:   opts.Writer,
		events:   opts.Events,
		ttl:      opts.TTL,
		log:      opts.Log,
		now:      opts.Now,
	}
	if m.now == nil {
		m.now = time.Now
	}
	if m.ttl <= 0 {
		m.ttl = 2 * time.Hour
	}
	return m
}

// Open démarre une session pour owner. Un productID vide ouvre une création,
// sinon le produit est chargé puis hydraté pour la modification.
func (m *Manager) Open(ctx context.Context, owner, productID string) (productform.View, error) {
	opts := productform.Options{Staging: m.staging, Logger: &m.log}

	var d *productform.Draft
	if productID == "" {
		d = productform.New(opts)
	} else {
		p, err := m.catalog.Product(ctx, productID)
		if err != nil {
			return productform.View{}, err
		}
		d = productform.Hydrate(p, opts)
	}

	s := &session{draft: d, owner: owner, lastTouch: m.now()}
	m.mu.Lock()
	m.sessions[d.ID()] = s
	m.mu.Unlock()

	m.log.Info().Str("draft", d.ID()).Str("owner", owner).Str("mode", string(d.Mode())).Msg("📝 Brouillon ouvert")
	return d.Snapshot(), nil
}

// acquire renvoie la session verrouillée ; l'appelant doit la déverrouiller.
func (m *Manager) acquire(owner, id string) (*session, error) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	m.mu.Unlock()
	if !ok || s.owner != owner {
		return nil, ErrNotFound
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrNotFound
	}
	s.lastTouch = m.now()
	return s, nil
}

// Authorize indique si owner peut accéder au brouillon.
func (m *Manager) Authorize(owner, id string) error {
	s, err := m.acquire(owner, id)
	if err != nil {
		return err
	}
	s.mu.Unlock()
	return nil
}

func (m *Manager) View(owner, id string) (productform.View, error) {
	s, err := m.acquire(owner, id)
	if err != nil {
		return productform.View{}, err
	}
	defer s.mu.Unlock()
	return s.draft.Snapshot(), nil
}

// Edit applique fn au brouillon sous son verrou. La vue est renvoyée même si
// fn échoue, une modification refusée laissant le brouillon tel quel.
func (m *Manager) Edit(ctx context.Context, owner, id string, fn func(*productform.Draft) error) (productform.View, error) {
	s, err := m.acquire(owner, id)
	if err != nil {
		return productform.View{}, err
	}
	err = fn(s.draft)
	view := s.draft.Snapshot()
	s.mu.Unlock()

	if err == nil {
		m.publish(ctx, models.DraftEvent{Type: models.EventDraftUpdated, DraftID: id})
	}
	return view, err
}

// Upload rattache des fichiers à la variante. Le stockage tourne sans le verrou
// de session, le brouillon reste donc modifiable ; la validation abandonne le
// lot si la variante a été supprimée entre-temps.
func (m *Manager) Upload(ctx context.Context, owner, id, variantID string, files []productform.FileInput) (productform.View, error) {
	s, err := m.acquire(owner, id)
	if err != nil {
		return productform.View{}, err
	}
	i := s.draft.VariantIndex(variantID)
	if i < 0 {
		s.mu.Unlock()
		return productform.View{}, productform.ErrOutOfRange
	}
	batch, err := s.draft.PrepareUpload(i, files)
	if err != nil {
		view := s.draft.Snapshot()
		s.mu.Unlock()
		return view, err
	}
	s.mu.Unlock()

	batch.Stage(ctx)

	s, err = m.acquire(owner, id)
	if err != nil {
		batch.Release(context.WithoutCancel(ctx))
		return productform.View{}, err
	}
	err = s.draft.CommitUpload(ctx, batch)
	view := s.draft.Snapshot()
	s.mu.Unlock()

	if err == nil {
		m.publish(ctx, models.DraftEvent{Type: models.EventDraftUpdated, DraftID: id})
	}
	return view, err
}

// Submit valide et envoie le brouillon. Une soumission réussie ferme la
// session ; un échec la garde pour un nouvel essai.
func (m *Manager) Submit(ctx context.Context, owner, id string) (*models.APIResponse, productform.View, error) {
	s, err := m.acquire(owner, id)
	if err != nil {
		return nil, productform.View{}, err
	}
	defer s.mu.Unlock()

	resp, err := s.draft.Submit(ctx, m.writer)
	view := s.draft.Snapshot()
	if err != nil {
		return resp, view, err
	}

	s.closed = true
	m.remove(id)
	s.draft.Discard(context.WithoutCancel(ctx))

	productID := view.Form.ProductID
	if p, perr := resp.Product(); perr == nil && p != nil && p.ID != "" {
		productID = p.ID
	}
	m.publish(ctx, models.DraftEvent{Type: models.EventDraftSubmitted, DraftID: id, ProductID: productID, Message: resp.Message})
	return resp, view, nil
}

// Discard supprime la session et ses aperçus stockés.
func (m *Manager) Discard(ctx context.Context, owner, id string) error {
	s, err := m.acquire(owner, id)
	if err != nil {
		return err
	}
	s.closed = true
	m.remove(id)
	s.draft.Discard(ctx)
	s.mu.Unlock()

	m.log.Info().Str("draft", id).Msg("🗑️ Brouillon abandonné")
	m.publish(ctx, models.DraftEvent{Type: models.EventDraftDiscarded, DraftID: id})
	return nil
}

// Len est le nombre de sessions ouvertes.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Sweep ferme chaque session inactive depuis plus que le TTL et renvoie le
// nombre supprimé. Une session occupée par une requête est sautée.
func (m *Manager) Sweep(ctx context.Context) int {
	cutoff := m.now().Add(-m.ttl)

	m.mu.Lock()
	candidates := make(map[string]*session)
	for id, s := range m.sessions {
		candidates[id] = s
	}
	m.mu.Unlock()

	expired := 0
	for id, s := range candidates {
		if !s.mu.TryLock() {
			continue
		}
		if s.closed || s.lastTouch.After(cutoff) {
			s.mu.Unlock()
			continue
		}
		s.closed = true
		m.remove(id)
		s.draft.Discard(ctx)
		s.mu.Unlock()

		expired++
		m.publish(ctx, models.DraftEvent{Type: models.EventDraftExpired, DraftID: id, Message: "Draft expired after inactivity"})
	}
	if expired > 0 {
		m.log.Info().Int("count", expired).Msg("🧹 Brouillons expirés nettoyés")
	}
	return expired
}

// Run nettoie à chaque tick jusqu'à la fin de ctx, puis supprime le reste.
func (m *Manager) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			m.closeAll(context.WithoutCancel(ctx))
			return
		case <-ticker.C:
			m.Sweep(ctx)
		}
	}
}

func (m *Manager) closeAll(ctx context.Context) {
	m.mu.Lock()
	all := m.sessions
	m.sessions = make(map[string]*session)
	m.mu.Unlock()

	for _, s := range all {
		s.mu.Lock()
		if !s.closed {
			s.closed = true
			s.draft.Discard(ctx)
		}
		s.mu.Unlock()
	}
}

func (m *Manager) remove(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}

func (m *Manager) publish(ctx context.Context, ev models.DraftEvent) {
	if m.events == nil {
		return
	}
	ev.At = m.now()
	if err := m.events.Publish(context.WithoutCancel(ctx), ev); err != nil {
		m.log.Warn().Err(err).Str("draft", ev.DraftID).Str("type", ev.Type).Msg("⚠️ Événement de brouillon non publié")
	}
}
