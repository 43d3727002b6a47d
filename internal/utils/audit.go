package utils

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
	"github.com/rs/zerolog"

	"catalog_admin/internal/models"
)

// AuditStore enregistre les entrées d'audit.
type AuditStore interface {
	Insert(ctx context.Context, entry models.AuditLog) error
}

// ScyllaAudit écrit dans la table audit_logs.
type ScyllaAudit struct {
	session *gocql.Session
}

func NewScyllaAudit(session *gocql.Session) *ScyllaAudit {
	return &ScyllaAudit{session: session}
}

const auditTable = `
	CREATE TABLE IF NOT EXISTS audit_logs (
		id timeuuid PRIMARY KEY,
		user_id text,
		user_email text,
		action text,
		resource text,
		resource_id text,
		new_value text,
		ip_address text,
		user_agent text,
		success boolean,
		error_msg text,
		timestamp timestamp,
		session_id text
	)
`

// EnsureSchema crée la table audit_logs si elle manque.
func (s *ScyllaAudit) EnsureSchema(ctx context.Context) error {
	return s.session.Query(auditTable).WithContext(ctx).Exec()
}

func (s *ScyllaAudit) Insert(ctx context.Context, a models.AuditLog) error {
	query := `
		INSERT INTO audit_logs (
			id, user_id, user_email, action, resource, resource_id,
			new_value, ip_address, user_agent, success,
			error_msg, timestamp, session_id
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	return s.session.Query(query,
		a.ID, a.UserID, a.UserEmail, a.Action,
		a.Resource, a.ResourceID, a.NewValue,
		a.IPAddress, a.UserAgent, a.Success, a.ErrorMsg,
		a.Timestamp, a.SessionID,
	).WithContext(ctx).Exec()
}

// Auditor enregistre les actions admin en arrière-plan. Sans store les
// entrées ne vont que dans les logs.
type Auditor struct {
	store AuditStore
	log   zerolog.Logger
	wg    sync.WaitGroup
	now   func() time.Time
}

func NewAuditor(store AuditStore, log zerolog.Logger) *Auditor {
	return &Auditor{store: store, log: log, now: time.Now}
}

// LogAction enregistre une action réussie sur une ressource.
func (a *Auditor) LogAction(c *gin.Context, action, resource, resourceID string, newValue any) {
	entry := a.entry(c, action, resource, resourceID)
	entry.Success = true
	if newValue != nil {
		if b, err := json.Marshal(newValue); err == nil {
			entry.NewValue = string(b)
		}
	}
	a.record(entry)
}

// LogFailedAction enregistre une action qui a échoué.
func (a *Auditor) LogFailedAction(c *gin.Context, action, resource, resourceID, errorMsg string) {
	entry := a.entry(c, action, resource, resourceID)
	entry.ErrorMsg = errorMsg
	a.record(entry)
}

// Wait bloque jusqu'à la fin des écritures en cours.
func (a *Auditor) Wait() { a.wg.Wait() }

func (a *Auditor) entry(c *gin.Context, action, resource, resourceID string) models.AuditLog {
	return models.AuditLog{
		ID:         gocql.TimeUUID(),
		UserID:     c.GetString("user_id"),
		UserEmail:  c.GetString("email"),
		Action:     action,
		Resource:   resource,
		ResourceID: resourceID,
		IPAddress:  c.ClientIP(),
		UserAgent:  c.GetHeader("User-Agent"),
		Timestamp:  a.now(),
		SessionID:  c.GetHeader("X-Session-ID"),
	}
}

// record tourne détaché de la requête, qui peut être terminée au moment de
// l'écriture.
func (a *Auditor) record(entry models.AuditLog) {
	a.log.Info().
		Str("action", entry.Action).
		Str("resource_id", entry.ResourceID).
		Str("user_id", entry.UserID).
		Bool("success", entry.Success).
		Msg("📋 audit")
	if a.store == nil {
		return
	}
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.store.Insert(ctx, entry); err != nil {
			a.log.Error().Err(err).Str("action", entry.Action).Msg("❌ Log d'audit non enregistré")
		}
	}()
}
