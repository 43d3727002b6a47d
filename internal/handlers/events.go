package handlers

import (
	"net/http"
	"net/url"
	"slices"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"catalog_admin/internal/models"
)

const (
	pingPeriod = 30 * time.Second
	writeWait  = 10 * time.Second
)

func (h *Handler) upgrader() *websocket.Upgrader {
	return &websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if len(h.AllowedOrigins) == 0 || origin == "" {
				return true
			}
			if u, err := url.Parse(origin); err == nil && u.Host == r.Host {
				return true
			}
			return slices.Contains(h.AllowedOrigins, origin)
		},
	}
}

// DraftEvents diffuse les événements d'un brouillon sur un websocket jusqu'à
// la fermeture du brouillon ou le départ du client.
func (h *Handler) DraftEvents(c *gin.Context) {
	id := c.Param("id")
	if err := h.Drafts.Authorize(owner(c), id); err != nil {
		h.fail(c, nil, err)
		return
	}

	ctx := c.Request.Context()
	events, cancel, err := h.Events.Subscribe(ctx, id)
	if err != nil {
		h.fail(c, nil, err)
		return
	}
	defer cancel()

	conn, err := h.upgrader().Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.Log.Warn().Err(err).Msg("⚠️ Upgrade websocket échoué")
		return
	}
	defer conn.Close()

	// le client ne fait qu'écouter ; la lecture détecte son départ
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	write := func(v any) error {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		return conn.WriteJSON(v)
	}
	if err := write(gin.H{"type": "connected", "draftId": id}); err != nil {
		return
	}

	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			if err := write(ev); err != nil {
				h.Log.Warn().Err(err).Str("draft", id).Msg("⚠️ Écriture websocket échouée")
				return
			}
			if ev.Type != models.EventDraftUpdated {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ev.Type),
					time.Now().Add(writeWait))
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		case <-gone:
			return
		case <-ctx.Done():
			return
		}
	}
}
