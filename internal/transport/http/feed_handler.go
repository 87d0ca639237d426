package http

import (
	"log"
	"net/http"

	"answerhub-service/internal/app"
	"answerhub-service/internal/auth"
	"answerhub-service/internal/domain"
	"github.com/gorilla/websocket"
)

// FeedHandler streams engine events to admin dashboards over a websocket.
type FeedHandler struct {
	feed     *app.Feed
	verifier auth.Verifier
	upgrader websocket.Upgrader
}

func NewFeedHandler(feed *app.Feed, verifier auth.Verifier) *FeedHandler {
	return &FeedHandler{
		feed:     feed,
		verifier: verifier,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// ServeWS upgrades the connection and relays feed events until the client
// disconnects. Browsers cannot set headers on websocket requests, so the
// credential rides in a query parameter.
func (h *FeedHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	identity, err := h.verifier.Verify(r.URL.Query().Get("token"))
	if err != nil {
		writeError(w, domain.ErrUnauthorized)
		return
	}
	if !identity.IsAdmin {
		writeError(w, domain.ErrForbidden)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	events, cancel := h.feed.Subscribe()
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			if err := conn.WriteJSON(event); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		case <-done:
			return
		}
	}
}
