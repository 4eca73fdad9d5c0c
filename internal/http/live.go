package httpx

import (
	"net/http"
	"time"

	"github.com/MetehanCam/real-estate-social-app/internal/ws"
)

const wsReadLimit = 4096

func (r *Router) handleTimelineWS(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		r.methodNotAllowed(w)
		return
	}
	conn, err := r.upgrader.Upgrade(w, req, nil)
	if err != nil {
		r.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	client := ws.NewClient(conn, r.logger)
	r.hub.Register(client)
	defer func() {
		r.hub.Unregister(client)
		client.Close()
	}()

	client.Serve(wsReadLimit)
}

func (r *Router) handleTimelineSSE(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		r.methodNotAllowed(w)
		return
	}
	if _, ok := w.(http.Flusher); !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}
	headers := w.Header()
	headers.Set("Content-Type", "text/event-stream")
	headers.Set("Cache-Control", "no-cache")
	headers.Set("Connection", "keep-alive")
	headers.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	client := ws.NewSSEClient(w, r.logger)
	if err := client.Heartbeat(); err != nil {
		return
	}
	r.hub.Register(client)
	defer func() {
		r.hub.Unregister(client)
		client.Close()
	}()

	ticker := time.NewTicker(r.sseHeartbeat)
	defer ticker.Stop()
	for {
		select {
		case <-req.Context().Done():
			return
		case <-client.Done():
			return
		case <-ticker.C:
			if client.Heartbeat() != nil {
				return
			}
		}
	}
}
