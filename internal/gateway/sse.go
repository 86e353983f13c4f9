package gateway

import (
	"fmt"
	"net/http"

	"nft-auction-feed/internal/domain"
)

// handleEvents streams the shared feed over Server-Sent Events. One frame
// per persisted record; the subscription is released when the client
// disconnects.
func (rt *router) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	msgs, release, err := rt.broker.Subscribe(r.Context(), domain.TopicAllEvents)
	if err != nil {
		rt.logger.Printf("[gateway] feed subscribe: %v", err)
		http.Error(w, "failed to stream events", http.StatusInternalServerError)
		return
	}
	defer release()

	rt.metrics.LiveFeedConnections.Inc()
	defer rt.metrics.LiveFeedConnections.Dec()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case msg, ok := <-msgs:
			if !ok {
				return
			}
			if _, err := fmt.Fprintf(w, "data: %s\n\n", msg.Data); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
