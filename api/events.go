package api

import (
	"fmt"
	"net/http"

	"blogcast/events"
)

// SSEHandler streams pipeline events to the browser
func SSEHandler(broker *events.EventBroker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")

		client := make(chan string, 10) // Buffer to prevent blocking
		broker.Register(client)
		defer broker.Unregister(client)

		flusher, _ := w.(http.Flusher)

		fmt.Fprint(w, events.Format("connected", []byte(`{"message": "Connected to blogcast events"}`)))
		if flusher != nil {
			flusher.Flush()
		}

		for {
			select {
			case message := <-client:
				fmt.Fprint(w, message)
				if flusher != nil {
					flusher.Flush()
				}
			case <-r.Context().Done():
				// Client disconnected
				return
			}
		}
	}
}
