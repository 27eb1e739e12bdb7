package httpx

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// streamSSE forwards live snapshots as server-sent events until the
// client goes away or the subscription closes. stop is always called,
// otherwise the hub keeps a dead listener around.
func streamSSE[T any](w http.ResponseWriter, r *http.Request, ch <-chan T, stop func()) {
	defer stop()

	fl, ok := w.(http.Flusher)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "streaming unsupported"})
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	fl.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case v, open := <-ch:
			if !open {
				return
			}
			b, err := json.Marshal(v)
			if err != nil {
				return
			}
			_, _ = fmt.Fprintf(w, "data: %s\n\n", b)
			fl.Flush()
		}
	}
}
