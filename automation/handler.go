package automation

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"totem/logger"
)

func writeJSONError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{"message": message})
}

// WebsiteHandler serves GET /api/website: the site URL and whether the
// kiosk can frame it or must fall back to the snapshot.
func WebsiteHandler(s *Snapshotter) http.HandlerFunc {
	client := &http.Client{Timeout: 10 * time.Second}
	return func(w http.ResponseWriter, r *http.Request) {
		if s.URL() == "" {
			writeJSONError(w, ErrNoURL.Error(), http.StatusNotFound)
			return
		}
		framable, err := Framable(r.Context(), client, s.URL())
		if err != nil {
			logger.Warn("website frame check failed", "url", s.URL(), "error", err)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"url":         s.URL(),
			"framable":    framable && err == nil,
			"snapshotUrl": "/api/website/snapshot",
		})
	}
}

// SnapshotHandler serves GET /api/website/snapshot as image/png;
// ?refresh=1 forces a new capture.
func SnapshotHandler(s *Snapshotter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeJSONError(w, "Method Not Allowed", http.StatusMethodNotAllowed)
			return
		}
		png, taken, err := s.Snapshot(r.Context(), r.URL.Query().Get("refresh") == "1")
		if errors.Is(err, ErrNoURL) {
			writeJSONError(w, err.Error(), http.StatusNotFound)
			return
		}
		if err != nil {
			logger.Error("website snapshot failed", "url", s.URL(), "error", err)
			writeJSONError(w, "Impossibile catturare il sito: "+err.Error(), http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Content-Length", strconv.Itoa(len(png)))
		w.Header().Set("Last-Modified", taken.UTC().Format(http.TimeFormat))
		w.Write(png)
	}
}
