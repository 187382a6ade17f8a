package api

import (
	"encoding/json"
	"net/http"

	"github.com/videocraft/videocraft-core/internal/videoref"
)

func getVideoHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, ok := cfg.Session.Video()
		if !ok {
			WriteError(w, http.StatusNotFound, "no video loaded", "NO_VIDEO")
			return
		}
		WriteJSON(w, http.StatusOK, VideoToResponse(v))
	}
}

func loadVideoHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoadVideoRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}

		ref := videoref.Parse(req.Ref, req.Names)
		if ref.IsZero() {
			WriteError(w, http.StatusBadRequest, "ref or a filename is required", "BAD_REQUEST")
			return
		}
		if name := videoref.Resolve(ref); req.Metadata.OriginalFilename == "" && !videoref.IsPlaceholder(name) {
			req.Metadata.OriginalFilename = name
		}

		if err := cfg.Session.Load(req.Metadata, ref); err != nil {
			WriteError(w, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
			return
		}

		v, _ := cfg.Session.Video()
		WriteJSON(w, http.StatusOK, VideoToResponse(v))
	}
}

func clearVideoHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cfg.Session.Clear()
		w.WriteHeader(http.StatusNoContent)
	}
}
