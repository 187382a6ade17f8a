package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/videocraft/videocraft-core/internal/artifact"
	"github.com/videocraft/videocraft-core/internal/export"
	"github.com/videocraft/videocraft-core/internal/history"
	"github.com/videocraft/videocraft-core/internal/session"
)

const streamWriteTimeout = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || isAllowedOrigin(origin)
	},
}

func exportHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		kind, err := export.ParseKind(chi.URLParam(r, "kind"))
		if err != nil {
			WriteError(w, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
			return
		}

		var body ExportOptionsRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}
		opts, err := body.options()
		if err != nil {
			WriteError(w, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
			return
		}

		res, err := cfg.Session.Export(r.Context(), kind, opts, nil)
		if err != nil {
			writeSessionError(w, err)
			return
		}
		// A failed export is still a completed request; the result says why.
		WriteJSON(w, http.StatusOK, res)
	}
}

// exportStreamHandler runs an export and pushes its progress events over a
// WebSocket. The last message carries the result; the server then closes.
func exportStreamHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		kind, err := export.ParseKind(chi.URLParam(r, "kind"))
		if err != nil {
			WriteError(w, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
			return
		}

		q := r.URL.Query()
		body := ExportOptionsRequest{Quality: q.Get("quality")}
		body.UseProcessingAPI, _ = strconv.ParseBool(q.Get("processing_api"))
		if fps := q.Get("frame_rate"); fps != "" {
			body.FrameRate, _ = strconv.ParseFloat(fps, 64)
		}
		opts, err := body.options()
		if err != nil {
			WriteError(w, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
			return
		}

		req, err := cfg.Session.Request(kind, opts)
		if err != nil {
			writeSessionError(w, err)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			cfg.Logger.Warn("websocket upgrade failed", "error", err)
			return
		}
		defer conn.Close()

		// Ping, pong and close frames are only handled while reading.
		clientGone := make(chan struct{})
		go func() {
			defer close(clientGone)
			for {
				if _, _, err := conn.NextReader(); err != nil {
					return
				}
			}
		}()

		obs := export.NewChannelObserver(16)
		go cfg.Session.Run(r.Context(), req, obs)

		connected := true
		for ev := range obs.Events() {
			if connected {
				select {
				case <-clientGone:
					cfg.Logger.Debug("progress stream closed by client", "export_id", req.ID)
					connected = false
				default:
				}
			}
			if !connected {
				continue
			}
			conn.SetWriteDeadline(time.Now().Add(streamWriteTimeout))
			if err := conn.WriteJSON(ev); err != nil {
				// Keep draining so the export is never blocked on the stream.
				cfg.Logger.Debug("progress stream closed by client", "export_id", req.ID, "error", err)
				connected = false
			}
		}

		if connected {
			msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "export finished")
			conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
		}
	}
}

func listExportsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

		entries, err := cfg.Session.History(r.Context(), limit)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to list exports", "INTERNAL_ERROR")
			return
		}
		if entries == nil {
			entries = []*history.Entry{}
		}
		WriteJSON(w, http.StatusOK, ExportsResponse{Exports: entries})
	}
}

func artifactHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cfg.Artifacts == nil {
			WriteError(w, http.StatusNotFound, "artifact downloads are not enabled", "NOT_FOUND")
			return
		}

		entry, err := cfg.Session.Artifact(r.Context(), chi.URLParam(r, "id"))
		if errors.Is(err, session.ErrNoArtifact) {
			WriteError(w, http.StatusNotFound, "no saved file for this export", "NOT_FOUND")
			return
		}
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to look up export", "INTERNAL_ERROR")
			return
		}

		if err := cfg.Artifacts.Serve(w, r, entry.Path); err != nil {
			if errors.Is(err, artifact.ErrOutsideRoot) {
				WriteError(w, http.StatusForbidden, "export is outside the output directory", "FORBIDDEN")
				return
			}
			cfg.Logger.Error("failed to serve artifact", "export_id", entry.ID, "error", err)
			WriteError(w, http.StatusInternalServerError, "failed to read export", "INTERNAL_ERROR")
		}
	}
}
