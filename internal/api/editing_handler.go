package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/videocraft/videocraft-core/internal/editing"
	"github.com/videocraft/videocraft-core/internal/timecode"
)

func getEditingHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state, err := cfg.Session.State()
		if err != nil {
			writeSessionError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, StateToResponse(state))
	}
}

func getStatsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state, err := cfg.Session.State()
		if err != nil {
			writeSessionError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, state.Stats())
	}
}

// update applies fn to the session state and writes the new state.
func update(cfg ServerConfig, w http.ResponseWriter, fn func(editing.State) editing.State) {
	state, err := cfg.Session.Update(fn)
	if err != nil {
		writeSessionError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, StateToResponse(state))
}

func setTrimHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req TrimRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}
		update(cfg, w, func(s editing.State) editing.State {
			return s.SetTrim(req.Start, req.End)
		})
	}
}

func resetTrimHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		update(cfg, w, editing.State.ResetTrim)
	}
}

func addCutHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CutRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}
		at := req.Time
		if strings.TrimSpace(req.Timecode) != "" {
			at = timecode.ParseTime(req.Timecode)
		}
		update(cfg, w, func(s editing.State) editing.State {
			return s.AddCut(at)
		})
	}
}

func removeCutHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw := r.URL.Query().Get("time")
		if strings.TrimSpace(raw) == "" {
			WriteError(w, http.StatusBadRequest, "time is required", "BAD_REQUEST")
			return
		}
		at := timecode.ParseTime(raw)
		update(cfg, w, func(s editing.State) editing.State {
			return s.RemoveCut(at)
		})
	}
}

func clearCutsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		update(cfg, w, editing.State.ClearCuts)
	}
}

func setFiltersHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req FiltersRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}
		update(cfg, w, func(s editing.State) editing.State {
			return s.SetFilters(req.Filters)
		})
	}
}

func addFilterHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var f editing.Filter
		if err := json.NewDecoder(r.Body).Decode(&f); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}
		if strings.TrimSpace(f.Name) == "" {
			WriteError(w, http.StatusBadRequest, "filter name is required", "BAD_REQUEST")
			return
		}
		update(cfg, w, func(s editing.State) editing.State {
			return s.AddFilter(f)
		})
	}
}

func removeFilterHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if id == "" {
			WriteError(w, http.StatusBadRequest, "filter id required", "BAD_REQUEST")
			return
		}
		update(cfg, w, func(s editing.State) editing.State {
			return s.RemoveFilter(id)
		})
	}
}
