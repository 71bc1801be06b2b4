package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/mbwk25/optimum-solutions-group-sub000/internal/engine"
)

// Handler is the HTTP handler for all /api/v1/* endpoints.
type Handler struct {
	eng *engine.Engine
	mux *http.ServeMux
}

// New creates a Handler wired to eng and registers all routes.
func New(eng *engine.Engine) http.Handler {
	h := &Handler{eng: eng, mux: http.NewServeMux()}

	h.mux.HandleFunc("/api/v1/health", h.health)
	h.mux.HandleFunc("/api/v1/snapshot", h.snapshot)
	h.mux.HandleFunc("/api/v1/history", h.history)
	h.mux.HandleFunc("/api/v1/history/", h.record) // subtree, extracts {id}
	h.mux.HandleFunc("/api/v1/compare", h.compare)
	h.mux.HandleFunc("/api/v1/trend", h.trend)
	h.mux.HandleFunc("/api/v1/export", h.export)
	h.mux.HandleFunc("/api/v1/alert", h.alert)

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// --- route handlers ---------------------------------------------------------

// health returns engine liveness and whether the host supports collection
// at all. An unsupported engine is still a 200; consumers render the
// explicit "not-supported" state, never a crash.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	resp := HealthResponse{
		Supported:    h.eng.Supported(),
		Score:        h.eng.Summary().Score,
		HistoryCount: len(h.eng.History()),
		Reporting:    h.eng.Reporting(),
	}
	if resp.Supported {
		resp.Status = "ok"
	} else {
		resp.Status = "not-supported"
	}
	jsonResp(w, http.StatusOK, resp)
}

// snapshot returns the live snapshot plus its summary.
func (h *Handler) snapshot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	jsonResp(w, http.StatusOK, SnapshotResponse{
		Snapshot:    h.eng.Snapshot(),
		Summary:     h.eng.Summary(),
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
	})
}

// history returns the full benchmark history, oldest first.
func (h *Handler) history(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		jsonResp(w, http.StatusOK, h.eng.History())
	case http.MethodDelete:
		h.eng.ClearHistory()
		w.WriteHeader(http.StatusNoContent)
	default:
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// record returns GET /api/v1/history/{id}, or designates the baseline via
// POST /api/v1/history/{id}/baseline.
func (h *Handler) record(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/history/")
	if rest == "" {
		h.history(w, r)
		return
	}

	if id, found := strings.CutSuffix(rest, "/baseline"); found {
		if r.Method != http.MethodPost {
			jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		if err := h.eng.SetBaseline(id); err != nil {
			jsonErr(w, http.StatusNotFound, err.Error())
			return
		}
		w.WriteHeader(http.StatusNoContent)
		return
	}

	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	rec, ok := h.eng.Record(rest)
	if !ok {
		jsonErr(w, http.StatusNotFound, "record not found")
		return
	}
	jsonResp(w, http.StatusOK, rec)
}

// compare diffs two records: ?baseline=ID (default: designated baseline)
// against ?current=ID (default: latest).
func (h *Handler) compare(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	res, err := h.eng.Compare(r.URL.Query().Get("baseline"), r.URL.Query().Get("current"))
	if err != nil {
		jsonErr(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	jsonResp(w, http.StatusOK, res)
}

// trend returns the per-metric trajectory classification.
func (h *Handler) trend(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	jsonResp(w, http.StatusOK, h.eng.Trend())
}

// export serializes the history as ?format=json|csv (default json).
func (h *Handler) export(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = "json"
	}
	out, err := h.eng.Export(format)
	if err != nil {
		jsonErr(w, http.StatusBadRequest, err.Error())
		return
	}

	switch strings.ToLower(format) {
	case "csv":
		w.Header().Set("Content-Type", "text/csv")
	default:
		w.Header().Set("Content-Type", "application/json")
	}
	_, _ = w.Write([]byte(out))
}

// alert returns the last regression alert, or 404 when none has fired.
func (h *Handler) alert(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	a, ok := h.eng.LastAlert()
	if !ok {
		jsonErr(w, http.StatusNotFound, "no regression alert recorded")
		return
	}
	jsonResp(w, http.StatusOK, a)
}

// --- helpers ----------------------------------------------------------------

func jsonResp(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func jsonErr(w http.ResponseWriter, code int, msg string) {
	jsonResp(w, code, errorResponse{Error: msg})
}
