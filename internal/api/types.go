package api

import (
	"github.com/mbwk25/optimum-solutions-group-sub000/internal/score"
	"github.com/mbwk25/optimum-solutions-group-sub000/internal/vitals"
)

// SnapshotResponse is the payload for GET /api/v1/snapshot.
type SnapshotResponse struct {
	Snapshot    vitals.Snapshot `json:"snapshot"`
	Summary     score.Summary   `json:"summary"`
	GeneratedAt string          `json:"generated_at"` // RFC3339
}

// HealthResponse is the payload for GET /api/v1/health.
type HealthResponse struct {
	Status       string `json:"status"` // "ok" | "not-supported"
	Supported    bool   `json:"supported"`
	Score        int    `json:"score"`
	HistoryCount int    `json:"history_count"`
	Reporting    bool   `json:"reporting"`
}

// errorResponse is a generic JSON error body.
type errorResponse struct {
	Error string `json:"error"`
}
