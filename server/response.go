package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ayoisaiah/worklog/internal/timeutil"
	"github.com/ayoisaiah/worklog/tracker"
)

// TrackerResponse is the JSON form of a tracker.
type TrackerResponse struct {
	StartTime   time.Time `json:"start_time"`
	Description *string   `json:"description"`
	Key         string    `json:"key"`
	ID          string    `json:"id"`
	Duration    string    `json:"duration"`
	Running     bool      `json:"running"`
}

// NewTrackerResponse renders v. An empty description is encoded as null.
func NewTrackerResponse(v tracker.View) TrackerResponse {
	resp := TrackerResponse{
		Key:       v.Key,
		ID:        v.ID,
		Duration:  timeutil.FormatDuration(v.Duration),
		Running:   v.Running,
		StartTime: v.StartTime,
	}

	if v.Description != "" {
		resp.Description = &v.Description
	}

	return resp
}

// SumResponse is the JSON form of the total tracked time.
type SumResponse struct {
	Duration string `json:"duration"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
