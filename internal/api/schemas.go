package api

import (
	"encoding/json"
	"time"

	"github.com/heimdex/reeldate/internal/catalog"
	"github.com/heimdex/reeldate/internal/discrepancy"
)

type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	UptimeS int64  `json:"uptime_s"`
}

type StatusResponse struct {
	ClipsCount int                     `json:"clips_count"`
	Project    catalog.ProjectSettings `json:"project"`
	LastRun    *RunResponse            `json:"last_run,omitempty"`
	LastError  string                  `json:"last_error,omitempty"`
}

type ImportRequest struct {
	Path string `json:"path"`
}

type ImportResponse struct {
	RunID string `json:"run_id"`
	catalog.ImportResult
}

type ClipsResponse struct {
	Clips []catalog.ClipDetail `json:"clips"`
}

type BinsResponse struct {
	Bins []catalog.BinEntry `json:"bins"`
}

type PrefixesResponse struct {
	Prefixes []string `json:"prefixes"`
}

// OperationResponse is returned by stamp, restore and organize.
type OperationResponse struct {
	RunID   string `json:"run_id"`
	Stats   any    `json:"stats"`
	Summary string `json:"summary"`
}

type AnalysisResponse struct {
	RunID   string           `json:"run_id"`
	Reports []ReportResponse `json:"reports"`
	Text    string           `json:"text"`
}

type ModeResponse struct {
	Seconds float64 `json:"seconds"`
	Support int     `json:"support"`
	Samples int     `json:"samples"`
}

type OffsetResponse struct {
	Pair    string  `json:"pair"`
	Seconds float64 `json:"seconds"`
}

type ExampleResponse struct {
	Name   string `json:"name"`
	First  string `json:"first"`
	Second string `json:"second"`
}

type ReportResponse struct {
	Prefix               string           `json:"prefix"`
	Count                int              `json:"count"`
	Verdict              string           `json:"verdict"`
	CreationFilename     *ModeResponse    `json:"creation_filename,omitempty"`
	ModificationFilename *ModeResponse    `json:"modification_filename,omitempty"`
	ModificationCreation *ModeResponse    `json:"modification_creation,omitempty"`
	Note                 *OffsetResponse  `json:"note,omitempty"`
	Dominant             *OffsetResponse  `json:"dominant,omitempty"`
	FirstExample         *ExampleResponse `json:"first_example,omitempty"`
	LastExample          *ExampleResponse `json:"last_example,omitempty"`
}

type RunResponse struct {
	ID        string          `json:"id"`
	Operation string          `json:"operation"`
	Status    string          `json:"status"`
	DryRun    bool            `json:"dry_run"`
	Stats     json.RawMessage `json:"stats,omitempty"`
	Error     string          `json:"error,omitempty"`
	CreatedAt string          `json:"created_at"`
	UpdatedAt string          `json:"updated_at"`
}

type RunsResponse struct {
	Runs []RunResponse `json:"runs"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func RunToResponse(r *catalog.Run) RunResponse {
	resp := RunResponse{
		ID:        r.ID,
		Operation: r.Operation,
		Status:    r.Status,
		DryRun:    r.DryRun,
		Error:     r.Error,
		CreatedAt: r.CreatedAt.Format(time.RFC3339),
		UpdatedAt: r.UpdatedAt.Format(time.RFC3339),
	}
	if r.Stats != "" {
		resp.Stats = json.RawMessage(r.Stats)
	}
	return resp
}

const exampleLayout = "2006-01-02 15:04:05"

func ReportToResponse(r discrepancy.Report) ReportResponse {
	return ReportResponse{
		Prefix:               r.Key,
		Count:                r.Count,
		Verdict:              r.Verdict.String(),
		CreationFilename:     modeToResponse(r.CreationFilename),
		ModificationFilename: modeToResponse(r.ModificationFilename),
		ModificationCreation: modeToResponse(r.ModificationCreation),
		Note:                 offsetToResponse(r.Note),
		Dominant:             offsetToResponse(r.Dominant),
		FirstExample:         exampleToResponse(r.FirstExample),
		LastExample:          exampleToResponse(r.LastExample),
	}
}

func modeToResponse(m *discrepancy.Mode) *ModeResponse {
	if m == nil {
		return nil
	}
	return &ModeResponse{Seconds: m.Seconds, Support: m.Support, Samples: m.Samples}
}

func offsetToResponse(o *discrepancy.Offset) *OffsetResponse {
	if o == nil {
		return nil
	}
	return &OffsetResponse{Pair: o.Pair.String(), Seconds: o.Seconds}
}

func exampleToResponse(e *discrepancy.Example) *ExampleResponse {
	if e == nil {
		return nil
	}
	return &ExampleResponse{
		Name:   e.Name,
		First:  e.First.Format(exampleLayout),
		Second: e.Second.Format(exampleLayout),
	}
}
