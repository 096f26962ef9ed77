package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/loomworks/loomplan/internal/observability"
	"github.com/loomworks/loomplan/internal/server/middleware"
	"github.com/loomworks/loomplan/pkg/alloc"
	"github.com/loomworks/loomplan/pkg/export"
	"github.com/loomworks/loomplan/pkg/planstore"
	"github.com/loomworks/loomplan/pkg/reedgroup"
	"github.com/loomworks/loomplan/pkg/rules"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type thresholdPayload struct {
	ThresholdMeters float64 `json:"threshold_meters"`
}

func (s *Server) handleGetThreshold(w http.ResponseWriter, r *http.Request) {
	meters, err := s.store.Threshold(r.Context())
	if err != nil {
		middleware.WriteError(w, http.StatusInternalServerError,
			middleware.CodeInternal, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, thresholdPayload{ThresholdMeters: meters})
}

func (s *Server) handlePutThreshold(w http.ResponseWriter, r *http.Request) {
	var payload thresholdPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		middleware.WriteError(w, http.StatusBadRequest,
			middleware.CodeBadRequest, "invalid body: "+err.Error())
		return
	}
	if err := s.store.SetThreshold(r.Context(), payload.ThresholdMeters); err != nil {
		middleware.WriteError(w, http.StatusBadRequest,
			middleware.CodeBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, payload)
}

type restrictionsPayload struct {
	Blocked []int `json:"blocked"`
	Hidden  []int `json:"hidden"`
}

func (s *Server) handleGetRestrictions(w http.ResponseWriter, r *http.Request) {
	blocked, err := s.store.Blocked(r.Context())
	if err != nil {
		middleware.WriteError(w, http.StatusInternalServerError,
			middleware.CodeInternal, err.Error())
		return
	}
	hidden, err := s.store.Hidden(r.Context())
	if err != nil {
		middleware.WriteError(w, http.StatusInternalServerError,
			middleware.CodeInternal, err.Error())
		return
	}
	if blocked == nil {
		blocked = []int{}
	}
	if hidden == nil {
		hidden = []int{}
	}
	writeJSON(w, http.StatusOK, restrictionsPayload{Blocked: blocked, Hidden: hidden})
}

// planJob and planMachine are the wire shapes of the two tables for the
// planning endpoint; they mirror the JSONL export format.
type planJob struct {
	ID           string         `json:"id"`
	ReedGroup    string         `json:"reed_group"`
	Category     rules.Category `json:"category"`
	Selvedge     string         `json:"selvedge,omitempty"`
	Weave        string         `json:"weave,omitempty"`
	DueDate      string         `json:"due_date,omitempty"`
	Remark       string         `json:"remark,omitempty"`
	WeftShortage bool           `json:"weft_shortage,omitempty"`
}

type planMachine struct {
	Number     int      `json:"machine"`
	ReedGroup  string   `json:"reed_group"`
	Remaining  *float64 `json:"remaining_yards,omitempty"`
	Selvedge   string   `json:"selvedge,omitempty"`
	Weave      string   `json:"weave,omitempty"`
	Experience int      `json:"experience,omitempty"`
}

type planRequest struct {
	// ThresholdMeters overrides the stored threshold for this run.
	ThresholdMeters *float64      `json:"threshold_meters,omitempty"`
	Jobs            []planJob     `json:"jobs"`
	Machines        []planMachine `json:"machines"`
}

type planResponse struct {
	RunID       string                    `json:"run_id"`
	Groups      []alloc.GroupResult       `json:"groups"`
	Assignments []export.AssignmentRecord `json:"assignments"`
	Skips       []export.SkipRecord       `json:"skips"`
	Summary     export.SummaryRecord      `json:"summary"`
}

func (s *Server) handlePlanAuto(w http.ResponseWriter, r *http.Request) {
	var req planRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest,
			middleware.CodeBadRequest, "invalid body: "+err.Error())
		return
	}
	if len(req.Jobs) == 0 || len(req.Machines) == 0 {
		middleware.WriteError(w, http.StatusBadRequest,
			middleware.CodeBadRequest, "jobs and machines are required")
		return
	}

	threshold, err := s.store.Threshold(r.Context())
	if err != nil {
		middleware.WriteError(w, http.StatusInternalServerError,
			middleware.CodeInternal, err.Error())
		return
	}
	if req.ThresholdMeters != nil {
		if *req.ThresholdMeters < 0 {
			middleware.WriteError(w, http.StatusBadRequest,
				middleware.CodeBadRequest, "threshold_meters must not be negative")
			return
		}
		threshold = *req.ThresholdMeters
	}

	restricted, err := s.store.RestrictedSet(r.Context())
	if err != nil {
		middleware.WriteError(w, http.StatusInternalServerError,
			middleware.CodeInternal, err.Error())
		return
	}

	jobs := make([]*alloc.Job, 0, len(req.Jobs))
	for _, j := range req.Jobs {
		jobs = append(jobs, &alloc.Job{
			ID:           j.ID,
			GroupKey:     reedgroup.Normalize(j.ReedGroup),
			Category:     j.Category,
			Selvedge:     j.Selvedge,
			Weave:        j.Weave,
			DueDate:      parseDate(j.DueDate),
			Remark:       j.Remark,
			WeftShortage: j.WeftShortage,
		})
	}
	machines := make([]alloc.Machine, 0, len(req.Machines))
	for _, m := range req.Machines {
		am := alloc.Machine{
			Number:     m.Number,
			GroupKey:   reedgroup.Normalize(m.ReedGroup),
			Selvedge:   m.Selvedge,
			Weave:      m.Weave,
			Experience: m.Experience,
			Restricted: restricted[m.Number],
		}
		if m.Remaining != nil {
			am.RemainingYardage = *m.Remaining
			am.HasYardage = true
		} else {
			am.Open = true
		}
		machines = append(machines, am)
	}

	cfg := alloc.Config{Ruleset: rules.DefaultRuleset(), ThresholdMeters: threshold}
	run := alloc.AutoPlanAll(jobs, machines, alloc.NewSession(), cfg)

	runID := uuid.NewString()
	assignments, skips := export.BuildRecords(jobs, machines)

	snapshot := make([]planstore.Assignment, 0, len(assignments)+len(skips))
	for _, a := range assignments {
		snapshot = append(snapshot, planstore.Assignment{
			JobID: a.JobID, GroupKey: a.GroupKey,
			Category: a.Category.String(), Machine: a.Machine,
		})
	}
	for _, sk := range skips {
		snapshot = append(snapshot, planstore.Assignment{
			JobID: sk.JobID, GroupKey: sk.GroupKey,
			Category: sk.Category.String(), Skipped: true,
		})
	}
	if err := s.store.SaveSnapshot(r.Context(), runID, snapshot); err != nil {
		observability.ServerLogger.Error("snapshot save failed",
			zap.String("run_id", runID), zap.Error(err))
	}

	pending := 0
	for _, j := range jobs {
		if !j.Terminal() {
			pending++
		}
	}
	if assignments == nil {
		assignments = []export.AssignmentRecord{}
	}
	if skips == nil {
		skips = []export.SkipRecord{}
	}

	writeJSON(w, http.StatusOK, planResponse{
		RunID:       runID,
		Groups:      run.Groups,
		Assignments: assignments,
		Skips:       skips,
		Summary: export.SummaryRecord{
			Assigned: run.Assigned(),
			Skipped:  run.Changed() - run.Assigned(),
			Pending:  pending,
			Groups:   len(run.Groups),
		},
	})
}

var dateLayouts = []string{time.RFC3339, "2006-01-02"}

func parseDate(s string) time.Time {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
