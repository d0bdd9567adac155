package api

import (
	"net/http"
	"strings"

	"github.com/pbaille/thoughts/internal/domain"
	"github.com/pbaille/thoughts/internal/journal"
)

type actionPlanRequest struct {
	ThoughtContent string           `json:"thoughtContent"`
	AIMessages     []domain.Message `json:"aiMessages"`
}

type actionPlanResponse struct {
	Actions []domain.ActionItem `json:"actions"`
	// Selected holds the ids preselected for saving
	Selected []string `json:"selected,omitempty"`
	Error    string   `json:"error,omitempty"`
}

type saveActionsRequest struct {
	ActionIDs []string `json:"actionIds"`
}

// actionPlan classifies free content without a stored note. Failures still
// carry an empty actions array.
func (s *Server) actionPlan(w http.ResponseWriter, r *http.Request) {
	var req actionPlanRequest
	if err := decode(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, actionPlanResponse{Actions: []domain.ActionItem{}, Error: "invalid request body"})
		return
	}
	if strings.TrimSpace(req.ThoughtContent) == "" {
		writeJSON(w, http.StatusBadRequest, actionPlanResponse{Actions: []domain.ActionItem{}, Error: "thoughtContent is required"})
		return
	}

	actions := s.journal.PlanFor(r.Context(), req.ThoughtContent, req.AIMessages)
	if actions == nil {
		actions = []domain.ActionItem{}
	}
	writeJSON(w, http.StatusOK, actionPlanResponse{Actions: actions})
}

func (s *Server) getActions(w http.ResponseWriter, r *http.Request) {
	s.writePlan(w, r, false)
}

func (s *Server) regenerateActions(w http.ResponseWriter, r *http.Request) {
	s.writePlan(w, r, true)
}

func (s *Server) writePlan(w http.ResponseWriter, r *http.Request, force bool) {
	actions, err := s.journal.GeneratePlan(r.Context(), r.PathValue("id"), force)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if actions == nil {
		actions = []domain.ActionItem{}
	}
	writeJSON(w, http.StatusOK, actionPlanResponse{
		Actions:  actions,
		Selected: journal.DefaultSelection(actions),
	})
}

func (s *Server) scheduleAction(w http.ResponseWriter, r *http.Request) {
	var sched domain.Schedule
	if err := decode(r, &sched); err != nil {
		s.fail(w, r, err)
		return
	}
	todo, err := s.journal.ScheduleAction(r.Context(), r.PathValue("id"), r.PathValue("actionID"), sched)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, todo)
}

func (s *Server) saveActions(w http.ResponseWriter, r *http.Request) {
	var req saveActionsRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	todos, err := s.journal.SaveSelected(r.Context(), r.PathValue("id"), req.ActionIDs)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"todos": todos})
}
