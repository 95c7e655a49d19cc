package server

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/roach88/dragsort/internal/ir"
)

type errorResp struct {
	Error string `json:"error"`
}

type tasksResp struct {
	Category ir.Category `json:"category"`
	Tasks    []taskView  `json:"tasks"`
}

// taskView is a task summary without its content.
type taskView struct {
	ID          string `json:"id"`
	Template    string `json:"template"`
	Instruction string `json:"instruction"`
	Playable    bool   `json:"playable"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) handleSections(w http.ResponseWriter, r *http.Request) {
	sections, err := s.store.ListSections(r.Context())
	if err != nil {
		s.logger.Error("list sections", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResp{Error: "failed to list sections"})
		return
	}
	writeJSON(w, http.StatusOK, sections)
}

func (s *Server) handleTasks(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	cat, err := s.store.ReadCategory(r.Context(), id)
	if errors.Is(err, sql.ErrNoRows) {
		writeJSON(w, http.StatusNotFound, errorResp{Error: "unknown category " + id})
		return
	}
	if err != nil {
		s.logger.Error("read category", "category", id, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResp{Error: "failed to read category"})
		return
	}

	tasks, err := s.store.ListTasks(r.Context(), id)
	if err != nil {
		s.logger.Error("list tasks", "category", id, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResp{Error: "failed to list tasks"})
		return
	}

	resp := tasksResp{Category: cat, Tasks: make([]taskView, 0, len(tasks))}
	for _, t := range tasks {
		resp.Tasks = append(resp.Tasks, taskView{
			ID:          t.ID,
			Template:    t.Template,
			Instruction: t.Instruction,
			Playable:    t.Puzzle != nil,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleTask(w http.ResponseWriter, r *http.Request) {
	catID, taskID := r.PathValue("id"), r.PathValue("task")
	task, err := s.store.ReadTask(r.Context(), catID, taskID)
	if errors.Is(err, sql.ErrNoRows) {
		writeJSON(w, http.StatusNotFound, errorResp{Error: "unknown task " + catID + "/" + taskID})
		return
	}
	if err != nil {
		s.logger.Error("read task", "category", catID, "task", taskID, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResp{Error: "failed to read task"})
		return
	}
	writeJSON(w, http.StatusOK, task)
}
