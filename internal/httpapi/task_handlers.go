package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"taskhub.org/internal/task"
)

type createTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type updateTaskRequest struct {
	Title       *string      `json:"title"`
	Description *string      `json:"description"`
	Status      *task.Status `json:"status"`
}

type assignTaskRequest struct {
	AssigneeID string `json:"assigneeId"`
}

func (a *API) handleTasksCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		a.listTasks(w, r)
	case http.MethodPost:
		a.createTask(w, r)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (a *API) handleTaskResource(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/v1/tasks/")
	if path == "" {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}

	if strings.HasSuffix(path, "/assign") {
		id := strings.TrimSuffix(path, "/assign")
		id = strings.TrimSuffix(id, "/")
		if id == "" || strings.Contains(id, "/") {
			writeError(w, r, http.StatusNotFound, "resource not found")
			return
		}
		if r.Method != http.MethodPatch {
			methodNotAllowed(w, r, http.MethodPatch)
			return
		}
		a.assignTask(w, r, id)
		return
	}

	if strings.Contains(path, "/") {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		a.getTask(w, r, path)
	case http.MethodPatch:
		a.updateTask(w, r, path)
	case http.MethodDelete:
		a.deleteTask(w, r, path)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPatch, http.MethodDelete)
	}
}

func (a *API) createTask(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	var req createTaskRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	created, err := a.tasks.Create(r.Context(), task.CreateTask{
		Title:       req.Title,
		Description: req.Description,
	}, actor.ID)
	if err != nil {
		handleTaskError(w, r, err)
		return
	}

	w.Header().Set("Location", "/v1/tasks/"+created.ID)
	writeJSON(w, http.StatusCreated, created)
}

func (a *API) listTasks(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	tasks, err := a.tasks.FindAll(r.Context(), actor)
	if err != nil {
		handleTaskError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (a *API) getTask(w http.ResponseWriter, r *http.Request, id string) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	allowed, err := a.tasks.CanAccess(r.Context(), id, actor.ID, actor.Role)
	if err != nil {
		handleTaskError(w, r, err)
		return
	}
	if !allowed {
		writeError(w, r, http.StatusForbidden, "access denied")
		return
	}

	t, err := a.tasks.FindOne(r.Context(), id)
	if err != nil {
		handleTaskError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (a *API) updateTask(w http.ResponseWriter, r *http.Request, id string) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	var req updateTaskRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	t, err := a.tasks.Update(r.Context(), id, task.Patch{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
	}, actor)
	if err != nil {
		handleTaskError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (a *API) assignTask(w http.ResponseWriter, r *http.Request, id string) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	// An empty or missing assigneeId unassigns the task.
	var req assignTaskRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	t, err := a.tasks.Assign(r.Context(), id, req.AssigneeID, actor)
	if err != nil {
		handleTaskError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (a *API) deleteTask(w http.ResponseWriter, r *http.Request, id string) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	if err := a.tasks.Remove(r.Context(), id, actor); err != nil {
		handleTaskError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func handleTaskError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, task.ErrInvalidInput):
		writeError(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, task.ErrForbidden):
		writeError(w, r, http.StatusForbidden, "access denied")
	case errors.Is(err, task.ErrAssigneeNotFound):
		writeError(w, r, http.StatusNotFound, "assignee not found")
	case errors.Is(err, task.ErrNotFound):
		writeError(w, r, http.StatusNotFound, "task not found")
	default:
		writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}
