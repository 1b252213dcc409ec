package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"taskhub.org/internal/user"
)

type updateProfileRequest struct {
	Email string `json:"email"`
}

func (a *API) handleUsersCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		a.listUsers(w, r)
	default:
		methodNotAllowed(w, r, http.MethodGet)
	}
}

func (a *API) handleUserResource(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/v1/users/")
	if path == "" || strings.Contains(path, "/") {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}

	// The profile endpoint shadows the id namespace and must match first.
	if path == "profile" {
		if r.Method != http.MethodPatch {
			methodNotAllowed(w, r, http.MethodPatch)
			return
		}
		a.updateProfile(w, r)
		return
	}

	switch r.Method {
	case http.MethodGet:
		a.getUser(w, r, path)
	default:
		methodNotAllowed(w, r, http.MethodGet)
	}
}

func (a *API) listUsers(w http.ResponseWriter, r *http.Request) {
	if _, ok := actorFrom(w, r); !ok {
		return
	}

	users, err := a.users.List(r.Context())
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (a *API) getUser(w http.ResponseWriter, r *http.Request, id string) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	u, err := a.users.Get(r.Context(), id, actor)
	if err != nil {
		switch {
		case errors.Is(err, user.ErrForbidden):
			writeError(w, r, http.StatusForbidden, "access denied")
		case errors.Is(err, user.ErrNotFound):
			writeError(w, r, http.StatusNotFound, "user not found")
		default:
			writeError(w, r, http.StatusInternalServerError, "internal error")
		}
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (a *API) updateProfile(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	var req updateProfileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	u, err := a.users.UpdateProfile(r.Context(), actor.ID, req.Email)
	if err != nil {
		switch {
		case errors.Is(err, user.ErrEmailTaken):
			// Kept as 404 for client compatibility.
			writeError(w, r, http.StatusNotFound, "email already in use")
		case errors.Is(err, user.ErrNotFound):
			writeError(w, r, http.StatusNotFound, "user not found")
		default:
			writeError(w, r, http.StatusInternalServerError, "internal error")
		}
		return
	}
	writeJSON(w, http.StatusOK, u)
}
