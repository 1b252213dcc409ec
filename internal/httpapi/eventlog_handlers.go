package httpapi

import (
	"net/http"
	"strings"
	"time"

	"taskhub.org/internal/eventlog"
	"taskhub.org/internal/user"
)

type listEventsResponse struct {
	Items []eventlog.Entry `json:"items"`
	AsOf  time.Time        `json:"as_of"`
}

// handleEvents serves the audit trail. Admin only.
func (a *API) handleEvents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}

	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	if actor.Role != user.RoleAdmin {
		writeError(w, r, http.StatusForbidden, "access denied")
		return
	}

	limit, err := parsePositiveInt(r.URL.Query().Get("limit"), 100, 1, 1000)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	userID := strings.TrimSpace(r.URL.Query().Get("user_id"))

	items, err := a.events.Query(r.Context(), userID, limit)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	if items == nil {
		items = []eventlog.Entry{}
	}

	writeJSON(w, http.StatusOK, listEventsResponse{
		Items: items,
		AsOf:  time.Now().UTC(),
	})
}
