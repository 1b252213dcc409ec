package task

import (
	"testing"

	"taskhub.org/internal/user"
)

func TestAllowed(t *testing.T) {
	tk := &Task{ID: "t1", CreatorID: "creator", AssigneeID: "assignee"}

	admin := user.User{ID: "someone", Role: user.RoleAdmin}
	creator := user.User{ID: "creator", Role: user.RoleUser}
	assignee := user.User{ID: "assignee", Role: user.RoleUser}
	stranger := user.User{ID: "stranger", Role: user.RoleUser}

	cases := []struct {
		name   string
		actor  user.User
		action Action
		want   bool
	}{
		{"admin read", admin, ActionRead, true},
		{"admin update", admin, ActionUpdate, true},
		{"admin assign", admin, ActionAssign, true},
		{"admin delete", admin, ActionDelete, true},

		{"creator read", creator, ActionRead, true},
		{"creator update", creator, ActionUpdate, true},
		{"creator assign", creator, ActionAssign, true},
		{"creator delete", creator, ActionDelete, true},

		{"assignee read", assignee, ActionRead, true},
		{"assignee update", assignee, ActionUpdate, true},
		{"assignee assign", assignee, ActionAssign, false},
		{"assignee delete", assignee, ActionDelete, false},

		{"stranger read", stranger, ActionRead, false},
		{"stranger update", stranger, ActionUpdate, false},
		{"stranger assign", stranger, ActionAssign, false},
		{"stranger delete", stranger, ActionDelete, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Allowed(tc.actor, tk, tc.action); got != tc.want {
				t.Fatalf("Allowed(%s, %s) = %v, want %v", tc.actor.ID, tc.action, got, tc.want)
			}
		})
	}
}

func TestAllowedUnassignedTask(t *testing.T) {
	tk := &Task{ID: "t1", CreatorID: "creator"}

	// An actor with an empty id must never match the empty assignee slot.
	ghost := user.User{ID: "", Role: user.RoleUser}
	if Allowed(ghost, tk, ActionRead) {
		t.Fatal("empty actor id matched unassigned task")
	}

	stranger := user.User{ID: "stranger", Role: user.RoleUser}
	if Allowed(stranger, tk, ActionUpdate) {
		t.Fatal("stranger allowed to update unassigned task")
	}
}

func TestAllowedUnknownAction(t *testing.T) {
	tk := &Task{ID: "t1", CreatorID: "creator"}
	creator := user.User{ID: "creator", Role: user.RoleUser}
	if Allowed(creator, tk, Action("archive")) {
		t.Fatal("unknown action allowed")
	}
}
