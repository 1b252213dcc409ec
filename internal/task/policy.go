package task

import "taskhub.org/internal/user"

// Action is an operation an actor may attempt on a task.
type Action string

const (
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionAssign Action = "assign"
	ActionDelete Action = "delete"
)

// Allowed is the complete authorization policy over (actor, task). It is a
// pure function so the whole security model is auditable in one place:
//
//	read    Admin, creator or assignee
//	update  Admin, creator or assignee
//	assign  Admin or creator
//	delete  Admin or creator
func Allowed(actor user.User, t *Task, action Action) bool {
	if actor.Role == user.RoleAdmin {
		return true
	}
	switch action {
	case ActionRead, ActionUpdate:
		return actor.ID == t.CreatorID || (t.AssigneeID != "" && actor.ID == t.AssigneeID)
	case ActionAssign, ActionDelete:
		return actor.ID == t.CreatorID
	}
	return false
}
