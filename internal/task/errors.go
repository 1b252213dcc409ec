package task

import "errors"

var (
	ErrNotFound         = errors.New("task: not found")
	ErrForbidden        = errors.New("task: forbidden")
	ErrAssigneeNotFound = errors.New("task: assignee not found")
	ErrInvalidInput     = errors.New("task: invalid input")
)
