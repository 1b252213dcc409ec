package pg

import (
	"context"
	"errors"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"

	"taskhub.org/internal/eventlog"
	"taskhub.org/internal/task"
	"taskhub.org/internal/user"
)

func newMock(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet expectations: %v", err)
		}
		db.Close()
	})
	return NewStore(db), mock
}

func TestUserCreateDuplicateEmail(t *testing.T) {
	store, mock := newMock(t)

	mock.ExpectQuery(`insert into users`).
		WithArgs(sqlmock.AnyArg(), "dup@example.com", "hash", user.RoleUser).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})

	u := &user.User{Email: "dup@example.com", PasswordHash: "hash", Role: user.RoleUser}
	if err := store.Users().Create(context.Background(), u); !errors.Is(err, user.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestUserFindNotFound(t *testing.T) {
	store, mock := newMock(t)

	mock.ExpectQuery(`select id, email, password_hash, role, created_at, updated_at from users where id=\$1`).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "password_hash", "role", "created_at", "updated_at"}))

	if _, err := store.Users().Find(context.Background(), "missing"); !errors.Is(err, user.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUserCreateScansTimestamps(t *testing.T) {
	store, mock := newMock(t)

	now := time.Now().UTC()
	mock.ExpectQuery(`insert into users`).
		WithArgs(sqlmock.AnyArg(), "new@example.com", "hash", user.RoleUser).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	u := &user.User{Email: "new@example.com", PasswordHash: "hash", Role: user.RoleUser}
	if err := store.Users().Create(context.Background(), u); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if u.ID == "" {
		t.Fatal("id not assigned")
	}
	if !u.CreatedAt.Equal(now) {
		t.Fatalf("createdAt = %v", u.CreatedAt)
	}
}

func taskRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "title", "description", "status", "creator_id",
		"assignee_id", "created_at", "updated_at",
		"c_email", "c_role", "c_created_at", "c_updated_at",
		"a_id", "a_email", "a_role", "a_created_at", "a_updated_at",
	})
}

func TestTaskFindResolvesRelations(t *testing.T) {
	store, mock := newMock(t)

	now := time.Now().UTC()
	mock.ExpectQuery(`select(?s).+from tasks t(?s).+where t\.id=\$1`).
		WithArgs("t1").
		WillReturnRows(taskRows().AddRow(
			"t1", "Write docs", "", task.StatusInProgress, "u1",
			"u2", now, now,
			"creator@example.com", user.RoleUser, now, now,
			"u2", "assignee@example.com", user.RoleUser, now, now,
		))

	got, err := store.Tasks().Find(context.Background(), "t1")
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if got.Creator == nil || got.Creator.Email != "creator@example.com" {
		t.Fatalf("creator = %+v", got.Creator)
	}
	if got.Assignee == nil || got.Assignee.ID != "u2" {
		t.Fatalf("assignee = %+v", got.Assignee)
	}
}

func TestTaskFindUnassigned(t *testing.T) {
	store, mock := newMock(t)

	now := time.Now().UTC()
	mock.ExpectQuery(`select(?s).+from tasks t(?s).+where t\.id=\$1`).
		WithArgs("t1").
		WillReturnRows(taskRows().AddRow(
			"t1", "Solo", "", task.StatusTodo, "u1",
			"", now, now,
			"creator@example.com", user.RoleUser, now, now,
			nil, nil, nil, nil, nil,
		))

	got, err := store.Tasks().Find(context.Background(), "t1")
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if got.AssigneeID != "" || got.Assignee != nil {
		t.Fatalf("expected unassigned, got %+v", got)
	}
}

func TestTaskFindNotFound(t *testing.T) {
	store, mock := newMock(t)

	mock.ExpectQuery(`select(?s).+from tasks t(?s).+where t\.id=\$1`).
		WithArgs("missing").
		WillReturnRows(taskRows())

	if _, err := store.Tasks().Find(context.Background(), "missing"); !errors.Is(err, task.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestTaskListFiltersByUser(t *testing.T) {
	store, mock := newMock(t)

	now := time.Now().UTC()
	mock.ExpectQuery(`select(?s).+from tasks t(?s).+where t\.creator_id=\$1 or t\.assignee_id=\$1(?s).+order by t\.created_at desc`).
		WithArgs("u1").
		WillReturnRows(taskRows().AddRow(
			"t1", "Mine", "", task.StatusTodo, "u1",
			"", now, now,
			"creator@example.com", user.RoleUser, now, now,
			nil, nil, nil, nil, nil,
		))

	tasks, err := store.Tasks().List(context.Background(), task.Filter{UserID: "u1"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(tasks) != 1 || tasks[0].ID != "t1" {
		t.Fatalf("tasks = %+v", tasks)
	}
}

func TestTaskUpdateNotFound(t *testing.T) {
	store, mock := newMock(t)

	mock.ExpectQuery(`update tasks set`).
		WithArgs("missing", "t", "", task.StatusTodo, "").
		WillReturnRows(sqlmock.NewRows([]string{"updated_at"}))

	err := store.Tasks().Update(context.Background(), &task.Task{ID: "missing", Title: "t", Status: task.StatusTodo})
	if !errors.Is(err, task.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestTaskDeleteNotFound(t *testing.T) {
	store, mock := newMock(t)

	mock.ExpectExec(`delete from tasks where id=\$1`).
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := store.Tasks().Delete(context.Background(), "missing"); !errors.Is(err, task.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestEventAppendAndList(t *testing.T) {
	store, mock := newMock(t)

	now := time.Now().UTC()
	mock.ExpectExec(`insert into events`).
		WithArgs("e1", now, eventlog.ActionTaskCreated, "u1", []byte(`{"taskId":"t1"}`)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	entry := &eventlog.Entry{
		ID:        "e1",
		Timestamp: now,
		Action:    eventlog.ActionTaskCreated,
		UserID:    "u1",
		Details:   map[string]any{"taskId": "t1"},
	}
	if err := store.Events().Append(context.Background(), entry); err != nil {
		t.Fatalf("Append: %v", err)
	}

	mock.ExpectQuery(`select id, occurred_at, action, user_id, details from events where user_id=\$1 order by occurred_at desc, id desc limit \$2`).
		WithArgs("u1", 10).
		WillReturnRows(sqlmock.NewRows([]string{"id", "occurred_at", "action", "user_id", "details"}).
			AddRow("e1", now, eventlog.ActionTaskCreated, "u1", []byte(`{"taskId":"t1"}`)))

	entries, err := store.Events().List(context.Background(), "u1", 10)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 1 || entries[0].Details["taskId"] != "t1" {
		t.Fatalf("entries = %+v", entries)
	}
}
