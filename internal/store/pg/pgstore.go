package pg

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"taskhub.org/internal/eventlog"
	"taskhub.org/internal/ids"
	"taskhub.org/internal/task"
	"taskhub.org/internal/user"
)

const uniqueViolation = "23505"

// Store bundles the PostgreSQL-backed stores over a shared pool.
type Store struct {
	db *sql.DB
}

// Open connects to PostgreSQL via the pgx stdlib driver.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	// Tuned pool defaults; adjust under load tests
	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(15 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)
	return &Store{db: db}, nil
}

// NewStore wraps an existing connection. Used by tests.
func NewStore(db *sql.DB) *Store { return &Store{db: db} }

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

func (s *Store) Users() user.Store      { return &userStore{db: s.db} }
func (s *Store) Tasks() task.Store      { return &taskStore{db: s.db} }
func (s *Store) Events() eventlog.Store { return &eventStore{db: s.db} }

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// User store ---------------------------------------------------------------

type userStore struct{ db *sql.DB }

var _ user.Store = (*userStore)(nil)

func (s *userStore) Create(ctx context.Context, u *user.User) error {
	if u.ID == "" {
		u.ID = ids.New()
	}
	err := s.db.QueryRowContext(ctx,
		`insert into users(id, email, password_hash, role)
		 values($1,$2,$3,$4)
		 returning created_at, updated_at`,
		u.ID, u.Email, u.PasswordHash, u.Role,
	).Scan(&u.CreatedAt, &u.UpdatedAt)
	if isUniqueViolation(err) {
		return user.ErrEmailTaken
	}
	return err
}

func (s *userStore) Find(ctx context.Context, id string) (*user.User, error) {
	return s.scanOne(s.db.QueryRowContext(ctx,
		`select id, email, password_hash, role, created_at, updated_at from users where id=$1`, id))
}

func (s *userStore) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	return s.scanOne(s.db.QueryRowContext(ctx,
		`select id, email, password_hash, role, created_at, updated_at from users where email=$1`, email))
}

func (s *userStore) scanOne(row *sql.Row) (*user.User, error) {
	var u user.User
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, user.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (s *userStore) List(ctx context.Context) ([]*user.User, error) {
	rows, err := s.db.QueryContext(ctx,
		`select id, email, password_hash, role, created_at, updated_at from users order by created_at asc`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*user.User
	for rows.Next() {
		var u user.User
		if err := rows.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		users = append(users, &u)
	}
	return users, rows.Err()
}

func (s *userStore) Update(ctx context.Context, u *user.User) error {
	err := s.db.QueryRowContext(ctx,
		`update users set email=$2, password_hash=$3, role=$4, updated_at=now()
		 where id=$1
		 returning updated_at`,
		u.ID, u.Email, u.PasswordHash, u.Role,
	).Scan(&u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return user.ErrNotFound
	}
	if isUniqueViolation(err) {
		return user.ErrEmailTaken
	}
	return err
}

// Task store ---------------------------------------------------------------

type taskStore struct{ db *sql.DB }

var _ task.Store = (*taskStore)(nil)

// taskColumns selects a task row together with its creator and assignee
// accounts. The assignee join is optional.
const taskColumns = `
	t.id, t.title, t.description, t.status, t.creator_id,
	coalesce(t.assignee_id,''), t.created_at, t.updated_at,
	c.email, c.role, c.created_at, c.updated_at,
	a.id, a.email, a.role, a.created_at, a.updated_at
`

const taskJoins = `
	from tasks t
	join users c on c.id = t.creator_id
	left join users a on a.id = t.assignee_id
`

func (s *taskStore) Create(ctx context.Context, t *task.Task) error {
	if t.ID == "" {
		t.ID = ids.New()
	}
	return s.db.QueryRowContext(ctx,
		`insert into tasks(id, title, description, status, creator_id, assignee_id)
		 values($1,$2,$3,$4,$5,nullif($6,''))
		 returning created_at, updated_at`,
		t.ID, t.Title, t.Description, t.Status, t.CreatorID, t.AssigneeID,
	).Scan(&t.CreatedAt, &t.UpdatedAt)
}

func (s *taskStore) Find(ctx context.Context, id string) (*task.Task, error) {
	row := s.db.QueryRowContext(ctx, `select `+taskColumns+taskJoins+` where t.id=$1`, id)
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, task.ErrNotFound
	}
	return t, err
}

func (s *taskStore) List(ctx context.Context, f task.Filter) ([]*task.Task, error) {
	query := `select ` + taskColumns + taskJoins
	args := []any{}
	if f.UserID != "" {
		query += ` where t.creator_id=$1 or t.assignee_id=$1`
		args = append(args, f.UserID)
	}
	query += ` order by t.created_at desc, t.id desc`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []*task.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (s *taskStore) Update(ctx context.Context, t *task.Task) error {
	err := s.db.QueryRowContext(ctx,
		`update tasks set title=$2, description=$3, status=$4, assignee_id=nullif($5,''), updated_at=now()
		 where id=$1
		 returning updated_at`,
		t.ID, t.Title, t.Description, t.Status, t.AssigneeID,
	).Scan(&t.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return task.ErrNotFound
	}
	return err
}

func (s *taskStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `delete from tasks where id=$1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return task.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*task.Task, error) {
	var (
		t        task.Task
		creator  user.User
		assignee struct {
			id        sql.NullString
			email     sql.NullString
			role      sql.NullString
			createdAt sql.NullTime
			updatedAt sql.NullTime
		}
	)
	if err := row.Scan(
		&t.ID, &t.Title, &t.Description, &t.Status, &t.CreatorID,
		&t.AssigneeID, &t.CreatedAt, &t.UpdatedAt,
		&creator.Email, &creator.Role, &creator.CreatedAt, &creator.UpdatedAt,
		&assignee.id, &assignee.email, &assignee.role, &assignee.createdAt, &assignee.updatedAt,
	); err != nil {
		return nil, err
	}

	creator.ID = t.CreatorID
	t.Creator = &creator

	if assignee.id.Valid {
		t.Assignee = &user.User{
			ID:        assignee.id.String,
			Email:     assignee.email.String,
			Role:      user.Role(assignee.role.String),
			CreatedAt: assignee.createdAt.Time,
			UpdatedAt: assignee.updatedAt.Time,
		}
	}
	return &t, nil
}

// Event store --------------------------------------------------------------

type eventStore struct{ db *sql.DB }

var _ eventlog.Store = (*eventStore)(nil)

func (s *eventStore) Append(ctx context.Context, e *eventlog.Entry) error {
	details, err := json.Marshal(e.Details)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`insert into events(id, occurred_at, action, user_id, details) values($1,$2,$3,$4,$5)`,
		e.ID, e.Timestamp, e.Action, e.UserID, details,
	)
	return err
}

func (s *eventStore) List(ctx context.Context, userID string, limit int) ([]eventlog.Entry, error) {
	query := `select id, occurred_at, action, user_id, details from events`
	args := []any{}
	if userID != "" {
		query += ` where user_id=$1`
		args = append(args, userID)
	}
	query += ` order by occurred_at desc, id desc`
	if limit > 0 {
		args = append(args, limit)
		if userID != "" {
			query += ` limit $2`
		} else {
			query += ` limit $1`
		}
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []eventlog.Entry
	for rows.Next() {
		var (
			e       eventlog.Entry
			details []byte
		)
		if err := rows.Scan(&e.ID, &e.Timestamp, &e.Action, &e.UserID, &details); err != nil {
			return nil, err
		}
		if len(details) > 0 {
			_ = json.Unmarshal(details, &e.Details)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
