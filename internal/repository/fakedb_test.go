package repository

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"wavenote-api/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var _ DB = (*fakeDB)(nil)

// fakeDB answers the statements the pgx repositories issue from two
// in-memory tables. It matches on the table and WHERE clause, so a query
// that forgets its owner filter finds nothing.
type fakeDB struct {
	mu    sync.Mutex
	tasks []models.Task
	users []models.User
	clock time.Time

	// afterListSnapshot runs once the task list rows are copied, before
	// they are handed back to the caller.
	afterListSnapshot func()
	// failWith makes every statement fail.
	failWith error
}

func newFakeDB() *fakeDB {
	return &fakeDB{clock: time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)}
}

func (db *fakeDB) tick() time.Time {
	db.clock = db.clock.Add(time.Second)
	return db.clock
}

func (db *fakeDB) taskCount() int {
	db.mu.Lock()
	defer db.mu.Unlock()
	return len(db.tasks)
}

func (db *fakeDB) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if db.failWith != nil {
		return pgconn.CommandTag{}, db.failWith
	}
	db.mu.Lock()
	defer db.mu.Unlock()

	if strings.Contains(sql, "DELETE FROM tasks") {
		id, userID := args[0].(uuid.UUID), args[1].(uuid.UUID)
		for i, task := range db.tasks {
			if task.ID == id && task.UserID == userID {
				db.tasks = append(db.tasks[:i], db.tasks[i+1:]...)
				return pgconn.NewCommandTag("DELETE 1"), nil
			}
		}
		return pgconn.NewCommandTag("DELETE 0"), nil
	}
	return pgconn.CommandTag{}, fmt.Errorf("fakeDB: unexpected exec %q", sql)
}

func (db *fakeDB) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if db.failWith != nil {
		return nil, db.failWith
	}
	if !strings.Contains(sql, "FROM tasks") || !strings.Contains(sql, "WHERE user_id = $1") {
		return nil, fmt.Errorf("fakeDB: unexpected query %q", sql)
	}

	userID := args[0].(uuid.UUID)
	db.mu.Lock()
	var rows [][]any
	for _, task := range db.tasks {
		if task.UserID == userID {
			rows = append(rows, taskValues(task))
		}
	}
	db.mu.Unlock()

	if hook := db.afterListSnapshot; hook != nil {
		db.afterListSnapshot = nil
		hook()
	}
	return &fakeRows{rows: rows, pos: -1}, nil
}

func (db *fakeDB) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if db.failWith != nil {
		return fakeRow{err: db.failWith}
	}
	db.mu.Lock()
	defer db.mu.Unlock()

	switch {
	case strings.Contains(sql, "INSERT INTO tasks"):
		now := db.tick()
		task := models.Task{
			ID:          uuid.New(),
			UserID:      args[0].(uuid.UUID),
			Title:       args[1].(string),
			Description: args[2].(string),
			Deadline:    args[3].(time.Time),
			Completed:   args[4].(bool),
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		db.tasks = append(db.tasks, task)
		return fakeRow{values: []any{task.ID, task.CreatedAt, task.UpdatedAt}}

	case strings.Contains(sql, "FROM tasks") && strings.Contains(sql, "WHERE id = $1 AND user_id = $2"):
		id, userID := args[0].(uuid.UUID), args[1].(uuid.UUID)
		for _, task := range db.tasks {
			if task.ID == id && task.UserID == userID {
				return fakeRow{values: taskValues(task)}
			}
		}
		return fakeRow{err: pgx.ErrNoRows}

	case strings.Contains(sql, "UPDATE tasks"):
		id, userID := args[0].(uuid.UUID), args[1].(uuid.UUID)
		for i, task := range db.tasks {
			if task.ID == id && task.UserID == userID {
				task.Title = args[2].(string)
				task.Description = args[3].(string)
				task.Deadline = args[4].(time.Time)
				task.Completed = args[5].(bool)
				task.UpdatedAt = db.tick()
				db.tasks[i] = task
				return fakeRow{values: []any{task.UpdatedAt}}
			}
		}
		return fakeRow{err: pgx.ErrNoRows}

	case strings.Contains(sql, "INSERT INTO users"):
		email := args[0].(string)
		for _, user := range db.users {
			if user.Email == email {
				return fakeRow{err: &pgconn.PgError{Code: uniqueViolation, ConstraintName: "users_email_key"}}
			}
		}
		now := db.tick()
		user := models.User{ID: uuid.New(), Email: email, PasswordHash: args[1].(string), CreatedAt: now, UpdatedAt: now}
		db.users = append(db.users, user)
		return fakeRow{values: []any{user.ID, user.CreatedAt, user.UpdatedAt}}

	case strings.Contains(sql, "FROM users") && strings.Contains(sql, "WHERE id = $1"):
		for _, user := range db.users {
			if user.ID == args[0].(uuid.UUID) {
				return fakeRow{values: userValues(user)}
			}
		}
		return fakeRow{err: pgx.ErrNoRows}

	case strings.Contains(sql, "FROM users") && strings.Contains(sql, "WHERE email = $1"):
		for _, user := range db.users {
			if user.Email == args[0].(string) {
				return fakeRow{values: userValues(user)}
			}
		}
		return fakeRow{err: pgx.ErrNoRows}
	}
	return fakeRow{err: fmt.Errorf("fakeDB: unexpected query %q", sql)}
}

func taskValues(t models.Task) []any {
	return []any{t.ID, t.UserID, t.Title, t.Description, t.Deadline, t.Completed, t.CreatedAt, t.UpdatedAt}
}

func userValues(u models.User) []any {
	return []any{u.ID, u.Email, u.PasswordHash, u.CreatedAt, u.UpdatedAt}
}

func scanInto(values []any, dest []any) error {
	if len(values) != len(dest) {
		return fmt.Errorf("fakeDB: %d values for %d destinations", len(values), len(dest))
	}
	for i, d := range dest {
		target := reflect.ValueOf(d).Elem()
		value := reflect.ValueOf(values[i])
		if !value.Type().AssignableTo(target.Type()) {
			return fmt.Errorf("fakeDB: cannot scan %s into %s", value.Type(), target.Type())
		}
		target.Set(value)
	}
	return nil
}

type fakeRow struct {
	values []any
	err    error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	return scanInto(r.values, dest)
}

type fakeRows struct {
	rows [][]any
	pos  int
}

func (r *fakeRows) Close()                                       {}
func (r *fakeRows) Err() error                                   { return nil }
func (r *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.NewCommandTag("SELECT") }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *fakeRows) RawValues() [][]byte                          { return nil }
func (r *fakeRows) Conn() *pgx.Conn                              { return nil }

func (r *fakeRows) Next() bool {
	r.pos++
	return r.pos < len(r.rows)
}

func (r *fakeRows) Scan(dest ...any) error {
	return scanInto(r.rows[r.pos], dest)
}

func (r *fakeRows) Values() ([]any, error) {
	return r.rows[r.pos], nil
}
