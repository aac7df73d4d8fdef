package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"wavenote-api/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
)

const taskListTTL = 5 * time.Minute

// TaskRepository is the per-user task collection. Every call is scoped by
// the owner so one user can never address another user's tasks.
type TaskRepository interface {
	Create(ctx context.Context, task *models.Task) error
	FindByID(ctx context.Context, userID, id uuid.UUID) (*models.Task, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) ([]models.Task, error)
	Update(ctx context.Context, task *models.Task) error
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

type taskRepository struct {
	db    DB
	cache *redis.Client
}

func NewTaskRepository(db DB, cache *redis.Client) TaskRepository {
	return &taskRepository{
		db:    db,
		cache: cache, // This can be nil
	}
}

func taskListCacheKey(userID uuid.UUID) string {
	return fmt.Sprintf("tasks:%s", userID)
}

// taskListGenKey counts writes to a user's tasks. A list read from the
// database is only cached if no write bumped the counter meanwhile.
func taskListGenKey(userID uuid.UUID) string {
	return fmt.Sprintf("tasks:gen:%s", userID)
}

// listGeneration returns the current write counter; a missing key is 0.
func (r *taskRepository) listGeneration(ctx context.Context, userID uuid.UUID) (int64, error) {
	gen, err := r.cache.Get(ctx, taskListGenKey(userID)).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return 0, fmt.Errorf("failed to read task list generation: %w", err)
	}
	return gen, nil
}

// Get tasks from Redis cache (safe with nil cache)
func (r *taskRepository) getTasksFromCache(ctx context.Context, userID uuid.UUID) ([]models.Task, error) {
	if r.cache == nil {
		return nil, nil
	}

	val, err := r.cache.Get(ctx, taskListCacheKey(userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil // Cache miss, not an error
		}
		return nil, fmt.Errorf("failed to get from cache: %w", err)
	}

	var tasks []models.Task
	if err := json.Unmarshal([]byte(val), &tasks); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached tasks: %w", err)
	}

	return tasks, nil
}

func (r *taskRepository) getTasksFromDB(ctx context.Context, userID uuid.UUID) ([]models.Task, error) {
	query := `
		SELECT id, user_id, title, description, deadline, completed, created_at, updated_at
		FROM tasks
		WHERE user_id = $1
		ORDER BY created_at, id
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		var task models.Task
		err := rows.Scan(
			&task.ID, &task.UserID, &task.Title, &task.Description,
			&task.Deadline, &task.Completed, &task.CreatedAt, &task.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, task)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return tasks, nil
}

// cacheTasks stores the list unless a write happened since gen was read.
// The WATCH makes a write landing between the check and the SET abort it.
func (r *taskRepository) cacheTasks(ctx context.Context, userID uuid.UUID, gen int64, tasks []models.Task) error {
	if r.cache == nil {
		return nil
	}

	data, err := json.Marshal(tasks)
	if err != nil {
		return fmt.Errorf("failed to marshal tasks for caching: %w", err)
	}

	genKey := taskListGenKey(userID)
	err = r.cache.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, genKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != gen {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, taskListCacheKey(userID), data, taskListTTL)
			return nil
		})
		return err
	}, genKey)
	if err != nil && !errors.Is(err, redis.TxFailedErr) {
		return fmt.Errorf("failed to cache tasks: %w", err)
	}
	return nil
}

// invalidateUserCache bumps the write counter and drops the cached list.
func (r *taskRepository) invalidateUserCache(ctx context.Context, userID uuid.UUID) {
	if r.cache == nil {
		return
	}
	_, err := r.cache.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, taskListGenKey(userID))
		pipe.Del(ctx, taskListCacheKey(userID))
		return nil
	})
	if err != nil {
		log.Printf("Failed to invalidate task cache for %s: %v", userID, err)
	}
}

// FindByUserID reads through the cache; cache failures fall back to the database.
func (r *taskRepository) FindByUserID(ctx context.Context, userID uuid.UUID) ([]models.Task, error) {
	cached, err := r.getTasksFromCache(ctx, userID)
	if err != nil {
		log.Printf("Task cache read failed for %s: %v", userID, err)
	}
	if cached != nil {
		return cached, nil
	}

	var (
		gen       int64
		cacheable = r.cache != nil
	)
	if cacheable {
		if gen, err = r.listGeneration(ctx, userID); err != nil {
			log.Printf("Task cache disabled for this read of %s: %v", userID, err)
			cacheable = false
		}
	}

	tasks, err := r.getTasksFromDB(ctx, userID)
	if err != nil {
		return nil, err
	}

	if cacheable {
		if err := r.cacheTasks(ctx, userID, gen, tasks); err != nil {
			log.Printf("Task cache write failed for %s: %v", userID, err)
		}
	}
	return tasks, nil
}

func (r *taskRepository) Create(ctx context.Context, task *models.Task) error {
	query := `
		INSERT INTO tasks (user_id, title, description, deadline, completed)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRow(
		ctx,
		query,
		task.UserID, task.Title, task.Description, task.Deadline, task.Completed,
	).Scan(&task.ID, &task.CreatedAt, &task.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}

	r.invalidateUserCache(ctx, task.UserID)
	return nil
}

func (r *taskRepository) FindByID(ctx context.Context, userID, id uuid.UUID) (*models.Task, error) {
	query := `
		SELECT id, user_id, title, description, deadline, completed, created_at, updated_at
		FROM tasks
		WHERE id = $1 AND user_id = $2
	`

	var task models.Task
	err := r.db.QueryRow(ctx, query, id, userID).Scan(
		&task.ID, &task.UserID, &task.Title, &task.Description,
		&task.Deadline, &task.Completed, &task.CreatedAt, &task.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	return &task, nil
}

func (r *taskRepository) Update(ctx context.Context, task *models.Task) error {
	query := `
		UPDATE tasks
		SET title = $3, description = $4, deadline = $5, completed = $6,
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = $1 AND user_id = $2
		RETURNING updated_at
	`

	err := r.db.QueryRow(
		ctx,
		query,
		task.ID, task.UserID, task.Title, task.Description,
		task.Deadline, task.Completed,
	).Scan(&task.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("task %s: %w", task.ID, ErrNotFound)
		}
		return fmt.Errorf("failed to update task: %w", err)
	}

	r.invalidateUserCache(ctx, task.UserID)
	return nil
}

func (r *taskRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	query := `DELETE FROM tasks WHERE id = $1 AND user_id = $2`

	result, err := r.db.Exec(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("task %s: %w", id, ErrNotFound)
	}

	r.invalidateUserCache(ctx, userID)
	return nil
}
