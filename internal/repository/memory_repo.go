package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"wavenote-api/internal/models"

	"github.com/google/uuid"
)

// MemoryTaskRepository keeps tasks in insertion order, which is the order
// FindByUserID returns them in.
type MemoryTaskRepository struct {
	mu    sync.RWMutex
	tasks map[uuid.UUID]models.Task
	order []uuid.UUID
}

func NewMemoryTaskRepository() *MemoryTaskRepository {
	return &MemoryTaskRepository{
		tasks: make(map[uuid.UUID]models.Task),
	}
}

func (r *MemoryTaskRepository) Create(ctx context.Context, task *models.Task) error {
	_ = ctx

	now := time.Now()
	task.ID = uuid.New()
	task.CreatedAt = now
	task.UpdatedAt = now

	r.mu.Lock()
	r.tasks[task.ID] = *task
	r.order = append(r.order, task.ID)
	r.mu.Unlock()

	return nil
}

func (r *MemoryTaskRepository) FindByID(ctx context.Context, userID, id uuid.UUID) (*models.Task, error) {
	_ = ctx

	r.mu.RLock()
	task, ok := r.tasks[id]
	r.mu.RUnlock()

	if !ok || task.UserID != userID {
		return nil, nil
	}
	return &task, nil
}

func (r *MemoryTaskRepository) FindByUserID(ctx context.Context, userID uuid.UUID) ([]models.Task, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	tasks := []models.Task{}
	for _, id := range r.order {
		if task := r.tasks[id]; task.UserID == userID {
			tasks = append(tasks, task)
		}
	}
	return tasks, nil
}

func (r *MemoryTaskRepository) Update(ctx context.Context, task *models.Task) error {
	_ = ctx

	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.tasks[task.ID]
	if !ok || stored.UserID != task.UserID {
		return fmt.Errorf("task %s: %w", task.ID, ErrNotFound)
	}

	task.CreatedAt = stored.CreatedAt
	task.UpdatedAt = time.Now()
	r.tasks[task.ID] = *task
	return nil
}

func (r *MemoryTaskRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	_ = ctx

	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.tasks[id]
	if !ok || stored.UserID != userID {
		return fmt.Errorf("task %s: %w", id, ErrNotFound)
	}

	delete(r.tasks, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

type MemoryUserRepository struct {
	mu      sync.RWMutex
	byID    map[uuid.UUID]models.User
	byEmail map[string]uuid.UUID
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		byID:    make(map[uuid.UUID]models.User),
		byEmail: make(map[string]uuid.UUID),
	}
}

func (r *MemoryUserRepository) Create(ctx context.Context, user *models.User) error {
	_ = ctx

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byEmail[user.Email]; exists {
		return fmt.Errorf("user %s: %w", user.Email, ErrDuplicated)
	}

	now := time.Now()
	user.ID = uuid.New()
	user.CreatedAt = now
	user.UpdatedAt = now

	r.byID[user.ID] = *user
	r.byEmail[user.Email] = user.ID
	return nil
}

func (r *MemoryUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	return &user, nil
}

func (r *MemoryUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return nil, nil
	}
	user := r.byID[id]
	return &user, nil
}
