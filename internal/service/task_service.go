package service

import (
	"context"
	"errors"
	"fmt"

	"wavenote-api/internal/metrics"
	"wavenote-api/internal/models"
	"wavenote-api/internal/repository"

	"github.com/google/uuid"
)

var ErrTaskNotFound = errors.New("task not found")

// TaskService translates task actions into store writes. A uuid.Nil user
// means no session is established: every method is then a silent no-op.
type TaskService interface {
	ListTasks(ctx context.Context, userID uuid.UUID) ([]models.Task, error)
	GetTask(ctx context.Context, userID, id uuid.UUID) (*models.Task, error)
	CreateTask(ctx context.Context, userID uuid.UUID, fields models.TaskFields) (*models.Task, error)
	UpdateTask(ctx context.Context, userID, id uuid.UUID, fields models.TaskFields) (*models.Task, error)
	ToggleCompletion(ctx context.Context, userID, id uuid.UUID) (*models.Task, error)
	DeleteTask(ctx context.Context, userID, id uuid.UUID) error
	DuplicateTask(ctx context.Context, userID, id uuid.UUID) (*models.Task, error)
}

type taskService struct {
	repo repository.TaskRepository
}

func NewTaskService(repo repository.TaskRepository) TaskService {
	return &taskService{repo: repo}
}

func (s *taskService) ListTasks(ctx context.Context, userID uuid.UUID) ([]models.Task, error) {
	if userID == uuid.Nil {
		return nil, nil
	}
	return s.repo.FindByUserID(ctx, userID)
}

func (s *taskService) GetTask(ctx context.Context, userID, id uuid.UUID) (*models.Task, error) {
	if userID == uuid.Nil {
		return nil, nil
	}
	task, err := s.repo.FindByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, ErrTaskNotFound
	}
	return task, nil
}

func (s *taskService) CreateTask(ctx context.Context, userID uuid.UUID, fields models.TaskFields) (task *models.Task, err error) {
	if userID == uuid.Nil {
		return nil, nil
	}
	defer func() { metrics.ObserveMutation("create", err) }()

	task = &models.Task{
		UserID:      userID,
		Title:       fields.Title,
		Description: fields.Description,
		Deadline:    fields.Deadline,
	}
	if fields.Completed != nil {
		task.Completed = *fields.Completed
	}

	if err := s.repo.Create(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *taskService) UpdateTask(ctx context.Context, userID, id uuid.UUID, fields models.TaskFields) (task *models.Task, err error) {
	if userID == uuid.Nil {
		return nil, nil
	}
	defer func() { metrics.ObserveMutation("update", err) }()

	task, err = s.GetTask(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	task.Title = fields.Title
	task.Description = fields.Description
	task.Deadline = fields.Deadline
	if fields.Completed != nil {
		task.Completed = *fields.Completed
	}

	if err := s.write(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *taskService) ToggleCompletion(ctx context.Context, userID, id uuid.UUID) (task *models.Task, err error) {
	if userID == uuid.Nil {
		return nil, nil
	}
	defer func() { metrics.ObserveMutation("toggle", err) }()

	task, err = s.GetTask(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	task.Completed = !task.Completed
	if err := s.write(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *taskService) DeleteTask(ctx context.Context, userID, id uuid.UUID) (err error) {
	if userID == uuid.Nil {
		return nil
	}
	defer func() { metrics.ObserveMutation("delete", err) }()

	if err := s.repo.Delete(ctx, userID, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTaskNotFound
		}
		return err
	}
	return nil
}

// DuplicateTask stores a copy of every user-visible field of the source, completion included.
func (s *taskService) DuplicateTask(ctx context.Context, userID, id uuid.UUID) (task *models.Task, err error) {
	if userID == uuid.Nil {
		return nil, nil
	}
	defer func() { metrics.ObserveMutation("duplicate", err) }()

	source, err := s.GetTask(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	task = &models.Task{
		UserID:      userID,
		Title:       source.Title,
		Description: source.Description,
		Deadline:    source.Deadline,
		Completed:   source.Completed,
	}
	if err := s.repo.Create(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *taskService) write(ctx context.Context, task *models.Task) error {
	if err := s.repo.Update(ctx, task); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("write task %s: %w", task.ID, err)
	}
	return nil
}
