// Package dashboard keeps each signed-in user's task board: the fetched
// task list and the add/edit dialog. Mutations go through the task service
// and their results are applied to the local list instead of re-reading
// the whole collection; a failed write triggers one reconciling reload.
package dashboard

import (
	"context"
	"log"
	"slices"
	"sync"
	"time"

	"wavenote-api/internal/metrics"
	"wavenote-api/internal/models"
	"wavenote-api/internal/service"

	"github.com/google/uuid"
)

type Clock interface {
	Now() time.Time
}

type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

// View is what a client renders.
type View struct {
	Uncompleted []models.Task `json:"uncompleted"`
	Completed   []models.Task `json:"completed"`
	Dialog      DialogState   `json:"dialog"`
}

// SubmitResult reports what a dialog submit did. Saved is nil when the form
// was rejected; the dialog messages say why.
type SubmitResult struct {
	Saved *models.Task
	View  View
}

type Options struct {
	Clock    Clock
	Location *time.Location
	Logger   *log.Logger
}

type Dashboard struct {
	mu     sync.Mutex
	userID uuid.UUID
	tasks  service.TaskService
	list   []models.Task
	dialog Dialog

	clock  Clock
	loc    *time.Location
	logger *log.Logger
}

// New builds a dashboard acting for userID. With uuid.Nil every action is
// a no-op, mirroring a signed-out session.
func New(userID uuid.UUID, tasks service.TaskService, opts Options) *Dashboard {
	if opts.Clock == nil {
		opts.Clock = RealClock{}
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	return &Dashboard{
		userID: userID,
		tasks:  tasks,
		list:   []models.Task{},
		clock:  opts.Clock,
		loc:    opts.Location,
		logger: opts.Logger,
	}
}

func (d *Dashboard) UserID() uuid.UUID {
	return d.userID
}

// Refresh replaces the local list with the stored collection.
func (d *Dashboard) Refresh(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.refreshLocked(ctx)
}

func (d *Dashboard) refreshLocked(ctx context.Context) error {
	if d.userID == uuid.Nil {
		return nil
	}
	tasks, err := d.tasks.ListTasks(ctx, d.userID)
	if err != nil {
		return err
	}
	d.list = append([]models.Task{}, tasks...)
	return nil
}

// reconcile is called after a failed write; the local list may no longer
// match the store.
func (d *Dashboard) reconcile(ctx context.Context, cause error) {
	if err := d.refreshLocked(ctx); err != nil {
		d.logger.Printf("Dashboard %s: reload after %v failed: %v", d.userID, cause, err)
	}
}

func (d *Dashboard) View() View {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.viewLocked()
}

func (d *Dashboard) viewLocked() View {
	uncompleted, completed := service.PartitionTasks(d.list)
	return View{
		Uncompleted: uncompleted,
		Completed:   completed,
		Dialog:      d.dialog.State(),
	}
}

func (d *Dashboard) Tasks() []models.Task {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]models.Task{}, d.list...)
}

func (d *Dashboard) OpenForAdd() View {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.dialog.OpenForAdd()
	return d.viewLocked()
}

// OpenForEdit opens the dialog on a task from the local list.
func (d *Dashboard) OpenForEdit(id uuid.UUID) (View, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	i := d.indexOf(id)
	if i < 0 {
		return View{}, service.ErrTaskNotFound
	}
	d.dialog.OpenForEdit(d.list[i], d.loc)
	return d.viewLocked(), nil
}

func (d *Dashboard) CloseDialog() View {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.dialog.Close()
	return d.viewLocked()
}

func (d *Dashboard) ChangeField(name, value string) (View, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.dialog.OnFieldChange(name, value); err != nil {
		return View{}, err
	}
	return d.viewLocked(), nil
}

// Submit validates the dialog and, when it passes, creates or updates the
// task and resets the dialog. A store error leaves the dialog as it was.
func (d *Dashboard) Submit(ctx context.Context) (SubmitResult, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.userID == uuid.Nil {
		return SubmitResult{View: d.viewLocked()}, nil
	}

	fields, ok := d.dialog.validate(d.clock.Now(), d.loc)
	if !ok {
		state := d.dialog.State()
		reason := "missing_fields"
		if state.DateError != "" {
			reason = "deadline"
		}
		metrics.FormRejections.WithLabelValues(reason).Inc()
		return SubmitResult{View: d.viewLocked()}, nil
	}

	var (
		saved *models.Task
		err   error
	)
	state := d.dialog.State()
	if state.IsEditing && state.TaskToEdit != nil {
		saved, err = d.tasks.UpdateTask(ctx, d.userID, state.TaskToEdit.ID, fields)
	} else {
		saved, err = d.tasks.CreateTask(ctx, d.userID, fields)
	}
	if err != nil {
		d.reconcile(ctx, err)
		return SubmitResult{}, err
	}

	d.apply(saved)
	d.dialog.reset()
	return SubmitResult{Saved: saved, View: d.viewLocked()}, nil
}

func (d *Dashboard) Toggle(ctx context.Context, id uuid.UUID) (View, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.userID == uuid.Nil {
		return d.viewLocked(), nil
	}
	task, err := d.tasks.ToggleCompletion(ctx, d.userID, id)
	if err != nil {
		d.reconcile(ctx, err)
		return View{}, err
	}
	d.apply(task)
	return d.viewLocked(), nil
}

func (d *Dashboard) Delete(ctx context.Context, id uuid.UUID) (View, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.userID == uuid.Nil {
		return d.viewLocked(), nil
	}
	if err := d.tasks.DeleteTask(ctx, d.userID, id); err != nil {
		d.reconcile(ctx, err)
		return View{}, err
	}
	if i := d.indexOf(id); i >= 0 {
		d.list = slices.Delete(d.list, i, i+1)
	}
	return d.viewLocked(), nil
}

func (d *Dashboard) Duplicate(ctx context.Context, id uuid.UUID) (View, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.userID == uuid.Nil {
		return d.viewLocked(), nil
	}
	task, err := d.tasks.DuplicateTask(ctx, d.userID, id)
	if err != nil {
		d.reconcile(ctx, err)
		return View{}, err
	}
	d.apply(task)
	return d.viewLocked(), nil
}

// apply puts a written task into the local list: in place when it is
// already there, appended otherwise (new tasks sort last in the store too).
func (d *Dashboard) apply(task *models.Task) {
	if task == nil {
		return
	}
	if i := d.indexOf(task.ID); i >= 0 {
		d.list[i] = *task
		return
	}
	d.list = append(d.list, *task)
}

func (d *Dashboard) indexOf(id uuid.UUID) int {
	return slices.IndexFunc(d.list, func(t models.Task) bool { return t.ID == id })
}
