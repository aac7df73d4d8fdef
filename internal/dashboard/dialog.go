package dashboard

import (
	"errors"
	"time"

	"wavenote-api/internal/models"
	"wavenote-api/internal/validation"
)

var ErrUnknownField = errors.New("unknown form field")

const (
	FieldTitle       = "title"
	FieldDescription = "description"
	FieldDate        = "date"
	FieldTime        = "time"
)

type DialogState struct {
	Open       bool            `json:"open"`
	IsEditing  bool            `json:"is_editing"`
	TaskToEdit *models.Task    `json:"task_to_edit"`
	FormData   models.TaskForm `json:"form_data"`
	Error      string          `json:"error"`
	DateError  string          `json:"date_error"`
}

// Dialog is the add/edit task form.
type Dialog struct {
	state DialogState
}

func (d *Dialog) State() DialogState {
	state := d.state
	if state.TaskToEdit != nil {
		task := *state.TaskToEdit
		state.TaskToEdit = &task
	}
	return state
}

func (d *Dialog) OpenForAdd() {
	d.state = DialogState{Open: true}
}

// OpenForEdit fills the form from task, reading the deadline in loc.
func (d *Dialog) OpenForEdit(task models.Task, loc *time.Location) {
	date, clock := validation.FormatDeadline(task.Deadline, loc)
	d.state = DialogState{
		Open:       true,
		IsEditing:  true,
		TaskToEdit: &task,
		FormData: models.TaskForm{
			Title:       task.Title,
			Description: task.Description,
			Date:        date,
			Time:        clock,
		},
	}
}

// Close hides the dialog. Form values and messages stay as they were.
func (d *Dialog) Close() {
	d.state.Open = false
}

// OnFieldChange edits one form field. Touching the date or time dismisses
// the date error; the general error stays until the next submit.
func (d *Dialog) OnFieldChange(name, value string) error {
	switch name {
	case FieldTitle:
		d.state.FormData.Title = value
	case FieldDescription:
		d.state.FormData.Description = value
	case FieldDate:
		d.state.FormData.Date = value
		d.state.DateError = ""
	case FieldTime:
		d.state.FormData.Time = value
		d.state.DateError = ""
	default:
		return ErrUnknownField
	}
	return nil
}

// validate runs the submit checks and records any message on the dialog.
func (d *Dialog) validate(now time.Time, loc *time.Location) (models.TaskFields, bool) {
	form := d.state.FormData
	deadline, dateErr, fieldErr := validation.ValidateForm(form.Date, form.Time, form.Title, form.Description, now, loc)
	if dateErr != "" {
		d.state.DateError = dateErr
		return models.TaskFields{}, false
	}
	if fieldErr != "" {
		d.state.Error = fieldErr
		return models.TaskFields{}, false
	}

	fields := models.TaskFields{
		Title:       form.Title,
		Description: form.Description,
		Deadline:    deadline,
	}
	if d.state.IsEditing && d.state.TaskToEdit != nil {
		completed := d.state.TaskToEdit.Completed
		fields.Completed = &completed
	}
	return fields, true
}

func (d *Dialog) reset() {
	d.state = DialogState{}
}
