// Package validation checks the raw task form before anything is written.
package validation

import (
	"regexp"
	"time"
)

const (
	MsgInvalidDate     = "Please enter a valid date."
	MsgInvalidDateTime = "The date and time are not valid."
	MsgPastDateTime    = "The date and time cannot be in the past."
	MsgMissingFields   = "Please fill in the title and description."
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// Date inputs submit HH:MM, some browsers add seconds.
var deadlineLayouts = []string{
	dateLayout + "T" + timeLayout,
	dateLayout + "T" + timeLayout + ":05",
}

var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// ValidateDeadline returns the message for the first rule the date/time
// pair breaks, or "" when it is usable as a new deadline.
func ValidateDeadline(date, clock string, now time.Time, loc *time.Location) string {
	if !datePattern.MatchString(date) {
		return MsgInvalidDate
	}
	deadline, err := ParseDeadline(date, clock, loc)
	if err != nil {
		return MsgInvalidDateTime
	}
	if deadline.Before(now) {
		return MsgPastDateTime
	}
	return ""
}

// ParseDeadline combines a YYYY-MM-DD date and a HH:MM time into an instant in loc.
func ParseDeadline(date, clock string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	value := date + "T" + clock

	var err error
	for _, layout := range deadlineLayouts {
		var t time.Time
		t, err = time.ParseInLocation(layout, value, loc)
		if err == nil {
			return t, nil
		}
	}
	return time.Time{}, err
}

// FormatDeadline splits an instant into the date and time strings the form uses.
func FormatDeadline(deadline time.Time, loc *time.Location) (date, clock string) {
	if loc == nil {
		loc = time.Local
	}
	local := deadline.In(loc)
	return local.Format(dateLayout), local.Format(timeLayout)
}

// CheckRequired reports a missing title or description.
func CheckRequired(title, description string) string {
	if title == "" || description == "" {
		return MsgMissingFields
	}
	return ""
}

// ValidateForm runs the submit checks in order. dateErr and fieldErr are
// mutually exclusive; when both are empty deadline holds the parsed instant.
func ValidateForm(date, clock, title, description string, now time.Time, loc *time.Location) (deadline time.Time, dateErr, fieldErr string) {
	if dateErr = ValidateDeadline(date, clock, now, loc); dateErr != "" {
		return time.Time{}, dateErr, ""
	}
	if fieldErr = CheckRequired(title, description); fieldErr != "" {
		return time.Time{}, "", fieldErr
	}
	deadline, _ = ParseDeadline(date, clock, loc)
	return deadline, "", ""
}
