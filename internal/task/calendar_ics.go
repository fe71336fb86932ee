package task

import (
	"fmt"
	"strings"
	"time"

	"taskreward/internal/model"
	"taskreward/internal/reward"
)

const icsDateLayout = "20060102"

var errNoSchedule = fmt.Errorf("%w: task has no scheduled date", model.ErrValidation)

// BuildCalendarICS builds one all-day event per scheduled, uncompleted task.
// Tasks without a scheduled date are skipped.
func BuildCalendarICS(tasks []model.Task, now time.Time) string {
	lines := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//TaskReward//Task Export//EN",
		"CALSCALE:GREGORIAN",
		"METHOD:PUBLISH",
	}
	for _, t := range tasks {
		if t.ScheduledDate == nil || t.Completed {
			continue
		}
		lines = append(lines, eventLines(t, now)...)
	}
	lines = append(lines, "END:VCALENDAR", "")
	return strings.Join(lines, "\r\n")
}

// BuildTaskCalendarICS exports a single task. A scheduled date is required.
func BuildTaskCalendarICS(t model.Task, now time.Time) (string, error) {
	if t.ScheduledDate == nil {
		return "", errNoSchedule
	}
	lines := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//TaskReward//Task Export//EN",
		"CALSCALE:GREGORIAN",
		"METHOD:PUBLISH",
	}
	lines = append(lines, eventLines(t, now)...)
	lines = append(lines, "END:VCALENDAR", "")
	return strings.Join(lines, "\r\n"), nil
}

func eventLines(t model.Task, now time.Time) []string {
	day := t.ScheduledDate.UTC()
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 1)

	title := strings.TrimSpace(t.Title)
	if title == "" {
		title = "Task"
	}

	uid := fmt.Sprintf("%s@taskreward", strings.TrimSpace(t.ID))
	if strings.TrimSpace(t.ID) == "" {
		uid = fmt.Sprintf("task-export-%d@taskreward", now.UnixNano())
	}

	lines := []string{
		"BEGIN:VEVENT",
		"UID:" + escapeICSText(uid),
		"DTSTAMP:" + now.UTC().Format("20060102T150405Z"),
		"SUMMARY:" + escapeICSText(title),
		"DTSTART;VALUE=DATE:" + start.Format(icsDateLayout),
		"DTEND;VALUE=DATE:" + end.Format(icsDateLayout),
		fmt.Sprintf("PRIORITY:%d", icsPriority(t.Priority)),
	}
	desc := strings.TrimSpace(t.Description)
	if desc != "" {
		desc += "\n"
	}
	desc += "Reward: " + reward.Describe(t)
	lines = append(lines, "DESCRIPTION:"+escapeICSText(desc), "END:VEVENT")
	return lines
}

// icsPriority maps 1..4 onto the RFC 5545 scale where 1 is highest.
func icsPriority(p model.Priority) int {
	switch p.Normalize() {
	case model.PriorityUrgent:
		return 1
	case model.PriorityHigh:
		return 3
	case model.PriorityMedium:
		return 5
	default:
		return 7
	}
}

func escapeICSText(s string) string {
	repl := strings.NewReplacer(
		"\\", "\\\\",
		";", "\\;",
		",", "\\,",
		"\r\n", "\\n",
		"\n", "\\n",
		"\r", "\\n",
	)
	return repl.Replace(s)
}
