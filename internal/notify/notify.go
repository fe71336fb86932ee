// Package notify delivers short user-facing notices, the headless stand-in
// for toast messages.
package notify

import (
	"log"
	"sync"
	"time"

	"taskreward/internal/logx"
)

type Level string

const (
	LevelSuccess Level = "success"
	LevelInfo    Level = "info"
	LevelError   Level = "error"
)

type Notice struct {
	Level       Level     `json:"level"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	At          time.Time `json:"at"`
}

// Notifier must not block the caller for long; implementations that do I/O
// should swallow and log their own failures.
type Notifier interface {
	Notify(n Notice)
}

func Success(n Notifier, title, description string) {
	send(n, LevelSuccess, title, description)
}

func Info(n Notifier, title, description string) {
	send(n, LevelInfo, title, description)
}

func Error(n Notifier, title, description string) {
	send(n, LevelError, title, description)
}

func send(n Notifier, level Level, title, description string) {
	if n == nil {
		return
	}
	n.Notify(Notice{Level: level, Title: title, Description: description, At: time.Now().UTC()})
}

// DefaultFeedSize is how many notices a Feed keeps.
const DefaultFeedSize = 50

// Feed keeps the most recent notices, newest first.
type Feed struct {
	mu      sync.RWMutex
	max     int
	notices []Notice
}

func NewFeed(max int) *Feed {
	if max <= 0 {
		max = DefaultFeedSize
	}
	return &Feed{max: max}
}

func (f *Feed) Notify(n Notice) {
	f.mu.Lock()
	defer f.mu.Unlock()
	next := make([]Notice, 0, min(len(f.notices)+1, f.max))
	next = append(next, n)
	for _, old := range f.notices {
		if len(next) == f.max {
			break
		}
		next = append(next, old)
	}
	f.notices = next
}

func (f *Feed) Recent() []Notice {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]Notice{}, f.notices...)
}

// LogNotifier writes every notice as a JSON log line.
type LogNotifier struct {
	Logger *log.Logger
}

func (l LogNotifier) Notify(n Notice) {
	logx.JSON(l.Logger, logx.Fields{
		"ts":          n.At.Format(time.RFC3339Nano),
		"level":       levelToLog(n.Level),
		"msg":         "notice",
		"title":       n.Title,
		"description": n.Description,
	})
}

func levelToLog(l Level) string {
	if l == LevelError {
		return "error"
	}
	return "info"
}

// Fanout delivers to every non-nil notifier in order.
type Fanout []Notifier

func (f Fanout) Notify(n Notice) {
	for _, x := range f {
		if x != nil {
			x.Notify(n)
		}
	}
}

// Discard drops notices.
type Discard struct{}

func (Discard) Notify(Notice) {}
