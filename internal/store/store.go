// Package store is the entity store: it owns every collection, funnels each
// mutation through one commit per collection, and records the activity log.
package store

import (
	"log"
	"sync"
	"time"

	"taskreward/internal/activity"
	"taskreward/internal/board"
	"taskreward/internal/logx"
	"taskreward/internal/model"
	"taskreward/internal/notify"
	"taskreward/internal/persist"
)

const (
	ViewList = "list"
	ViewGrid = "grid"
)

type Options struct {
	Persister persist.Persister
	Notifier  notify.Notifier
	Logger    *log.Logger

	// MaxLogEntries caps the activity log; 0 means activity.DefaultMaxEntries.
	MaxLogEntries int

	Now func() time.Time
}

// Prefs are UI preferences. They are persisted but never pushed to the cloud.
type Prefs struct {
	DarkMode          bool   `json:"darkMode"`
	TaskViewMode      string `json:"taskViewMode"`
	SelectedProjectID string `json:"selectedProjectId"`
}

// Store serialises all handlers behind one mutex; each handler reads the
// current collection, computes the next one and replaces it whole.
type Store struct {
	mu       sync.Mutex
	p        persist.Persister
	notifier notify.Notifier
	logger   *log.Logger
	now      func() time.Time
	maxLog   int
	drag     *board.Engine

	tasks      []model.Task
	categories []model.Category
	projects   []model.Project
	log        activity.Log
	rewards    model.EarnedRewards
	prefs      Prefs
	lastSync   time.Time

	version uint64
	dirty   bool
}

// New returns a store seeded with the defaults of a first start.
func New(opts Options) *Store {
	s := &Store{
		p:        opts.Persister,
		notifier: opts.Notifier,
		logger:   opts.Logger,
		now:      opts.Now,
		maxLog:   opts.MaxLogEntries,
		drag:     board.NewEngine(),

		tasks:      []model.Task{},
		categories: []model.Category{},
		projects:   []model.Project{model.DefaultProject()},
		log:        activity.Log{},
		prefs: Prefs{
			DarkMode:          true,
			TaskViewMode:      ViewList,
			SelectedProjectID: model.DefaultProjectID,
		},
	}
	if s.notifier == nil {
		s.notifier = notify.Discard{}
	}
	if s.logger == nil {
		s.logger = logx.Discard()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.maxLog <= 0 {
		s.maxLog = activity.DefaultMaxEntries
	}
	return s
}

// Open builds a store and loads whatever the persister already holds.
func Open(opts Options) (*Store, error) {
	s := New(opts)
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) stamp() time.Time {
	return s.now().UTC()
}

// appendLog prepends an entry to the activity log and commits it.
func (s *Store) appendLog(action, description string, undo activity.Undo) activity.Entry {
	e := activity.Entry{
		ID:          model.NewID("log"),
		Action:      action,
		Description: description,
		Timestamp:   s.stamp(),
		Undo:        undo,
	}
	s.commitLog(s.log.Prepend(e).Trim(s.maxLog))
	return e
}

func (s *Store) reject(err error) error {
	notify.Error(s.notifier, errorTitle(err), "")
	return err
}
