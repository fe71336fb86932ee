package cloudsync

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"taskreward/internal/logx"
	"taskreward/internal/notify"
	"taskreward/internal/store"
)

// DefaultInterval is how often dirty state is pushed.
const DefaultInterval = 5 * time.Minute

type Options struct {
	Store    *store.Store
	Client   *Client
	Tokens   *TokenStore
	Notifier notify.Notifier
	Logger   *log.Logger
	Interval time.Duration
	Location *time.Location
	Timeout  time.Duration
	Now      func() time.Time
}

type Status struct {
	Enabled   bool       `json:"enabled"`
	LoggedIn  bool       `json:"loggedIn"`
	Dirty     bool       `json:"dirty"`
	InFlight  int        `json:"inFlight"`
	LastSync  *time.Time `json:"lastSync,omitempty"`
	LastError string     `json:"lastError,omitempty"`
}

// Syncer pushes local state to the cloud. Pushes may overlap; each takes a
// sequence number together with its export, and a completion only counts if
// no later-started push has already completed. A stale completion means the
// cloud now holds an older copy, so the store is flagged dirty again.
type Syncer struct {
	store    *store.Store
	client   *Client
	tokens   *TokenStore
	notifier notify.Notifier
	logger   *log.Logger
	interval time.Duration
	timeout  time.Duration
	now      func() time.Time
	cron     *cron.Cron

	mu       sync.Mutex
	seq      uint64
	applied  uint64
	inFlight int
	lastErr  string

	// store version of the export behind applied
	appliedVersion uint64
}

func New(opts Options) *Syncer {
	s := &Syncer{
		store:    opts.Store,
		client:   opts.Client,
		tokens:   opts.Tokens,
		notifier: opts.Notifier,
		logger:   opts.Logger,
		interval: opts.Interval,
		timeout:  opts.Timeout,
		now:      opts.Now,
	}
	if s.interval <= 0 {
		s.interval = DefaultInterval
	}
	if s.timeout <= 0 {
		s.timeout = 30 * time.Second
	}
	if s.logger == nil {
		s.logger = log.Default()
	}
	if s.notifier == nil {
		s.notifier = notify.Discard{}
	}
	if s.now == nil {
		s.now = time.Now
	}
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	s.cron = cron.New(cron.WithLocation(loc), cron.WithSeconds())
	return s
}

func (s *Syncer) token() (string, error) {
	if s.client == nil {
		return "", ErrDisabled
	}
	if s.tokens == nil {
		return "", ErrNotLoggedIn
	}
	tok, err := s.tokens.Token()
	if err != nil {
		return "", fmt.Errorf("load token: %w", err)
	}
	if tok == "" {
		return "", ErrNotLoggedIn
	}
	return tok, nil
}

// LoadInitial pulls the cloud copy once and overrides local collections with
// every non-empty remote one.
func (s *Syncer) LoadInitial(ctx context.Context) error {
	tok, err := s.token()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	data, err := s.client.Pull(ctx, tok)
	if err != nil {
		s.fail("pull", err)
		return err
	}
	s.store.ApplyRemote(ToRemote(data))
	logx.Info(s.logger, "sync_pulled", logx.Fields{
		"projects":   len(data.Projects),
		"categories": len(data.Categories),
		"tasks":      len(data.Tasks),
	})
	return nil
}

// SyncNow pushes the current state regardless of the dirty flag.
func (s *Syncer) SyncNow(ctx context.Context) error {
	tok, err := s.token()
	if err != nil {
		return err
	}

	s.mu.Lock()
	exp := s.store.Export()
	s.seq++
	seq := s.seq
	s.inFlight++
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	err = s.client.Push(ctx, tok, ToSyncRequest(exp))

	s.mu.Lock()
	s.inFlight--
	if err != nil {
		s.mu.Unlock()
		s.fail("push", err)
		return err
	}
	stale := seq <= s.applied
	overwrote := stale && exp.Version != s.appliedVersion
	if !stale {
		s.applied = seq
		s.appliedVersion = exp.Version
		s.lastErr = ""
	}
	s.mu.Unlock()

	if stale {
		logx.Warn(s.logger, "sync_stale_completion", logx.Fields{"seq": seq, "version": exp.Version, "repush": overwrote})
		if overwrote {
			s.store.MarkDirty()
		}
		return nil
	}
	s.store.MarkSynced(s.now(), exp.Version)
	logx.Info(s.logger, "sync_pushed", logx.Fields{"seq": seq, "version": exp.Version, "tasks": len(exp.Tasks)})
	notify.Success(s.notifier, "Data synced", "")
	return nil
}

// syncIfDirty is the periodic job.
func (s *Syncer) syncIfDirty() {
	if !s.store.Dirty() {
		return
	}
	err := s.SyncNow(context.Background())
	if errors.Is(err, ErrNotLoggedIn) {
		logx.Info(s.logger, "sync_skipped", logx.Fields{"reason": "not logged in"})
	}
}

func (s *Syncer) fail(op string, err error) {
	s.mu.Lock()
	s.lastErr = err.Error()
	s.mu.Unlock()
	logx.Error(s.logger, "sync_failed", err, logx.Fields{"op": op})
	notify.Error(s.notifier, "Sync failed", err.Error())
}

// Start schedules the periodic push.
func (s *Syncer) Start() error {
	secs := int(s.interval / time.Second)
	if secs <= 0 {
		secs = 1
	}
	if _, err := s.cron.AddFunc(fmt.Sprintf("@every %ds", secs), s.syncIfDirty); err != nil {
		return fmt.Errorf("schedule sync: %w", err)
	}
	s.cron.Start()
	return nil
}

// Stop waits for a running periodic push to finish.
func (s *Syncer) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func (s *Syncer) Status() Status {
	st := Status{Enabled: s.client != nil, Dirty: s.store.Dirty()}
	if tok, err := s.token(); err == nil && tok != "" {
		st.LoggedIn = true
	}
	if at, ok := s.store.LastSync(); ok {
		st.LastSync = &at
	}
	s.mu.Lock()
	st.InFlight = s.inFlight
	st.LastError = s.lastErr
	s.mu.Unlock()
	return st
}
