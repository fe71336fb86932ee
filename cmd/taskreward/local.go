package main

import (
	"fmt"
	"time"

	"taskreward/internal/cloudsync"
	"taskreward/internal/logx"
	"taskreward/internal/notify"
	"taskreward/internal/persist"
	"taskreward/internal/store"
)

// local is the on-disk app state shared by serve, sync and report.
type local struct {
	disk   *persist.DiskStore
	store  *store.Store
	feed   *notify.Feed
	tokens *cloudsync.TokenStore
	client *cloudsync.Client
	syncer *cloudsync.Syncer
}

func (a *app) openLocal() (*local, error) {
	disk, err := persist.NewDiskStore(a.cfg.Data.Dir)
	if err != nil {
		return nil, fmt.Errorf("open data dir: %w", err)
	}

	feed := notify.NewFeed(a.cfg.Activity.FeedSize)
	notifiers := notify.Fanout{feed, notify.LogNotifier{Logger: a.logger}}
	if a.cfg.Telegram.Enabled() {
		tg, err := notify.NewTelegram(a.cfg.Telegram.Token, a.cfg.Telegram.ChatID, notify.Level(a.cfg.Telegram.MinLevel), a.logger)
		if err != nil {
			// A bad bot token should not keep the app from starting.
			logx.Error(a.logger, "telegram_disabled", err, nil)
		} else {
			notifiers = append(notifiers, tg)
		}
	}

	st, err := store.Open(store.Options{
		Persister:     disk,
		Notifier:      notifiers,
		Logger:        a.logger,
		MaxLogEntries: a.cfg.Activity.MaxEntries,
	})
	if err != nil {
		return nil, fmt.Errorf("load store: %w", err)
	}

	l := &local{disk: disk, store: st, feed: feed, tokens: cloudsync.NewTokenStore(disk)}
	if a.cfg.Sync.Enabled() {
		l.client = cloudsync.NewClient(a.cfg.Sync.AuthURL, a.cfg.Sync.DataURL, a.cfg.Sync.Timeout)
	}
	loc, err := time.LoadLocation(a.cfg.Sync.Timezone)
	if err != nil {
		return nil, err
	}
	l.syncer = cloudsync.New(cloudsync.Options{
		Store:    st,
		Client:   l.client,
		Tokens:   l.tokens,
		Notifier: notifiers,
		Logger:   a.logger,
		Interval: a.cfg.Sync.Interval,
		Location: loc,
		Timeout:  a.cfg.Sync.Timeout,
	})
	return l, nil
}

func (l *local) requireClient() (*cloudsync.Client, error) {
	if l.client == nil {
		return nil, cloudsync.ErrDisabled
	}
	return l.client, nil
}
