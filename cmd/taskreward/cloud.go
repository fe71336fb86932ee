package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"taskreward/internal/auth"
	"taskreward/internal/cloud"
	"taskreward/internal/logx"
)

func cloudCmd(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "cloud",
		Short: "Serve the cloud auth and data API",
		Long: `Serve POST /api/auth and GET|POST /api/data backed by cloud.db_driver.

Requires cloud.jwt_secret (or TASKREWARD_JWT_SECRET). When cloud.redis.addr is
set, revoked tokens are shared through Redis.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				a.cfg.Cloud.Addr = addr
			}
			return a.serveCloud(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides cloud.addr)")
	return cmd
}

func (a *app) serveCloud(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cc := a.cfg.Cloud
	if cc.JWTSecret == "" {
		return errors.New("cloud.jwt_secret is required")
	}

	db, err := cloud.OpenDB(cc.DBDriver, cc.DSN, a.logger)
	if err != nil {
		return err
	}
	repo := cloud.NewRepo(db)

	var revoker auth.Revoker
	if cc.Redis.Addr != "" {
		rc, err := auth.DialRedis(ctx, cc.Redis.Addr, cc.Redis.Password, cc.Redis.DB)
		if err != nil {
			return err
		}
		defer rc.Close()
		revoker = auth.NewRedisRevoker(rc)
		logx.Info(a.logger, "revocation_store", logx.Fields{"backend": "redis", "addr": cc.Redis.Addr})
	}

	svc, err := auth.NewService(repo, auth.Options{
		Secret:   cc.JWTSecret,
		TokenTTL: cc.TokenTTL,
		Revoker:  revoker,
		Logger:   a.logger,
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr: cc.Addr,
		Handler: cloud.NewRouter(cloud.RouterOptions{
			Auth:        svc,
			Repo:        repo,
			Logger:      a.logger,
			CORSOrigins: cc.CORSOrigins,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return a.listen(ctx, srv, "taskreward-cloud")
}
