package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"voltcart/internal/http/handlers"
	"voltcart/internal/identity"
	"voltcart/internal/repos"
	"voltcart/internal/services"
)

const (
	shutdownGrace = 10 * time.Second
	pruneEvery    = time.Hour
)

func newServeCommand() *cobra.Command {
	var port string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, port)
		},
	}
	cmd.Flags().StringVar(&port, "port", "", "listen port (overrides PORT)")
	return cmd
}

func serve(ctx context.Context, port string) error {
	rt, err := openRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.close()
	if port != "" {
		rt.cfg.Port = port
	}

	users := repos.NewUserRepo(rt.db)
	idp := identity.NewLocal(users, rt.cfg.SigningSecret(), identity.WithTTL(rt.cfg.TokenTTL))
	auth := services.NewAuthService(idp, rt.log)
	unsubscribe := auth.OnAuthStateChange(func(ev identity.Event, s *identity.Session) {
		f := map[string]any{"event": string(ev)}
		if s != nil && s.User != nil {
			f["user_id"] = s.User.ID
		}
		rt.log.Info(nil, "auth state change", f)
	})
	defer unsubscribe()

	go pruneSessions(ctx, users, rt)

	app := handlers.NewApp(handlers.NewDeps(rt.db, rt.cfg, auth, rt.log))

	errc := make(chan error, 1)
	go func() {
		rt.log.Info(nil, "listening", map[string]any{"port": rt.cfg.Port})
		errc <- app.Listen(":" + rt.cfg.Port)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	rt.log.Info(nil, "shutting down", nil)
	return app.ShutdownWithTimeout(shutdownGrace)
}

// pruneSessions drops expired sign-in sessions until ctx ends.
func pruneSessions(ctx context.Context, users *repos.UserRepo, rt *runtime) {
	t := time.NewTicker(pruneEvery)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			n, err := users.PruneSessions(ctx)
			if err != nil {
				rt.log.Error(nil, "session prune failed", err, nil)
				continue
			}
			rt.log.Debug(nil, "sessions pruned", map[string]any{"removed": n})
		}
	}
}
