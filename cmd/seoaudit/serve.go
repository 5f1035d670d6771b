package main

import (
	"errors"
	"net/url"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/raysh454/seoaudit/internal/demo"
	"github.com/raysh454/seoaudit/internal/logging"
	"github.com/raysh454/seoaudit/internal/server"
)

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the local console API",
		Long: `Serve starts the console API: it starts audits, streams job progress over
a websocket, and serves results, exports, history and comparisons.
Swagger UI is available at /swagger/index.html.

With --with-demo the demo audit API is started alongside and the console
talks to it, so the whole flow runs without a backend.`,
		Args: cobra.NoArgs,
		RunE: runServeCmd,
	}

	cmd.Flags().StringP("addr", "a", "", "Console listen address (default: server.addr from config)")
	cmd.Flags().Bool("with-demo", false, "Also run the demo audit API and use it as the backend")
	cmd.Flags().String("demo-addr", "", "Demo audit API listen address (default: demo.addr from config)")

	return cmd
}

func runServeCmd(cmd *cobra.Command, _ []string) error {
	addr, err := cmd.Flags().GetString("addr")
	if err != nil {
		return err
	}
	withDemo, err := cmd.Flags().GetBool("with-demo")
	if err != nil {
		return err
	}
	demoAddr, err := cmd.Flags().GetString("demo-addr")
	if err != nil {
		return err
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if addr != "" {
		cfg.Server.Addr = addr
	}
	if withDemo {
		if demoAddr != "" {
			cfg.Demo.Addr = demoAddr
		}
		cfg.API.Offline = false
		cfg.API.BaseURL = localBase(cfg.Demo.Addr)
	}

	a, err := newApplication(cmd, cfg)
	if err != nil {
		return err
	}

	srv, err := server.NewServer(server.Config{
		ListenAddr:   cfg.Server.Addr,
		AppConfig:    cfg,
		Orchestrator: a.Orch,
		Logger:       a.Logger,
	})
	if err != nil {
		shutdown(cmd, a)
		return err
	}
	defer shutdown(cmd, a)

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	if withDemo {
		ds := demo.NewServer(cfg.Demo, a.Logger)
		g.Go(func() error { return ds.ListenAndServe(ctx) })
	}
	g.Go(func() error { return srv.ListenAndServe(ctx) })

	a.Logger.Info("console started",
		logging.Field{Key: "addr", Value: cfg.Server.Addr},
		logging.Field{Key: "demo", Value: withDemo})

	if err := g.Wait(); err != nil && !errors.Is(err, ctx.Err()) {
		return err
	}
	return nil
}

// localBase is the audit API base of a demo server listening on addr.
func localBase(addr string) string {
	host := addr
	if len(host) > 0 && host[0] == ':' {
		host = "127.0.0.1" + host
	}
	u := url.URL{Scheme: "http", Host: host, Path: demo.APIPrefix}
	return u.String()
}
