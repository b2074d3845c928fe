package main

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kata-shadcn/kata-registry/internal/build"
	"github.com/kata-shadcn/kata-registry/internal/dev"
	"github.com/kata-shadcn/kata-registry/internal/metrics"
	"github.com/kata-shadcn/kata-registry/internal/server"
)

func serveCmd(a *app) *cobra.Command {
	var (
		addr    string
		watch   bool
		noBuild bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the registry over HTTP",
		Long: `Serve public/r for the shadcn CLI.

The registry is built once before serving unless --no-build is set.
With --watch, changes to registry.json, the collapse map and the
source roots trigger a rebuild; clients connected to /_kata/reload
are notified of every rebuild.

Examples:
  kata-registry serve
  kata-registry serve --addr=:3333 --watch
  npx shadcn add http://localhost:8080/r/hero1.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.Serve.Addr = addr
			}
			if cmd.Flags().Changed("watch") {
				cfg.Serve.Watch = watch
			}

			m := metrics.New(
				metrics.WithRuntimeCollectors(),
				metrics.WithConstLabels(prometheus.Labels{"registry": cfg.RegistryName}),
			)
			builder := build.New(cfg, build.Options{
				Logger:    a.logger,
				Metrics:   m,
				OnWarning: func(w build.Warning) { a.warn("%s", w) },
			})

			var hub *dev.ReloadHub
			var watcher *dev.Watcher
			if cfg.Serve.Watch {
				hub = dev.NewReloadHub()
				watcher = dev.NewWatcherForConfig(cfg)
			}
			session := dev.NewSession(dev.SessionOptions{
				Builder:  builder,
				Watcher:  watcher,
				Hub:      hub,
				Debounce: cfg.Serve.Debounce,
				Logger:   a.logger,
				OnRebuild: func(result *build.Result, err error, changed []string) {
					if len(changed) == 0 {
						return
					}
					if err != nil {
						a.errorMsg("Rebuild failed: %v", err)
						return
					}
					a.success("Rebuilt %d components in %s", result.Built, result.Duration.Round(time.Millisecond))
				},
			})

			if !noBuild {
				a.info("Building...")
				if _, err := session.Rebuild(cmd.Context(), nil); err != nil {
					if !cfg.Serve.Watch {
						return err
					}
					a.errorMsg("Initial build failed: %v", err)
				}
			}

			srv := server.New(server.Options{
				Dir:          cfg.OutputPath(),
				CacheMaxAge:  cfg.Serve.CacheMaxAge,
				Metrics:      m,
				Hub:          hub,
				Logger:       a.logger,
				ReadTimeout:  cfg.Serve.ReadTimeout,
				WriteTimeout: cfg.Serve.WriteTimeout,
			})

			fmt.Fprintln(a.out)
			a.success("Serving %s on %s", cfg.Paths.Output, cfg.Serve.Addr)
			if cfg.Serve.Watch {
				a.info("Watching %d paths for changes", len(dev.CollectWatchPaths(cfg)))
			}

			g, ctx := errgroup.WithContext(cmd.Context())
			g.Go(func() error {
				return srv.ListenAndServe(ctx, cfg.Serve.Addr)
			})
			if cfg.Serve.Watch {
				g.Go(func() error {
					if err := session.Run(ctx); err != nil && err != context.Canceled {
						return err
					}
					return nil
				})
			}

			err = g.Wait()
			a.logger.Debug("server stopped", zap.Error(err))
			return err
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Listen address (default from config, :8080)")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Rebuild when registry inputs change")
	cmd.Flags().BoolVar(&noBuild, "no-build", false, "Serve the existing output without building first")

	return cmd
}
