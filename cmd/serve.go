package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"rightfit/internal/admin"
	"rightfit/internal/api"
	"rightfit/internal/api/handler/v1handler"
	"rightfit/internal/config"
	"rightfit/internal/grading"
	"rightfit/internal/intake"
	"rightfit/internal/notify"
	"rightfit/internal/worker"
	"rightfit/pkg/logger"
	"rightfit/pkg/metrics"
	"rightfit/pkg/storage"
	"rightfit/pkg/storage/jsonfile"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

// backend is the storage plus the job runtime matching it.
type backend struct {
	storage storage.Storage
	riverUI http.Handler
	stop    func(ctx context.Context)
}

// setupBackend opens the configured storage and starts the workers on River
// (postgres) or on the inline dispatcher (jsonfile).
func setupBackend(ctx context.Context,
	cfg *config.Config,
	email *worker.EmailWorker,
	gradeWorker func(storage.Storage) *worker.GradeWorker) backend {
	if cfg.Storage.Backend == config.StorageJSONFile {
		store, err := jsonfile.New(cfg.Storage.DataDir, nil)
		if err != nil {
			logger.Fatal(ctx, "could not open jsonfile storage", zap.Error(err))
		}
		inline := worker.NewInline(context.WithoutCancel(ctx), email, gradeWorker(store))
		store.SetRunner(inline)
		logger.Info(ctx, "using jsonfile storage, jobs run in-process", zap.String("dir", cfg.Storage.DataDir))

		return backend{
			storage: store,
			stop: func(ctx context.Context) {
				logger.Info(ctx, "waiting for in-process jobs...")
				if err := inline.Wait(ctx); err != nil {
					logger.Warn(ctx, "in-process jobs did not finish in time", zap.Error(err))
				}
				_ = inline.Close(ctx)
				_ = store.Close()
			},
		}
	}

	pgsql, closeStrg := getPostgres(ctx, cfg)
	riverClient, err := worker.Start(context.WithoutCancel(ctx), pgsql.Pool, worker.NewOptions(cfg), email, gradeWorker(pgsql))
	if err != nil {
		logger.Fatal(ctx, "could not start workers", zap.Error(err))
	}
	riverUI, err := worker.NewUI(context.WithoutCancel(ctx), riverClient, api.RiverUIPrefix)
	if err != nil {
		logger.Fatal(ctx, "could not create river ui", zap.Error(err))
	}

	return backend{
		storage: pgsql,
		riverUI: riverUI,
		stop: func(ctx context.Context) {
			logger.Info(ctx, "stopping workers...")
			if err := riverClient.Stop(ctx); err != nil {
				logger.Error(ctx, "could not stop workers", zap.Error(err))
			}
			closeStrg()
		},
	}
}

func setupServer(ctx context.Context, deps api.Deps, cfg *config.Config) func(ctx context.Context) {
	server, err := api.NewServer(deps, api.NewOptions(cfg))
	if err != nil {
		logger.Fatal(ctx, "could not create webserver", zap.Error(err))
	}

	go func() {
		logger.Info(ctx, "starting webserver...", zap.String("addr", cfg.HTTP.Addr))
		if err := server.ListenAndServe(); err != nil {
			if !errors.Is(err, http.ErrServerClosed) {
				logger.Error(ctx, "could not start webserver", zap.Error(err))
			}
		}
	}()

	return func(ctx context.Context) {
		logger.Info(ctx, "stopping webserver...")
		if err := server.Shutdown(ctx); err != nil {
			logger.Error(ctx, "could not stop webserver", zap.Error(err))
		}
	}
}

func serveCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Starts API server and background workers",
		Run: func(cmd *cobra.Command, args []string) {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			// otel
			mp, err := metrics.NewMeterProvider(prometheus.DefaultRegisterer)
			if err != nil {
				logger.Fatal(ctx, "could not create meter provider", zap.Error(err))
			}
			otel.SetMeterProvider(mp)
			bm, err := metrics.NewBusiness(mp.Meter(metrics.MeterName))
			if err != nil {
				logger.Fatal(ctx, "could not create business metrics", zap.Error(err))
			}

			renderer, err := notify.NewRenderer(cfg.Email.From, cfg.Email.ReplyTo)
			if err != nil {
				logger.Fatal(ctx, "could not parse email templates", zap.Error(err))
			}
			emailWorker := worker.NewEmailWorker(renderer, getMailer(ctx, cfg), bm)

			graderClient := getGrader(ctx, cfg)
			var gradingSvc grading.Service
			be := setupBackend(ctx, cfg, emailWorker, func(st storage.Storage) *worker.GradeWorker {
				gradingSvc = grading.New(st, graderClient, bm)

				return worker.NewGradeWorker(gradingSvc, cfg.Worker.GradeDefaultLimit, cfg.Worker.GradeWindow)
			})

			blobs := getBlobStore(ctx, cfg)
			provider := getPayments(ctx, cfg)
			tokens := getOrderTokens(ctx, cfg)
			limiter := getLimiter(ctx, cfg)

			var sessions *admin.Sessions
			if cfg.Admin.JWTSecret == "" {
				logger.Warn(ctx, "no admin JWT secret configured, the admin API is disabled")
			} else if sessions, err = admin.NewSessions(cfg.Admin.JWTSecret, cfg.Admin.PasswordHash, cfg.Admin.SessionTTL); err != nil {
				logger.Fatal(ctx, "could not create admin sessions", zap.Error(err))
			}

			stopWebserver := setupServer(ctx, api.Deps{
				Deps: v1handler.Deps{
					Intake:   intake.New(intake.NewOptions(cfg), be.storage, provider, blobs, tokens, bm),
					Grading:  gradingSvc,
					Admin:    admin.New(admin.NewOptions(cfg), be.storage, provider, blobs, tokens),
					Sessions: sessions,
				},
				Limiter: limiter,
				RiverUI: be.riverUI,
			}, cfg)

			// wait for interrupt
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.GracefulShutdownTimeout)
			defer cancel()

			stopWebserver(shutdownCtx)
			be.stop(shutdownCtx)
			if err := limiter.Close(); err != nil {
				logger.Warn(shutdownCtx, "could not close rate limiter", zap.Error(err))
			}
			if err := mp.Shutdown(shutdownCtx); err != nil {
				logger.Warn(shutdownCtx, "could not shut down meter provider", zap.Error(err))
			}
		},
	}

	return cmd
}
