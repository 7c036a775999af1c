package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/myrtlewealth/blueprint/internal/api"
	"github.com/myrtlewealth/blueprint/internal/auth"
	"github.com/myrtlewealth/blueprint/internal/config"
	"github.com/myrtlewealth/blueprint/internal/document"
	"github.com/myrtlewealth/blueprint/internal/metrics"
	"github.com/myrtlewealth/blueprint/internal/notify"
	"github.com/myrtlewealth/blueprint/internal/submission"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the questionnaire API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		if servePort != 0 {
			cfg.Server.Port = servePort
		}
		if err := cfg.Validate(config.ModeServe); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		handler, svc, closeFn, err := buildServer(ctx, cfg)
		if err != nil {
			return err
		}
		defer closeFn()

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			zap.L().Info("starting server", zap.Int("port", cfg.Server.Port))
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				errCh <- eris.Wrap(err, "server listen")
			}
			close(errCh)
		}()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		zap.L().Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.Server.ShutdownTimeout())
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			zap.L().Warn("server shutdown", zap.Error(err))
		}
		if err := svc.Wait(shutdownCtx); err != nil {
			zap.L().Warn("pending deliveries abandoned", zap.Error(err))
		}
		return nil
	},
}

// buildServer wires the store, services and router from c. The returned
// close func releases the store.
func buildServer(ctx context.Context, c *config.Config) (http.Handler, *submission.Service, func(), error) {
	st, err := openStore(ctx, c.Store)
	if err != nil {
		return nil, nil, nil, err
	}
	closeFn := func() {
		if err := st.Close(); err != nil {
			zap.L().Warn("close store", zap.Error(err))
		}
	}

	fail := func(err error) (http.Handler, *submission.Service, func(), error) {
		closeFn()
		return nil, nil, nil, err
	}

	sc, err := newScorer(c.Scoring, "", "")
	if err != nil {
		return fail(err)
	}
	mailer, err := notify.New(c.Mail)
	if err != nil {
		return fail(err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	svc, err := submission.New(submission.Options{
		Store:     st,
		Scorer:    sc,
		Mailer:    mailer,
		Renderer:  document.NewRenderer(),
		Metrics:   metrics.New(reg),
		AttachPDF: c.Mail.AttachPDF,
	})
	if err != nil {
		return fail(err)
	}

	tokens, err := auth.NewTokenManager(c.Auth.JWTSecret, c.Auth.Issuer, c.Auth.TokenTTL())
	if err != nil {
		return fail(err)
	}
	accounts := auth.NewAccounts(st, tokens)
	if _, err := accounts.Seed(ctx, c.Auth.SeedUsername, c.Auth.SeedEmail, c.Auth.SeedPassword); err != nil {
		return fail(err)
	}

	zap.L().Info("server configured",
		zap.String("store", c.Store.Driver),
		zap.String("rule_set", sc.Name()),
		zap.String("mail_provider", mailer.Name()),
	)

	handler := api.NewRouter(
		api.Deps{Submissions: svc, Accounts: accounts, Tokens: tokens, Gatherer: reg},
		api.Options{
			AllowedOrigins:      c.Server.AllowedOrigins,
			SubmitRatePerMinute: c.Server.SubmitRatePerMinute,
			SubmitBurst:         c.Server.SubmitBurst,
		},
	)
	return handler, svc, closeFn, nil
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
