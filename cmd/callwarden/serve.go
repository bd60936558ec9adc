package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/callwarden/callwarden/pkg/config"
	"github.com/callwarden/callwarden/pkg/domain"
	"github.com/callwarden/callwarden/pkg/screening"
	"github.com/callwarden/callwarden/pkg/telemetry"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the screening daemon with config hot reload and metrics",
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := loadConfigAndLogger(cmd)
	if err != nil {
		return err
	}

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return fmt.Errorf("failed to get config flag: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := telemetry.SetupProvider(ctx, telemetry.Config{
		ServiceName: "callwarden",
		Endpoint:    cfg.Telemetry.OTLPEndpoint,
		Insecure:    cfg.Telemetry.Insecure,
	})
	if err != nil {
		return fmt.Errorf("setup telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			logger.Error("telemetry shutdown failed", "error", err)
		}
	}()

	metrics := screening.NewMetrics()
	screener := screening.NewScreener(screening.Options{
		Logger:  logger,
		Metrics: metrics,
	})

	snapshot := domain.Snapshot{Generation: 1, Screening: cfg.Screening.ToDomain()}
	if err := screener.Apply(ctx, snapshot); err != nil {
		return fmt.Errorf("apply screening config: %w", err)
	}

	if configPath != "" {
		provider, err := config.NewFileConfigProvider(configPath, logger)
		if err != nil {
			return fmt.Errorf("setup config watcher: %w", err)
		}
		defer func() {
			if err := provider.Close(); err != nil {
				logger.Error("failed to close config provider", "error", err)
			}
		}()
		go screener.Watch(ctx, provider)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/screen", screenHandler(screener))

	server := &http.Server{
		Addr:              cfg.Server.AdminAddress,
		Handler:           otelhttp.NewHandler(mux, "callwarden.admin"),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("admin server listening", "address", cfg.Server.AdminAddress)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("admin server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// screenHandler screens a single call described as JSON:
//
//	{"number": "+15550100", "caller_name": "Ada"}
func screenHandler(screener *screening.Screener) http.HandlerFunc {
	type request struct {
		Number     string `json:"number"`
		CallerName string `json:"caller_name"`
	}
	type response struct {
		Allow                bool   `json:"allow"`
		Reject               bool   `json:"reject"`
		Silence              bool   `json:"silence"`
		AddToCallLog         bool   `json:"add_to_call_log"`
		ShowNotification     bool   `json:"show_notification"`
		SuppressDoNotDisturb bool   `json:"suppress_do_not_disturb"`
		BlockReason          string `json:"block_reason,omitempty"`
		SourceFilter         string `json:"source_filter,omitempty"`
		TimedOut             bool   `json:"timed_out"`
		Channel              string `json:"channel,omitempty"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		if req.Number == "" {
			http.Error(w, "number is required", http.StatusBadRequest)
			return
		}

		call := domain.NewIncomingCall(req.Number, req.CallerName)
		result := screener.ScreenCall(r.Context(), call)
		v := result.Verdict

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(response{
			Allow:                v.Allow,
			Reject:               v.Reject,
			Silence:              v.Silence,
			AddToCallLog:         v.AddToCallLog,
			ShowNotification:     v.ShowNotification,
			SuppressDoNotDisturb: v.SuppressDoNotDisturb,
			BlockReason:          string(v.BlockReason),
			SourceFilter:         v.SourceFilter,
			TimedOut:             result.TimedOut,
			Channel:              result.Channel,
		})
	}
}
