package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pribylovaa/hack-or-snooze/internal/api"
	"github.com/pribylovaa/hack-or-snooze/internal/api/transport"
	"github.com/pribylovaa/hack-or-snooze/internal/config"
	webhttp "github.com/pribylovaa/hack-or-snooze/internal/http"
	"github.com/pribylovaa/hack-or-snooze/internal/http/views"
	"github.com/pribylovaa/hack-or-snooze/internal/metrics"
	"github.com/pribylovaa/hack-or-snooze/internal/session"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

const shutdownGrace = 10 * time.Second

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "path to config file")
	flag.Parse()

	cfg := config.MustLoad(configPath)

	log := setupLogger(cfg.Env)
	slog.SetDefault(log)
	log.Info("starting storyweb", "env", cfg.Env, "api_base_url", cfg.API.BaseURL)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("storyweb_failed", slog.String("err", err.Error()))
		os.Exit(1)
	}

	log.Info("service_stopped")
}

// run собирает зависимости, слушает адрес и блокируется до сигнала или ошибки Serve.
func run(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	web, err := newWebHandler(cfg, log, prometheus.DefaultRegisterer)
	if err != nil {
		return err
	}

	var ready atomic.Bool
	srv := &http.Server{
		Addr:              cfg.HTTP.Addr(),
		Handler:           newMux(web, &ready),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", srv.Addr, err)
	}
	log.Info("http_listen_start", slog.String("addr", srv.Addr))

	serveErr := make(chan error, 1)
	go func() {
		defer close(serveErr)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	ready.Store(true)
	log.Info("storyweb_ready")

	var runErr error
	select {
	case <-ctx.Done():
		log.Info("shutdown_requested")
	case runErr = <-serveErr:
	}

	ready.Store(false)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http_shutdown_incomplete", slog.String("err", err.Error()))
	} else {
		log.Info("http_stopped")
	}

	if runErr != nil {
		return fmt.Errorf("http serve: %w", runErr)
	}

	return nil
}

// newWebHandler связывает клиент API (через цепочку транспорта), сессии и шаблоны в роутер.
func newWebHandler(cfg *config.Config, log *slog.Logger, reg prometheus.Registerer) (http.Handler, error) {
	// Исходящие вызовы: metadata -> timeout -> metrics -> logging.
	rt := transport.Chain(http.DefaultTransport,
		transport.WithMetadata(cfg.API.UserAgent),
		transport.WithTimeout(cfg.Timeouts.Upstream),
		transport.WithMetrics(metrics.NewUpstream(reg)),
		transport.WithLogging(nil),
	)

	client, err := api.New(cfg.API.BaseURL, api.WithTransport(rt))
	if err != nil {
		return nil, fmt.Errorf("api client: %w", err)
	}

	codec, err := session.NewCodec(cfg.Session.Secret, cfg.Session.TTL)
	if err != nil {
		return nil, fmt.Errorf("session codec: %w", err)
	}

	renderer, err := views.New()
	if err != nil {
		return nil, fmt.Errorf("views: %w", err)
	}

	sessions := &session.Manager{
		Codec:      codec,
		Store:      session.NewStore(cfg.Session.MaxEntries, cfg.Session.TTL),
		CookieName: cfg.Session.CookieName,
		Secure:     cfg.Session.Secure,
		TTL:        cfg.Session.TTL,
	}

	log.Debug("dependencies_initialized",
		slog.Int("session_max_entries", cfg.Session.MaxEntries),
		slog.Duration("upstream_timeout", cfg.Timeouts.Upstream),
	)

	return webhttp.NewRouter(client, renderer, webhttp.Options{
		Logger:   log,
		Timeout:  cfg.Timeouts.Service,
		Sessions: sessions,
	}), nil
}

// newMux — служебные ручки (/livez, /healthz, /metrics) и фронтенд на остальных путях.
func newMux(web http.Handler, ready *atomic.Bool) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/livez", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		if !ready.Load() {
			http.Error(w, "not ready", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("ok"))
	})

	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", web)

	return mux
}

func setupLogger(env string) *slog.Logger {
	switch env {
	case envDev:
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envProd:
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	case envLocal:
		fallthrough
	default:
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
}
