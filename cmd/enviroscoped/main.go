// Command enviroscoped is the hosted Enviroscope service. It serves the
// REST API, resolves company-to-facility mappings from Postgres, archives
// computed reports, and exposes health and metrics endpoints.
package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/enviroscope/enviroscope/internal/api"
	"github.com/enviroscope/enviroscope/internal/archive"
	"github.com/enviroscope/enviroscope/internal/mapping"
	"github.com/enviroscope/enviroscope/internal/notify"
	"github.com/enviroscope/enviroscope/internal/platform"
	"github.com/enviroscope/enviroscope/internal/reports"
	"github.com/enviroscope/enviroscope/internal/sources"
	"github.com/enviroscope/enviroscope/pkg/config"
	"github.com/enviroscope/enviroscope/pkg/metrics"
	"github.com/enviroscope/enviroscope/pkg/scoring"
	"github.com/enviroscope/enviroscope/pkg/validation"
)

func main() {
	cfg := loadConfig()

	db, err := sql.Open("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("ping database: %v", err)
	}
	if err := platform.AutoMigrate(db); err != nil {
		log.Fatalf("migrate database: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	storage, err := archive.FromConfig(ctx, cfg.Archive)
	if err != nil {
		log.Fatalf("archive storage: %v", err)
	}

	collector := metrics.NewCollector("enviroscope")
	handler, err := buildHandler(cfg, db, storage, collector)
	if err != nil {
		log.Fatalf("build handler: %v", err)
	}

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)
	mux.HandleFunc("GET /healthz", healthHandler(db))
	mux.Handle("GET /metrics", promhttp.Handler())

	chain := api.Instrument(collector)(api.CORS(adminAuth(cfg.Server.APIKey, mux)))

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: chain,
	}

	go func() {
		log.Printf("starting enviroscoped on :%s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}

func loadConfig() *config.Config {
	path := ""
	if wd, err := os.Getwd(); err == nil {
		path = config.FindConfigFile(wd)
	}
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	cfg.ApplyEnv()
	return cfg
}

// buildHandler wires the source clients, engines, and persistence into the
// API handler.
func buildHandler(cfg *config.Config, db *sql.DB, storage archive.Client, collector *metrics.Collector) (*api.Handler, error) {
	weights := scoring.Defaults()
	timeout := time.Duration(cfg.Sources.TimeoutSeconds) * time.Second

	iso, err := sources.NewISORegistry()
	if err != nil {
		return nil, err
	}
	policy, err := sources.NewPolicyTable()
	if err != nil {
		return nil, err
	}
	renewables, err := sources.NewRenewablesClient(cfg.Sources.RenewablesBaseURL, timeout, collector)
	if err != nil {
		return nil, err
	}

	epa := sources.NewEPAClient(cfg.Sources.EPABaseURL, timeout, collector)
	campd := sources.NewCAMPDClient(cfg.Sources.CAMPDBaseURL, cfg.Sources.CAMPDAPIKey, timeout, collector)
	eea := sources.NewEEAClient(cfg.Sources.EEABaseURL, timeout, collector)
	edgar := sources.NewEDGARClient(cfg.Sources.EDGARBaseURL, timeout, collector)

	scorer := scoring.NewEngine(weights,
		&scoring.CertificationsSignal{Source: iso, Weights: weights},
		&scoring.EnforcementSignal{Source: epa, Weights: weights},
		&scoring.RenewablesSignal{Source: renewables, Weights: weights},
		&scoring.PollutionSignal{EEA: eea, EDGAR: edgar, Mode: cfg.Sources.PollutionTrend, Weights: weights},
		&scoring.PolicySignal{Source: policy, Weights: weights},
	)

	mappings := mapping.NewService(sqlx.NewDb(db, "postgres"))
	validator := &validation.Engine{
		Mappings: &mapping.Resolver{Service: mappings},
		Primary:  campd,
		Search:   epa,
	}
	if cfg.Sources.EIAFallback {
		validator.Fallback = sources.NewEIAClient(cfg.Sources.EIABaseURL, cfg.Sources.EIAAPIKey, timeout, collector)
	}

	sink := reports.NewService(db, storage)
	notifier := notify.NewNotifier(cfg.Webhook.URL, cfg.Webhook.Secret)
	cache := api.NewPayloadCache(cfg.Server.CacheSize)

	return api.NewHandler(scorer, validator, epa, campd, mappings, sink, notifier, cache, collector), nil
}

// adminAuth enforces the API key on the mapping administration endpoints
// only; computation endpoints stay open.
func adminAuth(key string, next http.Handler) http.Handler {
	if key == "" {
		return next
	}
	protected := api.APIKeyAuth(key)(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/v1/mappings") {
			protected.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func healthHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			http.Error(w, "database unreachable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}
}
