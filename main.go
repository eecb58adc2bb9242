package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"H2Tank/internal/calc/autodesign"
	"H2Tank/internal/calc/batch"
	"H2Tank/internal/calc/composite"
	"H2Tank/internal/calc/importer"
	"H2Tank/internal/calc/permeation"
	"H2Tank/internal/calc/reliability"
	"H2Tank/internal/calc/report"
	"H2Tank/internal/calc/vessel"
	"H2Tank/internal/config"
	"H2Tank/internal/jobs"
	"H2Tank/internal/logging"
	"H2Tank/internal/materials"
	"H2Tank/internal/metrics"
	"H2Tank/internal/middleware"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

var wg sync.WaitGroup

// Server holds what the routes need.
type Server struct {
	Config    config.Config
	Log       *zap.Logger
	Materials *materials.Library
	Jobs      *jobs.Store
	Limiter   *middleware.IPRateLimiter
}

func HandleList(r *mux.Router, s *Server) {
	r.Use(metrics.Middleware)
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()
	api.Use(s.Limiter.LimitMiddleware)

	materialsH := &materials.Handler{Library: s.Materials}
	api.HandleFunc("/materials", materialsH.List).Methods("GET")

	vesselH := &vessel.Handler{Log: s.Log}
	compositeH := &composite.Handler{Log: s.Log, Strengths: s.Materials}
	permeationH := &permeation.Handler{Log: s.Log, Materials: s.Materials}
	reliabilityH := &reliability.Handler{Log: s.Log, Jobs: s.Jobs, MaxSamples: s.Config.MaxSamples}
	batchH := &batch.Handler{Log: s.Log, Materials: s.Materials}
	importerH := &importer.Handler{Log: s.Log, Materials: s.Materials}
	reportH := &report.Handler{Log: s.Log, Materials: s.Materials}
	autoH := &autodesign.Handler{Log: s.Log, Materials: s.Materials}

	tools := api.PathPrefix("/tools").Subrouter()
	tools.HandleFunc("/stress/calc", vesselH.Calc).Methods("POST")
	tools.HandleFunc("/dome/calc", vesselH.Dome).Methods("POST")
	tools.HandleFunc("/composite/calc", compositeH.Calc).Methods("POST")
	tools.HandleFunc("/permeation/calc", permeationH.Calc).Methods("POST")
	tools.HandleFunc("/permeation/loss", permeationH.Loss).Methods("POST")
	tools.HandleFunc("/reliability/calc", reliabilityH.Calc).Methods("POST")
	tools.HandleFunc("/reliability/burst", reliabilityH.Burst).Methods("POST")
	tools.HandleFunc("/reliability/jobs", reliabilityH.Submit).Methods("POST")
	tools.HandleFunc("/reliability/jobs/{id}", reliabilityH.Job).Methods("GET")
	tools.HandleFunc("/batch/calc", batchH.Calc).Methods("POST")
	tools.HandleFunc("/batch/import", importerH.Import).Methods("POST")
	tools.HandleFunc("/report/pdf", reportH.Generate).Methods("POST")
	tools.HandleFunc("/autodesign/calc", autoH.Calc).Methods("POST")
}

// NewServer wires the shared state from cfg.
func NewServer(cfg config.Config, log *zap.Logger) (*Server, error) {
	lib, err := materials.Load(cfg.MaterialsFile)
	if err != nil {
		return nil, err
	}
	return &Server{
		Config:    cfg,
		Log:       log,
		Materials: lib,
		Jobs:      jobs.NewStore(cfg.JobTTL, cfg.JobWorkers, log),
		Limiter:   middleware.NewIPRateLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst, log),
	}, nil
}

func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	HandleList(r, s)
	return middleware.CORS(r)
}

// janitor sweeps expired jobs and forgets idle rate-limit buckets until ctx ends.
func (s *Server) janitor(ctx context.Context) {
	wg.Add(2)
	go func() {
		defer wg.Done()
		s.Jobs.Run(ctx, time.Minute)
	}()
	go func() {
		defer wg.Done()
		t := time.NewTicker(10 * time.Minute)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				s.Limiter.Reset()
			}
		}
	}()
}

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	log, err := logging.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	s, err := NewServer(cfg, log)
	if err != nil {
		log.Fatal("failed to load materials", zap.String("file", cfg.MaterialsFile), zap.Error(err))
	}
	s.janitor(ctx)

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Info("starting server", zap.String("addr", cfg.Addr), zap.Bool("tls", cfg.TLS()))
	wg.Add(1)
	go func() {
		defer wg.Done()
		var err error
		if cfg.TLS() {
			err = server.ListenAndServeTLS(cfg.TLSCert, cfg.TLSKey)
		} else {
			err = server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", zap.Error(err))
			cancel()
		}
	}()

	<-ctx.Done()
	log.Info("shutdown signal received, closing active connections")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown failed", zap.Error(err))
	}
	s.Jobs.Wait()
	wg.Wait()
	log.Info("server stopped")
}
