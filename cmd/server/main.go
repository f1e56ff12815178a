package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"lpa/internal/audit"
	audithandler "lpa/internal/audit/handler"
	auditservice "lpa/internal/audit/service"
	auditpg "lpa/internal/audit/store/postgres"
	"lpa/internal/draft"
	drafthandler "lpa/internal/draft/handler"
	"lpa/internal/issue"
	issuehandler "lpa/internal/issue/handler"
	issueservice "lpa/internal/issue/service"
	issuepg "lpa/internal/issue/store/postgres"
	"lpa/internal/jwttoken"
	"lpa/internal/matrix"
	matrixhandler "lpa/internal/matrix/handler"
	"lpa/internal/period"
	"lpa/internal/platform/config"
	"lpa/internal/platform/httpserver"
	"lpa/internal/platform/logger"
	"lpa/internal/platform/metrics"
	"lpa/internal/platform/postgres"
	platformredis "lpa/internal/platform/redis"
	"lpa/internal/questionbank"
	qbhandler "lpa/internal/questionbank/handler"
	qbpg "lpa/internal/questionbank/store/postgres"
	httptransport "lpa/internal/transport/http"
)

// main wires the stores, services, and HTTP surface, then runs the server
// until interrupted. Business logic lives in the internal packages.
func main() {
	_ = godotenv.Load()

	cfg := config.FromEnv()
	log := logger.New()
	m := metrics.New()

	ctx := context.Background()

	db, err := postgres.Open(cfg.DatabaseURL)
	if err != nil {
		log.Error("postgres connection failed", "error", err)
		os.Exit(1)
	}

	var (
		auditStore audit.Store
		issueStore issue.Store
		qbStore    questionbank.Store
	)
	if db != nil {
		defer db.Close()

		audits := auditpg.New(db)
		issues := issuepg.New(db)
		questions := qbpg.New(db)
		for _, ensure := range []func(context.Context) error{
			audits.EnsureSchema, issues.EnsureSchema, questions.EnsureSchema,
		} {
			if err := ensure(ctx); err != nil {
				log.Error("schema migration failed", "error", err)
				os.Exit(1)
			}
		}
		auditStore, issueStore, qbStore = audits, issues, questions
		log.Info("using postgres stores")
	} else {
		auditStore = audit.NewInMemoryStore()
		issueStore = issue.NewInMemoryStore()
		qbStore = questionbank.NewInMemoryStore()
		log.Warn("DATABASE_URL not set, using in-memory stores")
	}

	var draftStore draft.Store
	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("redis connection failed", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		draftStore = draft.NewRedisStore(redisClient.Client, cfg.DraftTTL)
		log.Info("using redis draft store", "ttl", cfg.DraftTTL)
	} else {
		draftStore = draft.NewInMemoryStore(cfg.DraftTTL)
		log.Warn("REDIS_URL not set, using in-memory draft store")
	}

	auditSvc := auditservice.New(auditStore, issueStore, qbStore, draftStore, m, log)
	issueSvc := issueservice.New(issueStore, log)
	builder := matrix.NewBuilder(auditStore, m)
	validator := jwttoken.NewJWTService(cfg.JWTSigningKey, cfg.JWTIssuer)

	router := httptransport.NewRouter(log, validator,
		audithandler.New(auditSvc, log),
		issuehandler.New(issueSvc, log),
		matrixhandler.New(builder, qbStore, m, log),
		drafthandler.New(draftStore, m, log),
		qbhandler.New(qbStore, log),
	)

	srv := httpserver.New(cfg.Addr, router)

	log.Info("starting lpa server", "addr", cfg.Addr, "week", period.WeekOf(time.Now()))

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}
