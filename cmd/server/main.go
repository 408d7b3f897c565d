package main

import (
	"context"
	"database/sql"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"

	achievementrepo "psychaid/backend/internal/achievement/repository"
	achievementservice "psychaid/backend/internal/achievement/service"
	"psychaid/backend/internal/audit"
	auditrepo "psychaid/backend/internal/audit/repository"
	catalogservice "psychaid/backend/internal/catalog/service"
	chatclient "psychaid/backend/internal/chat/client"
	chatrepo "psychaid/backend/internal/chat/repository"
	chatservice "psychaid/backend/internal/chat/service"
	"psychaid/backend/internal/config"
	"psychaid/backend/internal/db"
	"psychaid/backend/internal/db/migrate"
	"psychaid/backend/internal/health"
	healthhandler "psychaid/backend/internal/health/handler"
	identityservice "psychaid/backend/internal/identity/service"
	moodrepo "psychaid/backend/internal/mood/repository"
	moodservice "psychaid/backend/internal/mood/service"
	"psychaid/backend/internal/platform/logging"
	"psychaid/backend/internal/platform/rbac"
	"psychaid/backend/internal/platform/validation"
	"psychaid/backend/internal/policy/engine"
	progressrepo "psychaid/backend/internal/progress/repository"
	progressservice "psychaid/backend/internal/progress/service"
	"psychaid/backend/internal/security"
	"psychaid/backend/internal/server"
	"psychaid/backend/internal/server/middleware"
	sessionrepo "psychaid/backend/internal/session/repository"
	otelsetup "psychaid/backend/internal/telemetry/otel"
	userrepo "psychaid/backend/internal/user/repository"
)

const shutdownTimeout = 15 * time.Second

type stores struct {
	users        identityservice.UserRepo
	mood         moodrepo.Repository
	progress     progressrepo.Repository
	exercises    achievementrepo.ExerciseRepository
	achievements achievementrepo.AchievementRepository
	chat         chatrepo.Repository
	audit        auditrepo.Repository
}

func postgresStores(conn *sql.DB) stores {
	return stores{
		users:        userrepo.NewPostgresRepository(conn),
		mood:         moodrepo.NewPostgresRepository(conn),
		progress:     progressrepo.NewPostgresRepository(conn),
		exercises:    achievementrepo.NewPostgresExerciseRepository(conn),
		achievements: achievementrepo.NewPostgresAchievementRepository(conn),
		chat:         chatrepo.NewPostgresRepository(conn),
		audit:        auditrepo.NewPostgresRepository(conn),
	}
}

func memoryStores() stores {
	return stores{
		users:        userrepo.NewMemoryRepository(),
		mood:         moodrepo.NewMemoryRepository(),
		progress:     progressrepo.NewMemoryRepository(),
		exercises:    achievementrepo.NewMemoryExerciseRepository(),
		achievements: achievementrepo.NewMemoryAchievementRepository(),
		chat:         chatrepo.NewMemoryRepository(),
		audit:        auditrepo.NewMemoryRepository(),
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("config")
	}
	log := logging.New(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	providers, err := otelsetup.NewProviders(ctx, otelsetup.Options{
		Endpoint:    cfg.OTelEndpoint,
		ServiceName: cfg.OTelServiceName,
		Environment: cfg.Env,
		Insecure:    cfg.OTelInsecure,
	}, log)
	if err != nil {
		log.WithError(err).Fatal("otel")
	}
	providers.SetGlobal()

	secret, err := security.LoadSecret(cfg.JWTSecret)
	if err != nil {
		log.WithError(err).Fatal("jwt secret")
	}

	var checks []health.Check
	var st stores
	if cfg.DatabaseURL == "" {
		log.Warn("DATABASE_URL not set; using in-memory stores")
		st = memoryStores()
	} else {
		if cfg.AutoMigrate {
			if err := migrate.Run(cfg.DatabaseURL, migrate.Up); err != nil {
				log.WithError(err).Fatal("migrate")
			}
		}
		conn, err := db.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			log.WithError(err).Fatal("database")
		}
		defer conn.Close()
		st = postgresStores(conn)
		checks = append(checks, health.DatabaseCheck(conn))
	}

	var revoked identityservice.RevocationStore
	if cfg.RedisAddr == "" {
		log.Warn("REDIS_ADDR not set; refresh token revocations are kept in memory")
		revoked = sessionrepo.NewMemoryRevocationStore()
	} else {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
		defer rdb.Close()
		store := sessionrepo.NewRedisRevocationStore(rdb)
		revoked = store
		checks = append(checks, health.RedisCheck(store))
	}

	policy, err := engine.NewOPAEvaluator(ctx)
	if err != nil {
		log.WithError(err).Fatal("policy")
	}
	checks = append(checks, health.PolicyCheck(policy))

	v := validation.New()
	tokens := security.NewTokenProvider(secret, cfg.JWTIssuer, cfg.JWTAudience, cfg.AccessTTL(), cfg.RefreshTTL())
	auth := identityservice.NewAuthService(st.users, revoked, security.NewHasher(cfg.BcryptCost), tokens, v, log)

	var completer chatclient.Completer
	if cfg.ChatAPIKey == "" {
		log.Warn("CHAT_API_KEY not set; chat endpoints return 503")
	} else {
		c, err := chatclient.NewOpenAICompleter(chatclient.Config{
			APIKey:     cfg.ChatAPIKey,
			BaseURL:    cfg.ChatBaseURL,
			Model:      cfg.ChatModel,
			Timeout:    cfg.ChatRequestTimeout(),
			MaxRetries: 2,
		})
		if err != nil {
			log.WithError(err).Fatal("chat client")
		}
		completer = c
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	checker := health.NewChecker(2*time.Second, checks...)
	deps := server.Deps{
		Log:          log,
		Auth:         auth,
		Gate:         rbac.NewGate(policy, log),
		Mood:         moodservice.NewMoodService(st.mood, v, log),
		Progress:     progressservice.NewProgressService(st.progress, v, log),
		Achievements: achievementservice.NewAchievementService(st.exercises, st.achievements, v, log),
		Catalog:      catalogservice.NewCatalogService(),
		Chat:         chatservice.NewChatService(completer, st.chat, v, log),
		Audit:        audit.NewLogger(st.audit, otelsetup.NewAuditEmitter(providers.LoggerProvider), log),
		AuditEvents:  st.audit,
		Health:       checker,
		Metrics:      middleware.NewMetrics(reg),
		Gatherer:     reg,
		CORSOrigins:  cfg.CORSOrigins(),
	}

	httpSrv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           server.NewHTTPHandler(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 2)
	go func() {
		log.WithField("addr", cfg.HTTPAddr).Info("HTTP server listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()

	var grpcSrv *grpc.Server
	if cfg.GRPCAddr != "" {
		lis, err := net.Listen("tcp", cfg.GRPCAddr)
		if err != nil {
			log.WithError(err).Fatal("grpc listen")
		}
		var hs *healthhandler.Server
		grpcSrv, hs = server.NewHealthGRPCServer(checker, log, !cfg.IsProduction())
		go hs.Run(ctx, 10*time.Second)
		go func() {
			log.WithField("addr", cfg.GRPCAddr).Info("gRPC health server listening")
			if err := grpcSrv.Serve(lis); err != nil {
				errc <- err
			}
		}()
	}

	select {
	case <-ctx.Done():
		log.Info("shutting down")
	case err := <-errc:
		log.WithError(err).Error("server failed")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("HTTP shutdown")
	}
	if grpcSrv != nil {
		grpcSrv.GracefulStop()
	}
	if err := providers.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("otel shutdown")
	}
	log.Info("stopped")
}
