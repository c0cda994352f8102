package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"gitlab.com/assess-2025.net/internal/adapter/crypto"
	"gitlab.com/assess-2025.net/internal/adapter/executor/local"
	"gitlab.com/assess-2025.net/internal/adapter/executor/piston"
	"gitlab.com/assess-2025.net/internal/adapter/postgres/ownerrepository"
	"gitlab.com/assess-2025.net/internal/adapter/postgres/resultrepository"
	"gitlab.com/assess-2025.net/internal/adapter/postgres/testrepository"
	"gitlab.com/assess-2025.net/internal/adapter/redis/attempttracker"
	"gitlab.com/assess-2025.net/internal/adapter/redis/submitlock"
	"gitlab.com/assess-2025.net/internal/config"
	"gitlab.com/assess-2025.net/internal/core/ports/primary"
	"gitlab.com/assess-2025.net/internal/core/ports/secondary"
	"gitlab.com/assess-2025.net/internal/core/services/assessment"
	"gitlab.com/assess-2025.net/internal/core/services/auth"
	"gitlab.com/assess-2025.net/internal/core/services/runner"
	"gitlab.com/assess-2025.net/internal/core/services/submission"
	logger2 "gitlab.com/assess-2025.net/internal/global/logger"
	http2 "gitlab.com/assess-2025.net/internal/http"
	"gitlab.com/assess-2025.net/internal/sweeper"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logger2.Warn("No .env file found, using environment variables")
	}

	// Set up graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	logger2.Info("Starting submission evaluation service")

	logger := logger2.Logger

	sysCfg := config.NewSystemConfig()

	db, err := setupDatabase(sysCfg.PostgresConfig)
	if err != nil {
		panic(err)
	}
	defer db.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     sysCfg.RedisConfig.Url,
		Password: sysCfg.RedisConfig.Password,
		DB:       sysCfg.RedisConfig.DB,
	})
	defer redisClient.Close()

	// SECONDARY PORTS
	testRepo := testrepository.New(db, logger, sysCfg.PostgresConfig.Schema)
	resultRepo := resultrepository.New(db, logger, sysCfg.PostgresConfig.Schema)
	ownerRepo := ownerrepository.New(db, logger, sysCfg.PostgresConfig.Schema)
	submissionLock := submitlock.New(redisClient, sysCfg.ExecutorCfg.ReservationTTL, logger)
	attempts := attempttracker.New(redisClient, logger)

	sandbox := piston.NewClient(sysCfg.ExecutorCfg.SandboxURL, logger)
	codeExecutor := setupExecutor(sandbox, logger)

	// primary ports
	identityService := crypto.NewIdentityService(sysCfg.JwtConfig)

	// services
	questionRunner := runner.New(codeExecutor, sysCfg.ExecutorCfg.PerCaseTimeout, logger)
	submissionSvc := submission.NewSubmissionService(
		testRepo,
		resultRepo,
		submissionLock,
		questionRunner,
		submission.Config{
			Language:        sysCfg.ExecutorCfg.Language,
			Version:         sysCfg.ExecutorCfg.Version,
			OverallDeadline: sysCfg.ExecutorCfg.SubmitDeadline,
		},
		logger,
	)
	assessmentSvc := assessment.NewAssessmentService(testRepo, resultRepo, attempts, identityService, logger)
	authSvc := auth.NewAuthService(ownerRepo, identityService, logger)

	serviceProvider := http2.NewServiceProvider(submissionSvc, assessmentSvc, authSvc, identityService, sandbox)

	// server
	httpServer := http2.NewServer(8082, "submissionEvaluator", *serviceProvider, logger)
	if err := httpServer.Init(); err != nil {
		panic(err)
	}
	ctxBg, stopBackground := context.WithCancel(context.Background())
	httpServer.Start(ctxBg)
	if !sysCfg.DebugMode {
		sweeper.New(sysCfg.SweeperCfg, testRepo, logger).Start(ctxBg)
	}

	<-quit
	logger.Info("Shutting down server...")
	stopBackground()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	httpServer.Stop(ctx)

	logger.Info("successfully shutdown server")
}

// setupExecutor picks the evaluation backend. The remote sandbox is the
// default; EXECUTOR_MODE=local runs candidate code as subprocesses and is
// only meant for trusted development setups.
func setupExecutor(sandbox *piston.Client, logger primary.Logger) secondary.CodeExecutor {
	if os.Getenv("EXECUTOR_MODE") == "local" {
		logger.Warn("Using local subprocess executor, do not expose this to untrusted code")
		return local.New(logger)
	}
	return sandbox
}

// setupDatabase sets up the PostgreSQL connection
func setupDatabase(cfg *config.PostgresConfig) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", cfg.Url)
	if err != nil {
		return nil, err
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		return nil, err
	}

	return db, nil
}
