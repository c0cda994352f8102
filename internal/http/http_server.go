package http

// this is entry point of the http request handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"

	"gitlab.com/assess-2025.net/internal/core/ports/primary"
	"gitlab.com/assess-2025.net/internal/core/ports/secondary"
	"gitlab.com/assess-2025.net/internal/core/services/assessment"
	auth2 "gitlab.com/assess-2025.net/internal/core/services/auth"
	"gitlab.com/assess-2025.net/internal/core/services/submission"
	"gitlab.com/assess-2025.net/internal/handlers"
	"gitlab.com/assess-2025.net/internal/handlers/auth"
	"gitlab.com/assess-2025.net/internal/handlers/execute"
	"gitlab.com/assess-2025.net/internal/handlers/results"
	"gitlab.com/assess-2025.net/internal/handlers/submissions"
	"gitlab.com/assess-2025.net/internal/handlers/tests"
)

type ServiceProvider struct {
	submissionService submission.ISubmissionService
	assessmentService assessment.IAssessmentService
	authService       auth2.IAuthService
	identityService   primary.IdentityService
	sandbox           secondary.SandboxRunner
}

func NewServiceProvider(
	submissionService submission.ISubmissionService,
	assessmentService assessment.IAssessmentService,
	authService auth2.IAuthService,
	identityService primary.IdentityService,
	sandbox secondary.SandboxRunner,
) *ServiceProvider {
	return &ServiceProvider{
		submissionService: submissionService,
		assessmentService: assessmentService,
		authService:       authService,
		identityService:   identityService,
		sandbox:           sandbox,
	}
}

type Server struct {
	router          *mux.Router
	srv             *http.Server
	Port            int
	ServiceName     string
	ServiceProvider ServiceProvider
	logger          primary.Logger
}

func NewServer(port int, serviceName string, serviceProvider ServiceProvider, logger primary.Logger) *Server {
	return &Server{
		Port:            port,
		ServiceName:     serviceName,
		ServiceProvider: serviceProvider,
		logger:          logger,
	}
}

func (s *Server) Init() error {
	r := mux.NewRouter()
	mw := handlers.New(s.ServiceProvider.identityService)

	submissions.
		NewHandler(s.ServiceProvider.submissionService, s.logger).
		RegisterRoutes(r)
	execute.
		NewHandler(s.ServiceProvider.sandbox, s.logger).
		RegisterRoutes(r)
	tests.
		NewHandler(s.ServiceProvider.assessmentService, s.logger).
		RegisterRoutes(r, mw)
	results.
		NewHandler(s.ServiceProvider.assessmentService, s.logger).
		RegisterRoutes(r, mw)
	auth.
		NewHandler(s.ServiceProvider.authService, s.logger).
		RegisterRoutes(r)

	s.router = r
	return nil
}

func (s *Server) Start(ctx context.Context) {
	s.srv = &http.Server{
		Addr:        fmt.Sprintf(":%d", s.Port),
		Handler:     s.router,
		ReadTimeout: 15 * time.Second,
		// Submission evaluation holds the connection until the overall
		// deadline, so the write timeout must outlive it.
		WriteTimeout: 150 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start the server in a goroutine
	go func() {
		s.logger.Info("Server listening", "addr", s.srv.Addr, "service", s.ServiceName)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()
}

func (s *Server) Stop(ctx context.Context) {
	s.logger.Info("Shutting down http server...")
	if s.srv == nil {
		return
	}
	if err := s.srv.Shutdown(ctx); err != nil {
		s.logger.Error("Server forced to shutdown", "error", err)
	}
}
