package main

import (
	"database/sql"
	"time"

	"go.uber.org/zap"

	"github.com/xavierca1/ecold-outreach/internal/config"
	"github.com/xavierca1/ecold-outreach/internal/infra/auth"
	"github.com/xavierca1/ecold-outreach/internal/infra/database"
	"github.com/xavierca1/ecold-outreach/internal/infra/http/handlers"
	"github.com/xavierca1/ecold-outreach/internal/infra/http/middleware"
	"github.com/xavierca1/ecold-outreach/internal/usecase"
)

// app holds the use cases shared by the router and the background workers.
type app struct {
	templates   *usecase.TemplateUseCase
	recruiters  *usecase.RecruiterUseCase
	assignments *usecase.AssignmentUseCase
	send        *usecase.SendEmailUseCase
	bulk        *usecase.BulkSendUseCase
	scheduled   *usecase.ScheduledEmailUseCase
	inbox       *usecase.InboxUseCase
	auth        *usecase.AuthUseCase
}

type infra struct {
	mongo       *database.MongoClient
	db          *sql.DB
	transport   usecase.EmailTransport
	deduper     usecase.MessageDeduper
	progression usecase.ProgressionPublisher
	tokens      *auth.JWTManager
}

func newApp(cfg *config.Config, in infra, logger *zap.Logger) *app {
	templateRepo := database.NewTemplateRepository(in.mongo)
	recruiterRepo := database.NewRecruiterRepository(in.mongo)
	assignmentRepo := database.NewAssignmentRepository(in.mongo)
	logRepo := database.NewEmailLogRepository(in.mongo)
	scheduledRepo := database.NewScheduledEmailRepository(in.mongo)
	inboxRepo := database.NewIncomingEmailRepository(in.mongo)
	userRepo := database.NewUserRepository(in.db)

	a := &app{}
	a.templates = usecase.NewTemplateUseCase(templateRepo, logger)
	a.assignments = usecase.NewAssignmentUseCase(assignmentRepo, templateRepo, recruiterRepo, logger)
	a.recruiters = usecase.NewRecruiterUseCase(recruiterRepo, assignmentRepo, a.assignments, logger)

	progression := in.progression
	if progression == nil {
		progression = usecase.NewAsyncProgression(a.assignments, logger)
	}

	dispatcher := usecase.NewDispatcher(in.transport, logRepo, scheduledRepo, cfg.Mail.SendTimeout, logger)
	a.send = usecase.NewSendEmailUseCase(
		templateRepo, recruiterRepo, assignmentRepo, userRepo,
		dispatcher, a.assignments, a.templates, a.recruiters, progression, logger,
	)
	a.bulk = usecase.NewBulkSendUseCase(
		templateRepo, recruiterRepo, assignmentRepo, userRepo,
		dispatcher, a.assignments, a.templates, a.recruiters, logger,
	)
	a.scheduled = usecase.NewScheduledEmailUseCase(scheduledRepo, dispatcher, a.assignments, a.templates, progression, logger)
	a.inbox = usecase.NewInboxUseCase(inboxRepo, in.deduper, logger)
	a.auth = usecase.NewAuthUseCase(userRepo, in.tokens, auth.BcryptHasher{}, logger)
	return a
}

func (a *app) router(cfg *config.Config, tokens *auth.JWTManager, health *handlers.HealthHandler, limiter *middleware.LimiterStore, logger *zap.Logger) *handlers.Router {
	return &handlers.Router{
		Templates:      handlers.NewTemplateHandler(a.templates, logger),
		Recruiters:     handlers.NewRecruiterHandler(a.recruiters, a.assignments, logger),
		Assignments:    handlers.NewAssignmentHandler(a.assignments, a.bulk, logger),
		Emails:         handlers.NewEmailHandler(a.send, a.scheduled, logger),
		Inbox:          handlers.NewInboxHandler(a.inbox, logger),
		Auth:           handlers.NewAuthHandler(a.auth, logger),
		Health:         health,
		Tokens:         tokens,
		AuthLimiter:    limiter,
		AllowedOrigins: cfg.Server.CORSAllowedOrigins,
		Logger:         logger,
	}
}

const authLimiterCleanup = 5 * time.Minute
