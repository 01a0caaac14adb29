package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"pmr-assist-service/internal/infrastructure/config"
	"pmr-assist-service/internal/infrastructure/oauth"
	"pmr-assist-service/internal/infrastructure/persistence"
	"pmr-assist-service/internal/infrastructure/router"
	"pmr-assist-service/internal/interface/mail"
	"pmr-assist-service/internal/interface/repository"
	"pmr-assist-service/internal/usecase"
	"pmr-assist-service/pkg/clock"
	"pmr-assist-service/pkg/logger"
	"pmr-assist-service/pkg/metrics"
	"pmr-assist-service/pkg/utils"
	"pmr-assist-service/templates"
)

func main() {
	// Create logger
	log := logger.NewLogger()
	log.Info("Starting PMR Assist Service")

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config", "error", err)
	}

	// Set up context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up MongoDB connection
	log.Info("Connecting to MongoDB")
	mongoClient, db, err := persistence.NewMongoClient(ctx, cfg.MongoURI, cfg.MongoDB, cfg.MongoUser, cfg.MongoPassword)
	if err != nil {
		log.Fatal("Failed to connect to MongoDB", "error", err)
	}

	// Instrumentation
	m := metrics.NewMetrics(prometheus.DefaultRegisterer, "pmrassist")
	clk := clock.RealClock{}

	// Rule tables, merged with reference-data overrides when PostgreSQL
	// is configured; built-in defaults otherwise.
	leadTimes := usecase.NewLeadTimeTable()
	transferCalc := usecase.NewTransferCalculator()
	if cfg.PostgresURI != "" {
		gormDB, err := gorm.Open(postgres.Open(cfg.PostgresURI), &gorm.Config{})
		if err != nil {
			log.Fatal("Failed to connect to PostgreSQL", "error", err)
		}
		ruleRepo := repository.NewGormOperatorRuleRepository(gormDB)
		leadTimes = usecase.NewLeadTimeTableFromRepo(ctx, ruleRepo, log)
		transferCalc = usecase.NewTransferCalculatorFromRepo(ctx, ruleRepo, log)
	}

	// Set up repositories
	voyageRepo := repository.NewMongoVoyageRepository(db)
	bookingRepo := repository.NewMongoBookingRecordRepository(db)
	disruptionRepo := repository.NewMongoDisruptionRepository(db)
	messageRepo := repository.NewMongoOperatorMessageRepository(db)
	agentRepo := repository.NewHTTPAgentRepository(cfg.AgentServiceURL, cfg.CollaboratorToken, log)
	notifRepo := repository.NewHTTPNotificationRepository(cfg.NotificationServiceURL, cfg.CollaboratorToken, log)
	searchRepo := repository.NewHTTPRouteSearchRepository(cfg.RouteSearchServiceURL, cfg.CollaboratorToken, log)

	// Orchestration core
	validator := usecase.NewDeadlineValidator(leadTimes, clk)
	bookingOrchestrator := usecase.NewBookingOrchestrator(validator, agentRepo, notifRepo, bookingRepo, clk, m, log)
	planner := usecase.NewTransferPlanner(transferCalc, agentRepo, notifRepo, m, log)
	suggester := usecase.NewAlternativeSuggester(voyageRepo, searchRepo, log)
	registry := usecase.NewInMemorySessionRegistry()
	monitor := usecase.NewPerturbationMonitor(registry, voyageRepo, agentRepo, notifRepo, bookingRepo,
		disruptionRepo, transferCalc, suggester, clk, cfg.MonitorInterval, m, log)

	// Inbound mailbox pipeline
	noticeParser := utils.NewNoticeParser(log)
	subjectRouter := router.NewSubjectRouter(log)
	subjectRouter.Register(templates.NewDelayNoticeHandler(monitor, noticeParser, log))
	workflowEngine := usecase.NewWorkflowEngine(log)
	subjectRouter.Register(templates.NewAssistanceRequestHandler(
		voyageRepo, bookingOrchestrator, planner, monitor, workflowEngine, noticeParser, clk, log))
	subjectRouter.Register(templates.NewRebookingHandler(
		bookingRepo, voyageRepo, suggester, bookingOrchestrator, monitor, noticeParser, clk, log))
	messageOrchestrator := usecase.NewMessageOrchestrator(messageRepo, subjectRouter, log)

	if cfg.MailClientID != "" {
		mailboxOAuth := oauth.NewMailboxOAuth(
			cfg.MailClientID,
			cfg.MailClientSecret,
			cfg.MailRefreshToken,
			log,
		)
		tokenSource := mailboxOAuth.GetTokenSource(ctx)

		feed, err := mail.NewDisruptionFeed(ctx, tokenSource, messageRepo, log, cfg.MailPollInterval)
		if err != nil {
			log.Fatal("Failed to create disruption feed", "error", err)
		}

		// Start mailbox polling in a goroutine
		go feed.StartPolling(ctx)
	} else {
		log.Warn("Mailbox credentials not set, inbound feed disabled")
	}

	// Start message processor in a goroutine
	go func() {
		processTicker := time.NewTicker(30 * time.Second)
		defer processTicker.Stop()

		for {
			select {
			case <-ctx.Done():
				log.Info("Message processor stopped")
				return
			case <-processTicker.C:
				if err := messageOrchestrator.ProcessPendingMessages(ctx); err != nil {
					log.Error("Error processing messages", "error", err)
				}
			}
		}
	}()

	// Set up HTTP server for metrics
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("Healthy"))
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      mux,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	// Start HTTP server in a goroutine
	go func() {
		log.Info("Starting HTTP server", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", "error", err)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	log.Info("Received signal", "signal", sig)

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", "error", err)
	}

	cancel() // Cancel the context to stop all goroutines

	// Disconnect from MongoDB
	if err := mongoClient.Disconnect(shutdownCtx); err != nil {
		log.Error("MongoDB disconnect error", "error", err)
	}

	log.Info("PMR Assist Service stopped")
}
