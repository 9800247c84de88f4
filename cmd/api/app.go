package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/xavierca1/nesthome-leads/internal/config"
	"github.com/xavierca1/nesthome-leads/internal/infra/database"
	"github.com/xavierca1/nesthome-leads/internal/infra/http/handlers"
	"github.com/xavierca1/nesthome-leads/internal/infra/http/middleware"
	"github.com/xavierca1/nesthome-leads/internal/infra/integration/ingest"
	"github.com/xavierca1/nesthome-leads/internal/infra/integration/sheets"
	"github.com/xavierca1/nesthome-leads/internal/infra/integration/whatsapp"
	"github.com/xavierca1/nesthome-leads/internal/infra/localstore"
	"github.com/xavierca1/nesthome-leads/internal/infra/mail"
	"github.com/xavierca1/nesthome-leads/internal/infra/queue"
	"github.com/xavierca1/nesthome-leads/internal/infra/realtime"
	"github.com/xavierca1/nesthome-leads/internal/infra/session"
	"github.com/xavierca1/nesthome-leads/internal/infra/worker"
	"github.com/xavierca1/nesthome-leads/internal/usecase"
)

type application struct {
	cfg    *config.Config
	logger *slog.Logger

	db     *sql.DB
	redis  redis.UniversalClient
	rabbit *queue.RabbitMQ

	auth    *usecase.AdminAuthUseCase
	limiter *middleware.RateLimiter

	leads     *handlers.LeadHandler
	admin     *handlers.AdminHandler
	sync      *handlers.SyncHandler
	contact   *handlers.ContactHandler
	estimate  *handlers.EstimateHandler
	analytics *handlers.AnalyticsHandler
	stream    *handlers.StreamHandler
	health    *handlers.HealthHandler

	// background jobs run by start until the context ends
	jobs []job
}

type job struct {
	name string
	run  func(ctx context.Context) error
}

// newApplication wires every collaborator. Only the local store is mandatory: a missing or
// unreachable database, broker or integration disables that sink and the service keeps going.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*application, error) {
	app := &application{cfg: cfg, logger: logger}

	app.connectRedis(ctx)
	if cfg.LocalStore == config.LocalStoreRedis && app.redis == nil {
		return nil, errors.New("local store is redis but redis is unreachable")
	}
	app.connectDatabase(ctx)

	// 1. Stores
	kv, err := app.localKV()
	if err != nil {
		return nil, err
	}
	local := localstore.NewLeadStore(kv)

	hub := realtime.NewHub()
	var (
		remote   usecase.RemoteLeadSink
		leadRepo *database.LeadRepository
	)
	if app.db != nil {
		leadRepo = database.NewLeadRepository(app.db, hub)
		remote = leadRepo

		listener := worker.NewLeadChangeListener(worker.NewPQListener(cfg.DatabaseURL, logger), leadRepo)
		app.jobs = append(app.jobs, job{name: "lead_change_listener", run: listener.Start})
	}

	var sessions usecase.SessionStore
	if app.redis != nil {
		sessions = session.NewRedisStore(app.redis)
	} else {
		mem := session.NewMemoryStore()
		sessions = mem
		app.jobs = append(app.jobs, job{name: "session_sweep", run: func(ctx context.Context) error {
			mem.Sweep(ctx, time.Minute)
			return nil
		}})
	}

	var credentials usecase.CredentialStore = session.NewMemoryCredentials()
	if app.db != nil {
		credentials = database.NewCredentialRepository(app.db)
	}

	// 2. Integrations
	sheetsClient := sheets.NewClient(cfg.SheetsWebhookURL, cfg.SpreadsheetURL, cfg.SheetsTimeout)
	var (
		sheetSync  usecase.SheetSync
		sheetBatch usecase.SheetBatchSync
	)
	if sheetsClient.Configured() {
		sheetSync = sheetsClient
		sheetBatch = sheetsClient
		if cfg.AMQPURL != "" {
			if producer := app.connectQueue(sheetsClient); producer != nil {
				sheetSync = producer
			}
		}
	}

	var forwarder usecase.IngestForwarder
	if cfg.IngestURL != "" {
		forwarder = ingest.NewClient(cfg.IngestURL, cfg.IngestAPIKey)
	}

	var alerter usecase.LeadAlerter
	if cfg.WhatsAppToken != "" && cfg.WhatsAppPhoneID != "" && cfg.SalesWhatsAppNumber != "" {
		client := whatsapp.NewClient(cfg.WhatsAppToken, cfg.WhatsAppPhoneID, cfg.WhatsAppBaseURL)
		alerter = whatsapp.NewLeadAlerter(client, cfg.SalesWhatsAppNumber, cfg.LeadAlertTemplate)
	}

	var mailer usecase.ContactMailer
	if cfg.MailHost != "" && cfg.MailTo != "" {
		mailer = mail.NewEmailSender(cfg.MailHost, cfg.MailPort, cfg.MailUser, cfg.MailPassword, cfg.MailFrom, cfg.MailTo)
	}

	// 3. Use cases
	loc := cfg.Location()

	submitUC := usecase.NewSubmitLeadUseCase(local, remote, sheetSync, forwarder, alerter, cfg.RemoteWriteTimeout)
	submitUC.RecordFailure = middleware.RecordIntegrationError
	manageUC := usecase.NewManageLeadsUseCase(local, remote)
	syncUC := usecase.NewSyncLeadsUseCase(local, remote, sheetBatch)
	reportUC := usecase.NewReportLeadsUseCase(local, remote, loc)
	contactUC := usecase.NewSendContactUseCase(mailer)

	app.auth = usecase.NewAdminAuthUseCase(sessions, credentials, cfg.SessionTTL)
	if err := app.auth.EnsureCredential(ctx, cfg.AdminPassword); err != nil {
		if !errors.Is(err, usecase.ErrNotConfigured) {
			return nil, fmt.Errorf("admin credential: %w", err)
		}
		logger.Warn("no admin password stored and ADMIN_PASSWORD is empty; admin login is disabled")
	}

	app.limiter = middleware.NewRateLimiter(cfg.RateLimit, time.Minute)
	app.jobs = append(app.jobs, job{name: "rate_limit_cleanup", run: func(ctx context.Context) error {
		app.limiter.Cleanup(ctx, 10*time.Minute)
		return nil
	}})

	// 4. Handlers
	app.leads = handlers.NewLeadHandler(submitUC, manageUC, loc)
	app.admin = handlers.NewAdminHandler(app.auth)
	app.sync = handlers.NewSyncHandler(syncUC, sheetsClient.SpreadsheetURL())
	app.contact = handlers.NewContactHandler(contactUC)
	app.estimate = handlers.NewEstimateHandler()
	app.analytics = handlers.NewAnalyticsHandler(reportUC)
	if leadRepo != nil {
		app.stream = handlers.NewStreamHandler(leadRepo, cfg.AllowedOrigins)
	} else {
		app.stream = handlers.NewStreamHandler(nil, cfg.AllowedOrigins)
	}

	app.health = handlers.NewHealthHandler(app.db, nil, app.redis)
	if app.rabbit != nil {
		app.health.RabbitMQ = app.rabbit.Conn
	}
	app.health.SheetsConfigured = sheetsClient.Configured()
	app.health.LocalStore = cfg.LocalStore

	return app, nil
}

func (app *application) connectRedis(ctx context.Context) {
	if app.cfg.RedisAddr == "" {
		return
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     app.cfg.RedisAddr,
		Password: app.cfg.RedisPassword,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		app.logger.Warn("redis unreachable, sessions stay in memory", "addr", app.cfg.RedisAddr, "error", err)
		rdb.Close()
		return
	}
	app.redis = rdb
}

func (app *application) connectDatabase(ctx context.Context) {
	if app.cfg.DatabaseURL == "" {
		app.logger.Warn("DATABASE_URL not set, remote sink disabled")
		return
	}

	db, err := database.NewDBConnection(ctx, app.cfg.DatabaseURL)
	if err != nil {
		app.logger.Warn("database unreachable, remote sink disabled", "error", err)
		return
	}
	if err := database.RunMigrations(ctx, db); err != nil {
		app.logger.Error("migrations failed, remote sink disabled", "error", err)
		db.Close()
		return
	}
	app.db = db
}

// connectQueue routes per-lead sheet appends through RabbitMQ. The worker consumes on
// its own channel.
func (app *application) connectQueue(sheetsClient *sheets.Client) *queue.Producer {
	rabbit, err := queue.NewRabbitMQ(app.cfg.AMQPURL)
	if err != nil {
		app.logger.Warn("rabbitmq unreachable, syncing sheets inline", "error", err)
		return nil
	}

	consumeCh, err := rabbit.Conn.Channel()
	if err != nil {
		app.logger.Warn("rabbitmq consumer channel failed, syncing sheets inline", "error", err)
		rabbit.Close()
		return nil
	}

	app.rabbit = rabbit
	w := queue.NewWorker(consumeCh, sheetsClient)
	app.jobs = append(app.jobs, job{name: "sheets_sync_worker", run: func(ctx context.Context) error {
		return w.Start(ctx, queue.QueueName)
	}})
	return queue.NewProducer(rabbit.Ch)
}

func (app *application) localKV() (localstore.KV, error) {
	switch app.cfg.LocalStore {
	case config.LocalStoreRedis:
		return localstore.NewRedisKV(app.redis, "nesthome"), nil
	case config.LocalStoreMemory:
		app.logger.Warn("local store is in memory; leads are lost on restart")
		return localstore.NewMemoryKV(), nil
	default:
		kv, err := localstore.NewFileKV(app.cfg.DataDir)
		if err != nil {
			return nil, fmt.Errorf("local store: %w", err)
		}
		return kv, nil
	}
}

// start runs the background jobs. A failing job is logged and does not stop the others.
func (app *application) start(ctx context.Context) {
	for _, j := range app.jobs {
		j := j
		go func() {
			if err := j.run(ctx); err != nil {
				app.logger.Error("background job stopped", "job", j.name, "error", err)
			}
		}()
	}
}

func (app *application) close() {
	if app.rabbit != nil {
		app.rabbit.Close()
	}
	if app.redis != nil {
		app.redis.Close()
	}
	if app.db != nil {
		app.db.Close()
	}
}
