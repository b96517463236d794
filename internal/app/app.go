package app

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"newsletter-back/internal/api/http/handler"
	"newsletter-back/internal/api/http/route"
	"newsletter-back/internal/apperrors"
	"newsletter-back/internal/config"
	"newsletter-back/internal/metrics"
	"newsletter-back/internal/msg/dispatch"
	"newsletter-back/internal/msg/outbox"
	"newsletter-back/internal/repository"
	"newsletter-back/internal/service"
	"newsletter-back/pkg/kafka"
	"newsletter-back/pkg/mailer"
	"newsletter-back/pkg/mailer/resend"
	"newsletter-back/pkg/mailer/smtp"
	"newsletter-back/pkg/postgres"
	"newsletter-back/pkg/redis"
	"newsletter-back/pkg/server"
)

const (
	defaultTimeout  = 15 * time.Second
	shutdownTimeout = 30 * time.Second
)

const (
	mailDriverSMTP   = "smtp"
	mailDriverResend = "resend"
)

type Publisher interface {
	Run(ctx context.Context)
}

type Trigger interface {
	Start(ctx context.Context)
	Stop(ctx context.Context) error
}

type App struct {
	Cfg        *config.Config
	Log        *zap.Logger
	Repository *Repository
	Service    *Service
	Handler    *Handler
	DB         postgres.Postgres
	RDB        redis.Redis
	Mailer     mailer.Mailer
	HTTPServer server.HTTPServer
	Dispatch   *Dispatch
	EBus       *EBus

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

type Repository struct {
	HealthRepository     *repository.HealthRepository
	TopicRepository      *repository.TopicRepository
	SubscriberRepository *repository.SubscriberRepository
	ContentRepository    *repository.ContentRepository
	SentLogRepository    *repository.SentLogRepository
	OutboxRepository     *repository.OutboxRepository
	DispatchRepository   *repository.DispatchRepository
}

type Service struct {
	HealthService     *service.HealthService
	TopicService      *service.TopicService
	SubscriberService *service.SubscriberService
	ContentService    *service.ContentService
}

type Handler struct {
	HealthHandler     *handler.HealthHandler
	TopicHandler      *handler.TopicHandler
	SubscriberHandler *handler.SubscriberHandler
	ContentHandler    *handler.ContentHandler
}

// Dispatch holds the engine; Trigger is nil when the scheduler is disabled.
type Dispatch struct {
	Dispatcher *dispatch.Dispatcher
	Trigger    Trigger
}

// EBus is nil when kafka is disabled.
type EBus struct {
	Producer        kafka.Producer
	OutboxPublisher Publisher
}

func New(cfg *config.Config, log *zap.Logger) (*App, error) {
	db, err := initDB(&cfg.Database)
	if err != nil {
		log.Error("Failed to initialize database", zap.Error(err))
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	log.Debug("Database initialized")

	rdb, err := initRedis(&cfg.Redis)
	if err != nil {
		db.Close()
		log.Error("Failed to initialize redis", zap.Error(err))
		return nil, fmt.Errorf("failed to initialize redis: %w", err)
	}

	mlr, err := initMailer(log, &cfg.Mailer)
	if err != nil {
		closeRedis(rdb)
		db.Close()
		return nil, fmt.Errorf("failed to initialize mailer: %w", err)
	}

	eventTopic := ""
	if cfg.Kafka.Enabled {
		eventTopic = cfg.Kafka.Producer.Topic
	}

	repo := initRepository(log, db, eventTopic)

	dsp := initDispatch(log, cfg, repo, mlr)

	svc := initService(log, db, rdb, repo, dsp)

	hdl := initHandler(log, svc)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics.RegisterCollectors(reg)

	httpServer := initHTTPServer(log, cfg, rdb, hdl, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	eBus, err := initEBus(log, &cfg.Kafka, repo)
	if err != nil {
		closeRedis(rdb)
		db.Close()
		return nil, fmt.Errorf("failed to initialize ebus: %w", err)
	}

	return &App{
		Cfg:        cfg,
		Log:        log,
		Repository: repo,
		Service:    svc,
		Handler:    hdl,
		DB:         db,
		RDB:        rdb,
		Mailer:     mlr,
		HTTPServer: httpServer,
		Dispatch:   dsp,
		EBus:       eBus,
	}, nil
}

func MustNew(cfg *config.Config, log *zap.Logger) *App {
	app, err := New(cfg, log)
	if err != nil {
		panic(err)
	}

	return app
}

// Run starts the background loops and blocks on the HTTP server.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)

	a.mu.Lock()
	a.cancel = cancel
	a.mu.Unlock()

	if a.Dispatch.Trigger != nil {
		a.Dispatch.Trigger.Start(ctx)
	}

	if a.EBus != nil {
		a.wg.Add(1)

		go func() {
			defer a.wg.Done()
			a.EBus.OutboxPublisher.Run(ctx)
		}()
	}

	a.Log.Info("HTTP server starting",
		zap.String("host", a.Cfg.HTTPServer.Host),
		zap.Uint16("port", a.Cfg.HTTPServer.Port),
	)

	return a.HTTPServer.Run()
}

// Shutdown stops intake first: the trigger, then the outbox relay, then the
// HTTP server, and closes the connections last.
func (a *App) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	err := apperrors.ErrShutdown

	if a.Dispatch.Trigger != nil {
		if trErr := a.Dispatch.Trigger.Stop(ctx); trErr != nil {
			err = fmt.Errorf("%w, failed to stop dispatch trigger: %w", err, trErr)
		}

		a.Log.Debug("Dispatch trigger stopped")
	}

	a.mu.Lock()
	if a.cancel != nil {
		a.cancel()
	}
	a.mu.Unlock()

	a.wg.Wait()

	if a.EBus != nil {
		if prErr := a.EBus.Producer.Close(); prErr != nil {
			err = fmt.Errorf("%w, failed to close kafka producer: %w", err, prErr)
		}

		a.Log.Debug("Kafka producer closed")
	}

	if srvErr := a.HTTPServer.Shutdown(); srvErr != nil {
		err = fmt.Errorf("%w, failed to shutdown http server: %w", err, srvErr)
	}

	a.Log.Debug("Http server shutdown")

	if a.RDB != nil {
		if rdbErr := a.RDB.Close(); rdbErr != nil {
			err = fmt.Errorf("%w, failed to close RDB: %w", err, rdbErr)
		}

		a.Log.Debug("Redis closed")
	}

	a.DB.Close()
	a.Log.Debug("Database closed")

	if err == apperrors.ErrShutdown {
		return nil
	}

	return err
}

func initDB(cfg *config.Database) (postgres.Postgres, error) {
	postgresCfg := &postgres.Config{
		Host:     cfg.Host,
		Port:     cfg.Port,
		User:     cfg.User,
		Password: cfg.Password,
		Name:     cfg.Name,
		SSLMode:  cfg.SSLMode,
		MaxConns: cfg.MaxConns,
		MinConns: cfg.MinConns,
		Migration: postgres.Migration{
			Path:      cfg.Migration.Path,
			AutoApply: cfg.Migration.AutoApply,
		},
	}

	return postgres.New(postgresCfg)
}

// initRedis returns nil, nil when redis is disabled.
func initRedis(cfg *config.Redis) (redis.Redis, error) {
	if !cfg.Enable {
		return nil, nil
	}

	redisCfg := &redis.Config{
		Host:     cfg.Host,
		Port:     cfg.Port,
		Password: cfg.Password,
		DB:       cfg.DB,
	}

	return redis.New(redisCfg)
}

func closeRedis(rdb redis.Redis) {
	if rdb != nil {
		_ = rdb.Close()
	}
}

func initMailer(log *zap.Logger, cfg *config.Mailer) (mailer.Mailer, error) {
	var mlr mailer.Mailer

	switch cfg.Driver {
	case mailDriverSMTP, "":
		mlr = smtp.New(smtp.Config{
			Host:     cfg.Host,
			Port:     cfg.Port,
			Username: cfg.Username,
			Password: cfg.Password,
			From:     mailer.FormatAddress(cfg.FromName, cfg.From),
			UseTLS:   cfg.UseTLS,
			Timeout:  cfg.Timeout,
		})
	case mailDriverResend:
		mlr = resend.New(resend.Config{
			APIKey:      cfg.APIKey,
			SenderEmail: cfg.From,
			SenderName:  cfg.FromName,
		})
	default:
		return nil, fmt.Errorf("unknown mail driver: %q", cfg.Driver)
	}

	// an unreachable relay is not fatal, sends fail per recipient and are logged
	if v, ok := mlr.(mailer.Verifier); ok {
		ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
		defer cancel()

		if err := v.Verify(ctx); err != nil {
			log.Warn("Mailer verification failed", zap.String("driver", cfg.Driver), zap.Error(err))
		}
	}

	log.Debug("Mailer initialized", zap.String("driver", cfg.Driver))

	return mlr, nil
}

func initRepository(log *zap.Logger, db postgres.Postgres, eventTopic string) *Repository {
	healthRepo := repository.NewHealthRepository(db.Pool())
	topicRepo := repository.NewTopicRepository(db.Pool())
	subscriberRepo := repository.NewSubscriberRepository(db.Pool())
	contentRepo := repository.NewContentRepository(db.Pool())
	sentLogRepo := repository.NewSentLogRepository(db.Pool())
	outboxRepo := repository.NewOutboxRepository(db.Pool())
	dispatchRepo := repository.NewDispatchRepository(db.Pool(), sentLogRepo, outboxRepo, eventTopic)

	log.Debug("Repositories initialized")

	return &Repository{
		HealthRepository:     healthRepo,
		TopicRepository:      topicRepo,
		SubscriberRepository: subscriberRepo,
		ContentRepository:    contentRepo,
		SentLogRepository:    sentLogRepo,
		OutboxRepository:     outboxRepo,
		DispatchRepository:   dispatchRepo,
	}
}

func initDispatch(log *zap.Logger, cfg *config.Config, repo *Repository, mlr mailer.Mailer) *Dispatch {
	dispatchLog := log.Named("dispatch")

	dispatchCfg := dispatch.Config{
		Interval:      cfg.Scheduler.Interval,
		Workers:       cfg.Scheduler.Workers,
		ClaimEnabled:  cfg.Scheduler.Claim.Enabled,
		StaleAfter:    cfg.Scheduler.Claim.StaleAfter,
		PublishEvents: cfg.Kafka.Enabled,
	}

	dispatcher := dispatch.NewDispatcher(
		dispatchLog,
		repo.DispatchRepository,
		dispatch.NewMailSender(dispatchLog, mlr),
		dispatch.NewRenderer(cfg.Mailer.FromName),
		dispatchCfg,
	)

	dsp := &Dispatch{Dispatcher: dispatcher}

	if cfg.Scheduler.Enabled {
		dsp.Trigger = dispatch.NewTrigger(dispatchLog, cfg.Scheduler.Interval, dispatcher)
	}

	log.Debug("Dispatch initialized",
		zap.Bool("scheduler", cfg.Scheduler.Enabled),
		zap.Int("workers", cfg.Scheduler.Workers),
		zap.Bool("claim", cfg.Scheduler.Claim.Enabled),
	)

	return dsp
}

func initService(log *zap.Logger, db postgres.Postgres, rdb redis.Redis, repo *Repository, dsp *Dispatch) *Service {
	var redisPinger service.Pinger
	if rdb != nil {
		redisPinger = rdb
	}

	healthSvc := service.NewHealthService(log, repo.HealthRepository, redisPinger)
	log.Debug("Health service initialized")

	topicSvc := service.NewTopicService(repo.TopicRepository, repo.SubscriberRepository, repo.ContentRepository)
	log.Debug("Topic service initialized")

	subscriberSvc := service.NewSubscriberService(db.Pool(), repo.SubscriberRepository, repo.TopicRepository, repo.SentLogRepository)
	log.Debug("Subscriber service initialized")

	contentSvc := service.NewContentService(log, repo.ContentRepository, repo.SentLogRepository, repo.TopicRepository, dsp.Dispatcher)
	log.Debug("Content service initialized")

	return &Service{
		HealthService:     healthSvc,
		TopicService:      topicSvc,
		SubscriberService: subscriberSvc,
		ContentService:    contentSvc,
	}
}

func initHandler(log *zap.Logger, svc *Service) *Handler {
	healthHandler := handler.NewHealthHandler(log, svc.HealthService)
	log.Debug("Health handler initialized")

	topicHandler := handler.NewTopicHandler(svc.TopicService)
	log.Debug("Topic handler initialized")

	subscriberHandler := handler.NewSubscriberHandler(svc.SubscriberService)
	log.Debug("Subscriber handler initialized")

	contentHandler := handler.NewContentHandler(svc.ContentService)
	log.Debug("Content handler initialized")

	return &Handler{
		HealthHandler:     healthHandler,
		TopicHandler:      topicHandler,
		SubscriberHandler: subscriberHandler,
		ContentHandler:    contentHandler,
	}
}

func initHTTPServer(log *zap.Logger, cfg *config.Config, rdb redis.Redis, hdl *Handler, metricsHandler http.Handler) server.HTTPServer {
	var client *goredis.Client
	if rdb != nil {
		client = rdb.Client()
	}

	router := route.SetupRouter(log, cfg, client, route.Handlers{
		Health:     hdl.HealthHandler,
		Topic:      hdl.TopicHandler,
		Subscriber: hdl.SubscriberHandler,
		Content:    hdl.ContentHandler,
		Metrics:    metricsHandler,
	})

	return server.NewHTTPServer(
		server.WithAddr(cfg.HTTPServer.Host, cfg.HTTPServer.Port),
		server.WithTimeout(cfg.HTTPServer.Timeout.Read, cfg.HTTPServer.Timeout.Write, cfg.HTTPServer.Timeout.Idle),
		server.WithHandler(router),
	)
}

// initEBus returns nil, nil when kafka is disabled.
func initEBus(log *zap.Logger, cfg *config.Kafka, repo *Repository) (*EBus, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	producer, err := kafka.NewProducer(
		cfg.Brokers,
		kafka.WithBalancer(kafka.Hash),
		kafka.WithRequiredAcks(kafka.RequireAll),
		kafka.WithClientID(cfg.Producer.Name),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to init kafka producer: %w", err)
	}

	log.Debug("Kafka producer initialized")

	outboxCfg := outbox.Config{
		Name:         cfg.Producer.Name,
		WorkerCount:  cfg.Producer.WorkerCount,
		PollInterval: cfg.Producer.PollInterval,
		BatchSize:    cfg.Producer.BatchSize,
	}

	publisher := outbox.NewPublisher(
		log,
		outboxCfg,
		producer,
		repo.OutboxRepository,
	)

	log.Debug("Outbox publisher initialized")

	return &EBus{
		Producer:        producer,
		OutboxPublisher: publisher,
	}, nil
}
