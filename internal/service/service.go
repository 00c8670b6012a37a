package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/talx-hub/gopher-users/internal/api/handlers"
	"github.com/talx-hub/gopher-users/internal/dbmanager"
	"github.com/talx-hub/gopher-users/internal/mailer"
	"github.com/talx-hub/gopher-users/internal/model"
	"github.com/talx-hub/gopher-users/internal/queue/rabbitmq"
	"github.com/talx-hub/gopher-users/internal/repo"
	"github.com/talx-hub/gopher-users/internal/router"
	"github.com/talx-hub/gopher-users/internal/service/config"
	"github.com/talx-hub/gopher-users/internal/store"
	"github.com/talx-hub/gopher-users/internal/utils/logger"
)

const (
	connectTimeout  = 5 * time.Second
	shutdownTimeout = 10 * time.Second
)

func loadConfig(validate func(*config.Config) error) (*config.Config, *slog.Logger, error) {
	cfg := config.NewBuilder(slog.Default()).
		FromDotEnv().
		FromEnv().
		FromFlags().
		GetConfig()
	log := logger.New(logger.ParseLevel(cfg.LogLevel))
	slog.SetDefault(log)

	if err := validate(cfg); err != nil {
		return nil, nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, log, nil
}

// closers runs cleanups in reverse order of registration.
type closers []func()

func (c *closers) add(f func()) {
	*c = append(*c, f)
}

func (c closers) close() {
	for i := len(c) - 1; i >= 0; i-- {
		c[i]()
	}
}

func initService(ctx context.Context, cfg *config.Config, log *slog.Logger,
) (*http.Server, closers, error) {
	var cleanup closers

	connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	dbManager := dbmanager.New(cfg.DatabaseURI, log).
		Connect(connectCtx).
		ApplyMigrations(connectCtx).
		Ping(connectCtx)
	if err := dbManager.Error(); err != nil {
		return nil, cleanup, fmt.Errorf("db connection error: %w", err)
	}
	cleanup.add(dbManager.Close)

	db, err := dbManager.GetPool(ctx)
	if err != nil {
		return nil, cleanup, fmt.Errorf("failed to get DB pool: %w", err)
	}
	usersRepo := repo.NewUserRepository(db, log)

	if err = seedSuperuser(ctx, usersRepo,
		cfg.FirstSuperuser, cfg.FirstSuperuserPassword, log); err != nil {
		return nil, cleanup, err
	}

	tokens, throttle, closeStores, err := newStores(connectCtx, cfg, log)
	if err != nil {
		return nil, cleanup, err
	}
	cleanup.add(closeStores)

	dispatcher, closeMailer, err := newDispatcher(ctx, cfg, log)
	if err != nil {
		return nil, cleanup, err
	}
	cleanup.add(closeMailer)

	h := handlers.New(usersRepo, dispatcher, tokens, throttle, dbManager,
		handlers.Settings{
			SecretKey:          []byte(cfg.SecretKey),
			AccessTokenExpire:  cfg.AccessTokenExpire(),
			ResetTokenExpire:   cfg.ResetTokenExpire(),
			PasswordMinEntropy: float64(cfg.PasswordMinEntropy),
			OpenRegistration:   cfg.UsersOpenRegistration,
			EmailsEnabled:      cfg.EmailsEnabled(),
		},
		log)

	rr := router.New(cfg, log)
	rr.SetRouter(h, usersRepo)

	return &http.Server{
		Addr:              cfg.RunAddr,
		Handler:           rr.GetRouter(),
		ReadHeaderTimeout: connectTimeout,
	}, cleanup, nil
}

// newStores picks Redis when it is configured and in-memory stores
// otherwise. In-memory state is per process.
func newStores(ctx context.Context, cfg *config.Config, log *slog.Logger,
) (handlers.ResetTokenStore, handlers.LoginThrottle, func(), error) {
	if cfg.RedisAddr == "" {
		log.LogAttrs(ctx, slog.LevelInfo, "REDIS_ADDR is not set, using in-memory stores")
		return store.NewMemoryResetTokens(),
			store.NewMemoryLoginThrottle(cfg.LoginMaxFailures, cfg.LoginFailureWindow),
			func() {},
			nil
	}

	rdb, err := store.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, log)
	if err != nil {
		return nil, nil, nil, err //nolint: wrapcheck // already wrapped
	}
	closeRedis := func() {
		if err := rdb.Close(); err != nil {
			log.LogAttrs(context.Background(), slog.LevelError, "failed to close redis client",
				slog.Any(model.KeyLoggerError, err))
		}
	}
	return store.NewRedisResetTokens(rdb),
		store.NewRedisLoginThrottle(rdb, cfg.LoginMaxFailures, cfg.LoginFailureWindow),
		closeRedis,
		nil
}

// newDispatcher publishes to RabbitMQ when a broker is configured and runs
// the mailer pool in-process otherwise.
func newDispatcher(ctx context.Context, cfg *config.Config, log *slog.Logger,
) (handlers.MailDispatcher, func(), error) {
	if !cfg.EmailsEnabled() {
		log.LogAttrs(ctx, slog.LevelWarn, "SMTP is not configured, e-mails are disabled")
		return mailer.NewNoopDispatcher(log), func() {}, nil
	}

	if cfg.RabbitMQURL != "" {
		client, err := rabbitmq.NewClient(cfg.RabbitMQURL, log)
		if err != nil {
			return nil, nil, err //nolint: wrapcheck // already wrapped
		}
		closeClient := func() {
			if err := client.Close(); err != nil {
				log.LogAttrs(context.Background(), slog.LevelError, "failed to close rabbitmq client",
					slog.Any(model.KeyLoggerError, err))
			}
		}
		if err = client.CreateQueue(cfg.EmailQueue); err != nil {
			closeClient()
			return nil, nil, err //nolint: wrapcheck // already wrapped
		}
		return mailer.NewQueueDispatcher(client, cfg.EmailQueue), closeClient, nil
	}

	agent, err := newAgent(cfg, log)
	if err != nil {
		return nil, nil, err
	}
	agentCtx, cancel := context.WithCancel(logger.WithContext(context.Background(), log))
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		agent.Run(agentCtx)
	}()
	stop := func() {
		cancel()
		wg.Wait()
	}
	return agent.Dispatcher(), stop, nil
}

func newAgent(cfg *config.Config, log *slog.Logger) (*mailer.Agent, error) {
	renderer, err := mailer.NewRenderer(cfg.ProjectName, cfg.ServerHost, cfg.ResetTokenExpire())
	if err != nil {
		return nil, fmt.Errorf("failed to init e-mail renderer: %w", err)
	}
	sender, err := mailer.NewSMTPSender(mailer.SMTPConfig{
		Host:      cfg.SMTPHost,
		Port:      cfg.SMTPPort,
		User:      cfg.SMTPUser,
		Password:  cfg.SMTPPassword,
		FromEmail: cfg.EmailsFromEmail,
		FromName:  cfg.EmailsFromName,
		TLS:       cfg.SMTPTLS,
	}, log)
	if err != nil {
		return nil, err //nolint: wrapcheck // already wrapped
	}
	return mailer.NewAgent(renderer, sender, cfg.MailerMaxConcurrent, cfg.MailerWorkers), nil
}

func RunServer() {
	cfg, log, err := loadConfig((*config.Config).Validate)
	if err != nil {
		slog.Default().LogAttrs(context.Background(),
			slog.LevelError,
			"failed to init service",
			slog.Any(model.KeyLoggerError, err),
		)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logger.WithContext(ctx, log)

	srv, cleanup, err := initService(ctx, cfg, log)
	defer cleanup.close()
	if err != nil {
		log.LogAttrs(ctx,
			slog.LevelError,
			"failed to init service",
			slog.Any(model.KeyLoggerError, err),
		)
		return
	}

	serveErr := make(chan error, 1)
	go func() {
		log.LogAttrs(ctx, slog.LevelInfo, "server started", slog.String("address", srv.Addr))
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err = <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			log.LogAttrs(ctx,
				slog.LevelError,
				"listen and serve error",
				slog.Any(model.KeyLoggerError, err),
			)
		}
		return
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err = srv.Shutdown(shutdownCtx); err != nil {
		log.LogAttrs(shutdownCtx,
			slog.LevelError,
			"graceful shutdown failed",
			slog.Any(model.KeyLoggerError, err),
		)
		return
	}
	log.LogAttrs(shutdownCtx, slog.LevelInfo, "server stopped")
}

// RunMailer consumes e-mail jobs from RabbitMQ until SIGINT/SIGTERM or
// until the broker closes the delivery channel.
func RunMailer() {
	cfg, log, err := loadConfig(mailerReady)
	if err != nil {
		slog.Default().LogAttrs(context.Background(),
			slog.LevelError,
			"failed to init mailer",
			slog.Any(model.KeyLoggerError, err),
		)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logger.WithContext(ctx, log)

	client, err := rabbitmq.NewClient(cfg.RabbitMQURL, log)
	if err != nil {
		log.LogAttrs(ctx, slog.LevelError, "failed to connect to broker",
			slog.Any(model.KeyLoggerError, err))
		return
	}
	defer func() {
		if err := client.Close(); err != nil {
			log.LogAttrs(context.Background(), slog.LevelError, "failed to close rabbitmq client",
				slog.Any(model.KeyLoggerError, err))
		}
	}()

	if err = client.CreateQueue(cfg.EmailQueue); err == nil {
		err = client.SetPrefetch(cfg.MailerWorkers)
	}
	if err != nil {
		log.LogAttrs(ctx, slog.LevelError, "failed to set up queue",
			slog.Any(model.KeyLoggerError, err))
		return
	}
	deliveries, err := client.Consume(cfg.EmailQueue)
	if err != nil {
		log.LogAttrs(ctx, slog.LevelError, "failed to consume queue",
			slog.Any(model.KeyLoggerError, err))
		return
	}

	agent, err := newAgent(cfg, log)
	if err != nil {
		log.LogAttrs(ctx, slog.LevelError, "failed to init mailer",
			slog.Any(model.KeyLoggerError, err))
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		agent.Feed(ctx, deliveries)
		cancel()
	}()
	agent.Run(ctx)
}

func mailerReady(cfg *config.Config) error {
	var errs []error
	if cfg.RabbitMQURL == "" {
		errs = append(errs, errors.New("RABBITMQ_URL is not set"))
	}
	if !cfg.EmailsEnabled() {
		errs = append(errs, errors.New("SMTP host, port and from address must be set"))
	}
	return errors.Join(errs...)
}
