package main

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	goRedis "github.com/redis/go-redis/v9"
	"github.com/valyala/fasthttp"
	bolt "go.etcd.io/bbolt"
	"go.uber.org/zap"

	apiHandler "github.com/fastygo/academy/api/handler"
	"github.com/fastygo/academy/internal/config"
	"github.com/fastygo/academy/internal/infrastructure/boltdb"
	"github.com/fastygo/academy/internal/infrastructure/buffer"
	"github.com/fastygo/academy/internal/infrastructure/monitor"
	pgInfra "github.com/fastygo/academy/internal/infrastructure/postgres"
	redisInfra "github.com/fastygo/academy/internal/infrastructure/redis"
	"github.com/fastygo/academy/internal/middleware"
	"github.com/fastygo/academy/internal/router"
	"github.com/fastygo/academy/internal/security"
	"github.com/fastygo/academy/internal/services"
	"github.com/fastygo/academy/internal/services/lifecycle"
	"github.com/fastygo/academy/pkg/httpcontext"
	"github.com/fastygo/academy/pkg/logger"
	"github.com/fastygo/academy/repository"
	boltRepo "github.com/fastygo/academy/repository/bolt"
	"github.com/fastygo/academy/repository/mock"
	"github.com/fastygo/academy/repository/postgres"
	redisRepo "github.com/fastygo/academy/repository/redis"
	authUC "github.com/fastygo/academy/usecase/auth"
	identityUC "github.com/fastygo/academy/usecase/identity"
	"github.com/fastygo/academy/usecase/push"
)

const pushOutboxBucket = "push_outbox"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
		AppName:  cfg.AppName,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	lifecycleManager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	lifecycleManager.Listen(cancel)

	// The bolt file always backs the push outbox and dev push tokens, and
	// the session record too unless redis is selected.
	db, err := boltdb.Open(cfg.Store.BoltPath)
	if err != nil {
		zapLogger.Fatal("failed to open bolt store", zap.Error(err), zap.String("path", cfg.Store.BoltPath))
	}
	lifecycleManager.Register("bolt", func(ctx context.Context) error {
		return db.Close()
	})

	sessionRepo, redisClient := openSessionStore(appCtx, cfg, db, lifecycleManager, zapLogger)

	tokens := security.NewTokenIssuer(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.TTL)
	directory, pool := openDirectory(appCtx, cfg, tokens, lifecycleManager, zapLogger)

	staticOperator := authUC.NewStaticOperator(cfg.Identity.OperatorEmail, cfg.Identity.OperatorPassword, tokens)
	var operator authUC.OperatorPolicy = authUC.ReservedEmail(staticOperator.Email)
	if cfg.Identity.OperatorEnabled {
		operator = staticOperator
	}

	sessionManager := authUC.New(
		sessionRepo,
		directory,
		mock.NewSocial(cfg.Identity.SocialDelay, mock.KakaoInstructorRole, tokens),
		operator,
		authUC.Config{IdentityTimeout: cfg.Identity.Timeout},
		zapLogger.Named("session"),
	)
	if err := sessionManager.Restore(appCtx); err != nil {
		zapLogger.Warn("session store unavailable during restore; starting unauthenticated", zap.Error(err))
	}
	lifecycleManager.Register("session_manager", sessionManager.Teardown)

	outboxStore, err := buffer.New(db, pushOutboxBucket)
	if err != nil {
		zapLogger.Fatal("failed to open push outbox", zap.Error(err))
	}

	var (
		registrar *push.Registrar
		gateway   monitor.Pinger
		sender    *push.HTTPSender
	)
	if cfg.Push.Endpoint != "" {
		sender = push.NewHTTPSender(cfg.Push.Endpoint, cfg.Push.Timeout, nil)
		gateway = sender
		deviceID := cfg.Push.DeviceID
		if deviceID == "" {
			deviceID = uuid.NewString()
		}
		registrar = push.NewRegistrar(
			push.StaticTokenSource(deviceID),
			sender,
			services.NewPushOutbox(outboxStore),
			cfg.Push.Timeout,
			zapLogger.Named("push"),
		)
	} else {
		zapLogger.Info("push token registration disabled (PUSH_ENDPOINT not set)")
	}

	mon := monitor.New(monitor.Deps{
		Postgres: pool,
		Redis:    redisClient,
		Bolt:     boltForMonitor(cfg, db),
		Outbox:   outboxStore,
		Gateway:  gateway,
	}, 10*time.Second, zapLogger)
	mon.Start()
	lifecycleManager.Register("monitor", func(ctx context.Context) error {
		mon.Stop()
		return nil
	})

	if sender != nil {
		pushProcessor := services.NewPushProcessor(
			outboxStore,
			mon,
			sender,
			zapLogger.Named("push_outbox"),
			services.ProcessorConfig{
				Interval:   cfg.Push.SyncInterval,
				BatchSize:  50,
				MaxRetries: cfg.Push.MaxRetry,
				Retention:  cfg.Push.Retention,
			},
		)
		pushProcessor.Start()
		lifecycleManager.Register("push_processor", func(ctx context.Context) error {
			pushProcessor.Stop(ctx)
			return nil
		})
	}

	pushTokenRepo, err := boltRepo.NewPushTokenRepository(db)
	if err != nil {
		zapLogger.Fatal("failed to open push token store", zap.Error(err))
	}

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	var pushRegistrar apiHandler.PushRegistrar
	if registrar != nil {
		pushRegistrar = registrar
	}
	handlers := router.Handlers{
		Auth:    apiHandler.NewAuthHandler(sessionManager, pushRegistrar, ctxAdapter, zapLogger, cfg.Push.Timeout),
		Session: apiHandler.NewSessionHandler(sessionManager, ctxAdapter, zapLogger),
		Views:   apiHandler.NewViewHandler(sessionManager, ctxAdapter, zapLogger),
		Push:    apiHandler.NewPushHandler(pushTokenRepo, ctxAdapter, zapLogger),
		Health:  apiHandler.NewHealthHandler(mon, ctxAdapter, zapLogger),
	}

	r := router.New(handlers, sessionManager, middleware.JWTAuth(tokens, zapLogger))

	server := &fasthttp.Server{
		Handler:      r.Handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		Name:         cfg.AppName,
	}

	go func() {
		zapLogger.Info("server started",
			zap.String("address", cfg.Address()),
			zap.String("store", cfg.Store.Backend),
			zap.String("identity", cfg.Identity.Backend))
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Fatal("server crashed", zap.Error(err))
		}
	}()

	lifecycleManager.Register("http_server", func(ctx context.Context) error {
		return server.ShutdownWithContext(ctx)
	})

	<-appCtx.Done()

	if err := lifecycleManager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}

func openSessionStore(
	ctx context.Context,
	cfg *config.Config,
	db *bolt.DB,
	lm *lifecycle.Manager,
	log *zap.Logger,
) (repository.SessionRepository, *goRedis.Client) {
	if cfg.Store.Backend == config.StoreRedis {
		client, err := redisInfra.NewClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal("redis connection failed", zap.Error(err))
		}
		lm.Register("redis", func(context.Context) error {
			return client.Close()
		})
		return redisRepo.NewSessionRepository(client, cfg.Store.SessionKey, cfg.Store.RedisTTL), client
	}

	repo, err := boltRepo.NewSessionRepository(db, cfg.Store.SessionKey)
	if err != nil {
		log.Fatal("failed to open session bucket", zap.Error(err))
	}
	return repo, nil
}

func openDirectory(
	ctx context.Context,
	cfg *config.Config,
	tokens *security.TokenIssuer,
	lm *lifecycle.Manager,
	log *zap.Logger,
) (repository.IdentityDirectory, *pgxpool.Pool) {
	if cfg.Identity.Backend != config.IdentityPostgres {
		log.Warn("using mock identity directory; any credentials are accepted")
		return mock.NewDirectory(mock.EmailHeuristicRole, tokens), nil
	}

	if err := pgInfra.RunMigrations(cfg.Database, cfg.Migrations, log); err != nil {
		log.Fatal("migrations failed", zap.Error(err))
	}
	pool, err := pgInfra.NewPool(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal("postgres connection failed", zap.Error(err))
	}
	lm.Register("postgres", func(context.Context) error {
		pgInfra.Close(pool, log)
		return nil
	})

	directory := identityUC.New(
		postgres.NewAccountRepository(pool),
		security.NewHasher(cfg.Identity.BcryptCost),
		tokens,
		cfg.Identity.AvatarBaseURL,
		log.Named("identity"),
	)
	return directory, pool
}

// boltForMonitor reports the bolt file as the session store only when it
// holds the session record.
func boltForMonitor(cfg *config.Config, db *bolt.DB) *bolt.DB {
	if cfg.Store.Backend == config.StoreBolt {
		return db
	}
	return nil
}
