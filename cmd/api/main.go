package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	filestore "github.com/Beacon-Coaching/coach-portal-api/internal/adapters/file/sessionstore"
	"github.com/Beacon-Coaching/coach-portal-api/internal/adapters/httpapi"
	"github.com/Beacon-Coaching/coach-portal-api/internal/adapters/linkedin"
	memmailer "github.com/Beacon-Coaching/coach-portal-api/internal/adapters/memory/mailer"
	memphotos "github.com/Beacon-Coaching/coach-portal-api/internal/adapters/memory/photostore"
	memstore "github.com/Beacon-Coaching/coach-portal-api/internal/adapters/memory/sessionstore"
	"github.com/Beacon-Coaching/coach-portal-api/internal/adapters/postgres"
	pgstore "github.com/Beacon-Coaching/coach-portal-api/internal/adapters/postgres/sessionstore"
	redisstore "github.com/Beacon-Coaching/coach-portal-api/internal/adapters/redis/sessionstore"
	s3photos "github.com/Beacon-Coaching/coach-portal-api/internal/adapters/s3/photostore"
	sesmailer "github.com/Beacon-Coaching/coach-portal-api/internal/adapters/ses/mailer"
	"github.com/Beacon-Coaching/coach-portal-api/internal/app/authgate"
	"github.com/Beacon-Coaching/coach-portal-api/internal/app/wizard"
	platformclock "github.com/Beacon-Coaching/coach-portal-api/internal/platform/clock"
	"github.com/Beacon-Coaching/coach-portal-api/internal/platform/config"
	"github.com/Beacon-Coaching/coach-portal-api/internal/platform/token"
	mailerport "github.com/Beacon-Coaching/coach-portal-api/internal/ports/out/mailer"
	photostoreport "github.com/Beacon-Coaching/coach-portal-api/internal/ports/out/photostore"
	sessionstoreport "github.com/Beacon-Coaching/coach-portal-api/internal/ports/out/sessionstore"
)

func main() {
	// .env is optional; real deployments configure through the environment.
	_ = godotenv.Load()

	log, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	cfg, err := config.LoadAppConfigFromEnv()
	if err != nil {
		log.Fatal("invalid configuration", zap.Error(err))
	}

	clk := platformclock.NewSystemClock()
	ctx := context.Background()

	// Auth configuration:
	// - Production: bearer tokens signed with SESSION_TOKEN_SECRET
	// - Local dev: AUTH_MODE=dev bypasses tokens and trusts X-Debug-Subject
	var (
		issuer *token.Issuer
		authMW func(http.Handler) http.Handler
	)
	switch cfg.AuthMode {
	case "dev":
		authMW = httpapi.NewDevAuthMiddleware(cfg.DevSubject)
	default:
		issuer = token.NewIssuer([]byte(cfg.SessionSecret), cfg.SessionTokenTTL, clk)
		authMW = httpapi.NewAuthMiddleware(issuer)
	}

	var (
		store   sessionstoreport.Store
		cleanup func()
	)
	switch cfg.StorageBackend {
	case "postgres":
		pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, postgres.PoolOptions{})
		if err != nil {
			log.Fatal("postgres unavailable", zap.Error(err))
		}
		if _, err := pool.Exec(ctx, pgstore.Schema); err != nil {
			pool.Close()
			log.Fatal("apply session schema", zap.Error(err))
		}
		store = pgstore.NewStore(pool)
		cleanup = pool.Close
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			log.Fatal("redis unavailable", zap.Error(err))
		}
		store = redisstore.NewStore(client)
		cleanup = func() { _ = client.Close() }
	case "file":
		store = filestore.NewStore(cfg.SessionFilePath)
	default:
		store = memstore.NewStore()
	}
	if cleanup != nil {
		defer cleanup()
	}

	var awsCfg aws.Config
	if cfg.PhotoBackend == "s3" || cfg.MailerBackend == "ses" {
		var opts []func(*awsconfig.LoadOptions) error
		if cfg.S3Region != "" {
			opts = append(opts, awsconfig.WithRegion(cfg.S3Region))
		}
		awsCfg, err = awsconfig.LoadDefaultConfig(ctx, opts...)
		if err != nil {
			log.Fatal("load aws config", zap.Error(err))
		}
	}

	var photos photostoreport.Store
	switch cfg.PhotoBackend {
	case "s3":
		photos = s3photos.NewStore(s3.NewFromConfig(awsCfg), cfg.S3Bucket, cfg.S3Region)
	default:
		photos = memphotos.NewStore()
	}

	var mail mailerport.Mailer
	switch cfg.MailerBackend {
	case "ses":
		mail = sesmailer.NewMailer(ses.NewFromConfig(awsCfg), cfg.InviteFromAddress)
	default:
		mail = memmailer.NewLogMailer(log)
	}

	auth := authgate.NewService(store, clk, mail,
		authgate.DemoIdentity{Email: cfg.DemoEmail, Password: cfg.DemoPassword},
		authgate.InviteOptions{PortalBaseURL: cfg.PortalBaseURL},
		log.Named("authgate"),
	)
	wiz := wizard.NewService(store, clk,
		linkedin.NewImporter(cfg.ImportLatency),
		photos, auth,
		wizard.Config{
			BioCharacterLimit: cfg.BioCharacterLimit,
			LocationMode:      wizard.LocationMode(cfg.LocationMode),
			AllowedLocations:  cfg.AllowedLocations,
		},
		log.Named("wizard"),
	)

	api := httpapi.NewServer(auth, wiz, issuer, log.Named("http"))
	handler := httpapi.NewRouter(api, authMW)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	// Graceful shutdown
	runCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info("api listening",
			zap.String("port", cfg.Port),
			zap.String("storage", cfg.StorageBackend),
			zap.String("authMode", cfg.AuthMode),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("listen", zap.Error(err))
		}
	}()

	<-runCtx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}
