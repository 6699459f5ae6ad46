package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Purav2003/epimech-admin/internal/auth"
	"github.com/Purav2003/epimech-admin/internal/catalog"
	"github.com/Purav2003/epimech-admin/internal/config"
	"github.com/Purav2003/epimech-admin/internal/inquiry"
	"github.com/Purav2003/epimech-admin/internal/logging"
	"github.com/Purav2003/epimech-admin/internal/mail"
	"github.com/Purav2003/epimech-admin/internal/media"
	"github.com/Purav2003/epimech-admin/internal/middleware"
	"github.com/Purav2003/epimech-admin/internal/otp"
	"github.com/Purav2003/epimech-admin/internal/server"
	"github.com/Purav2003/epimech-admin/internal/store"
	"github.com/Purav2003/epimech-admin/internal/store/memory"
)

func main() {
	cfg := config.Load()
	logging.Setup(cfg.LogLevel, cfg.IsDevelopment())
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	if err := catalog.ValidateRegistry(); err != nil {
		log.Fatal().Err(err).Msg("invalid category registry")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── MongoDB ──────────────────────────────────────────────
	var mongoDB *mongo.Database
	if cfg.MongoURI != "" {
		client, err := store.ConnectMongo(ctx, cfg.MongoURI)
		if err != nil {
			log.Fatal().Err(err).Msg("mongo connect")
		}
		defer client.Disconnect(context.Background())
		mongoDB = client.Database(cfg.MongoDB)
	}

	// ── Products & inquiries ─────────────────────────────────
	var (
		products  catalog.Store
		inquiries inquiry.Store
	)
	if mongoDB != nil {
		ps := store.NewProductStore(mongoDB)
		var cols []string
		for _, c := range catalog.Categories() {
			cols = append(cols, c.Info().Collection)
		}
		if err := ps.EnsureIndexes(ctx, cols...); err != nil {
			log.Fatal().Err(err).Msg("product indexes")
		}
		products = ps
		inquiries = store.NewInquiryStore(mongoDB)
	} else {
		log.Warn().Msg("MONGO_URI not set, products and inquiries are kept in memory")
		products = memory.NewProductStore()
		inquiries = memory.NewInquiryStore()
	}

	// ── Users ────────────────────────────────────────────────
	var users auth.UserStore
	switch {
	case cfg.UserStore == "postgres":
		pgPool, err := pgxpool.New(ctx, cfg.PostgresDSN)
		if err != nil {
			log.Fatal().Err(err).Msg("postgres connect")
		}
		defer pgPool.Close()
		pgStore := store.NewPostgresStore(pgPool)
		if err := pgStore.Migrate(ctx); err != nil {
			log.Fatal().Err(err).Msg("postgres migrate")
		}
		users = pgStore
	case cfg.UserStore == "mongo" && mongoDB != nil:
		us := store.NewMongoUserStore(mongoDB)
		if err := us.EnsureIndexes(ctx); err != nil {
			log.Fatal().Err(err).Msg("user indexes")
		}
		users = us
	default:
		log.Warn().Msg("users are kept in memory, use adminctl against a real store in production")
		mem := memory.NewUserStore()
		if cfg.AdminPassword == "" {
			log.Warn().Msg("ADMIN_PASSWORD not set, nobody can log in to the in-memory user store")
		} else if _, err := auth.SeedAdmin(ctx, mem, cfg.AdminUsername, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			log.Fatal().Err(err).Msg("seed admin")
		} else {
			log.Info().Str("username", cfg.AdminUsername).Msg("seeded in-memory admin")
		}
		users = mem
	}

	// ── Redis ────────────────────────────────────────────────
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		var err error
		rdb, err = store.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		switch {
		case err != nil && cfg.OTPStore == "redis":
			log.Fatal().Err(err).Msg("redis connect")
		case err != nil:
			log.Warn().Err(err).Msg("redis unavailable, rate limiting disabled")
			rdb = nil
		default:
			defer rdb.Close()
		}
	}

	// ── OTP ──────────────────────────────────────────────────
	var otpStore otp.Store
	switch cfg.OTPStore {
	case "redis":
		otpStore = otp.NewRedisStore(rdb)
	case "mongo":
		if mongoDB == nil {
			log.Fatal().Msg("OTP_STORE=mongo requires MONGO_URI")
		}
		ms := otp.NewMongoStore(mongoDB)
		if err := ms.EnsureIndexes(ctx); err != nil {
			log.Fatal().Err(err).Msg("otp indexes")
		}
		otpStore = ms
	default:
		mem := otp.NewMemoryStore()
		go mem.RunJanitor(ctx, time.Minute)
		otpStore = mem
	}
	otps := otp.NewManager(otpStore, cfg.OTPTTL)

	// ── Mail ─────────────────────────────────────────────────
	var mailer auth.Mailer
	if cfg.SMTPHost != "" {
		mailer = mail.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom)
	} else {
		if !cfg.IsDevelopment() {
			log.Fatal().Msg("SMTP_HOST is required to deliver login codes")
		}
		mailer = mail.LogMailer{}
	}

	// ── MinIO ────────────────────────────────────────────────
	var mediaHandler *media.Handler
	minioStore, err := store.NewMinioStore(
		ctx, cfg.MinioEndpoint, cfg.MinioAccessKey,
		cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL,
	)
	switch {
	case err == nil:
		mediaHandler = media.NewHandler(media.NewService(minioStore, cfg.MediaPublicBaseURL))
	case cfg.IsDevelopment():
		log.Warn().Err(err).Msg("object storage unavailable, image routes disabled")
	default:
		log.Fatal().Err(err).Msg("minio connect")
	}

	// ── Handlers ─────────────────────────────────────────────
	tokens := auth.NewTokenIssuer(cfg.JWTSecret, cfg.SessionTTL)
	authSvc := auth.NewService(users, otps, tokens, mailer, cfg.OTPRecipientEmail)

	notifyTo := cfg.InquiryNotifyEmail
	if notifyTo == "" {
		notifyTo = cfg.OTPRecipientEmail
	}
	inquirySvc := inquiry.NewService(inquiries, mailer, notifyTo)

	handler := server.NewRouter(server.Options{
		Auth:           auth.NewHandler(authSvc, cfg.CookieSecure),
		Tokens:         tokens,
		Catalog:        catalog.NewHandler(catalog.NewService(products)),
		Media:          mediaHandler,
		Inquiry:        inquiry.NewHandler(inquirySvc),
		Limiter:        middleware.NewRateLimiter(rdb),
		LoginLimit:     server.RateLimit{Limit: cfg.LoginRateLimit, Window: cfg.LoginRateWindow},
		OTPLimit:       server.RateLimit{Limit: cfg.OTPRateLimit, Window: cfg.OTPRateWindow},
		AllowedOrigins: cfg.AllowedOrigins,
	})

	// ── Server ───────────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Str("otp_store", cfg.OTPStore).Msg("admin backend listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")
	shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	inquirySvc.Wait()
}
