package main

import (
	"context"
	"crypto/tls"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"kanban-api/api"
	"kanban-api/domain"
	"kanban-api/storage"
)

func main() {
	if dbg, err := strconv.ParseBool(os.Getenv("DEBUG")); err == nil && dbg {
		log.SetLevel(log.DebugLevel)
	}
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("missing database config")
	}
	ctx := context.Background()
	store, err := storage.Open(ctx, databaseURL)
	if err != nil {
		log.Fatalf("storage: %v", err)
	}
	defer store.Close()
	if err := store.EnsureSchema(ctx); err != nil {
		log.Fatalf("schema: %v", err)
	}

	redisConn := os.Getenv("REDIS_CONNECTION_STRING")
	if redisConn == "" {
		log.Fatal("missing redis config")
	}
	redisOpts, err := redis.ParseURL(redisConn)
	if err != nil {
		parts := strings.Split(redisConn, ",")
		redisOpts = &redis.Options{Addr: parts[0]}
		for _, p := range parts[1:] {
			kv := strings.SplitN(p, "=", 2)
			if len(kv) != 2 {
				continue
			}
			switch strings.ToLower(kv[0]) {
			case "password":
				redisOpts.Password = kv[1]
			case "ssl":
				if strings.ToLower(kv[1]) == "true" {
					redisOpts.TLSConfig = &tls.Config{}
				}
			}
		}
	}
	rc := redis.NewClient(redisOpts)
	dedupTTL := 24 * time.Hour
	if v := os.Getenv("DEDUPER_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			log.Fatalf("invalid DEDUPER_TTL: %v", err)
		}
		dedupTTL = d
	}
	deduper := api.NewRedisDeduper(rc, dedupTTL)

	secret := os.Getenv("AUTH_SECRET")
	if secret == "" {
		log.Fatal("missing auth config")
	}
	tokenTTL := 24 * time.Hour
	if v := os.Getenv("AUTH_TOKEN_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			log.Fatalf("invalid AUTH_TOKEN_TTL: %v", err)
		}
		tokenTTL = d
	}
	issuer := os.Getenv("AUTH_ISSUER")
	if issuer == "" {
		issuer = "kanban-api"
	}
	auth := api.NewAuth([]byte(secret), tokenTTL, issuer)
	if jwksURL := os.Getenv("JWKS_URL"); jwksURL != "" {
		audience := os.Getenv("AUTH_AUDIENCE")
		extIssuer := os.Getenv("AUTH_EXTERNAL_ISSUER")
		if audience == "" || extIssuer == "" {
			log.Fatal("missing external auth config")
		}
		jwks, err := keyfunc.Get(jwksURL, keyfunc.Options{})
		if err != nil {
			log.Fatalf("jwks: %v", err)
		}
		auth.EnableJWKS(jwks, audience, extIssuer)
	}

	logger := log.New()
	store.Subscribe(domain.EventProjectCreated, func(ctx context.Context, ev domain.Event) error {
		created, ok := ev.(domain.ProjectCreated)
		if !ok {
			return nil
		}
		logger.WithFields(log.Fields{
			"project_id": created.Project.ID.String(),
			"user_id":    created.Project.UserID.String(),
			"boards":     len(created.Project.Boards),
		}).Info("project created")
		return nil
	})

	e := echo.New()
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	e.Use(api.GzipRequestMiddleware())

	api.Register(e, store, auth, deduper, logger)

	listenAddr := ":8080"
	if val, ok := os.LookupEnv("PORT"); ok {
		listenAddr = ":" + val
	}

	e.Logger.Fatal(e.Start(listenAddr))
}
