package main

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/redis/go-redis/v9"

	"github.com/sattisvar/live-bootcamp-project/adapters/events"
	"github.com/sattisvar/live-bootcamp-project/adapters/hasher"
	"github.com/sattisvar/live-bootcamp-project/adapters/store"
	"github.com/sattisvar/live-bootcamp-project/adapters/tokenizer"
	"github.com/sattisvar/live-bootcamp-project/config"
	"github.com/sattisvar/live-bootcamp-project/logging"
	"github.com/sattisvar/live-bootcamp-project/ports"
	"github.com/sattisvar/live-bootcamp-project/service"
	transport "github.com/sattisvar/live-bootcamp-project/transport/http"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Pretty)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	signKey, err := loadOrGenerateKey(cfg.Auth.SigningKeyFile, logger)
	if err != nil {
		log.Fatalf("Failed to load signing key: %v", err)
	}

	passwordHasher := hasher.NewArgon2Hasher()

	var (
		users    ports.UserStore
		codes    ports.TwoFACodeStore
		banned   ports.BannedTokenStore
		eventPub ports.EventPublisher
	)

	switch cfg.Store.Backend {
	case "redis":
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			log.Fatalf("Failed to parse Redis URL: %v", err)
		}
		redisClient := redis.NewClient(opts)

		publisher, err := redisstream.NewPublisher(
			redisstream.PublisherConfig{Client: redisClient},
			watermill.NewSlogLogger(logger),
		)
		if err != nil {
			log.Fatalf("Failed to create Redis publisher: %v", err)
		}

		users = store.NewRedisUserStore(redisClient, passwordHasher)
		codes = store.NewRedisTwoFACodeStore(redisClient, cfg.Auth.TwoFACodeTTL)
		banned = store.NewRedisBannedTokenStore(redisClient)
		eventPub = events.NewWatermillPublisher(publisher)

	case "memory":
		users = store.NewMemoryUserStore(passwordHasher)
		codes = store.NewMemoryTwoFACodeStore(cfg.Auth.TwoFACodeTTL)
		banned = store.NewMemoryBannedTokenStore()

	default:
		log.Fatalf("Unknown store backend: %q", cfg.Store.Backend)
	}

	authService := service.NewAuthService(
		users,
		codes,
		banned,
		passwordHasher,
		tokenizer.NewJWTTokenizer(signKey),
		eventPub,
		logger,
		service.WithSessionTTL(cfg.Auth.SessionTTL),
		service.WithCodeSender(logCodeSender(logger)),
	)

	router := transport.SetupRouter(authService)

	logger.Info("starting auth service",
		slog.String("addr", cfg.HTTP.Addr),
		slog.String("store", cfg.Store.Backend))

	if err := router.Run(cfg.HTTP.Addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// loadOrGenerateKey reads a PEM-encoded ECDSA key, or generates an
// ephemeral one when no path is configured.
func loadOrGenerateKey(path string, logger *slog.Logger) (*ecdsa.PrivateKey, error) {
	if path == "" {
		logger.Warn("no signing key configured, generating an ephemeral key; tokens will not survive restarts")
		return ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read key file: %w", err)
	}

	block, _ := pem.Decode(raw)
	if block == nil {
		return nil, fmt.Errorf("no PEM block in %s", path)
	}

	key, err := x509.ParseECPrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse EC private key: %w", err)
	}

	return key, nil
}

// logCodeSender stands in for a real delivery channel (email, SMS). The
// code never appears above debug level.
func logCodeSender(logger *slog.Logger) service.CodeSender {
	return func(ctx context.Context, email, code string) error {
		logger.Debug("two-factor code issued", slog.String("email", email), slog.String("code", code))
		return nil
	}
}
