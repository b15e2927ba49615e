package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"card_assistant/internal/config"
	"card_assistant/internal/conversation"
	"card_assistant/internal/logger"
	"card_assistant/internal/metrics"
	"card_assistant/internal/nodes"
	"card_assistant/internal/services"
	"card_assistant/internal/storage"
	"card_assistant/pkg"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	sessionID := flag.String("session", "", "session id to resume (random when empty)")
	userID := flag.String("user", "", "account user id (falls back to the demo account)")
	flag.Parse()

	if err := run(*configPath, *sessionID, *userID); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, sessionID, userID string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := logger.InitLogger(cfg.Log); err != nil {
		return fmt.Errorf("failed to init logger: %w", err)
	}

	store, transcripts, closeStore, err := openStores(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	accounts, err := newAccountService(cfg)
	if err != nil {
		return err
	}

	m := metrics.New()
	if cfg.Metrics.Addr != "" {
		server := serveMetrics(cfg.Metrics.Addr, m)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = server.Shutdown(shutdownCtx)
		}()
	}

	processor, err := nodes.BuildProcessor(nodes.Dependencies{
		Store:      store,
		Accounts:   accounts,
		Greeter:    services.NewWeatherService(),
		Recorder:   m,
		Threshold:  cfg.Dialogue.ConfidenceThreshold,
		DemoUserID: cfg.Dialogue.DemoUserID,
	})
	if err != nil {
		return fmt.Errorf("failed to build dialogue processor: %w", err)
	}

	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	chat := conversation.NewService(transcripts)

	logger.Info().Str("session_id", sessionID).Str("store", cfg.Store.Backend).Msg("card assistant ready")
	fmt.Printf("Card assistant (session %s). Type /history, /context or /quit.\n", sessionID)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("you> ")
		if !scanner.Scan() {
			break
		}
		if ctx.Err() != nil {
			break
		}

		text := scanner.Text()
		switch strings.TrimSpace(text) {
		case "/quit", "/exit":
			return nil
		case "/history":
			transcript, err := chat.Transcript(ctx, sessionID, 20)
			if err != nil {
				logger.Error().Err(err).Msg("failed to load transcript")
				continue
			}
			fmt.Print(transcript)
			continue
		case "/context":
			printContext(ctx, store, sessionID)
			continue
		}

		output, err := processor.Execute(ctx, pkg.ProcessorInput{
			SessionID:   sessionID,
			UserID:      userID,
			UserMessage: text,
		})
		if err != nil {
			logger.Error().Err(err).Str("session_id", sessionID).Msg("failed to process utterance")
			fmt.Println("bot> Sorry, something went wrong. Please try again.")
			continue
		}

		fmt.Printf("bot> %s\n", output.Response)

		if err := chat.RecordTurn(ctx, sessionID, text, output.Response); err != nil {
			logger.Warn().Err(err).Str("session_id", sessionID).Msg("failed to record transcript")
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}
	return nil
}

// openStores selects the context store and transcript repository for the configured backend
func openStores(ctx context.Context, cfg *config.Config) (storage.ContextStore, conversation.Repository, func(), error) {
	ttl := cfg.Dialogue.ContextTTL()

	if cfg.Store.Backend != "redis" {
		return storage.NewMemoryContextStore(storage.WithTTL(ttl)), conversation.NewMemoryRepository(), func() {}, nil
	}

	client, err := storage.NewRedisClient(ctx, cfg.Store.RedisURL)
	if err != nil {
		return nil, nil, nil, err
	}
	closeClient := func() {
		if err := client.Close(); err != nil && !errors.Is(err, redis.ErrClosed) {
			logger.Warn().Err(err).Msg("failed to close Redis client")
		}
	}

	store := storage.NewRedisContextStore(client, storage.WithTTL(ttl), storage.WithKeyPrefix(cfg.Store.KeyPrefix))
	return store, conversation.NewRedisRepository(client, conversation.DefaultTTL), closeClient, nil
}

func newAccountService(cfg *config.Config) (*services.AccountService, error) {
	opts := []services.AccountOption{services.WithDefaultUser(cfg.Dialogue.DemoUserID)}
	if cfg.Dialogue.AccountsFile != "" {
		accounts, err := services.LoadAccountsFile(cfg.Dialogue.AccountsFile)
		if err != nil {
			return nil, err
		}
		opts = append(opts, services.WithAccounts(accounts))
	}
	return services.NewAccountService(opts...), nil
}

func serveMetrics(addr string, m *metrics.Metrics) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	server := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Str("addr", addr).Msg("metrics listener stopped")
		}
	}()
	logger.Info().Str("addr", addr).Msg("serving metrics")
	return server
}

func printContext(ctx context.Context, store storage.ContextStore, sessionID string) {
	pending, err := store.Get(ctx, sessionID)
	switch {
	case err != nil:
		logger.Error().Err(err).Msg("failed to read context")
	case pending == nil:
		fmt.Println("(no pending follow-up)")
	default:
		fmt.Printf("(waiting for %s on %s since %s)\n", pending.LastAction, pending.LastIntentID, pending.CreatedAt.Format(time.Kitchen))
	}
}
