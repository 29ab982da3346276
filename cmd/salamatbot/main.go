package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/salamatyar/salamatbot/internal/api"
	"github.com/salamatyar/salamatbot/internal/doctor"
	"github.com/salamatyar/salamatbot/internal/flow"
	"github.com/salamatyar/salamatbot/internal/gamify"
	"github.com/salamatyar/salamatbot/internal/genai"
	"github.com/salamatyar/salamatbot/internal/lockfile"
	"github.com/salamatyar/salamatbot/internal/messaging"
	"github.com/salamatyar/salamatbot/internal/store"
	"github.com/salamatyar/salamatbot/internal/util"
)

// Default configuration constants
const (
	// DefaultStateDir is the default directory for Salamatbot state data
	DefaultStateDir = "/var/lib/salamatbot"
	// DefaultDBFileName is the default SQLite database filename
	DefaultDBFileName = "salamatbot.db"
	// DefaultPort is the default HTTP listen port
	DefaultPort = 8080
	// serverShutdownTimeout bounds graceful HTTP shutdown
	serverShutdownTimeout = 10 * time.Second
)

func main() {
	initializeLogger()

	config := loadEnvironmentConfig()
	flags := parseCommandLineFlags(config)

	if err := run(flags); err != nil {
		slog.Error("Salamatbot failed to run", "error", err)
		os.Exit(1)
	}
	slog.Info("Salamatbot exited successfully")
}

// Config holds environment configuration
type Config struct {
	BotToken        string
	OpenRouterKey   string
	OpenRouterURL   string
	ModelName       string
	MongoURI        string
	MongoDatabase   string
	DatabaseURL     string
	StateDir        string
	Port            int
	WelcomeImageURL string
	CatalogURL      string
	Debug           bool
}

// Flags holds command line flag values
type Flags struct {
	botToken      *string
	openRouterKey *string
	model         *string
	mongoURI      *string
	dbDSN         *string
	stateDir      *string
	apiAddr       *string
	config        Config
}

// initializeLogger sets up structured logging; the level is raised to
// debug by loadEnvironmentConfig when DEBUG is set.
func initializeLogger() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)
}

// loadEnvironmentConfig loads configuration from environment variables and .env file
func loadEnvironmentConfig() Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug("failed to load .env file", "error", err)
	} else {
		slog.Debug("successfully loaded .env file")
	}

	config := Config{
		BotToken:        os.Getenv("BOT_TOKEN"),
		OpenRouterKey:   os.Getenv("OPENROUTER_API_KEY"),
		OpenRouterURL:   os.Getenv("OPENROUTER_BASE_URL"),
		ModelName:       os.Getenv("MODEL_NAME"),
		MongoURI:        os.Getenv("MONGODB_URI"),
		MongoDatabase:   os.Getenv("MONGODB_DATABASE"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		StateDir:        os.Getenv("SALAMATBOT_STATE_DIR"),
		Port:            util.ParseIntEnv("PORT", DefaultPort),
		WelcomeImageURL: os.Getenv("WELCOME_IMAGE_URL"),
		CatalogURL:      os.Getenv("CATALOG_URL"),
		Debug:           util.ParseBoolEnv("DEBUG", false),
	}

	if config.Debug {
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
		slog.SetDefault(logger)
	}

	if config.StateDir == "" {
		config.StateDir = DefaultStateDir
		slog.Debug("No SALAMATBOT_STATE_DIR set, using default", "default_state_dir", config.StateDir)
	}

	slog.Debug("environment variables loaded",
		"BOT_TOKEN_SET", config.BotToken != "",
		"OPENROUTER_API_KEY_SET", config.OpenRouterKey != "",
		"MODEL_NAME", config.ModelName,
		"MONGODB_URI_SET", config.MongoURI != "",
		"DATABASE_URL_SET", config.DatabaseURL != "",
		"SALAMATBOT_STATE_DIR", config.StateDir,
		"PORT", config.Port)

	return config
}

// parseCommandLineFlags parses command line arguments with environment defaults
func parseCommandLineFlags(config Config) Flags {
	flags := Flags{
		botToken:      flag.String("bot-token", config.BotToken, "Telegram bot token (overrides $BOT_TOKEN)"),
		openRouterKey: flag.String("openrouter-api-key", config.OpenRouterKey, "OpenRouter API key (overrides $OPENROUTER_API_KEY)"),
		model:         flag.String("model", config.ModelName, "completion model name (overrides $MODEL_NAME)"),
		mongoURI:      flag.String("mongo-uri", config.MongoURI, "MongoDB connection URI (overrides $MONGODB_URI)"),
		dbDSN:         flag.String("db-dsn", config.DatabaseURL, "SQL database DSN (overrides $DATABASE_URL)"),
		stateDir:      flag.String("state-dir", config.StateDir, "state directory for Salamatbot data (overrides $SALAMATBOT_STATE_DIR)"),
		apiAddr:       flag.String("api-addr", fmt.Sprintf(":%d", config.Port), "HTTP listen address (overrides $PORT)"),
		config:        config,
	}

	flag.Parse()

	slog.Debug("flags parsed",
		"botTokenSet", *flags.botToken != "",
		"openRouterKeySet", *flags.openRouterKey != "",
		"model", *flags.model,
		"mongoURISet", *flags.mongoURI != "",
		"dbDSNSet", *flags.dbDSN != "",
		"stateDir", *flags.stateDir,
		"apiAddr", *flags.apiAddr)

	return flags
}

// buildStore selects the profile store backend: MongoDB when a URI is
// configured, then a SQL backend by DSN, then SQLite in the state
// directory.
func buildStore(flags Flags) (store.Store, error) {
	switch {
	case *flags.mongoURI != "":
		slog.Debug("Configuring MongoDB store", "database", flags.config.MongoDatabase)
		opts := []store.Option{store.WithDSN(*flags.mongoURI)}
		if flags.config.MongoDatabase != "" {
			opts = append(opts, store.WithDatabase(flags.config.MongoDatabase))
		}
		return store.NewMongoStore(opts...)

	case strings.HasPrefix(*flags.dbDSN, "postgres://") || strings.Contains(*flags.dbDSN, "host="):
		slog.Debug("Configuring PostgreSQL store")
		return store.NewPostgresStore(store.WithDSN(*flags.dbDSN))

	case *flags.dbDSN != "":
		slog.Debug("Configuring SQLite store", "path", *flags.dbDSN)
		return store.NewSQLiteStore(store.WithDSN(*flags.dbDSN))

	default:
		path := filepath.Join(*flags.stateDir, DefaultDBFileName)
		slog.Debug("No database configured, defaulting to SQLite in the state directory", "path", path)
		return store.NewSQLiteStore(store.WithDSN(path))
	}
}

// buildGenAIOptions constructs completion gateway configuration options
func buildGenAIOptions(flags Flags) []genai.Option {
	genaiOpts := []genai.Option{genai.WithAPIKey(*flags.openRouterKey)}
	if flags.config.OpenRouterURL != "" {
		genaiOpts = append(genaiOpts, genai.WithBaseURL(flags.config.OpenRouterURL))
	}
	if *flags.model != "" {
		genaiOpts = append(genaiOpts, genai.WithModel(*flags.model))
	}
	return genaiOpts
}

// buildFlowOptions constructs state machine configuration options
func buildFlowOptions(flags Flags) []flow.Option {
	var flowOpts []flow.Option
	if flags.config.WelcomeImageURL != "" {
		flowOpts = append(flowOpts, flow.WithWelcomeImageURL(flags.config.WelcomeImageURL))
	}
	if flags.config.CatalogURL != "" {
		flowOpts = append(flowOpts, flow.WithCatalogURL(flags.config.CatalogURL))
	}
	return flowOpts
}

// run wires the modules together and blocks until shutdown.
func run(flags Flags) error {
	if *flags.botToken == "" {
		return fmt.Errorf("BOT_TOKEN is required")
	}
	if *flags.openRouterKey == "" {
		return fmt.Errorf("OPENROUTER_API_KEY is required")
	}

	// One polling instance per state directory: concurrent pollers would
	// steal each other's updates.
	lock, err := lockfile.Acquire(*flags.stateDir)
	if err != nil {
		return err
	}
	defer lock.Release()

	// A store that cannot be reached at boot is treated like one that
	// fails later: degrade to memory and keep serving.
	var st *store.Fallback
	if primary, err := buildStore(flags); err != nil {
		slog.Error("Store unavailable at startup, degrading to in-memory store", "error", err)
		st = store.NewDegradedFallback(err)
	} else {
		st = store.NewFallback(primary)
	}
	defer st.Close()

	client, err := genai.NewClient(buildGenAIOptions(flags)...)
	if err != nil {
		return fmt.Errorf("failed to initialize completion client: %w", err)
	}

	msg, err := messaging.NewTelegramService(*flags.botToken)
	if err != nil {
		return fmt.Errorf("failed to initialize Telegram service: %w", err)
	}

	engine := gamify.NewEngine(st)
	doc := doctor.NewManager(client, st)
	machine := flow.NewMachine(st, engine, doc, msg, buildFlowOptions(flags)...)
	server := api.NewServer(st, api.WithAddr(*flags.apiAddr))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := msg.Start(ctx); err != nil {
		return fmt.Errorf("failed to start Telegram polling: %w", err)
	}
	defer msg.Stop()

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()
	go machine.Run(ctx)

	slog.Info("Salamatbot running", "api_addr", *flags.apiAddr)

	select {
	case <-ctx.Done():
		slog.Info("Shutdown signal received")
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), serverShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown failed", "error", err)
	}
	return nil
}
