package main

import (
	"context"
	"crypto/rand"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"

	"github.com/erazemk/opsledger/internal/api"
	"github.com/erazemk/opsledger/internal/auth"
	"github.com/erazemk/opsledger/internal/cache"
	"github.com/erazemk/opsledger/internal/config"
	"github.com/erazemk/opsledger/internal/db"
	"github.com/erazemk/opsledger/internal/ledger"
	"github.com/erazemk/opsledger/internal/model"
	"github.com/erazemk/opsledger/internal/store"
)

// levelRouter is a slog.Handler that routes INFO/WARN to stdout and ERROR+ to stderr.
type levelRouter struct {
	stdout slog.Handler
	stderr slog.Handler
}

func (lr *levelRouter) Enabled(_ context.Context, level slog.Level) bool {
	return level >= slog.LevelInfo
}

func (lr *levelRouter) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= slog.LevelError {
		return lr.stderr.Handle(ctx, r)
	}
	return lr.stdout.Handle(ctx, r)
}

func (lr *levelRouter) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &levelRouter{
		stdout: lr.stdout.WithAttrs(attrs),
		stderr: lr.stderr.WithAttrs(attrs),
	}
}

func (lr *levelRouter) WithGroup(name string) slog.Handler {
	return &levelRouter{
		stdout: lr.stdout.WithGroup(name),
		stderr: lr.stderr.WithGroup(name),
	}
}

// setupLogger configures structured logging. INFO/WARN go to stdout, ERROR goes
// to stderr. If logPath is non-empty, all levels are also written to that file.
func setupLogger(logPath string) (func(), error) {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}

	var cleanup func()

	stdoutW := io.Writer(os.Stdout)
	stderrW := io.Writer(os.Stderr)

	if logPath != "" {
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
		cleanup = func() { f.Close() }
		stdoutW = io.MultiWriter(os.Stdout, f)
		stderrW = io.MultiWriter(os.Stderr, f)
	}

	handler := &levelRouter{
		stdout: slog.NewTextHandler(stdoutW, opts),
		stderr: slog.NewTextHandler(stderrW, opts),
	}
	slog.SetDefault(slog.New(handler))
	return cleanup, nil
}

func main() {
	fs := flag.NewFlagSet("opsledger", flag.ContinueOnError)

	var configFile string
	fs.StringVar(&configFile, "config", "", "")
	fs.StringVar(&configFile, "c", "", "")

	var envFile string
	fs.StringVar(&envFile, "env", ".env", "")
	fs.StringVar(&envFile, "e", ".env", "")

	// Values are read back through config.Load; only explicitly set flags
	// take effect.
	fs.String("db", "", "")
	fs.String("d", "", "")
	fs.String("addr", "", "")
	fs.String("a", "", "")
	fs.String("user", "", "")
	fs.String("u", "", "")
	fs.String("log", "", "")
	fs.String("l", "", "")

	fs.Usage = func() {
		fmt.Fprint(os.Stdout, `Usage: opsledger [flags]

Flags:
  -c, -config <path>      config file (yaml, toml or json)
  -e, -env <path>         dotenv file loaded if present (default: .env)
  -d, -db <dsn>           SQLite path or postgres:// DSN (default: opsledger.sqlite3)
  -a, -addr <host:port>   listen address (default: :8080)
  -u, -user <name>        admin username on first run (default: Admin)
  -l, -log <path>         log file path (default: no file, stdout/stderr only)
  -h, -help               show this help and exit

Every setting can also be given as an OPSLEDGER_* environment variable,
e.g. OPSLEDGER_DATABASE_DSN or OPSLEDGER_CACHE_REDIS_ADDR.
`)
	}

	if err := fs.Parse(os.Args[1:]); err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if fs.NArg() > 0 {
		fmt.Fprintf(os.Stderr, "unexpected argument: %s\n", fs.Arg(0))
		fs.Usage()
		os.Exit(1)
	}

	if err := config.LoadDotEnv(envFile); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load(configFile, fs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	closeLog, err := setupLogger(cfg.Log.File)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if closeLog != nil {
		defer closeLog()
	}

	if err := run(cfg); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx := context.Background()

	database, err := db.Open(ctx, cfg.Database.DSN, db.Options{
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	if err := db.EnsureSchema(ctx, database); err != nil {
		return fmt.Errorf("ensuring schema: %w", err)
	}
	if err := db.SeedWarehouses(ctx, database); err != nil {
		return fmt.Errorf("seeding warehouses: %w", err)
	}
	slog.Info("database ready", "driver", database.DriverName())

	password, err := bootstrapAdmin(ctx, database, cfg.Auth.AdminUser)
	if err != nil {
		return err
	}
	if password != "" {
		printInitResult(cfg.Auth.AdminUser, password)
	}

	// Load JWT secret from database (auto-generated on first run).
	jwtSecret, err := store.GetJWTSecret(ctx, database)
	if err != nil {
		return fmt.Errorf("getting JWT secret: %w", err)
	}

	var dashboardCache cache.Cache = cache.Nop{}
	if cfg.Cache.RedisAddr != "" {
		rc, err := cache.NewRedis(ctx, cfg.Cache.RedisAddr, cfg.Cache.RedisPassword, cfg.Cache.RedisDB)
		if err != nil {
			return fmt.Errorf("connecting to redis: %w", err)
		}
		defer rc.Close()
		dashboardCache = rc
		slog.Info("dashboard cache enabled", "addr", cfg.Cache.RedisAddr, "ttl", cfg.Cache.DashboardTTL)
	}

	router := api.NewRouter(api.Deps{
		DB:           database,
		Ledger:       ledger.New(database, ledger.WithMissingPolicy(ledger.MissingPolicy(cfg.Ledger.MissingItems))),
		Issuer:       auth.NewIssuer(jwtSecret, cfg.Auth.TokenTTL),
		Cache:        dashboardCache,
		DashboardTTL: cfg.Cache.DashboardTTL,
		LoginLimiter: api.NewRateLimiter(cfg.Auth.LoginRate, cfg.Auth.LoginBurst),
	})

	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           api.LoggingMiddleware(router),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       120 * time.Second,
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-quit
		slog.Info("shutdown signal received", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			slog.Error("server forced to shutdown", "error", err)
		}
	}()

	slog.Info("server started", "addr", cfg.Server.Addr, "missing_items", cfg.Ledger.MissingItems)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server: %w", err)
	}

	slog.Info("server stopped, closing database")
	return nil
}

// bootstrapAdmin creates the first admin account when there are no users. It
// returns the generated password, or "" when users already exist.
func bootstrapAdmin(ctx context.Context, database *sqlx.DB, username string) (string, error) {
	n, err := store.CountUsers(ctx, database)
	if err != nil {
		return "", fmt.Errorf("counting users: %w", err)
	}
	if n > 0 {
		return "", nil
	}

	password, err := generatePassword(16)
	if err != nil {
		return "", fmt.Errorf("generating password: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}

	if _, err := store.CreateUser(ctx, database, username, string(hash), model.RoleAdmin); err != nil {
		return "", fmt.Errorf("creating admin user: %w", err)
	}
	return password, nil
}

// printInitResult prints the generated admin credentials to stdout.
func printInitResult(username, password string) {
	fmt.Println("Admin account created:")
	fmt.Printf("  Username: %s\n", username)
	fmt.Printf("  Password: %s\n", password)
	fmt.Println()
	fmt.Println("Save this password, it cannot be recovered.")
	fmt.Println("The admin can change it after logging in.")
	fmt.Println()
}

// generatePassword creates a random password of the given length.
func generatePassword(length int) (string, error) {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%&*"
	result := make([]byte, length)
	for i := range result {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		result[i] = charset[n.Int64()]
	}
	return string(result), nil
}
