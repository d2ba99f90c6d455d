package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/skip2/go-qrcode"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mememadness/server/internal/auth"
	"github.com/mememadness/server/internal/bridge"
	"github.com/mememadness/server/internal/bus"
	"github.com/mememadness/server/internal/game"
	"github.com/mememadness/server/internal/judge"
	"github.com/mememadness/server/internal/service"
	"github.com/mememadness/server/internal/storage/sqlite"
	"github.com/mememadness/server/internal/ws"
	"github.com/mememadness/server/pkg/logging"
)

const releaseVersion = "0.1.0"

type config struct {
	bind           string
	port           int
	dbPath         string
	adminUser      string
	adminPass      string
	jwtSecret      string
	openAIKey      string
	openAIModel    string
	openAIEndpoint string
	gameDuration   time.Duration
	baseURL        string
	verbose        bool
}

func (c *config) validate() error {
	if c.port < 1 || c.port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.port)
	}
	if c.adminPass == "" {
		return errors.New("--admin-pass must be set")
	}
	if c.gameDuration <= 0 {
		return errors.New("--game-duration must be positive")
	}
	return nil
}

func newCmd(cfg *config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("MEMEMADNESS")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "mememadness-server",
		Short:         "A party game server where groups submit memes and an AI picks the winners.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		SilenceUsage:  true,
		Version:       releaseVersion,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}
			return run(cmd.Context(), cfg)
		},
	}

	fs := cmd.Flags()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVarP(&cfg.bind, "bind", "b", "0.0.0.0", "address to bind to (env: MEMEMADNESS_BIND)")
	fs.IntVarP(&cfg.port, "port", "p", 8080, "port to listen on (env: MEMEMADNESS_PORT)")
	fs.StringVar(&cfg.dbPath, "db-path", "./data/mememadness.db", "path to the sqlite database (env: MEMEMADNESS_DB_PATH)")
	fs.StringVar(&cfg.adminUser, "admin-user", "admin", "admin username (env: MEMEMADNESS_ADMIN_USER)")
	fs.StringVar(&cfg.adminPass, "admin-pass", "", "admin password, plain or bcrypt hash (env: MEMEMADNESS_ADMIN_PASS)")
	fs.StringVar(&cfg.jwtSecret, "jwt-secret", "", "secret for signing admin session tokens, random when empty (env: MEMEMADNESS_JWT_SECRET)")
	fs.StringVar(&cfg.openAIKey, "openai-api-key", "", "API key for the judging model, mock judging when empty (env: MEMEMADNESS_OPENAI_API_KEY)")
	fs.StringVar(&cfg.openAIModel, "openai-model", "", "judging model name (env: MEMEMADNESS_OPENAI_MODEL)")
	fs.StringVar(&cfg.openAIEndpoint, "openai-endpoint", "", "chat completions endpoint override (env: MEMEMADNESS_OPENAI_ENDPOINT)")
	fs.DurationVar(&cfg.gameDuration, "game-duration", 20*time.Minute, "length of the submission window (env: MEMEMADNESS_GAME_DURATION)")
	fs.StringVar(&cfg.baseURL, "base-url", "", "public URL encoded in the join QR code (env: MEMEMADNESS_BASE_URL)")
	fs.BoolVarP(&cfg.verbose, "verbose", "v", false, "display additional output (env: MEMEMADNESS_VERBOSE)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("mememadness-server v{{.Version}}\n")

	return cmd
}

func run(ctx context.Context, cfg *config) error {
	logger := logging.Setup(cfg.verbose)

	store, err := sqlite.New(cfg.dbPath)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()
	logger.Info("storage initialized", "database", cfg.dbPath)

	eventBus := bus.New()

	initial := bridge.Bootstrap(ctx, store, logger, time.Now())
	gameStore := game.NewStore(initial)

	br := bridge.Attach("server", gameStore, store, eventBus, logger)
	defer br.Close()

	jwtSecret := cfg.jwtSecret
	if jwtSecret == "" {
		jwtSecret = uuid.New().String()
		logger.Warn("no jwt secret configured, admin sessions will not survive a restart")
	}
	authenticator := auth.NewAdminAuthenticator(cfg.adminUser, cfg.adminPass)
	jwtManager := auth.NewJWTManager(jwtSecret, 12*time.Hour)

	judgeClient := judge.New(judge.Config{
		APIKey:   cfg.openAIKey,
		Model:    cfg.openAIModel,
		Endpoint: cfg.openAIEndpoint,
		Logger:   logger,
	})

	svc := service.NewGameService(gameStore, judgeClient, authenticator, jwtManager, logger, service.Options{
		GameDuration: cfg.gameDuration,
	})

	hub := ws.NewHub(svc.Snapshot, logger)
	go hub.Run(ctx)
	gameStore.Subscribe(func(game.State) { hub.Broadcast() })

	mux := http.NewServeMux()

	path, handler := service.NewGameServiceHandler(svc, jwtManager, logger)
	mux.Handle(path, handler)

	mux.Handle("/ws", hub)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	})
	mux.HandleFunc("/qr.png", qrHandler(cfg.baseURL))

	corsHandler := corsMiddleware(mux)
	h2cHandler := h2c.NewHandler(corsHandler, &http2.Server{})

	srv := &http.Server{
		Addr:              net.JoinHostPort(cfg.bind, strconv.Itoa(cfg.port)),
		Handler:           h2cHandler,
		IdleTimeout:       10 * time.Minute,
		ReadHeaderTimeout: 30 * time.Second,
	}

	errs := make(chan error, 1)
	go func() {
		logger.Info("server starting", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}
	}()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("shutdown did not complete cleanly", "error", err)
	}
	logger.Info("server stopped")
	return nil
}

// qrHandler serves a PNG QR code pointing players at the game. The encoded
// URL is the configured base URL, or derived from the request when unset.
func qrHandler(baseURL string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		url := baseURL
		if url == "" {
			scheme := "http"
			if r.TLS != nil {
				scheme = "https"
			}
			if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
				scheme = proto
			}
			url = scheme + "://" + r.Host + "/"
		}

		const qrSize = 320
		png, err := qrcode.Encode(url, qrcode.Medium, qrSize)
		if err != nil {
			http.Error(w, "qr generation failed", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(png)
	}
}

// corsMiddleware adds CORS headers for browser access.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Connect-Protocol-Version, Connect-Timeout-Ms")
		w.Header().Set("Access-Control-Expose-Headers", "Connect-Protocol-Version, Connect-Timeout-Ms")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := &config{}
	cmd := newCmd(cfg)
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
