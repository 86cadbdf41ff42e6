package main

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	rdb "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/dropDatabas3/gatekeeper/internal/authz"
	"github.com/dropDatabas3/gatekeeper/internal/config"
	"github.com/dropDatabas3/gatekeeper/internal/groups"
	httpx "github.com/dropDatabas3/gatekeeper/internal/http"
	"github.com/dropDatabas3/gatekeeper/internal/http/controllers"
	"github.com/dropDatabas3/gatekeeper/internal/http/router"
	"github.com/dropDatabas3/gatekeeper/internal/oauth"
	"github.com/dropDatabas3/gatekeeper/internal/observability/logger"
	"github.com/dropDatabas3/gatekeeper/internal/rate"
	"github.com/dropDatabas3/gatekeeper/internal/resources"
	"github.com/dropDatabas3/gatekeeper/internal/roles"
	"github.com/dropDatabas3/gatekeeper/internal/store/pg"
	"github.com/dropDatabas3/gatekeeper/internal/users"
	migrations "github.com/dropDatabas3/gatekeeper/migrations/postgres"
)

func main() {
	var configPath string

	root := &cobra.Command{
		Use:           "gatekeeper",
		Short:         "Authorization and credential server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "configs/config.yaml", "path to the YAML config")

	root.AddCommand(serveCmd(&configPath))
	root.AddCommand(migrateCmd(&configPath))
	root.AddCommand(seedCmd(&configPath))

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	// .env is optional; real env always wins over the file.
	_ = godotenv.Load()
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func openStore(ctx context.Context, cfg *config.Config) (*pg.Store, error) {
	if strings.TrimSpace(cfg.Storage.DSN) == "" {
		return nil, errors.New("storage.dsn is required (or STORAGE_DSN)")
	}
	return pg.New(ctx, cfg.Storage.DSN, pg.PoolConfig{
		MaxOpenConns:    cfg.Storage.Postgres.MaxOpenConns,
		MaxIdleConns:    cfg.Storage.Postgres.MaxIdleConns,
		ConnMaxLifetime: cfg.Storage.Postgres.ConnMaxLifetime,
	})
}

func serveCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}

			logger.Init(logger.Config{Env: cfg.App.Env, ServiceName: "gatekeeper"})
			defer logger.Sync()
			log := logger.Named("main")

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			store, err := openStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer store.Close()
			if err := store.Ping(ctx); err != nil {
				return fmt.Errorf("postgres ping: %w", err)
			}

			var limiter rate.Limiter
			if cfg.Rate.Enabled {
				rc := rdb.NewClient(&rdb.Options{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
				defer rc.Close()
				limiter = rate.NewRedisLimiter(rc, cfg.Redis.Prefix+"rl:", cfg.Rate.Token.Limit, cfg.RateWindow())
			}

			var idTokenKey []byte
			if k := strings.TrimSpace(cfg.OAuth.IDTokenKey); k != "" {
				idTokenKey, err = base64.StdEncoding.DecodeString(k)
				if err != nil {
					return fmt.Errorf("oauth.id_token_key: %w", err)
				}
			}

			guard := authz.NewGuard(store, store)

			resourceSvc := resources.New(resources.Deps{
				Store:   store,
				Guard:   guard,
				Linkers: resources.NewLinkers(store),
			})
			roleSvc := roles.New(roles.Deps{Store: store, Guard: guard})
			groupSvc := groups.New(groups.Deps{Store: store, Guard: guard})
			userSvc := users.New(users.Deps{Store: store})
			oauthSvc := oauth.New(oauth.Deps{
				Store:      store,
				TokenTTL:   cfg.TokenTTL(),
				Issuer:     cfg.OAuth.Issuer,
				IDTokenKey: idTokenKey,
			})

			metrics := httpx.RegisterMetrics(httpx.MetricsConfig{Pool: store.Pool()})
			authz.DecisionHook = httpx.CountAuthzDecision

			handler := router.New(router.Deps{
				Resources:   controllers.NewResourcesController(resourceSvc),
				Roles:       controllers.NewRolesController(roleSvc),
				Groups:      controllers.NewGroupsController(groupSvc),
				Users:       controllers.NewUsersController(userSvc),
				OAuth:       controllers.NewOAuthController(oauthSvc, userSvc, store),
				Health:      controllers.NewHealthController(store),
				Tokens:      oauthSvc,
				RateLimiter: limiter,
				Metrics:     metrics,
			})

			srv := httpx.NewServer(cfg.Server.Addr, handler)

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				log.Info("listening", zap.String("addr", cfg.Server.Addr), zap.String("env", cfg.App.Env))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			})
			g.Go(func() error {
				<-gctx.Done()
				log.Info("shutting down")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				return srv.Shutdown(shutdownCtx)
			})
			return g.Wait()
		},
	}
}

func migrateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate [up|down] [steps]",
		Short: "Apply the embedded schema migrations",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			logger.Init(logger.Config{Env: cfg.App.Env, ServiceName: "gatekeeper"})
			defer logger.Sync()
			log := logger.Named("migrate")

			action := "up"
			steps := 0
			if len(args) >= 1 && args[0] != "" {
				action = strings.ToLower(args[0])
			}
			if len(args) >= 2 {
				n, err := strconv.Atoi(args[1])
				if err != nil || n <= 0 {
					return fmt.Errorf("steps must be a positive integer, got %q", args[1])
				}
				steps = n
			}

			ctx := cmd.Context()
			store, err := openStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			var suffix string
			switch action {
			case "up":
				suffix = "_up.sql"
			case "down":
				suffix = "_down.sql"
			default:
				return fmt.Errorf("unknown action %q, use: up | down [steps]", action)
			}

			files, err := listEmbedded(migrations.FS, suffix)
			if err != nil {
				return err
			}
			sort.Strings(files)
			if action == "down" {
				// most recent first
				for i, j := 0, len(files)-1; i < j; i, j = i+1, j-1 {
					files[i], files[j] = files[j], files[i]
				}
			}
			if steps > 0 && steps < len(files) {
				files = files[:steps]
			}

			for _, name := range files {
				b, err := fs.ReadFile(migrations.FS, name)
				if err != nil {
					return err
				}
				start := time.Now()
				if _, err := store.Pool().Exec(ctx, string(b)); err != nil {
					return fmt.Errorf("exec %s: %w", name, err)
				}
				log.Info("applied", zap.String("file", name), zap.Duration("took", time.Since(start)))
			}
			log.Info("migrations completed", zap.String("action", action), zap.Int("count", len(files)))
			return nil
		},
	}
}

func seedCmd(configPath *string) *cobra.Command {
	var adminEmail string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Apply the seed data (privileges, system roles, categories)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			logger.Init(logger.Config{Env: cfg.App.Env, ServiceName: "gatekeeper"})
			defer logger.Sync()
			log := logger.Named("seed")

			ctx := cmd.Context()
			store, err := openStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			b, err := fs.ReadFile(migrations.SeedFS, "seed.sql")
			if err != nil {
				return err
			}
			if _, err := store.Pool().Exec(ctx, string(b)); err != nil {
				return fmt.Errorf("seed: %w", err)
			}
			log.Info("seed data applied")

			if adminEmail != "" {
				u, err := store.UserByEmail(ctx, strings.ToLower(strings.TrimSpace(adminEmail)))
				if err != nil {
					return fmt.Errorf("admin user %s: %w", adminEmail, err)
				}
				if err := store.MakeSystemAdmin(ctx, u.ID); err != nil {
					return fmt.Errorf("make system admin: %w", err)
				}
				log.Info("granted system-administrator", zap.String("email", u.Email))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&adminEmail, "admin-email", "", "grant system-administrator to this existing user")
	return cmd
}

func listEmbedded(fsys fs.FS, suffix string) ([]string, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if e.Type().IsRegular() && strings.HasSuffix(e.Name(), suffix) {
			out = append(out, e.Name())
		}
	}
	return out, nil
}
