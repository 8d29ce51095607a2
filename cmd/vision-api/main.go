package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/devnnex/vision-academy/internal/catalog"
	"github.com/devnnex/vision-academy/internal/config"
	"github.com/devnnex/vision-academy/internal/database"
	"github.com/devnnex/vision-academy/internal/gateway"
	"github.com/devnnex/vision-academy/internal/localstore"
	"github.com/devnnex/vision-academy/internal/logging"
	"github.com/devnnex/vision-academy/internal/render"
	"github.com/devnnex/vision-academy/internal/server"
	"github.com/devnnex/vision-academy/internal/session"
	"github.com/devnnex/vision-academy/internal/syncer"
)

var (
	cfgFile string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "vision-api",
		Short: "Vision Academy catalog service",
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context())
		},
	}

	setupFlags(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func setupFlags(cmd *cobra.Command) {
	config.ApplyDefaults(viper.GetViper())
	defaults := config.NewViper()
	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to configuration file")
	cmd.PersistentFlags().String("http-address", defaults.GetString("http.address"), "HTTP listen address")
	cmd.PersistentFlags().String("database-path", defaults.GetString("database.path"), "SQLite database path")
	cmd.PersistentFlags().String("gateway-url", defaults.GetString("gateway.url"), "Remote catalog backend URL (empty disables remote sync)")
	cmd.PersistentFlags().Int("token-ttl-minutes", defaults.GetInt("session.token_ttl_minutes"), "Session token TTL in minutes")
	cmd.PersistentFlags().String("log-level", defaults.GetString("log.level"), "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().String("signing-secret", "", "Session signing secret (overrides env)")

	bindFlag(cmd, "http.address", "http-address")
	bindFlag(cmd, "database.path", "database-path")
	bindFlag(cmd, "gateway.url", "gateway-url")
	bindFlag(cmd, "session.token_ttl_minutes", "token-ttl-minutes")
	bindFlag(cmd, "log.level", "log-level")
	bindFlag(cmd, "session.signing_secret", "signing-secret")
}

func bindFlag(cmd *cobra.Command, key, flag string) {
	if err := viper.BindPFlag(key, cmd.PersistentFlags().Lookup(flag)); err != nil {
		panic(err)
	}
}

func initConfig() error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}

	if err := viper.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if cfgFile != "" && errors.As(err, &configNotFound) {
			return err
		}
	}

	return nil
}

func runServer(ctx context.Context) error {
	appConfig, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}

	logger, err := logging.NewLogger(appConfig.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	db, err := database.OpenSQLite(appConfig.DatabasePath, logger)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	repo, err := localstore.NewRepository(localstore.RepositoryConfig{Database: db})
	if err != nil {
		return err
	}

	authenticator := session.NewAuthenticator(map[session.Role]session.Credential{
		session.RoleStudent: {Username: appConfig.StudentUser, Password: appConfig.StudentPass},
		session.RoleAdmin:   {Username: appConfig.AdminUser, Password: appConfig.AdminPass},
	})
	sessions := session.NewService(session.ServiceConfig{
		Authenticator: authenticator,
		Keeper:        repo,
		Logger:        logger,
	})
	tokens := session.NewTokenIssuer(session.TokenIssuerConfig{
		SigningSecret: []byte(appConfig.SigningSecret),
		Issuer:        "vision-auth",
		Audience:      "vision-api",
		TokenTTL:      appConfig.TokenTTL,
	})

	store := catalog.NewStore()

	remote, err := gateway.NewClient(appConfig.GatewayURL, nil)
	if err != nil {
		return err
	}

	trigger := render.NewTrigger(store, sessions, logger)
	persistence := localstore.NewSink(repo, logger)
	trigger.Register(persistence)
	events := server.NewEventDispatcher()
	trigger.Register(server.NewEventSink(events, nil))

	// Restore the previous session's catalog before any remote load; a
	// successful load wholesale-replaces the videos anyway.
	persistence.Restore(store)

	ids := catalog.NewUUIDProvider()

	coordinator, err := syncer.NewCoordinator(syncer.CoordinatorConfig{
		Source:     remote,
		Store:      store,
		Renderer:   trigger,
		Thumbnail:  gateway.ThumbnailFromLink,
		IDProvider: ids,
		Logger:     logger,
	})
	if err != nil {
		return err
	}

	catalogService, err := catalog.NewService(catalog.ServiceConfig{
		Store:      store,
		Pusher:     remote,
		Renderer:   trigger,
		Resyncer:   coordinator,
		Thumbnail:  gateway.ThumbnailFromLink,
		IDProvider: ids,
		Logger:     logger,
	})
	if err != nil {
		return err
	}

	handler, err := server.NewHTTPHandler(server.Dependencies{
		Sessions: sessions,
		Tokens:   tokens,
		Catalog:  catalogService,
		Store:    store,
		Syncer:   coordinator,
		Events:   events,
		Renderer: trigger,
		Logger:   logger,
	})
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:    appConfig.HTTPAddress,
		Handler: handler,
	}

	signalCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := coordinator.LoadOnce(signalCtx); err != nil {
			logger.Warn("startup catalog load failed", zap.Error(err))
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("address", appConfig.HTTPAddress))
		err := httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-signalCtx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
