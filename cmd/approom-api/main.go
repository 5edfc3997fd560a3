package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Joshep-c/approom/internal/config"
	"github.com/Joshep-c/approom/internal/database"
	"github.com/Joshep-c/approom/internal/logging"
	"github.com/Joshep-c/approom/internal/purchases"
	"github.com/Joshep-c/approom/internal/reminder"
	"github.com/Joshep-c/approom/internal/server"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	cfgFile string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "approom-api",
		Short: "Purchase ledger backend service",
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
	cmd.PersistentFlags().String("log-level", defaults.GetString("log.level"), "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().String("log-format", defaults.GetString("log.format"), "Log format (json, console)")
	cmd.PersistentFlags().Bool("reminder-enabled", defaults.GetBool("reminder.enabled"), "Post periodic purchase reminders")
	cmd.PersistentFlags().Duration("reminder-interval", defaults.GetDuration("reminder.interval"), "Reminder period (minimum 15m)")
	cmd.PersistentFlags().Int("feed-buffer-size", defaults.GetInt("feed.buffer_size"), "Per-subscriber snapshot channel capacity")

	bindFlag(cmd, "http.address", "http-address")
	bindFlag(cmd, "database.path", "database-path")
	bindFlag(cmd, "log.level", "log-level")
	bindFlag(cmd, "log.format", "log-format")
	bindFlag(cmd, "reminder.enabled", "reminder-enabled")
	bindFlag(cmd, "reminder.interval", "reminder-interval")
	bindFlag(cmd, "feed.buffer_size", "feed-buffer-size")
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
		if cfgFile != "" || !errors.As(err, &configNotFound) {
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

	logger, err := logging.NewLogger(appConfig.LogLevel, appConfig.LogFormat)
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

	purchaseService, err := purchases.NewService(purchases.ServiceConfig{
		Database:       db,
		Logger:         logger,
		FeedBufferSize: appConfig.FeedBufferSize,
	})
	if err != nil {
		return err
	}

	signalCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	handler, err := server.NewHTTPHandler(server.Dependencies{
		PurchaseService: purchaseService,
		Logger:          logger,
		Shutdown:        signalCtx.Done(),
	})
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              appConfig.HTTPAddress,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	if appConfig.ReminderEnabled {
		scheduler, err := reminder.NewScheduler(reminder.SchedulerConfig{
			Interval: appConfig.ReminderInterval,
			Title:    appConfig.ReminderTitle,
			Body:     appConfig.ReminderBody,
			Notifier: reminder.NewLogNotifier(logger.Named("reminder")),
			Logger:   logger,
		})
		if err != nil {
			return err
		}
		scheduler.Start(signalCtx)
		defer scheduler.Stop()
	}

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
