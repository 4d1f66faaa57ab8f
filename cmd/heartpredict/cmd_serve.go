package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"heartpredict/db"
	"heartpredict/dispatch"
	qhttp "heartpredict/http"
	"heartpredict/monitoring"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the web form, upload and JSON API server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				cfg.Http.Port = port
			}

			logger, err := newLogger(cfg)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			defer logger.Sync()

			// 1. Model dispatcher
			dispatcher, err := dispatch.New(cfg.Dispatch(), logger)
			if err != nil {
				return fmt.Errorf("init dispatcher: %w", err)
			}
			defer dispatcher.Close()

			// 2. Prediction history
			store, err := db.Open(cfg.Database.Path)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer store.Close()
			logger.Info("database initialized", zap.String("path", cfg.Database.Path))

			// 3. Live prediction feed
			hub := monitoring.NewWebSocketHub(logger)
			go hub.Start()
			defer hub.Stop()
			if cfg.MQTT.Broker != "" {
				sink, err := monitoring.NewMQTTSink(monitoring.MQTTConfig{
					Broker:      cfg.MQTT.Broker,
					ClientID:    cfg.MQTT.ClientID,
					TopicPrefix: cfg.MQTT.TopicPrefix,
					QoS:         cfg.MQTT.QoS,
				}, logger)
				if err != nil {
					return fmt.Errorf("init mqtt: %w", err)
				}
				defer sink.Close()
				hub.AddSink(sink)
			}

			// 4. HTTP server
			server := qhttp.NewServer(qhttp.ServerConfig{
				Port:           cfg.Http.Port,
				Timeout:        cfg.Http.Timeout,
				AllowedOrigins: cfg.Http.AllowedOrigins,
				MaxUploadBytes: cfg.Http.MaxUploadMB << 20,
			}, &qhttp.Handler{
				Predictor: dispatcher,
				History:   store,
				Feed:      hub,
				Metrics:   monitoring.NewMetricsCollector(),
				Logger:    logger,
			})

			errCh := make(chan error, 1)
			go func() {
				errCh <- server.Start()
			}()

			// 5. Graceful shutdown
			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			defer signal.Stop(quit)

			select {
			case err := <-errCh:
				return err
			case <-quit:
			}
			if err := server.Stop(); err != nil {
				logger.Warn("server forced to shutdown", zap.Error(err))
			}
			logger.Info("exiting")
			return nil
		},
	}
	cmd.Flags().IntVar(&port, "port", 0, "Listen port (overrides config)")
	return cmd
}
