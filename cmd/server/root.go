package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"points-server/internal/infrastructure/config"
	otelinfra "points-server/internal/infrastructure/observability/otel"
)

// rootCmd ルートコマンド
var rootCmd = &cobra.Command{
	Use:           "points-server",
	Short:         "QRコードで店舗ポイントを付与・交換するサーバー",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute ルートコマンドを実行
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(tokenCmd)
}

// loadConfig 設定とロガーを用意
func loadConfig() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	z, err := otelinfra.NewZapLogger(cfg.Log.Level)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return cfg, z, nil
}
