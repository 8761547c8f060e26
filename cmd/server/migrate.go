package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"points-server/internal/infrastructure/persistence/mysql"
	"points-server/internal/infrastructure/seed"
)

var migrateSeedFile string

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "MySQLスキーマを適用し、必要なら初期データを投入",
	RunE: func(cmd *cobra.Command, args []string) error {
		return migrate(cmd.Context())
	},
}

func init() {
	migrateCmd.Flags().StringVar(&migrateSeedFile, "seed", "", "投入するYAMLの初期データファイル")
}

func migrate(ctx context.Context) error {
	cfg, z, err := loadConfig()
	if err != nil {
		return err
	}
	defer func() { _ = z.Sync() }()

	db, err := mysql.NewDB(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := mysql.Migrate(ctx, db); err != nil {
		return err
	}
	z.Info("schema applied")

	if migrateSeedFile == "" {
		return nil
	}
	data, err := seed.Load(migrateSeedFile)
	if err != nil {
		return err
	}
	if err := mysql.ApplySeed(ctx, db, data); err != nil {
		return err
	}
	z.Info("seed applied")
	return nil
}
