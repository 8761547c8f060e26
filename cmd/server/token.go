package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	authapp "points-server/internal/application/auth"
	otelinfra "points-server/internal/infrastructure/observability/otel"
)

var (
	tokenUserID string
	tokenRole   string
)

// tokenCmd 開発用のベアラートークンを発行
var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "開発用のベアラートークンを発行",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, z, err := loadConfig()
		if err != nil {
			return err
		}
		defer func() { _ = z.Sync() }()

		logger := otelinfra.NewLoggerWithZap(otelinfra.Tracer("points-server"), z)
		resp, err := authapp.NewAuthApplicationService(&cfg.JWT, logger).GenerateToken(context.Background(), &authapp.GenerateTokenRequest{
			UserID: tokenUserID,
			Role:   tokenRole,
		})
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), resp.Token)
		return nil
	},
}

func init() {
	tokenCmd.Flags().StringVar(&tokenUserID, "user", "", "ユーザーID")
	tokenCmd.Flags().StringVar(&tokenRole, "role", "client", "ロール (client, merchant)")
	_ = tokenCmd.MarkFlagRequired("user")
}
