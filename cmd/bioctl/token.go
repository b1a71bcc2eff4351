package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	jwttoken "bioclock/internal/jwt_token"
	"bioclock/internal/platform/config"
	id "bioclock/pkg/domain"
)

var tokenCmd = &cobra.Command{
	Use:   "token <subject-id>",
	Short: "Mint a development bearer token",
	Long: `Sign a short-lived bearer token with BIOCLOCK_JWT_SIGNING_KEY for local
testing. Production tokens come from the identity provider.

Examples:
  bioctl token 4b7c2f0e-6a8d-4c3e-9f51-2d0a7e9b1c11
  bioctl token --operator --ttl 15m 4b7c2f0e-6a8d-4c3e-9f51-2d0a7e9b1c11`,
	Args: cobra.ExactArgs(1),
	RunE: runToken,
}

func init() {
	rootCmd.AddCommand(tokenCmd)

	tokenCmd.Flags().Bool("operator", false, "Grant the operator role")
	tokenCmd.Flags().Duration("ttl", time.Hour, "Token lifetime")
}

func runToken(cmd *cobra.Command, args []string) error {
	subject, err := id.ParseSubjectID(args[0])
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	role := ""
	if mustGetBool(cmd, "operator") {
		role = jwttoken.RoleOperator
	}

	svc := jwttoken.NewJWTService(cfg.Server.JWTSigningKey, cfg.Server.JWTIssuer, cfg.Server.JWTAudience)
	token, err := svc.GenerateAccessToken(subject, role, mustGetDuration(cmd, "ttl"))
	if err != nil {
		return fmt.Errorf("failed to sign token: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}
