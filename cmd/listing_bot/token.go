package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yusuf-polat/AI-Translate/internal/config"
	"github.com/yusuf-polat/AI-Translate/internal/server"
)

var tokenOperator string

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint a bearer token for the control API",
	Long:  `Signs a token with JWT_SECRET, valid for JWT_EXPIRATION_HOURS (default 24).`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		jwtConfig, err := config.NewJWTConfig()
		if err != nil {
			return err
		}
		token, err := server.NewJWTService(jwtConfig).GenerateToken(tokenOperator)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
		return err
	},
}

func init() {
	tokenCmd.Flags().StringVar(&tokenOperator, "operator", "operator", "Name recorded in the token")
	rootCmd.AddCommand(tokenCmd)
}
