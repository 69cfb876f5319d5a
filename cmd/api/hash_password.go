package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spec-kit/line-menu-bot/internal/auth"
	"github.com/spec-kit/line-menu-bot/internal/config"
)

var bcryptCost int

var hashPasswordCmd = &cobra.Command{
	Use:   "hash-password <password>",
	Short: "Print a bcrypt hash for AUTH_ADMIN_PASSWORD_HASH",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cost := bcryptCost
		if !cmd.Flags().Changed("cost") {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			cost = cfg.Auth.BcryptCost
		}
		hash, err := auth.HashPassword(args[0], cost)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), hash)
		return nil
	},
}

func init() {
	hashPasswordCmd.Flags().IntVar(&bcryptCost, "cost", 0, "bcrypt cost (default AUTH_BCRYPT_COST)")
}
