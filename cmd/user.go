package cmd

import (
	"errors"
	"fmt"
	"strings"

	"prompt-cms/cache"
	"prompt-cms/config"
	"prompt-cms/logger"
	"prompt-cms/repositories"
	"prompt-cms/services"
	"prompt-cms/validation"

	"github.com/spf13/cobra"
)

var confirmEmail string

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage user accounts",
}

// userConfirmCmd marks a pending sign-up as confirmed so it can sign in.
var userConfirmCmd = &cobra.Command{
	Use:   "confirm",
	Short: "Confirm a pending account",
	RunE: func(cmd *cobra.Command, args []string) error {
		email := strings.TrimSpace(confirmEmail)
		if email == "" {
			return errors.New("--email is required")
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		db, err := config.InitDB(cfg.Database)
		if err != nil {
			return err
		}
		defer func() {
			if sqlDB, err := db.DB(); err == nil {
				_ = sqlDB.Close()
			}
		}()

		policy := services.NewAccessPolicy(cfg.Auth.AdminEmails, cfg.Auth.SignupEmails())
		validate := validation.New()
		auth := services.NewAuthService(
			repositories.NewUserRepository(db),
			services.NewProfileService(repositories.NewProfileRepository(db), validate),
			policy,
			services.NewTokenIssuer(cfg.Auth.Secret(), cfg.Auth.TokenTTL),
			cache.NewMemoryRevocations(),
			validate,
			cfg.Auth.RequireConfirmation,
		)
		if err := auth.ConfirmUser(cmd.Context(), email); err != nil {
			return err
		}

		logger.Log.Infow("user confirmed", "email", email)
		fmt.Fprintf(cmd.OutOrStdout(), "confirmed %s\n", email)
		return nil
	},
}

func init() {
	userConfirmCmd.Flags().StringVar(&confirmEmail, "email", "", "Email of the account to confirm")
	userCmd.AddCommand(userConfirmCmd)
}
