package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/programme-lv/hwlog/auth"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newTokenCmd() *cobra.Command {
	var tokenCmd = &cobra.Command{
		Use:   "token",
		Short: "Manage HTTP API tokens",
	}

	var operator string
	var ttl time.Duration
	var tokenIssueCmd = &cobra.Command{
		Use:   "issue",
		Short: "Issue a logbook read token signed with JWT_KEY",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := loadDotEnv(".env"); err != nil {
				return err
			}
			key := os.Getenv("JWT_KEY")
			if key == "" {
				return errors.New("JWT_KEY is not set")
			}
			token, err := auth.GenerateJWT(operator, []string{auth.ScopeLogbookRead}, ttl, []byte(key))
			if err != nil {
				return err
			}
			log.Info().Str("operator", operator).Dur("ttl", ttl).Msg("Issued token")
			fmt.Println(token)
			return nil
		},
	}
	tokenIssueCmd.Flags().StringVarP(&operator, "operator", "o", "", "Who the token is for (required)")
	tokenIssueCmd.Flags().DurationVar(&ttl, "ttl", auth.DefaultTokenTTL, "Token lifetime")
	tokenIssueCmd.MarkFlagRequired("operator")

	tokenCmd.AddCommand(tokenIssueCmd)
	return tokenCmd
}

// loadDotEnv loads path into the environment. A missing file is not an error.
func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}
