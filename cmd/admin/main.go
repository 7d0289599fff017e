package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/programme-lv/hwlog/classdir"
	"github.com/programme-lv/hwlog/conf"
	"github.com/programme-lv/hwlog/hwsubm"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

type tables struct {
	cfg     *conf.Config
	classes *classdir.DdbClassTable
	subms   *hwsubm.DdbSubmTable
}

func openTables(ctx context.Context) (*tables, error) {
	cfg, err := conf.Load()
	if err != nil {
		return nil, err
	}
	awsCfg, err := conf.NewAwsConfig(ctx, cfg.AwsRegion)
	if err != nil {
		return nil, err
	}
	ddb := dynamodb.NewFromConfig(awsCfg)
	log.Debug().
		Str("region", cfg.AwsRegion).
		Str("classTable", cfg.ClassTableName).
		Str("hwTable", cfg.HwTableName).
		Msg("opened tables")
	return &tables{
		cfg:     cfg,
		classes: classdir.NewDdbClassTable(ddb, cfg.ClassTableName),
		subms:   hwsubm.NewDdbSubmTable(ddb, cfg.HwTableName, cfg.HwWindowIndex),
	}, nil
}

func main() {
	var logLevel string

	var rootCmd = &cobra.Command{
		Use:   "hwlog-admin",
		Short: "Admin CLI tool for the homework logbook bot",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return InitializeLogger(logLevel, false, "")
		},
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level [debug, info, warn, error]")

	rootCmd.AddCommand(newClassCmd())
	rootCmd.AddCommand(newLogbookCmd())
	rootCmd.AddCommand(newTokenCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
