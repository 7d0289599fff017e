package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/programme-lv/hwlog/logbook"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newLogbookCmd() *cobra.Command {
	var logbookCmd = &cobra.Command{
		Use:   "logbook",
		Short: "Build logbooks without posting them",
	}

	var req logbook.Request
	var logbookPrintCmd = &cobra.Command{
		Use:   "print",
		Short: "Print the logbook of a class for a KST period",
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := openTables(cmd.Context())
			if err != nil {
				return err
			}
			gen := logbook.NewGenerator(t.classes, t.subms)
			report, err := gen.Build(cmd.Context(), req)
			if err != nil {
				log.Error().Err(err).Str("classCode", req.ClassCode).Msg("Error building logbook")
				return err
			}

			violetText := lipgloss.NewStyle().Foreground(lipgloss.Color("#e056fd"))
			chunks := logbook.Chunk(logbook.Render(report), t.cfg.Bot.ChunkLimit())
			for i, chunk := range chunks {
				fmt.Println(violetText.Render(fmt.Sprintf("--- message %d/%d ---", i+1, len(chunks))))
				fmt.Print(chunk)
			}
			if report.Class.ImageURL != "" {
				fmt.Println(violetText.Render("--- image ---"))
				fmt.Println(report.Class.ImageURL)
			}
			return nil
		},
	}
	logbookPrintCmd.Flags().StringVarP(&req.ClassCode, "class", "c", "", "Class code (required)")
	logbookPrintCmd.Flags().StringVar(&req.StartDate, "start-date", "", "Start date YYYY/MM/DD (required)")
	logbookPrintCmd.Flags().StringVar(&req.StartTime, "start-time", "00:00", "Start time HH:MM")
	logbookPrintCmd.Flags().StringVar(&req.EndDate, "end-date", "", "End date YYYY/MM/DD (required)")
	logbookPrintCmd.Flags().StringVar(&req.EndTime, "end-time", "23:59", "End time HH:MM")
	logbookPrintCmd.Flags().BoolVarP(&req.AllowMultiple, "multiple", "m", false, "List every submission of a student")
	logbookPrintCmd.Flags().IntVar(&req.MinEntries, "min", 1, "Minimum submissions per student")
	logbookPrintCmd.MarkFlagRequired("class")
	logbookPrintCmd.MarkFlagRequired("start-date")
	logbookPrintCmd.MarkFlagRequired("end-date")

	logbookCmd.AddCommand(logbookPrintCmd)
	return logbookCmd
}
