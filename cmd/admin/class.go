package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/programme-lv/hwlog/classdir"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newClassCmd() *cobra.Command {
	var classCmd = &cobra.Command{
		Use:   "class",
		Short: "Register & look up classes",
	}

	var rec classdir.ClassRecord
	var channels string

	var classAddCmd = &cobra.Command{
		Use:   "add",
		Short: "Register a class",
		RunE: func(cmd *cobra.Command, args []string) error {
			rec.ChannelIDs = classdir.ParseChannelIDs(channels)
			t, err := openTables(cmd.Context())
			if err != nil {
				return err
			}
			if err := t.classes.Save(cmd.Context(), rec); err != nil {
				log.Error().Err(err).Str("classCode", rec.ClassCode).Msg("Error saving class")
				return err
			}
			log.Info().Str("classCode", rec.ClassCode).Int("channels", len(rec.ChannelIDs)).Msg("Saved class")
			fmt.Println(classView(&rec))
			return nil
		},
	}
	classAddCmd.Flags().StringVarP(&rec.ClassCode, "code", "c", "", "Class code, 6 or 7 characters (required)")
	classAddCmd.Flags().StringVarP(&rec.RoleID, "role", "r", "", "Class role ID (required)")
	classAddCmd.Flags().StringVar(&channels, "channels", "", "Channel IDs or mentions, any separator (required)")
	classAddCmd.Flags().StringVarP(&rec.Title, "title", "t", "", "Class title")
	classAddCmd.Flags().StringVar(&rec.ImageURL, "image", "", "Image posted after each logbook")
	classAddCmd.Flags().StringVar(&rec.ServerID, "server", "", "Guild ID")
	classAddCmd.Flags().IntVar(&rec.TotalAssignments, "total", 0, "Number of assignments, 0 for no limit")
	classAddCmd.MarkFlagRequired("code")
	classAddCmd.MarkFlagRequired("role")
	classAddCmd.MarkFlagRequired("channels")

	var code, channel, role string
	var classFindCmd = &cobra.Command{
		Use:   "find",
		Short: "Find a class by code, channel or role",
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := openTables(cmd.Context())
			if err != nil {
				return err
			}
			var found *classdir.ClassRecord
			switch {
			case code != "":
				found, err = t.classes.FindByCode(cmd.Context(), code)
			case channel != "":
				found, err = t.classes.FindByChannel(cmd.Context(), channel)
			case role != "":
				found, err = t.classes.FindByRole(cmd.Context(), role)
			default:
				return errors.New("one of --code, --channel or --role is required")
			}
			if err != nil {
				return err
			}
			if found == nil {
				return errors.New("class not found")
			}
			fmt.Println(classView(found))
			return nil
		},
	}
	classFindCmd.Flags().StringVarP(&code, "code", "c", "", "Class code")
	classFindCmd.Flags().StringVar(&channel, "channel", "", "Channel ID")
	classFindCmd.Flags().StringVarP(&role, "role", "r", "", "Role ID")
	classFindCmd.MarkFlagsMutuallyExclusive("code", "channel", "role")

	classCmd.AddCommand(classAddCmd)
	classCmd.AddCommand(classFindCmd)
	return classCmd
}

func classView(c *classdir.ClassRecord) string {
	labelStyle := lipgloss.NewStyle()
	valueStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#3498db"))

	total := "no limit"
	if c.TotalAssignments > 0 {
		total = fmt.Sprintf("%d", c.TotalAssignments)
	}
	lines := []string{
		fmt.Sprintf("%s %s | %s %s",
			labelStyle.Render("Class code:"), valueStyle.Render(c.ClassCode),
			labelStyle.Render("Title:"), valueStyle.Render(c.Title)),
		fmt.Sprintf("%s %s | %s %s",
			labelStyle.Render("Role:"), valueStyle.Render(c.RoleID),
			labelStyle.Render("Server:"), valueStyle.Render(c.ServerID)),
		fmt.Sprintf("%s %s",
			labelStyle.Render("Channels:"), valueStyle.Render(strings.Join(c.ChannelIDs, ", "))),
		fmt.Sprintf("%s %s",
			labelStyle.Render("Assignments:"), valueStyle.Render(total)),
	}
	if c.ImageURL != "" {
		lines = append(lines, fmt.Sprintf("%s %s",
			labelStyle.Render("Image:"), valueStyle.Render(c.ImageURL)))
	}
	for i := range len(lines) {
		lines[i] = "\t" + lines[i]
	}
	return strings.Join(lines, "\n")
}
