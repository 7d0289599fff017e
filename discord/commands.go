package discord

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/programme-lv/hwlog/classdir"
	"github.com/programme-lv/hwlog/logbook"
)

const (
	cmdLogbook   = "loghw"
	cmdFindClass = "findcc"
)

var minEntriesFloor = 1.0

// Commands are the slash commands the bot registers.
var Commands = []*discordgo.ApplicationCommand{
	{
		Name:        cmdLogbook,
		Description: "Post the homework logbook of a class for a period (KST)",
		Options: []*discordgo.ApplicationCommandOption{
			stringOpt("class_code", "Class code, e.g. BA1034"),
			stringOpt("start_date", "Start date, YYYY/MM/DD"),
			stringOpt("start_time", "Start time, HH:MM"),
			stringOpt("end_date", "End date, YYYY/MM/DD"),
			stringOpt("end_time", "End time, HH:MM"),
			{
				Type:        discordgo.ApplicationCommandOptionBoolean,
				Name:        "multiple_entries",
				Description: "List every submission of a student, not only the latest",
			},
			{
				Type:        discordgo.ApplicationCommandOptionInteger,
				Name:        "min_entries",
				Description: "Only list students with at least this many submissions",
				MinValue:    &minEntriesFloor,
			},
		},
	},
	{
		Name:        cmdFindClass,
		Description: "Find the class code of a class role",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionRole,
				Name:        "role",
				Description: "Class role",
				Required:    true,
			},
		},
	},
}

func stringOpt(name, desc string) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        name,
		Description: desc,
		Required:    true,
	}
}

// logbookRequest reads /loghw options.
func logbookRequest(opts []*discordgo.ApplicationCommandInteractionDataOption, guildID, channelID string) logbook.Request {
	req := logbook.Request{
		MinEntries:      1,
		GuildID:         guildID,
		OriginChannelID: channelID,
	}
	for _, o := range opts {
		switch o.Name {
		case "class_code":
			req.ClassCode = o.StringValue()
		case "start_date":
			req.StartDate = o.StringValue()
		case "start_time":
			req.StartTime = o.StringValue()
		case "end_date":
			req.EndDate = o.StringValue()
		case "end_time":
			req.EndTime = o.StringValue()
		case "multiple_entries":
			req.AllowMultiple = o.BoolValue()
		case "min_entries":
			req.MinEntries = int(o.IntValue())
		}
	}
	return req
}

func logbookReply(res logbook.Result) string {
	lines := make([]string, 0, len(res.Warnings)+1)
	for _, w := range res.Warnings {
		lines = append(lines, "⚠️ "+w)
	}
	lines = append(lines, res.UserMessage)
	return strings.Join(lines, "\n")
}

func roleOption(opts []*discordgo.ApplicationCommandInteractionDataOption) string {
	for _, o := range opts {
		if o.Name == "role" {
			return o.RoleValue(nil, "").ID
		}
	}
	return ""
}

func findClassReply(roleID string, class *classdir.ClassRecord) string {
	if class == nil {
		return fmt.Sprintf("❌ no class uses the role <@&%s>", roleID)
	}
	title := class.Title
	if title == "" {
		title = class.ClassCode
	}
	return fmt.Sprintf("🔎 <@&%s> is **%s**, class code `%s`", roleID, title, class.ClassCode)
}
