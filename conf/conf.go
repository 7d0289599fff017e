package conf

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"github.com/programme-lv/hwlog/hwsubm"
	"github.com/programme-lv/hwlog/logbook"
	"github.com/programme-lv/hwlog/reaction"
)

const (
	DefaultRegion         = "eu-central-1"
	DefaultClassTableName = "BA-Class"
	DefaultHwTableName    = "BA-Homework"
	DefaultHttpAddr       = ":8080"
	DefaultBotConfigPath  = "bot.toml"
)

// Config is the process configuration read from the environment.
type Config struct {
	DiscordToken           string
	DiscordTokenSecretName string
	CommandGuildID         string

	AwsRegion      string `validate:"required"`
	ClassTableName string `validate:"required"`
	HwTableName    string `validate:"required"`
	HwWindowIndex  string `validate:"required"`
	JwtKey         string
	HttpAddr       string `validate:"required"`
	BotConfigPath  string

	Bot BotFile
}

// BotFile is the TOML file with bot behaviour and per-server settings.
type BotFile struct {
	Policy  PolicySection  `toml:"policy"`
	Logbook LogbookSection `toml:"logbook"`
	// OutputChannels maps a guild ID to the channel logbooks are posted in.
	OutputChannels map[string]string `toml:"output_channels" validate:"dive,keys,numeric,endkeys,numeric"`
}

type PolicySection struct {
	Mode          string `toml:"mode" validate:"omitempty,oneof=manual_check dual_signal bare_counting"`
	Student       string `toml:"student" validate:"omitempty,oneof=author reactor"`
	ValidateRange *bool  `toml:"validate_range"`
}

type LogbookSection struct {
	ChunkLimit int `toml:"chunk_limit" validate:"omitempty,min=100,max=2000"`
}

var validate = validator.New()

// Load reads .env (if present), the environment and the bot file.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	cfg := &Config{
		DiscordToken:           os.Getenv("DISCORD_TOKEN"),
		DiscordTokenSecretName: os.Getenv("DISCORD_TOKEN_SECRET_NAME"),
		CommandGuildID:         os.Getenv("COMMAND_GUILD_ID"),
		AwsRegion:              getEnv("AWS_REGION", DefaultRegion),
		ClassTableName:         getEnv("DDB_CLASS_TABLE_NAME", DefaultClassTableName),
		HwTableName:            getEnv("DDB_HW_TABLE_NAME", DefaultHwTableName),
		HwWindowIndex:          getEnv("DDB_HW_WINDOW_INDEX", hwsubm.DefaultWindowIndex),
		JwtKey:                 os.Getenv("JWT_KEY"),
		HttpAddr:               getEnv("HTTP_ADDR", DefaultHttpAddr),
		BotConfigPath:          getEnv("BOT_CONFIG_PATH", DefaultBotConfigPath),
	}

	bot, err := LoadBotFile(cfg.BotConfigPath)
	if err != nil {
		return nil, err
	}
	cfg.Bot = *bot

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// LoadBotFile parses the bot TOML file. A missing file yields defaults.
func LoadBotFile(path string) (*BotFile, error) {
	bot := &BotFile{}
	content, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		slog.Default().Warn("bot config file not found, using defaults", "path", path)
		return bot, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return ParseBotFile(content)
}

func ParseBotFile(content []byte) (*BotFile, error) {
	bot := &BotFile{}
	if err := toml.Unmarshal(content, bot); err != nil {
		return nil, fmt.Errorf("failed to parse bot config: %w", err)
	}
	if err := validate.Struct(bot); err != nil {
		return nil, fmt.Errorf("invalid bot config: %w", err)
	}
	return bot, nil
}

// ReactionPolicy applies the [policy] section over the defaults.
func (b *BotFile) ReactionPolicy() (reaction.Policy, error) {
	p := reaction.DefaultPolicy()
	if b.Policy.Mode != "" {
		m, err := reaction.ParseMode(b.Policy.Mode)
		if err != nil {
			return p, err
		}
		p.Mode = m
	}
	if b.Policy.Student != "" {
		s, err := reaction.ParseStudentSource(b.Policy.Student)
		if err != nil {
			return p, err
		}
		p.Student = s
	}
	if b.Policy.ValidateRange != nil {
		p.ValidateRange = *b.Policy.ValidateRange
	}
	return p, nil
}

func (b *BotFile) ChunkLimit() int {
	if b.Logbook.ChunkLimit == 0 {
		return logbook.DefaultChunkLimit
	}
	return b.Logbook.ChunkLimit
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
