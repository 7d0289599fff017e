package conf

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/retry"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

func NewAwsConfig(ctx context.Context, region string) (aws.Config, error) {
	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(region),
		config.WithRetryer(func() aws.Retryer {
			return retry.AddWithMaxAttempts(retry.NewStandard(), 10)
		}),
	)
	if err != nil {
		return aws.Config{}, fmt.Errorf("unable to load SDK config: %w", err)
	}
	return cfg, nil
}

// SecretGetter is the part of the Secrets Manager client used here.
type SecretGetter interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput,
		optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// ResolveDiscordToken returns DISCORD_TOKEN when set, otherwise reads the
// named secret. The secret is either the bare token or {"token": "..."}.
func (c *Config) ResolveDiscordToken(ctx context.Context, sm SecretGetter) (string, error) {
	if c.DiscordToken != "" {
		return c.DiscordToken, nil
	}
	if c.DiscordTokenSecretName == "" {
		return "", errors.New("neither DISCORD_TOKEN nor DISCORD_TOKEN_SECRET_NAME is set")
	}
	value, err := getSecret(ctx, sm, c.DiscordTokenSecretName)
	if err != nil {
		return "", fmt.Errorf("failed to get discord token from AWS: %w", err)
	}
	return parseTokenSecret(value)
}

func parseTokenSecret(value string) (string, error) {
	value = strings.TrimSpace(value)
	if !strings.HasPrefix(value, "{") {
		if value == "" {
			return "", errors.New("discord token secret is empty")
		}
		return value, nil
	}
	var secret struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal([]byte(value), &secret); err != nil {
		return "", fmt.Errorf("failed to parse discord token secret: %w", err)
	}
	if secret.Token == "" {
		return "", errors.New("discord token secret has no token field")
	}
	return secret.Token, nil
}

func getSecret(ctx context.Context, sm SecretGetter, secretName string) (string, error) {
	input := &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(secretName),
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	result, err := sm.GetSecretValue(ctx, input)
	if err != nil {
		return "", err
	}
	if result.SecretString == nil {
		return "", errors.New("secret has no string value")
	}
	return *result.SecretString, nil
}
