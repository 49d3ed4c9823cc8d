package credential

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager/types"
	"github.com/spf13/afero"

	"github.com/hairizuanbinnoorazman/synthetic-monitor/logger"
)

// Provider resolves a named secret into a Profile.
type Provider interface {
	Resolve(ctx context.Context, name string) (*Profile, error)
}

// SecretsManagerAPI is the subset of the Secrets Manager client used here.
type SecretsManagerAPI interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// SecretsManagerProvider reads profiles from AWS Secrets Manager.
type SecretsManagerProvider struct {
	client SecretsManagerAPI
	logger logger.Logger
}

// NewSecretsManagerProvider creates a provider for the given region.
// It uses AWS SDK v2's default credential chain.
func NewSecretsManagerProvider(ctx context.Context, region string, log logger.Logger) (*SecretsManagerProvider, error) {
	if region == "" {
		return nil, fmt.Errorf("secrets manager region cannot be empty")
	}

	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return NewSecretsManagerProviderWithClient(secretsmanager.NewFromConfig(cfg), log), nil
}

// NewSecretsManagerProviderWithClient wraps an existing client.
func NewSecretsManagerProviderWithClient(client SecretsManagerAPI, log logger.Logger) *SecretsManagerProvider {
	return &SecretsManagerProvider{
		client: client,
		logger: log,
	}
}

// Resolve fetches and parses the secret called name.
func (p *SecretsManagerProvider) Resolve(ctx context.Context, name string) (*Profile, error) {
	p.logger.Info(ctx, "fetching credentials from secrets manager", map[string]interface{}{
		"secret": name,
	})

	out, err := p.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(name),
	})
	if err != nil {
		var notFound *types.ResourceNotFoundException
		if errors.As(err, &notFound) {
			return nil, fmt.Errorf("%w: %s", ErrSecretNotFound, name)
		}
		return nil, fmt.Errorf("failed to get secret %s: %w", name, err)
	}

	var blob []byte
	switch {
	case out.SecretString != nil:
		blob = []byte(aws.ToString(out.SecretString))
	case len(out.SecretBinary) > 0:
		blob = out.SecretBinary
	default:
		return nil, fmt.Errorf("%w: secret %s has no value", ErrInvalidSecret, name)
	}

	profile, err := Parse(blob)
	if err != nil {
		return nil, fmt.Errorf("secret %s: %w", name, err)
	}
	return profile, nil
}

// FileProvider reads profiles from JSON files, for local runs. The name
// passed to Resolve is the file path.
type FileProvider struct {
	fs     afero.Fs
	logger logger.Logger
}

// NewFileProvider creates a provider over fs. A nil fs uses the OS filesystem.
func NewFileProvider(fs afero.Fs, log logger.Logger) *FileProvider {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &FileProvider{
		fs:     fs,
		logger: log,
	}
}

// Resolve reads and parses the file at name.
func (p *FileProvider) Resolve(ctx context.Context, name string) (*Profile, error) {
	p.logger.Info(ctx, "reading credentials from file", map[string]interface{}{
		"path": name,
	})

	blob, err := afero.ReadFile(p.fs, name)
	if err != nil {
		if errors.Is(err, afero.ErrFileNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrSecretNotFound, name)
		}
		return nil, fmt.Errorf("failed to read credentials file: %w", err)
	}

	profile, err := Parse(blob)
	if err != nil {
		return nil, fmt.Errorf("credentials file %s: %w", name, err)
	}
	return profile, nil
}
