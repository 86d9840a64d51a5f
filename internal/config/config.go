package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"

	"github.com/alpacachat/alpaca/backend/internal/model/persona"
	"github.com/alpacachat/alpaca/backend/internal/provider/groq"
)

// CredentialKey is both the environment variable and the config file field holding the Groq key.
const CredentialKey = "GROQ_API_KEY"

const (
	ProviderGroq = "groq"
	ProviderArk  = "ark"
)

var ErrCredentialMissing = errors.New("GROQ_API_KEY not found in environment or config file")

// Config 聚合整个服务的配置项。
type Config struct {
	Server  ServerConfig
	AI      AIConfig
	Storage StorageConfig
}

// Load 从环境变量与 JSON 配置文件加载配置。
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	storage := loadStorageConfig()

	file, err := LoadFile(storage.ConfigPath)
	if err != nil {
		return nil, err
	}

	ai, err := loadAIConfig(file)
	if err != nil {
		return nil, err
	}

	return &Config{Server: server, AI: ai, Storage: storage}, nil
}

// ServerConfig 描述 HTTP 服务配置。
type ServerConfig struct {
	Addr string
}

// loadServerConfig 解析服务器监听地址。
func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		// 允许用户直接传入 ":8080" 或 "127.0.0.1:8080"。
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// StorageConfig 描述配置文件与聊天记录文件的位置。
type StorageConfig struct {
	ConfigPath     string
	TranscriptPath string
}

func loadStorageConfig() StorageConfig {
	return StorageConfig{
		ConfigPath:     getEnvOrDefault("CONFIG_PATH", "config.json"),
		TranscriptPath: getEnvOrDefault("TRANSCRIPT_PATH", "chat_history.json"),
	}
}

// AIConfig 描述大模型相关配置。
type AIConfig struct {
	Provider       string
	APIKey         string
	BaseURL        string
	Model          string
	PersonaID      string
	TokenWarnLimit int
	Ark            ArkConfig
}

// ArkConfig keeps the Volcengine Ark alternative wired for AI_PROVIDER=ark.
type ArkConfig struct {
	APIKey    string
	AccessKey string
	SecretKey string
	Model     string
	BaseURL   string
	Region    string
}

// Enabled 表示是否提供了必需的密钥。
func (c ArkConfig) Enabled() bool {
	return c.Model != "" && (c.APIKey != "" || (c.AccessKey != "" && c.SecretKey != ""))
}

// NewChatModel 使用配置创建一个模型实例。
func (c AIConfig) NewChatModel(ctx context.Context) (model.ChatModel, error) {
	switch c.Provider {
	case ProviderGroq:
		chatModel, err := groq.NewChatModel(groq.Config{
			APIKey:  c.APIKey,
			BaseURL: c.BaseURL,
			Model:   c.Model,
		})
		if err != nil {
			return nil, err
		}
		return chatModel, nil
	case ProviderArk:
		if !c.Ark.Enabled() {
			return nil, fmt.Errorf("Ark 凭证或模型配置缺失，至少提供 ARK_API_KEY + Model 或 AK/SK 组合")
		}
		chatModel, err := ark.NewChatModel(ctx, &ark.ChatModelConfig{
			BaseURL:   c.Ark.BaseURL,
			Region:    c.Ark.Region,
			APIKey:    c.Ark.APIKey,
			AccessKey: c.Ark.AccessKey,
			SecretKey: c.Ark.SecretKey,
			Model:     c.Ark.Model,
		})
		if err != nil {
			return nil, err
		}
		return chatModel, nil
	default:
		return nil, fmt.Errorf("unsupported AI_PROVIDER %q", c.Provider)
	}
}

func loadAIConfig(file File) (AIConfig, error) {
	provider := strings.ToLower(getEnvOrDefault("AI_PROVIDER", ProviderGroq))
	if provider != ProviderGroq && provider != ProviderArk {
		return AIConfig{}, fmt.Errorf("invalid AI_PROVIDER value: %q", provider)
	}

	warnLimit := 8000
	if override, err := parseOptionalIntEnv("AI_TOKEN_WARN_LIMIT"); err != nil {
		return AIConfig{}, err
	} else if override != nil {
		warnLimit = *override
	}

	cfg := AIConfig{
		Provider:       provider,
		BaseURL:        getEnvOrDefault("GROQ_BASE_URL", groq.DefaultBaseURL),
		Model:          groq.DefaultModel,
		PersonaID:      getEnvOrDefault("PERSONA_ID", persona.DefaultID),
		TokenWarnLimit: warnLimit,
		Ark: ArkConfig{
			APIKey:    strings.TrimSpace(os.Getenv("ARK_API_KEY")),
			AccessKey: strings.TrimSpace(os.Getenv("ARK_ACCESS_KEY")),
			SecretKey: strings.TrimSpace(os.Getenv("ARK_SECRET_KEY")),
			Model:     strings.TrimSpace(os.Getenv("ARK_MODEL")),
			BaseURL:   getEnvOrDefault("ARK_BASE_URL", "https://ark.cn-beijing.volces.com/api/v3"),
			Region:    getEnvOrDefault("ARK_REGION", "cn-beijing"),
		},
	}

	if provider == ProviderGroq {
		key, err := ResolveAPIKey(file)
		if err != nil {
			return AIConfig{}, err
		}
		cfg.APIKey = key
	}

	return cfg, nil
}

// ResolveAPIKey prefers the GROQ_API_KEY environment variable over the config file value.
func ResolveAPIKey(file File) (string, error) {
	if key := strings.TrimSpace(os.Getenv(CredentialKey)); key != "" {
		return key, nil
	}
	if key := file.String(CredentialKey); key != "" {
		return key, nil
	}
	return "", ErrCredentialMissing
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
