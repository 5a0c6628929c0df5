package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/shouni/gemini-creator-kit/pkg/domain"
	"github.com/shouni/gemini-creator-kit/pkg/generator"
	"github.com/shouni/gemini-creator-kit/pkg/video"
)

const (
	envPrefix     = "CREATOR"
	configFileEnv = "CREATOR_CONFIG_FILE"
	// APIKeyEnv は資格情報の再選択時に読み直す環境変数名。
	APIKeyEnv = "CREATOR_API_KEY"
	// FallbackAPIKeyEnv は genai SDK の慣例に合わせた予備の環境変数名。
	FallbackAPIKeyEnv = "GEMINI_API_KEY"
)

// Config は CLI とライブラリ組み立てに使う実行時設定です。
type Config struct {
	APIKey     string           `mapstructure:"api_key"`
	Models     ModelsConfig     `mapstructure:"models"`
	Video      VideoConfig      `mapstructure:"video"`
	Storyboard StoryboardConfig `mapstructure:"storyboard"`
	Images     ImagesConfig     `mapstructure:"images"`
	Log        LogConfig        `mapstructure:"log"`
	HTTP       HTTPConfig       `mapstructure:"http"`
}

type ModelsConfig struct {
	Image     string `mapstructure:"image"`
	ImageEdit string `mapstructure:"image_edit"`
	Text      string `mapstructure:"text"`
	TextPro   string `mapstructure:"text_pro"`
	Speech    string `mapstructure:"speech"`
	Video     string `mapstructure:"video"`
}

type VideoConfig struct {
	PollInterval     time.Duration `mapstructure:"poll_interval"`
	ProgressInterval time.Duration `mapstructure:"progress_interval"`
	// Timeout が 0 の場合、ポーリングは無期限に続く。
	Timeout  time.Duration `mapstructure:"timeout"`
	Messages []string      `mapstructure:"messages"`
}

type StoryboardConfig struct {
	MaxScenes int `mapstructure:"max_scenes"`
}

type ImagesConfig struct {
	Count              int  `mapstructure:"count"`
	CompressInputs     bool `mapstructure:"compress_inputs"`
	CompressionQuality int  `mapstructure:"compression_quality"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type HTTPConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

// Options は設定ローダーの挙動を指定します。
type Options struct {
	ConfigFile string
	EnvFile    string
	// RequireAPIKey が true の場合、API キーが無ければ Validate が失敗する。
	RequireAPIKey bool
}

// Load は YAML ファイルと環境変数をマージした設定を返します。
func Load(opts Options) (*Config, error) {
	if opts.EnvFile != "" {
		_ = godotenv.Load(opts.EnvFile)
	} else {
		_ = godotenv.Load()
	}

	v := viper.New()
	setDefaults(v)

	explicitFile := false
	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		explicitFile = true
	} else if cfg := os.Getenv(configFileEnv); cfg != "" {
		v.SetConfigFile(cfg)
		explicitFile = true
	}
	if !explicitFile {
		v.SetConfigName("creator")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if cfg.APIKey == "" {
		cfg.APIKey = strings.TrimSpace(os.Getenv(FallbackAPIKeyEnv))
	}

	if err := cfg.Validate(opts.RequireAPIKey); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate は値の範囲を確認します。
func (c *Config) Validate(requireAPIKey bool) error {
	if requireAPIKey && strings.TrimSpace(c.APIKey) == "" {
		return fmt.Errorf("api_key is required (set %s or %s)", APIKeyEnv, FallbackAPIKeyEnv)
	}
	if c.Video.PollInterval <= 0 {
		return fmt.Errorf("video.poll_interval must be positive")
	}
	if c.Video.ProgressInterval < 0 {
		return fmt.Errorf("video.progress_interval must not be negative")
	}
	if c.Video.Timeout < 0 {
		return fmt.Errorf("video.timeout must not be negative")
	}
	if c.Storyboard.MaxScenes <= 0 {
		return fmt.Errorf("storyboard.max_scenes must be positive")
	}
	if c.Images.Count <= 0 || c.Images.Count > 4 {
		return fmt.Errorf("images.count must be between 1 and 4")
	}
	if c.Images.CompressionQuality < 1 || c.Images.CompressionQuality > 100 {
		return fmt.Errorf("images.compression_quality must be between 1 and 100")
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json")
	}
	if c.HTTP.Timeout < 0 {
		return fmt.Errorf("http.timeout must not be negative")
	}
	return nil
}

// SlogLevel は設定文字列を slog.Level に変換します。
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return slog.LevelInfo, fmt.Errorf("log.level: %w", err)
	}
	return level, nil
}

// GeneratorModels はゲートウェイ用のモデル構成を返します。
func (c *Config) GeneratorModels() generator.Models {
	return generator.Models{
		Image:     c.Models.Image,
		ImageEdit: c.Models.ImageEdit,
		Text:      c.Models.Text,
		TextPro:   c.Models.TextPro,
		Speech:    c.Models.Speech,
	}
}

// GeneratorOptions はゲートウェイの挙動設定を返します。
func (c *Config) GeneratorOptions() generator.Options {
	return generator.Options{
		ImageCount:         c.Images.Count,
		MaxScenes:          c.Storyboard.MaxScenes,
		CompressInputs:     c.Images.CompressInputs,
		CompressionQuality: c.Images.CompressionQuality,
	}
}

// PollerConfig はポーラーの設定を返します。
func (c *Config) PollerConfig() video.Config {
	return video.Config{
		Model:            c.Models.Video,
		PollInterval:     c.Video.PollInterval,
		ProgressInterval: c.Video.ProgressInterval,
		Timeout:          c.Video.Timeout,
		Messages:         c.Video.Messages,
	}
}

func setDefaults(v *viper.Viper) {
	defaults := generator.DefaultModels()
	v.SetDefault("api_key", "")
	v.SetDefault("models.image", defaults.Image)
	v.SetDefault("models.image_edit", defaults.ImageEdit)
	v.SetDefault("models.text", defaults.Text)
	v.SetDefault("models.text_pro", defaults.TextPro)
	v.SetDefault("models.speech", defaults.Speech)
	v.SetDefault("models.video", video.DefaultModel)

	v.SetDefault("video.poll_interval", video.DefaultPollInterval.String())
	v.SetDefault("video.progress_interval", video.DefaultPollInterval.String())
	v.SetDefault("video.timeout", "0s")
	v.SetDefault("video.messages", video.DefaultMessages)

	v.SetDefault("storyboard.max_scenes", generator.DefaultMaxScenes)

	v.SetDefault("images.count", generator.DefaultImageCount)
	v.SetDefault("images.compress_inputs", true)
	v.SetDefault("images.compression_quality", generator.DefaultCompressionQuality)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("http.timeout", "5m")
}

// ParseAspectRatio は CLI などの文字列入力を検証します。
func ParseAspectRatio(s string) (domain.AspectRatio, error) {
	r := domain.AspectRatio(strings.TrimSpace(s))
	if !r.Valid() {
		return "", fmt.Errorf("%w: aspect ratio must be 1:1, 16:9 or 9:16: %q", domain.ErrInvalidInput, s)
	}
	return r, nil
}
