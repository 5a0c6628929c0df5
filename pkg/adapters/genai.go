package adapters

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"github.com/shouni/gemini-creator-kit/pkg/generator"
	"github.com/shouni/gemini-creator-kit/pkg/video"
)

// コンパイル時にインターフェースの実装を確認するのだ
var (
	_ generator.GenerativeModel = (*GenAIClient)(nil)
	_ video.VideoModel          = (*GenAIClient)(nil)
)

// ClientOptions は GenAIClient の生成オプションです。
type ClientOptions struct {
	APIKey string
	// HTTPClient が nil の場合は SDK の既定クライアントを使う。
	HTTPClient *http.Client
	// BaseURL はエンドポイントの差し替え用（テストやプロキシ経由の接続）。
	BaseURL string
}

// GenAIClient は *genai.Client を包み、ゲートウェイとポーラーが必要とする呼び出しだけを公開します。
type GenAIClient struct {
	client *genai.Client
}

// NewGenAIClient は Gemini API バックエンドのクライアントを生成します。
func NewGenAIClient(ctx context.Context, opts ClientOptions) (*GenAIClient, error) {
	apiKey := strings.TrimSpace(opts.APIKey)
	if apiKey == "" {
		return nil, fmt.Errorf("API キーが設定されていません")
	}

	cfg := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: opts.HTTPClient,
	}
	if opts.BaseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: opts.BaseURL}
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("genai クライアントの初期化に失敗しました: %w", err)
	}
	slog.DebugContext(ctx, "genai クライアントを初期化しました", "custom_base_url", opts.BaseURL != "")
	return &GenAIClient{client: client}, nil
}

func (c *GenAIClient) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	return c.client.Models.GenerateContent(ctx, model, contents, config)
}

func (c *GenAIClient) GenerateImages(ctx context.Context, model, prompt string, config *genai.GenerateImagesConfig) (*genai.GenerateImagesResponse, error) {
	return c.client.Models.GenerateImages(ctx, model, prompt, config)
}

func (c *GenAIClient) GenerateVideos(ctx context.Context, model, prompt string, image *genai.Image, config *genai.GenerateVideosConfig) (*genai.GenerateVideosOperation, error) {
	return c.client.Models.GenerateVideos(ctx, model, prompt, image, config)
}

// GetVideosOperation はオペレーション名で最新の状態を取得します。
func (c *GenAIClient) GetVideosOperation(ctx context.Context, op *genai.GenerateVideosOperation) (*genai.GenerateVideosOperation, error) {
	return c.client.Operations.GetVideosOperation(ctx, op, nil)
}
