package generator

import (
	"context"

	"google.golang.org/genai"

	"github.com/shouni/gemini-creator-kit/pkg/domain"
)

// GenerativeModel はゲートウェイが利用するプロバイダ呼び出しの抽象です。
// adapters.GenAIClient が *genai.Client を包んで実装します。
type GenerativeModel interface {
	// GenerateContent は Gemini の generateContent を呼び出します。
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
	// GenerateImages は Imagen の generateImages を呼び出します。
	GenerateImages(ctx context.Context, model, prompt string, config *genai.GenerateImagesConfig) (*genai.GenerateImagesResponse, error)
}

// ContentGateway はビジネスロジック層（studio）が利用する統合窓口です。
type ContentGateway interface {
	GenerateImageBatch(ctx context.Context, prompt string, aspectRatio domain.AspectRatio, count int) (domain.ImageSet, error)
	EditImages(ctx context.Context, parts []domain.MediaPart, instruction string, aspectRatio domain.AspectRatio, count int) (domain.ImageSet, error)
	GenerateStructuredText(ctx context.Context, prompt string, schema *genai.Schema, pro bool) (map[string]any, error)
	GenerateStructuredRaw(ctx context.Context, prompt string, schema *genai.Schema, pro bool) (string, error)
	GenerateSpeech(ctx context.Context, text, style, voice string) (domain.Audio, error)
	GeneratePromptFromMedia(ctx context.Context, media domain.MediaPart, instruction string) (string, error)
	RemoveBackground(ctx context.Context, media domain.MediaPart) (domain.ImageSet, error)
	GenerateStoryboard(ctx context.Context, script string, reference *domain.MediaPart) ([]domain.StoryboardScene, error)
	Generate(ctx context.Context, req domain.Request) (domain.Result, error)
}
