package generator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/shouni/gemini-creator-kit/pkg/domain"
	"github.com/shouni/gemini-creator-kit/pkg/metrics"
)

// Gateway はコンテンツ種別ごとにプロバイダ呼び出しを組み立て、結果を正規化します。
type Gateway struct {
	aiClient GenerativeModel
	models   Models
	opts     Options
	metrics  *metrics.Recorder
}

// NewGateway は依存関係を注入して Gateway を初期化します。
// recorder は nil を許容（メトリクスなし動作）。
func NewGateway(aiClient GenerativeModel, models Models, opts Options, recorder *metrics.Recorder) (*Gateway, error) {
	if aiClient == nil {
		return nil, fmt.Errorf("aiClient is required")
	}
	defaults := DefaultModels()
	if models.Image == "" {
		models.Image = defaults.Image
	}
	if models.ImageEdit == "" {
		models.ImageEdit = defaults.ImageEdit
	}
	if models.Text == "" {
		models.Text = defaults.Text
	}
	if models.TextPro == "" {
		models.TextPro = defaults.TextPro
	}
	if models.Speech == "" {
		models.Speech = defaults.Speech
	}

	return &Gateway{
		aiClient: aiClient,
		models:   models,
		opts:     opts.withDefaults(),
		metrics:  recorder,
	}, nil
}

// GenerateImageBatch は1回の呼び出しで count 枚のバリエーションを生成します。
// 部分結果のポリシーは無く、呼び出しの失敗はそのまま失敗です。
func (g *Gateway) GenerateImageBatch(ctx context.Context, prompt string, aspectRatio domain.AspectRatio, count int) (domain.ImageSet, error) {
	if count <= 0 {
		count = g.opts.ImageCount
	}
	slog.InfoContext(ctx, "Imagen 画像生成をリクエストします", "model", g.models.Image, "count", count, "aspect_ratio", aspectRatio)

	started := time.Now()
	resp, err := g.aiClient.GenerateImages(ctx, g.models.Image, prompt, &genai.GenerateImagesConfig{
		NumberOfImages: int32(count),
		OutputMIMEType: batchOutputMIMEType,
		AspectRatio:    string(aspectRatio),
	})
	err = Classify(opImageBatch, err)
	g.metrics.ObserveRequest(opImageBatch, started, err)
	if err != nil {
		return nil, err
	}
	return imagesFromGenerated(resp, count), nil
}

// EditImages は同じ入力パーツと指示で count 回の独立した呼び出しを並行に行います。
// 画像編集エンドポイントは1回につき1枚しか返さないためです。
// インラインデータを持たない応答は落とされるので、結果は count より短くなることがあります。
func (g *Gateway) EditImages(ctx context.Context, parts []domain.MediaPart, instruction string, aspectRatio domain.AspectRatio, count int) (domain.ImageSet, error) {
	if len(parts) == 0 {
		return nil, fmt.Errorf("%w: 少なくとも1枚の入力画像が必要です", domain.ErrInvalidInput)
	}
	if count <= 0 {
		count = g.opts.ImageCount
	}
	genaiParts, err := g.mediaParts(parts, instruction, true)
	if err != nil {
		return nil, err
	}
	config := &genai.GenerateContentConfig{
		ResponseModalities: []string{string(genai.ModalityImage)},
	}
	if aspectRatio != "" {
		config.ImageConfig = &genai.ImageConfig{AspectRatio: string(aspectRatio)}
	}

	slog.InfoContext(ctx, "Gemini 画像編集をリクエストします", "model", g.models.ImageEdit, "count", count, "input_images", len(parts))

	images, err := fanOut(ctx, count, func(ctx context.Context, i int) (*domain.Image, error) {
		return g.editOnce(ctx, genaiParts, config)
	})
	if err != nil {
		return nil, err
	}

	set := make(domain.ImageSet, 0, count)
	for i, img := range images {
		if img == nil {
			slog.WarnContext(ctx, "画像データを含まない応答を除外しました", "index", i)
			continue
		}
		set = append(set, *img)
	}
	return set, nil
}

func (g *Gateway) editOnce(ctx context.Context, parts []*genai.Part, config *genai.GenerateContentConfig) (*domain.Image, error) {
	started := time.Now()
	resp, err := g.aiClient.GenerateContent(ctx, g.models.ImageEdit, userContents(parts), config)
	err = Classify(opImageEdit, err)
	g.metrics.ObserveRequest(opImageEdit, started, err)
	if err != nil {
		return nil, err
	}
	return inlineImage(resp), nil
}

// GenerateSpeech はスタイル付きのテキストを読み上げた音声を返します。
// 音声データが無い応答はエラーとして扱います。
func (g *Gateway) GenerateSpeech(ctx context.Context, text, style, voice string) (domain.Audio, error) {
	prompt := text
	if s := strings.TrimSpace(style); s != "" {
		prompt = fmt.Sprintf("Say %s: %s", strings.ToLower(s), text)
	}
	config := &genai.GenerateContentConfig{
		ResponseModalities: []string{string(genai.ModalityAudio)},
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: voice},
			},
		},
	}

	started := time.Now()
	resp, err := g.aiClient.GenerateContent(ctx, g.models.Speech, userContents([]*genai.Part{genai.NewPartFromText(prompt)}), config)
	err = Classify(opSpeech, err)
	if err == nil {
		if blob, reason := extractInline(resp); blob == nil {
			err = absentPayload(opSpeech, "no audio returned", reason)
		} else {
			g.metrics.ObserveRequest(opSpeech, started, nil)
			return domain.Audio{Data: blob.Data, MIMEType: blob.MIMEType}, nil
		}
	}
	g.metrics.ObserveRequest(opSpeech, started, err)
	return domain.Audio{}, err
}

// GeneratePromptFromMedia は画像と指示からテキストを生成し、加工せずに返します。
func (g *Gateway) GeneratePromptFromMedia(ctx context.Context, media domain.MediaPart, instruction string) (string, error) {
	parts, err := g.mediaParts([]domain.MediaPart{media}, instruction, true)
	if err != nil {
		return "", err
	}

	started := time.Now()
	resp, err := g.aiClient.GenerateContent(ctx, g.models.Text, userContents(parts), nil)
	err = Classify(opPromptFromMedia, err)
	var text string
	if err == nil {
		text, err = responseText(opPromptFromMedia, resp)
	}
	g.metrics.ObserveRequest(opPromptFromMedia, started, err)
	if err != nil {
		return "", err
	}
	return text, nil
}

// RemoveBackground は主題だけを残した画像を1枚返します。
func (g *Gateway) RemoveBackground(ctx context.Context, media domain.MediaPart) (domain.ImageSet, error) {
	// 透過を保つため圧縮しない
	parts, err := g.mediaParts([]domain.MediaPart{media}, removeBackgroundInstruction, false)
	if err != nil {
		return nil, err
	}
	config := &genai.GenerateContentConfig{
		ResponseModalities: []string{string(genai.ModalityImage)},
	}

	started := time.Now()
	resp, err := g.aiClient.GenerateContent(ctx, g.models.ImageEdit, userContents(parts), config)
	err = Classify(opRemoveBackground, err)
	if err == nil {
		if blob, reason := extractInline(resp); blob == nil {
			err = absentPayload(opRemoveBackground, "could not remove background", reason)
		} else {
			g.metrics.ObserveRequest(opRemoveBackground, started, nil)
			return domain.ImageSet{{Data: blob.Data, MIMEType: blob.MIMEType}}, nil
		}
	}
	g.metrics.ObserveRequest(opRemoveBackground, started, err)
	return nil, err
}

// Generate はリクエストの直和型を明示的に振り分けます。動画は video パッケージが扱います。
func (g *Gateway) Generate(ctx context.Context, req domain.Request) (domain.Result, error) {
	switch r := req.(type) {
	case domain.TextToImageRequest:
		set, err := g.GenerateImageBatch(ctx, r.Prompt, r.AspectRatio, r.Count)
		if err != nil {
			return nil, err
		}
		return domain.ImageSetResult{Images: set}, nil
	case domain.ImageEditRequest:
		set, err := g.EditImages(ctx, r.Parts, r.Instruction, r.AspectRatio, r.Count)
		if err != nil {
			return nil, err
		}
		return domain.ImageSetResult{Images: set}, nil
	case domain.StructuredTextRequest:
		obj, err := g.GenerateStructuredText(ctx, r.Prompt, r.Schema, r.Pro)
		if err != nil {
			return nil, err
		}
		return domain.StructuredResult{Object: obj}, nil
	case domain.SpeechRequest:
		audio, err := g.GenerateSpeech(ctx, r.Text, r.Style, r.Voice)
		if err != nil {
			return nil, err
		}
		return domain.AudioResult{Audio: audio}, nil
	case domain.PromptFromMediaRequest:
		text, err := g.GeneratePromptFromMedia(ctx, r.Media, r.Instruction)
		if err != nil {
			return nil, err
		}
		return domain.TextResult{Text: text}, nil
	case domain.BackgroundRemovalRequest:
		set, err := g.RemoveBackground(ctx, r.Media)
		if err != nil {
			return nil, err
		}
		return domain.ImageSetResult{Images: set}, nil
	case domain.StoryboardRequest:
		scenes, err := g.GenerateStoryboard(ctx, r.Script, r.Reference)
		if err != nil {
			return nil, err
		}
		return domain.StoryboardResult{Scenes: scenes}, nil
	case nil:
		return nil, fmt.Errorf("%w: request is nil", domain.ErrInvalidInput)
	default:
		return nil, fmt.Errorf("%w: unsupported request kind %q", domain.ErrInvalidInput, req.Kind())
	}
}
