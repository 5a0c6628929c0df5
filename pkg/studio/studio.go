package studio

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/shouni/gemini-creator-kit/pkg/credential"
	"github.com/shouni/gemini-creator-kit/pkg/domain"
	"github.com/shouni/gemini-creator-kit/pkg/generator"
	"github.com/shouni/gemini-creator-kit/pkg/video"
)

const opStudio = "studio"

// VideoGenerator は動画生成の窓口です。video.Service が満たします。
type VideoGenerator interface {
	Generate(ctx context.Context, sess *credential.Session, req domain.VideoRequest, progress video.ProgressFunc) (domain.VideoLocatorResult, error)
}

// Studio は各機能の入力を検証し、指示文を組み立ててゲートウェイに委譲します。
type Studio struct {
	gateway    generator.ContentGateway
	videos     VideoGenerator
	imageCount int
}

// New は Studio を初期化します。videos が nil の場合、動画機能はエラーを返します。
func New(gateway generator.ContentGateway, videos VideoGenerator, imageCount int) (*Studio, error) {
	if gateway == nil {
		return nil, fmt.Errorf("gateway is required")
	}
	if imageCount <= 0 {
		imageCount = generator.DefaultImageCount
	}
	return &Studio{gateway: gateway, videos: videos, imageCount: imageCount}, nil
}

// TextToImage はプロンプトから画像を生成します。
func (s *Studio) TextToImage(ctx context.Context, prompt string, ratio domain.AspectRatio) (domain.ImageSet, error) {
	if err := requireText("プロンプト", prompt); err != nil {
		return nil, err
	}
	if err := validateRatio(ratio); err != nil {
		return nil, err
	}
	set, err := s.gateway.GenerateImageBatch(ctx, prompt, ratio, s.imageCount)
	return nonEmpty(FeatureTextToImage, set, err)
}

// CombineImages はモデル画像に商品画像を合成します。
func (s *Studio) CombineImages(ctx context.Context, model, product domain.MediaPart, instructions string, ratio domain.AspectRatio, background Background) (domain.ImageSet, error) {
	if model.Empty() || product.Empty() {
		return nil, fmt.Errorf("%w: モデル画像と商品画像の両方が必要です", domain.ErrInvalidInput)
	}
	if err := requireText("指示", instructions); err != nil {
		return nil, err
	}
	if err := validateRatio(ratio); err != nil {
		return nil, err
	}
	set, err := s.gateway.EditImages(ctx, []domain.MediaPart{model, product}, combineInstruction(instructions, ratio, background), ratio, s.imageCount)
	return nonEmpty(FeatureImageCombiner, set, err)
}

// ChangeModelStyle はモデルの見た目を保ったままバリエーションを作ります。style は空でもよい。
func (s *Studio) ChangeModelStyle(ctx context.Context, model domain.MediaPart, style string) (domain.ImageSet, error) {
	if model.Empty() {
		return nil, fmt.Errorf("%w: モデル画像が必要です", domain.ErrInvalidInput)
	}
	set, err := s.gateway.EditImages(ctx, []domain.MediaPart{model}, modelVariationInstruction(style), "", s.imageCount)
	return nonEmpty(FeatureChangeModelStyle, set, err)
}

// ImageToImage は入力画像をプロンプトに従って変換します。
func (s *Studio) ImageToImage(ctx context.Context, image domain.MediaPart, prompt string) (domain.ImageSet, error) {
	if image.Empty() {
		return nil, fmt.Errorf("%w: 入力画像が必要です", domain.ErrInvalidInput)
	}
	if err := requireText("プロンプト", prompt); err != nil {
		return nil, err
	}
	set, err := s.gateway.EditImages(ctx, []domain.MediaPart{image}, prompt, "", s.imageCount)
	return nonEmpty(FeatureImageToImage, set, err)
}

// RemoveBackground は主題だけを残した画像を返します。
func (s *Studio) RemoveBackground(ctx context.Context, image domain.MediaPart) (domain.Image, error) {
	if image.Empty() {
		return domain.Image{}, fmt.Errorf("%w: 入力画像が必要です", domain.ErrInvalidInput)
	}
	set, err := s.gateway.RemoveBackground(ctx, image)
	set, err = nonEmpty(FeatureRemoveBackground, set, err)
	if err != nil {
		return domain.Image{}, err
	}
	return set[0], nil
}

// Storyboard は台本から絵コンテを作ります。reference があればキャラクターの一貫性に使います。
func (s *Studio) Storyboard(ctx context.Context, script string, reference *domain.MediaPart) ([]domain.StoryboardScene, error) {
	if err := requireText("台本", script); err != nil {
		return nil, err
	}
	if reference != nil && reference.Empty() {
		reference = nil
	}
	return s.gateway.GenerateStoryboard(ctx, script, reference)
}

// PromoScript は商品のプロモーション台本を書きます。
func (s *Studio) PromoScript(ctx context.Context, productName, description, style, audience string) (domain.PromoScript, error) {
	if err := requireText("商品名", productName); err != nil {
		return domain.PromoScript{}, err
	}
	if err := requireText("説明", description); err != nil {
		return domain.PromoScript{}, err
	}
	prompt := promoScriptPrompt(productName, description, style, audience)
	return generator.DecodeStructured[domain.PromoScript](ctx, s.gateway, prompt, promoScriptSchema, true)
}

// Hashtags はキーワードに対するハッシュタグ戦略を立てます。
func (s *Studio) Hashtags(ctx context.Context, keyword string) (domain.HashtagStrategy, error) {
	if err := requireText("キーワード", keyword); err != nil {
		return domain.HashtagStrategy{}, err
	}
	return generator.DecodeStructured[domain.HashtagStrategy](ctx, s.gateway, hashtagPrompt(keyword), hashtagSchema, false)
}

// TextToSpeech はテキストを読み上げ、再生可能な WAV を返します。
func (s *Studio) TextToSpeech(ctx context.Context, text, style, voice string) (domain.Audio, error) {
	if err := requireText("テキスト", text); err != nil {
		return domain.Audio{}, err
	}
	if style == "" {
		style = DefaultSpeechStyle
	}
	if voice == "" {
		voice = DefaultVoice
	}
	if !slices.Contains(Voices, voice) {
		return domain.Audio{}, fmt.Errorf("%w: 未対応のボイスです: %s", domain.ErrInvalidInput, voice)
	}
	audio, err := s.gateway.GenerateSpeech(ctx, text, style, voice)
	if err != nil {
		return domain.Audio{}, err
	}
	return ToWAV(audio)
}

// ImageToPrompt は画像を再現するための生成プロンプトを書きます。
func (s *Studio) ImageToPrompt(ctx context.Context, image domain.MediaPart) (string, error) {
	if image.Empty() {
		return "", fmt.Errorf("%w: 入力画像が必要です", domain.ErrInvalidInput)
	}
	return s.gateway.GeneratePromptFromMedia(ctx, image, imageToPromptInstruction)
}

// ImageToVideoPrompt は画像から動画生成用のプロンプトを書きます。instructions は空でもよい。
func (s *Studio) ImageToVideoPrompt(ctx context.Context, image domain.MediaPart, instructions string) (string, error) {
	if image.Empty() {
		return "", fmt.Errorf("%w: 入力画像が必要です", domain.ErrInvalidInput)
	}
	return s.gateway.GeneratePromptFromMedia(ctx, image, videoPromptInstruction(instructions))
}

// TextToVideo はプロンプトから動画を生成します。
func (s *Studio) TextToVideo(ctx context.Context, sess *credential.Session, prompt string, ratio domain.AspectRatio, res domain.Resolution, progress video.ProgressFunc) (domain.VideoLocatorResult, error) {
	if err := requireText("プロンプト", prompt); err != nil {
		return domain.VideoLocatorResult{}, err
	}
	return s.generateVideo(ctx, sess, domain.VideoRequest{Prompt: prompt, AspectRatio: ratio, Resolution: res}, progress)
}

// ImageToVideo は画像を起点に動画を生成します。
func (s *Studio) ImageToVideo(ctx context.Context, sess *credential.Session, image domain.MediaPart, prompt string, ratio domain.AspectRatio, res domain.Resolution, progress video.ProgressFunc) (domain.VideoLocatorResult, error) {
	if image.Empty() {
		return domain.VideoLocatorResult{}, fmt.Errorf("%w: 入力画像が必要です", domain.ErrInvalidInput)
	}
	if err := requireText("プロンプト", prompt); err != nil {
		return domain.VideoLocatorResult{}, err
	}
	return s.generateVideo(ctx, sess, domain.VideoRequest{Prompt: prompt, Image: &image, AspectRatio: ratio, Resolution: res}, progress)
}

func (s *Studio) generateVideo(ctx context.Context, sess *credential.Session, req domain.VideoRequest, progress video.ProgressFunc) (domain.VideoLocatorResult, error) {
	if s.videos == nil {
		return domain.VideoLocatorResult{}, fmt.Errorf("動画生成は設定されていません")
	}
	if req.AspectRatio == "" {
		req.AspectRatio = domain.AspectLandscape
	}
	if req.Resolution == "" {
		req.Resolution = domain.Resolution720p
	}
	if !req.AspectRatio.ValidForVideo() {
		return domain.VideoLocatorResult{}, fmt.Errorf("%w: 動画のアスペクト比は 16:9 または 9:16 です", domain.ErrInvalidInput)
	}
	if !req.Resolution.Valid() {
		return domain.VideoLocatorResult{}, fmt.Errorf("%w: 解像度は 720p または 1080p です", domain.ErrInvalidInput)
	}
	return s.videos.Generate(ctx, sess, req, progress)
}

func requireText(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%w: %sが空です", domain.ErrInvalidInput, field)
	}
	return nil
}

func validateRatio(ratio domain.AspectRatio) error {
	if !ratio.Valid() {
		return fmt.Errorf("%w: 不正なアスペクト比です: %q", domain.ErrInvalidInput, ratio)
	}
	return nil
}

// nonEmpty は画像が1枚も得られなかった場合を AbsentPayload にするのだ。
func nonEmpty(feature FeatureKey, set domain.ImageSet, err error) (domain.ImageSet, error) {
	if err != nil {
		return nil, err
	}
	if len(set) == 0 {
		slog.Warn("画像が1枚も生成されませんでした", "feature", feature)
		return nil, domain.NewError(domain.KindAbsentPayload, opStudio, fmt.Sprintf("%s: no images returned", feature), nil)
	}
	return set, nil
}
