package generator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/shouni/gemini-creator-kit/pkg/domain"
)

const removeBackgroundInstruction = "Remove the background from this image completely. Make the new background transparent. Keep only the main subject in the foreground with clean edges."

// StoryboardSchema はフェーズ1の出力スキーマです。
var StoryboardSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"scenes": {
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"scene_description": {Type: genai.TypeString},
					"visual_prompt":     {Type: genai.TypeString},
				},
				Required: []string{"scene_description", "visual_prompt"},
			},
		},
	},
}

func storyboardPrompt(script string, maxScenes int) string {
	return fmt.Sprintf(`Based on the following script, break it down into a maximum of %d key visual scenes for a storyboard. For each scene, provide a short description and a detailed visual prompt for an AI image generator. IMPORTANT: Ensure the main character(s) are described consistently across all visual prompts to maintain visual identity.

Script: "%s"`, maxScenes, script)
}

func sceneWithReferencePrompt(visualPrompt string) string {
	return fmt.Sprintf(`Use the character from the reference image. Place them in this scene, maintaining their appearance and clothing as much as possible: "%s". The final image must have a 16:9 widescreen aspect ratio.`, visualPrompt)
}

// GenerateStoryboard は2段階で絵コンテを作ります。
// フェーズ1で最大 MaxScenes 個のシーン（説明と画像プロンプト）を1回の構造化呼び出しで得て、
// フェーズ2で各シーンの画像を並行に解決します。シーンの順序はフェーズ1の出力から変わりません。
func (g *Gateway) GenerateStoryboard(ctx context.Context, script string, reference *domain.MediaPart) ([]domain.StoryboardScene, error) {
	if strings.TrimSpace(script) == "" {
		return nil, fmt.Errorf("%w: 台本が空です", domain.ErrInvalidInput)
	}

	plan, err := DecodeStructured[domain.StoryboardPlan](ctx, g, storyboardPrompt(script, g.opts.MaxScenes), StoryboardSchema, true)
	if err != nil {
		return nil, fmt.Errorf("絵コンテのシーン分割に失敗しました: %w", err)
	}

	scenes := plan.Scenes
	if len(scenes) > g.opts.MaxScenes {
		// 上限はモデルへの指示でしかないので、ここで切り詰める
		slog.WarnContext(ctx, "シーン数が上限を超えたため切り詰めました", "returned", len(scenes), "max", g.opts.MaxScenes)
		scenes = scenes[:g.opts.MaxScenes]
	}
	if len(scenes) == 0 {
		return []domain.StoryboardScene{}, nil
	}

	withReference := reference != nil && !reference.Empty()
	var resolve func(ctx context.Context, scene domain.StoryboardScene) (*domain.Image, error)
	if withReference {
		refParts, err := g.mediaParts([]domain.MediaPart{*reference}, "", true)
		if err != nil {
			return nil, err
		}
		config := &genai.GenerateContentConfig{
			ResponseModalities: []string{string(genai.ModalityImage)},
		}
		resolve = func(ctx context.Context, scene domain.StoryboardScene) (*domain.Image, error) {
			parts := append(append([]*genai.Part{}, refParts...), genai.NewPartFromText(sceneWithReferencePrompt(scene.VisualPrompt)))
			return g.editOnce(ctx, parts, config)
		}
	} else {
		resolve = g.sceneFromText
	}

	slog.InfoContext(ctx, "絵コンテの各シーン画像を生成します", "scenes", len(scenes), "with_reference", withReference)

	images, err := fanOut(ctx, len(scenes), func(ctx context.Context, i int) (*domain.Image, error) {
		return resolve(ctx, scenes[i])
	})
	if err != nil {
		return nil, fmt.Errorf("絵コンテの画像生成に失敗しました: %w", err)
	}

	out := make([]domain.StoryboardScene, len(scenes))
	for i, scene := range scenes {
		out[i] = domain.StoryboardScene{
			Description:  scene.Description,
			VisualPrompt: scene.VisualPrompt,
			Image:        images[i],
		}
		if images[i] == nil {
			slog.WarnContext(ctx, "シーン画像が返されませんでした", "index", i)
		}
	}
	return out, nil
}

// sceneFromText は参照画像が無い場合のシーン画像生成で、一貫性はプロンプトのみに頼ります。
func (g *Gateway) sceneFromText(ctx context.Context, scene domain.StoryboardScene) (*domain.Image, error) {
	started := time.Now()
	resp, err := g.aiClient.GenerateImages(ctx, g.models.Image, scene.VisualPrompt, &genai.GenerateImagesConfig{
		NumberOfImages: 1,
		AspectRatio:    storyboardAspect,
	})
	err = Classify(opStoryboard, err)
	g.metrics.ObserveRequest(opStoryboard, started, err)
	if err != nil {
		return nil, err
	}
	set := imagesFromGenerated(resp, 1)
	if len(set) == 0 {
		return nil, nil
	}
	return &set[0], nil
}
