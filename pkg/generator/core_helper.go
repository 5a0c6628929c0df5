package generator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"
	"google.golang.org/genai"

	"github.com/shouni/gemini-creator-kit/pkg/domain"
	"github.com/shouni/gemini-creator-kit/pkg/imgutil"
)

// Classify はプロバイダ呼び出しのエラーを GenerationError に正規化します。
// 既に分類済みのエラーとコンテキストのキャンセルはそのまま返すのだ。
func Classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var gerr *domain.GenerationError
	if errors.As(err, &gerr) {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return domain.NewError(domain.KindProvider, op, apiErrorMessage(apiErr), err)
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return domain.NewError(domain.KindProvider, op, apiErrorMessage(*apiErrPtr), err)
	}
	return domain.NewError(domain.KindTransport, op, "", err)
}

func apiErrorMessage(e genai.APIError) string {
	if e.Message != "" {
		return e.Message
	}
	return e.Error()
}

// extractInline は最初の候補から最初のインラインデータを探します。
// 見つからなかった場合は候補の FinishReason を返すので、呼び出し側でメッセージに使えるのだ。
func extractInline(resp *genai.GenerateContentResponse) (*genai.Blob, genai.FinishReason) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0] == nil {
		return nil, genai.FinishReasonUnspecified
	}
	// 最初の候補 (Candidate) のみを利用する。
	candidate := resp.Candidates[0]
	if candidate.Content != nil {
		for _, part := range candidate.Content.Parts {
			if part != nil && part.InlineData != nil && len(part.InlineData.Data) > 0 {
				return part.InlineData, candidate.FinishReason
			}
		}
	}
	return nil, candidate.FinishReason
}

// inlineImage は応答中の画像を取り出します。画像が無ければ nil を返します。
func inlineImage(resp *genai.GenerateContentResponse) *domain.Image {
	blob, _ := extractInline(resp)
	if blob == nil {
		return nil
	}
	return &domain.Image{Data: blob.Data, MIMEType: blob.MIMEType}
}

// absentPayload は応答にメディアが無い場合のエラーを組み立てるのだ。
// responseText は応答のテキストを返します。応答そのものが無ければ AbsentPayload です。
func responseText(op string, resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil {
		return "", domain.NewError(domain.KindAbsentPayload, op, "no response returned", nil)
	}
	return resp.Text(), nil
}

func absentPayload(op, what string, reason genai.FinishReason) error {
	if reason != genai.FinishReasonUnspecified && reason != genai.FinishReasonStop && reason != "" {
		return domain.NewError(domain.KindAbsentPayload, op, fmt.Sprintf("%s (FinishReason: %s)", what, reason), nil)
	}
	return domain.NewError(domain.KindAbsentPayload, op, what, nil)
}

// imagesFromGenerated は Imagen の応答から画像を取り出し、最大 limit 枚に制限します。
func imagesFromGenerated(resp *genai.GenerateImagesResponse, limit int) domain.ImageSet {
	if resp == nil {
		return domain.ImageSet{}
	}
	set := make(domain.ImageSet, 0, limit)
	for _, generated := range resp.GeneratedImages {
		if len(set) >= limit {
			break
		}
		if generated == nil || generated.Image == nil || len(generated.Image.ImageBytes) == 0 {
			continue
		}
		mimeType := generated.Image.MIMEType
		if mimeType == "" {
			mimeType = batchOutputMIMEType
		}
		set = append(set, domain.Image{Data: generated.Image.ImageBytes, MIMEType: mimeType})
	}
	return set
}

// mediaParts は入力画像を genai.Part に変換し、最後に指示テキストを付けます。
func (g *Gateway) mediaParts(media []domain.MediaPart, instruction string, compress bool) ([]*genai.Part, error) {
	parts := make([]*genai.Part, 0, len(media)+1)
	for i, m := range media {
		normalized, err := imgutil.NormalizeImagePart(m)
		if err != nil {
			return nil, fmt.Errorf("入力画像 %d: %w", i, err)
		}
		if compress && g.opts.CompressInputs {
			normalized = imgutil.CompressPart(normalized, g.opts.CompressionQuality)
		}
		parts = append(parts, genai.NewPartFromBytes(normalized.Data, normalized.MIMEType))
	}
	if text := strings.TrimSpace(instruction); text != "" {
		parts = append(parts, genai.NewPartFromText(text))
	}
	return parts, nil
}

// fanOut は n 個の独立した呼び出しを並行に実行し、すべて揃ってから添字順に返します。
// どれか1つでも失敗したら全体が失敗します。
func fanOut[T any](ctx context.Context, n int, fn func(ctx context.Context, i int) (T, error)) ([]T, error) {
	results := make([]T, n)
	eg, egCtx := errgroup.WithContext(ctx)
	for i := 0; i < n; i++ {
		eg.Go(func() error {
			v, err := fn(egCtx, i)
			if err != nil {
				return err
			}
			results[i] = v
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func userContents(parts []*genai.Part) []*genai.Content {
	return []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}
}
