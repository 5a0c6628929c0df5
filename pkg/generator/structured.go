package generator

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/shouni/gemini-creator-kit/pkg/domain"
)

// GenerateStructuredRaw は出力スキーマを宣言してテキストを生成し、前後の空白を除いた JSON 文字列を返します。
func (g *Gateway) GenerateStructuredRaw(ctx context.Context, prompt string, schema *genai.Schema, pro bool) (string, error) {
	model := g.models.Text
	if pro {
		model = g.models.TextPro
	}
	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   schema,
	}

	started := time.Now()
	resp, err := g.aiClient.GenerateContent(ctx, model, genai.Text(prompt), config)
	err = Classify(opStructuredText, err)
	var text string
	if err == nil {
		text, err = responseText(opStructuredText, resp)
	}
	g.metrics.ObserveRequest(opStructuredText, started, err)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// GenerateStructuredText はスキーマ付きの生成結果を汎用オブジェクトとしてパースします。
// 整形式でない応答は ParseError になり、部分的なオブジェクトは返しません。
func (g *Gateway) GenerateStructuredText(ctx context.Context, prompt string, schema *genai.Schema, pro bool) (map[string]any, error) {
	return DecodeStructured[map[string]any](ctx, g, prompt, schema, pro)
}

// DecodeStructured はスキーマ付きの生成結果を T にデコードするのだ。
func DecodeStructured[T any](ctx context.Context, g ContentGateway, prompt string, schema *genai.Schema, pro bool) (T, error) {
	var zero T
	raw, err := g.GenerateStructuredRaw(ctx, prompt, schema, pro)
	if err != nil {
		return zero, err
	}
	return ParseStructured[T](raw)
}

// ParseStructured は JSON テキストを T にパースします。失敗時はゼロ値と ParseError を返します。
func ParseStructured[T any](raw string) (T, error) {
	var out T
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &out); err != nil {
		var zero T
		return zero, domain.NewError(domain.KindParse, opStructuredText, "構造化出力のパースに失敗しました: "+err.Error(), err)
	}
	return out, nil
}
