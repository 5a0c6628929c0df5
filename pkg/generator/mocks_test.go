package generator

import (
	"context"
	"sync"

	"google.golang.org/genai"
)

// --- Mocks ---

// contentCall は GenerateContent に渡された引数の記録なのだ。
type contentCall struct {
	model    string
	contents []*genai.Content
	config   *genai.GenerateContentConfig
}

type imagesCall struct {
	model  string
	prompt string
	config *genai.GenerateImagesConfig
}

// mockAIClient は GenerativeModel のテスト用モックなのだ。
// fanOut から並行に呼ばれるので記録は mutex で守る。
type mockAIClient struct {
	mu           sync.Mutex
	contentCalls []contentCall
	imagesCalls  []imagesCall
	contentFunc  func(model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
	imagesFunc   func(model, prompt string, config *genai.GenerateImagesConfig) (*genai.GenerateImagesResponse, error)
}

func (m *mockAIClient) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	m.mu.Lock()
	m.contentCalls = append(m.contentCalls, contentCall{model: model, contents: contents, config: config})
	m.mu.Unlock()
	if m.contentFunc != nil {
		return m.contentFunc(model, contents, config)
	}
	return inlineResponse("image/png", []byte("fake")), nil
}

func (m *mockAIClient) GenerateImages(ctx context.Context, model, prompt string, config *genai.GenerateImagesConfig) (*genai.GenerateImagesResponse, error) {
	m.mu.Lock()
	m.imagesCalls = append(m.imagesCalls, imagesCall{model: model, prompt: prompt, config: config})
	m.mu.Unlock()
	if m.imagesFunc != nil {
		return m.imagesFunc(model, prompt, config)
	}
	n := 1
	if config != nil && config.NumberOfImages > 0 {
		n = int(config.NumberOfImages)
	}
	return generatedImages(n), nil
}

func (m *mockAIClient) contentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.contentCalls)
}

func (m *mockAIClient) imagesCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.imagesCalls)
}

// --- Helpers ---

func inlineResponse(mimeType string, data []byte) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{
				Parts: []*genai.Part{{InlineData: &genai.Blob{MIMEType: mimeType, Data: data}}},
			},
			FinishReason: genai.FinishReasonStop,
		}},
	}
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{
				Parts: []*genai.Part{{Text: text}},
			},
			FinishReason: genai.FinishReasonStop,
		}},
	}
}

func emptyResponse(reason genai.FinishReason) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content:      &genai.Content{},
			FinishReason: reason,
		}},
	}
}

func generatedImages(n int) *genai.GenerateImagesResponse {
	resp := &genai.GenerateImagesResponse{}
	for i := 0; i < n; i++ {
		resp.GeneratedImages = append(resp.GeneratedImages, &genai.GeneratedImage{
			Image: &genai.Image{ImageBytes: []byte{0xFF, 0xD8, byte(i)}, MIMEType: "image/jpeg"},
		})
	}
	return resp
}

// promptOf は最後の Content の最後のテキストパートを返すのだ。
func promptOf(contents []*genai.Content) string {
	if len(contents) == 0 {
		return ""
	}
	parts := contents[len(contents)-1].Parts
	for i := len(parts) - 1; i >= 0; i-- {
		if parts[i] != nil && parts[i].Text != "" {
			return parts[i].Text
		}
	}
	return ""
}

// pngBytes は DetectMIME が image/png と判定する最小のヘッダなのだ。
var pngBytes = []byte("\x89PNG\r\n\x1a\n0000")
