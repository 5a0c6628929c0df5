package studio

import (
	"context"

	"google.golang.org/genai"

	"github.com/shouni/gemini-creator-kit/pkg/credential"
	"github.com/shouni/gemini-creator-kit/pkg/domain"
	"github.com/shouni/gemini-creator-kit/pkg/video"
)

// --- Mocks ---

type editCall struct {
	parts       []domain.MediaPart
	instruction string
	aspectRatio domain.AspectRatio
	count       int
}

type structuredCall struct {
	prompt string
	schema *genai.Schema
	pro    bool
}

// mockGateway は generator.ContentGateway のテスト用モックなのだ。
type mockGateway struct {
	images     domain.ImageSet
	err        error
	raw        string
	text       string
	audio      domain.Audio
	scenes     []domain.StoryboardScene
	batchCalls []string
	editCalls  []editCall
	structured []structuredCall
	mediaCalls []string
	speech     []string
	reference  *domain.MediaPart
}

func (m *mockGateway) GenerateImageBatch(ctx context.Context, prompt string, aspectRatio domain.AspectRatio, count int) (domain.ImageSet, error) {
	m.batchCalls = append(m.batchCalls, prompt)
	return m.images, m.err
}

func (m *mockGateway) EditImages(ctx context.Context, parts []domain.MediaPart, instruction string, aspectRatio domain.AspectRatio, count int) (domain.ImageSet, error) {
	m.editCalls = append(m.editCalls, editCall{parts: parts, instruction: instruction, aspectRatio: aspectRatio, count: count})
	return m.images, m.err
}

func (m *mockGateway) GenerateStructuredText(ctx context.Context, prompt string, schema *genai.Schema, pro bool) (map[string]any, error) {
	return nil, nil
}

func (m *mockGateway) GenerateStructuredRaw(ctx context.Context, prompt string, schema *genai.Schema, pro bool) (string, error) {
	m.structured = append(m.structured, structuredCall{prompt: prompt, schema: schema, pro: pro})
	return m.raw, m.err
}

func (m *mockGateway) GenerateSpeech(ctx context.Context, text, style, voice string) (domain.Audio, error) {
	m.speech = append(m.speech, style+"|"+voice+"|"+text)
	return m.audio, m.err
}

func (m *mockGateway) GeneratePromptFromMedia(ctx context.Context, media domain.MediaPart, instruction string) (string, error) {
	m.mediaCalls = append(m.mediaCalls, instruction)
	return m.text, m.err
}

func (m *mockGateway) RemoveBackground(ctx context.Context, media domain.MediaPart) (domain.ImageSet, error) {
	return m.images, m.err
}

func (m *mockGateway) GenerateStoryboard(ctx context.Context, script string, reference *domain.MediaPart) ([]domain.StoryboardScene, error) {
	m.reference = reference
	return m.scenes, m.err
}

func (m *mockGateway) Generate(ctx context.Context, req domain.Request) (domain.Result, error) {
	return nil, nil
}

// mockVideos は VideoGenerator のテスト用モックなのだ。
type mockVideos struct {
	requests []domain.VideoRequest
	result   domain.VideoLocatorResult
	err      error
}

func (m *mockVideos) Generate(ctx context.Context, sess *credential.Session, req domain.VideoRequest, progress video.ProgressFunc) (domain.VideoLocatorResult, error) {
	m.requests = append(m.requests, req)
	return m.result, m.err
}

var (
	testImage = domain.MediaPart{Data: []byte("\x89PNG\r\n\x1a\n0000")}
	oneImage  = domain.ImageSet{{Data: []byte{1}, MIMEType: "image/png"}}
)
