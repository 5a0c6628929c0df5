package video

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/shouni/gemini-creator-kit/pkg/credential"
	"github.com/shouni/gemini-creator-kit/pkg/domain"
)

// --- Mocks ---

type submitCall struct {
	model  string
	prompt string
	image  *genai.Image
	config *genai.GenerateVideosConfig
}

// mockVideoModel は VideoModel のテスト用モックなのだ。
// pollFunc が nil の場合、polls を順番に返し、使い切ったら最後の要素を返し続ける。
type mockVideoModel struct {
	mu        sync.Mutex
	submitted []submitCall
	pollCount int
	initial   *genai.GenerateVideosOperation
	submitErr error
	polls     []*genai.GenerateVideosOperation
	pollErr   error
	pollFunc  func(ctx context.Context, n int) (*genai.GenerateVideosOperation, error)
	onPoll    chan int
}

func (m *mockVideoModel) GenerateVideos(ctx context.Context, model, prompt string, image *genai.Image, config *genai.GenerateVideosConfig) (*genai.GenerateVideosOperation, error) {
	m.mu.Lock()
	m.submitted = append(m.submitted, submitCall{model: model, prompt: prompt, image: image, config: config})
	m.mu.Unlock()
	if m.submitErr != nil {
		return nil, m.submitErr
	}
	if m.initial != nil {
		return m.initial, nil
	}
	return pendingOp(), nil
}

func (m *mockVideoModel) GetVideosOperation(ctx context.Context, op *genai.GenerateVideosOperation) (*genai.GenerateVideosOperation, error) {
	m.mu.Lock()
	m.pollCount++
	n := m.pollCount
	m.mu.Unlock()

	if m.onPoll != nil {
		select {
		case m.onPoll <- n:
		default:
		}
	}
	if m.pollFunc != nil {
		return m.pollFunc(ctx, n)
	}
	if m.pollErr != nil {
		return nil, m.pollErr
	}
	if len(m.polls) == 0 {
		return pendingOp(), nil
	}
	if n > len(m.polls) {
		return m.polls[len(m.polls)-1], nil
	}
	return m.polls[n-1], nil
}

func (m *mockVideoModel) polled() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pollCount
}

// mockSelector は credential.Selector のテスト用モックなのだ。
type mockSelector struct {
	has bool
}

func (m *mockSelector) HasCredential(ctx context.Context) (bool, error) { return m.has, nil }
func (m *mockSelector) SelectCredential(ctx context.Context) error {
	m.has = true
	return nil
}

type mockFetcher struct {
	data    []byte
	err     error
	fetched []domain.VideoLocator
}

func (m *mockFetcher) Fetch(ctx context.Context, locator domain.VideoLocator) ([]byte, error) {
	m.fetched = append(m.fetched, locator)
	if m.err != nil {
		return nil, m.err
	}
	return m.data, nil
}

type staticKey string

func (k staticKey) Key() string { return string(k) }

// progressRecorder は進捗コールバックを記録するのだ。
type progressRecorder struct {
	mu     sync.Mutex
	states []State
}

func (r *progressRecorder) record(s State) {
	r.mu.Lock()
	r.states = append(r.states, s)
	r.mu.Unlock()
}

func (r *progressRecorder) snapshot() []State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]State(nil), r.states...)
}

// --- Helpers ---

func pendingOp() *genai.GenerateVideosOperation {
	return &genai.GenerateVideosOperation{Name: "operations/pending"}
}

func doneOp(uri string) *genai.GenerateVideosOperation {
	op := &genai.GenerateVideosOperation{Name: "operations/done", Done: true, Response: &genai.GenerateVideosResponse{}}
	if uri != "" {
		op.Response.GeneratedVideos = []*genai.GeneratedVideo{{Video: &genai.Video{URI: uri}}}
	}
	return op
}

func selectedSession(t *testing.T) *credential.Session {
	t.Helper()
	sess := credential.NewSession(&mockSelector{has: true})
	require.NoError(t, sess.Ensure(context.Background()))
	return sess
}

var pngBytes = []byte("\x89PNG\r\n\x1a\n0000")
