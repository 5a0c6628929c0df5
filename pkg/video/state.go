package video

import (
	"sync"
	"sync/atomic"

	"github.com/shouni/gemini-creator-kit/pkg/domain"
)

// Phase はジョブの状態機械の段階です。
type Phase int

const (
	PhaseSubmitted Phase = iota
	PhasePolling
	PhaseDone
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseSubmitted:
		return "submitted"
	case PhasePolling:
		return "polling"
	case PhaseDone:
		return "done"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal は Done または Failed なら true です。
func (p Phase) Terminal() bool {
	return p == PhaseDone || p == PhaseFailed
}

// State は進捗コールバックに渡される状態のスナップショットです。
type State struct {
	Phase    Phase
	Attempts int
	Message  string
	Locator  domain.VideoLocator
	Err      error
}

// DefaultMessages はポーリング中に順番に表示する進捗メッセージです。
var DefaultMessages = []string{
	"デジタルキャンバスを準備しています...",
	"AIがシーンを組み立てています...",
	"シネマティックな仕上げを適用しています...",
	"もうすぐ完成です！最終レンダリング中...",
	"各フレームを最適化しています...",
	"最後のピクセルを磨いています...",
}

// tracker は進捗状態を保持し、コールバックを直列に呼び出します。
// finish の後はどの更新も無視されるのだ。
type tracker struct {
	mu       sync.Mutex
	progress ProgressFunc
	messages []string
	index    int
	state    State
	closed   bool

	// notifying はコールバック実行中に立つ。Stop が自分の終了を待たないために使う。
	notifying atomic.Bool
}

func newTracker(progress ProgressFunc, messages []string) *tracker {
	if len(messages) == 0 {
		messages = DefaultMessages
	}
	return &tracker{
		progress: progress,
		messages: messages,
		state:    State{Phase: PhaseSubmitted, Message: messages[0]},
	}
}

// update は状態を書き換えてから通知します。
func (t *tracker) update(mutate func(s *State)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}
	mutate(&t.state)
	t.notify()
}

// rotate はメッセージを1つ進め、末尾の次は先頭に戻ります。
func (t *tracker) rotate() {
	t.update(func(s *State) {
		t.index = (t.index + 1) % len(t.messages)
		s.Message = t.messages[t.index]
	})
}

func (t *tracker) polling(attempts int) {
	t.update(func(s *State) {
		s.Phase = PhasePolling
		s.Attempts = attempts
	})
}

// finish は終端状態を1回だけ通知し、以後の更新を止めます。
func (t *tracker) finish(locator domain.VideoLocator, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}
	t.closed = true
	if err != nil {
		t.state.Phase = PhaseFailed
		t.state.Err = err
	} else {
		t.state.Phase = PhaseDone
		t.state.Locator = locator
	}
	t.notify()
}

func (t *tracker) snapshot() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

func (t *tracker) notify() {
	if t.progress == nil {
		return
	}
	t.notifying.Store(true)
	defer t.notifying.Store(false)
	t.progress(t.state)
}
