package video

import (
	"context"

	"google.golang.org/genai"

	"github.com/shouni/gemini-creator-kit/pkg/domain"
)

// VideoModel は Veo の長時間オペレーションを扱うプロバイダ呼び出しの抽象です。
// adapters.GenAIClient が実装します。
type VideoModel interface {
	// GenerateVideos はジョブを送信し、完了を待たずにオペレーションを返します。
	GenerateVideos(ctx context.Context, model, prompt string, image *genai.Image, config *genai.GenerateVideosConfig) (*genai.GenerateVideosOperation, error)
	// GetVideosOperation はオペレーションの最新状態を取得します。
	GetVideosOperation(ctx context.Context, op *genai.GenerateVideosOperation) (*genai.GenerateVideosOperation, error)
}

// Fetcher は解決済みロケーターから動画のバイト列を取得します。
type Fetcher interface {
	Fetch(ctx context.Context, locator domain.VideoLocator) ([]byte, error)
}

// KeySource はダウンロード時に付与するアクセスキーを返します。
// credential.EnvSelector が満たします。
type KeySource interface {
	Key() string
}

// ProgressFunc はポーリング中の状態変化を受け取るコールバックです。
// 呼び出しは直列化され、Await が戻った後には呼ばれません。
// コールバックの中から Poller.Stop を呼んでもデッドロックしません。
type ProgressFunc func(State)
