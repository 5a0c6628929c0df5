package video

import (
	"context"
	"fmt"

	"github.com/shouni/gemini-creator-kit/pkg/credential"
	"github.com/shouni/gemini-creator-kit/pkg/domain"
)

// Service は送信、待機、取得をまとめた動画生成の窓口です。
// テキストからの動画と画像からの動画の両方が同じ経路を通ります。
type Service struct {
	poller  *Poller
	fetcher Fetcher
}

// NewService は Service を初期化します。
func NewService(poller *Poller, fetcher Fetcher) (*Service, error) {
	if poller == nil {
		return nil, fmt.Errorf("poller is required")
	}
	if fetcher == nil {
		return nil, fmt.Errorf("fetcher is required")
	}
	return &Service{poller: poller, fetcher: fetcher}, nil
}

// Generate は req の動画を生成し、ロケーターと取得したバイト列を返します。
func (s *Service) Generate(ctx context.Context, sess *credential.Session, req domain.VideoRequest, progress ProgressFunc) (domain.VideoLocatorResult, error) {
	job, err := s.poller.Submit(ctx, sess, req)
	if err != nil {
		return domain.VideoLocatorResult{}, err
	}
	locator, err := s.poller.Await(ctx, sess, job, progress)
	if err != nil {
		return domain.VideoLocatorResult{}, err
	}
	data, err := s.fetcher.Fetch(ctx, locator)
	if err != nil {
		return domain.VideoLocatorResult{}, err
	}
	return domain.VideoLocatorResult{Locator: locator, Data: data}, nil
}

// Stop は監視中のジョブを打ち切ります。
func (s *Service) Stop() {
	s.poller.Stop()
}
