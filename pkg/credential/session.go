package credential

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/shouni/gemini-creator-kit/pkg/domain"
)

// Selector は資格情報の選択を担当する外部コラボレーターです。
type Selector interface {
	// HasCredential は資格情報がすでに選択済みかどうかを返します。
	HasCredential(ctx context.Context) (bool, error)
	// SelectCredential はユーザーに資格情報を選択させます。
	SelectCredential(ctx context.Context) error
}

// ErrCredentialRequired は資格情報が未選択のまま動画生成を送信しようとした場合のエラーです。
var ErrCredentialRequired = domain.NewError(domain.KindAuth, "credential", "動画生成にはAPIキーの選択が必要です", nil)

// Session は動画生成の前に参照される「資格情報選択済み」フラグを保持します。
// グローバル状態の代わりに呼び出し側が明示的に持ち回るのだ。
type Session struct {
	selector Selector

	mu       sync.Mutex
	selected bool
	// invalidated はプロバイダに資格情報を拒否された状態。Select が成功するまで解除されない。
	invalidated bool
}

// NewSession は selector を使うセッションを返します。
func NewSession(selector Selector) *Session {
	return &Session{selector: selector}
}

// Selected は現在のフラグの値を返します。
func (s *Session) Selected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected
}

// Ensure は送信前の認可ゲートです。未選択なら Selector に問い合わせ、
// それでも資格情報がなければ ErrCredentialRequired を返します。
// Invalidate の後は Selector に問い合わせず、Select で選び直すまで拒否し続けます。
func (s *Session) Ensure(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.selected {
		return nil
	}
	if s.invalidated || s.selector == nil {
		return ErrCredentialRequired
	}
	ok, err := s.selector.HasCredential(ctx)
	if err != nil {
		return fmt.Errorf("資格情報の確認に失敗しました: %w", err)
	}
	if !ok {
		return ErrCredentialRequired
	}
	s.selected = true
	return nil
}

// Select は Selector に選択を依頼し、成功すればフラグを立てます。
func (s *Session) Select(ctx context.Context) error {
	if s.selector == nil {
		return ErrCredentialRequired
	}
	if err := s.selector.SelectCredential(ctx); err != nil {
		return fmt.Errorf("資格情報の選択に失敗しました: %w", err)
	}
	s.mu.Lock()
	s.selected = true
	s.invalidated = false
	s.mu.Unlock()
	return nil
}

// Invalidate はフラグを下ろし、Select で選び直すまで送信を拒否させます。
func (s *Session) Invalidate(ctx context.Context) {
	s.mu.Lock()
	was := s.selected
	s.selected = false
	s.invalidated = true
	s.mu.Unlock()

	if was {
		slog.WarnContext(ctx, "資格情報が無効と判定されたため選択状態をリセットしました")
	}
}
