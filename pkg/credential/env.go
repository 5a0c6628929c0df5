package credential

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
)

// EnvSelector は環境変数または設定値から API キーを読む Selector です。
// 対話的なキー選択が無い CLI 環境向けです。
type EnvSelector struct {
	envVar string

	mu  sync.RWMutex
	key string
}

// NewEnvSelector は初期キー key と、再選択時に読む環境変数名 envVar を受け取ります。
func NewEnvSelector(key, envVar string) *EnvSelector {
	return &EnvSelector{key: strings.TrimSpace(key), envVar: envVar}
}

func (e *EnvSelector) HasCredential(ctx context.Context) (bool, error) {
	return e.Key() != "", nil
}

// SelectCredential は環境変数を読み直してキーを差し替えるのだ。
func (e *EnvSelector) SelectCredential(ctx context.Context) error {
	if e.envVar == "" {
		return fmt.Errorf("no environment variable configured for credential selection")
	}
	key := strings.TrimSpace(os.Getenv(e.envVar))
	if key == "" {
		return fmt.Errorf("environment variable %s is empty", e.envVar)
	}
	e.mu.Lock()
	e.key = key
	e.mu.Unlock()
	return nil
}

// Key は現在の API キーを返します。
func (e *EnvSelector) Key() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.key
}
