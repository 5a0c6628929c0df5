package imgutil

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/shouni/gemini-creator-kit/pkg/domain"
)

// DetectMIME はバイト列から MIME タイプを推定します。
func DetectMIME(data []byte) string {
	mimeType := http.DetectContentType(data)
	// "image/png; charset=..." のような付加情報は落とす
	if i := strings.Index(mimeType, ";"); i >= 0 {
		mimeType = strings.TrimSpace(mimeType[:i])
	}
	return mimeType
}

// NormalizeImagePart は MIME タイプが空なら推定で補い、画像でなければエラーを返すのだ。
func NormalizeImagePart(part domain.MediaPart) (domain.MediaPart, error) {
	if part.Empty() {
		return part, fmt.Errorf("%w: 画像データが空です", domain.ErrInvalidInput)
	}
	if part.MIMEType == "" {
		part.MIMEType = DetectMIME(part.Data)
	}
	if !strings.HasPrefix(part.MIMEType, "image/") {
		return part, fmt.Errorf("%w: 画像ではない MIME タイプです: %s", domain.ErrInvalidInput, part.MIMEType)
	}
	return part, nil
}
