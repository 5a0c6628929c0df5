package video

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/shouni/gemini-creator-kit/pkg/domain"
)

const (
	opDownload          = "video_download"
	defaultFetchTimeout = 5 * time.Minute
	// 生成動画は数十MB程度なので、それを大きく超える応答は拒否する
	maxVideoBytes = 512 << 20
)

// Downloader は解決済みロケーターにアクセスキーを付けて動画を取得します。
type Downloader struct {
	httpClient *http.Client
	keys       KeySource
	// AllowPrivateHosts が false の場合、プライベートアドレスへの取得を拒否する。
	AllowPrivateHosts bool
}

// NewDownloader は Downloader を初期化します。httpClient が nil なら既定のタイムアウトで作成します。
func NewDownloader(httpClient *http.Client, keys KeySource) *Downloader {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultFetchTimeout}
	}
	return &Downloader{httpClient: httpClient, keys: keys}
}

// Fetch はロケーターに key クエリパラメータを付けて GET します。
// 2xx 以外の応答はステータスを含む TransportError です。
func (d *Downloader) Fetch(ctx context.Context, locator domain.VideoLocator) ([]byte, error) {
	target, err := d.authorizedURL(locator)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, domain.NewError(domain.KindTransport, opDownload, "リクエストの作成に失敗しました", err)
	}
	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, domain.NewError(domain.KindTransport, opDownload, "", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, domain.NewError(domain.KindTransport, opDownload, fmt.Sprintf("動画のダウンロードに失敗しました: %s", resp.Status), nil)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxVideoBytes+1))
	if err != nil {
		return nil, domain.NewError(domain.KindTransport, opDownload, "応答の読み込みに失敗しました", err)
	}
	if len(data) > maxVideoBytes {
		return nil, domain.NewError(domain.KindTransport, opDownload, "動画のサイズが上限を超えています", nil)
	}
	if len(data) == 0 {
		return nil, domain.NewError(domain.KindAbsentPayload, opDownload, "動画データが空です", nil)
	}

	slog.InfoContext(ctx, "動画をダウンロードしました", "bytes", len(data), "content_type", resp.Header.Get("Content-Type"))
	return data, nil
}

// authorizedURL はロケーターを検証し、アクセスキーを付けた URL を返します。
// 既存のクエリは保たれるのだ。
func (d *Downloader) authorizedURL(locator domain.VideoLocator) (string, error) {
	u, err := checkLocator(locator.URI, d.AllowPrivateHosts)
	if err != nil {
		return "", err
	}
	if d.keys != nil {
		if key := d.keys.Key(); key != "" {
			q := u.Query()
			q.Set("key", key)
			u.RawQuery = q.Encode()
		}
	}
	return u.String(), nil
}

// checkLocator は SSRF 対策としてロケーターを検証します。
// http/https 以外のスキームと、プライベートIPやループバックを指すホストを拒否します。
func checkLocator(raw string, allowPrivate bool) (*url.URL, error) {
	if raw == "" {
		return nil, domain.NewError(domain.KindAbsentPayload, opDownload, "ロケーターが空です", nil)
	}
	u, err := url.ParseRequestURI(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: URLパース失敗: %v", domain.ErrInvalidInput, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: 不許可スキーム: %s", domain.ErrInvalidInput, u.Scheme)
	}
	if u.Hostname() == "" {
		return nil, fmt.Errorf("%w: ホストがありません: %s", domain.ErrInvalidInput, raw)
	}
	if allowPrivate {
		return u, nil
	}

	host := u.Hostname()
	var ips []net.IP
	if ip := net.ParseIP(host); ip != nil {
		ips = []net.IP{ip}
	} else {
		resolved, err := net.LookupIP(host)
		if err != nil {
			return nil, domain.NewError(domain.KindTransport, opDownload, fmt.Sprintf("ホスト '%s' の名前解決に失敗しました", host), err)
		}
		ips = resolved
	}
	// 解決されたすべての IP を検証する
	for _, ip := range ips {
		if ip.IsPrivate() || ip.IsLoopback() || ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() {
			return nil, fmt.Errorf("%w: 制限されたネットワークへのアクセスを検知: %s", domain.ErrInvalidInput, ip.String())
		}
	}
	return u, nil
}
