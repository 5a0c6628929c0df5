package video

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shouni/gemini-creator-kit/pkg/domain"
)

func TestDownloader_Fetch(t *testing.T) {
	ctx := context.Background()

	t.Run("key パラメータを付けて取得する", func(t *testing.T) {
		var gotQuery map[string][]string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotQuery = r.URL.Query()
			w.Header().Set("Content-Type", "video/mp4")
			_, _ = w.Write([]byte("fake-mp4"))
		}))
		defer srv.Close()

		d := NewDownloader(srv.Client(), staticKey("secret-key"))
		d.AllowPrivateHosts = true

		data, err := d.Fetch(ctx, domain.VideoLocator{URI: srv.URL + "/v1beta/files/abc:download?alt=media"})

		require.NoError(t, err)
		assert.Equal(t, []byte("fake-mp4"), data)
		assert.Equal(t, []string{"secret-key"}, gotQuery["key"])
		assert.Equal(t, []string{"media"}, gotQuery["alt"])
	})

	t.Run("2xx 以外はステータスを含む TransportError", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "nope", http.StatusForbidden)
		}))
		defer srv.Close()

		d := NewDownloader(srv.Client(), staticKey("k"))
		d.AllowPrivateHosts = true

		_, err := d.Fetch(ctx, domain.VideoLocator{URI: srv.URL})

		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrTransport)
		assert.Contains(t, err.Error(), "403 Forbidden")
	})

	t.Run("空のロケーターは AbsentPayload", func(t *testing.T) {
		d := NewDownloader(nil, staticKey("k"))

		_, err := d.Fetch(ctx, domain.VideoLocator{})

		assert.ErrorIs(t, err, domain.ErrAbsentPayload)
	})
}

func TestCheckLocator(t *testing.T) {
	tests := []struct {
		name         string
		raw          string
		allowPrivate bool
		wantErr      bool
	}{
		{name: "https は許可", raw: "https://93.184.216.34/video.mp4", wantErr: false},
		{name: "ftp は拒否", raw: "ftp://example.com/video.mp4", wantErr: true},
		{name: "相対パスは拒否", raw: "/files/abc", wantErr: true},
		{name: "ループバックは拒否", raw: "http://127.0.0.1:8080/video.mp4", wantErr: true},
		{name: "プライベートIPは拒否", raw: "http://10.0.0.5/video.mp4", wantErr: true},
		{name: "許可設定ならループバックも通す", raw: "http://127.0.0.1:8080/video.mp4", allowPrivate: true, wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := checkLocator(tt.raw, tt.allowPrivate)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
