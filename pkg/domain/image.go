package domain

import (
	"encoding/base64"
	"fmt"
	"slices"
)

// AspectRatio は生成物の縦横比です。
type AspectRatio string

const (
	AspectSquare    AspectRatio = "1:1"
	AspectLandscape AspectRatio = "16:9"
	AspectPortrait  AspectRatio = "9:16"
)

// Valid は画像生成で許可された縦横比かどうかを返します。
func (a AspectRatio) Valid() bool {
	return slices.Contains([]AspectRatio{AspectSquare, AspectLandscape, AspectPortrait}, a)
}

// ValidForVideo は Veo が受け付ける縦横比 (16:9, 9:16) かどうかを返すのだ。
func (a AspectRatio) ValidForVideo() bool {
	return a == AspectLandscape || a == AspectPortrait
}

// Describe はプロンプトに埋め込むための構図の言い換えです。
func (a AspectRatio) Describe() string {
	switch a {
	case AspectPortrait:
		return "tall portrait"
	case AspectLandscape:
		return "wide landscape"
	default:
		return "square"
	}
}

// Resolution は動画の解像度です。
type Resolution string

const (
	Resolution720p  Resolution = "720p"
	Resolution1080p Resolution = "1080p"
)

func (r Resolution) Valid() bool {
	return r == Resolution720p || r == Resolution1080p
}

// MediaPart はコアに渡されるバイナリ入力（画像など）と MIME タイプの組です。
// ファイルからこの形への変換は呼び出し側の責務です。
type MediaPart struct {
	Data     []byte
	MIMEType string
}

// Empty はデータを持たないパーツかどうかを返します。
func (m MediaPart) Empty() bool {
	return len(m.Data) == 0
}

// Image は生成された画像データとその MIME タイプです。
type Image struct {
	Data     []byte
	MIMEType string
}

// DataURI は表示用の data: URI を返すのだ。
func (i Image) DataURI() string {
	return fmt.Sprintf("data:%s;base64,%s", i.MIMEType, base64.StdEncoding.EncodeToString(i.Data))
}

// ImageSet はプロバイダの応答順に並んだ画像の列です。
// ペイロードを持たないエントリは含まれません。
type ImageSet []Image

// DataURIs は各画像の data: URI を順番通りに返します。
func (s ImageSet) DataURIs() []string {
	out := make([]string, 0, len(s))
	for _, img := range s {
		out = append(out, img.DataURI())
	}
	return out
}

// Audio は音声合成の生データです。
type Audio struct {
	Data     []byte
	MIMEType string
}

// VideoLocator は完成した動画リソースの URI です。取得にはアクセス資格情報が必要です。
type VideoLocator struct {
	URI string
}
