package imgutil

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	"github.com/shouni/gemini-creator-kit/pkg/domain"
)

// CompressToJPEG は参照画像（PNG, GIF, JPEG）を JPEG に再エンコードします。
// JPEG はアルファを持てないので、透過部分は白で塗りつぶしてから書き出すのだ。
func CompressToJPEG(data []byte, quality int) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: 画像をデコードできません: %v", domain.ErrInvalidInput, err)
	}
	quality = max(1, min(quality, 100))

	bounds := src.Bounds()
	canvas := image.NewRGBA(bounds)
	draw.Draw(canvas, bounds, image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(canvas, bounds, src, bounds.Min, draw.Over)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, canvas, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("jpeg encode: %w", err)
	}
	return buf.Bytes(), nil
}

// CompressPart は参照画像を JPEG に圧縮したパーツを返します。
// デコードできない場合や圧縮で大きくなる場合は元のパーツをそのまま返します。
func CompressPart(part domain.MediaPart, quality int) domain.MediaPart {
	compressed, err := CompressToJPEG(part.Data, quality)
	if err != nil || len(compressed) >= len(part.Data) {
		return part
	}
	return domain.MediaPart{Data: compressed, MIMEType: "image/jpeg"}
}
