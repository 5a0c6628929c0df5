package studio

import (
	"bytes"
	"encoding/binary"
	"mime"
	"strconv"
	"strings"

	"github.com/shouni/gemini-creator-kit/pkg/domain"
)

const (
	defaultSampleRate = 24000
	pcmChannels       = 1
	pcmBitsPerSample  = 16
)

// ToWAV は音声モデルが返す生の PCM (audio/L16 など) に WAV ヘッダを付けます。
// PCM 以外の MIME タイプはそのまま返します。
func ToWAV(audio domain.Audio) (domain.Audio, error) {
	if len(audio.Data) == 0 {
		return audio, domain.NewError(domain.KindAbsentPayload, opStudio, "no audio returned", nil)
	}
	rate, ok := pcmSampleRate(audio.MIMEType)
	if !ok {
		return audio, nil
	}

	var buf bytes.Buffer
	buf.Grow(44 + len(audio.Data))
	byteRate := rate * pcmChannels * pcmBitsPerSample / 8
	blockAlign := pcmChannels * pcmBitsPerSample / 8

	buf.WriteString("RIFF")
	write := func(v any) {
		// bytes.Buffer への書き込みは失敗しない
		_ = binary.Write(&buf, binary.LittleEndian, v)
	}
	write(uint32(36 + len(audio.Data)))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	write(uint32(16))
	write(uint16(1)) // PCM
	write(uint16(pcmChannels))
	write(uint32(rate))
	write(uint32(byteRate))
	write(uint16(blockAlign))
	write(uint16(pcmBitsPerSample))
	buf.WriteString("data")
	write(uint32(len(audio.Data)))
	buf.Write(audio.Data)

	return domain.Audio{Data: buf.Bytes(), MIMEType: "audio/wav"}, nil
}

// pcmSampleRate は MIME タイプが生の PCM ならサンプリングレートを返します。
func pcmSampleRate(mimeType string) (int, bool) {
	if mimeType == "" {
		return 0, false
	}
	mediaType, params, err := mime.ParseMediaType(mimeType)
	if err != nil {
		return 0, false
	}
	if mediaType != "audio/l16" && mediaType != "audio/pcm" && !strings.Contains(params["codec"], "pcm") {
		return 0, false
	}
	rate := defaultSampleRate
	if r, ok := params["rate"]; ok {
		parsed, err := strconv.Atoi(r)
		if err != nil || parsed <= 0 {
			return 0, false
		}
		rate = parsed
	}
	return rate, true
}

// AudioExtension は保存時の拡張子を返します。
func AudioExtension(audio domain.Audio) string {
	switch {
	case strings.HasPrefix(audio.MIMEType, "audio/wav"), strings.HasPrefix(audio.MIMEType, "audio/x-wav"):
		return ".wav"
	case strings.HasPrefix(audio.MIMEType, "audio/mpeg"):
		return ".mp3"
	default:
		return ".bin"
	}
}
