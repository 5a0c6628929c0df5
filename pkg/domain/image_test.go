package domain

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestImage_DataURI(t *testing.T) {
	t.Run("MIMEタイプとbase64本文でdata URIを組み立てるのだ", func(t *testing.T) {
		img := Image{Data: []byte{0xFF, 0xD8, 0xFF}, MIMEType: "image/jpeg"}

		got := img.DataURI()

		assert.True(t, strings.HasPrefix(got, "data:image/jpeg;base64,"))
		payload := strings.TrimPrefix(got, "data:image/jpeg;base64,")
		decoded, err := base64.StdEncoding.DecodeString(payload)
		assert.NoError(t, err)
		assert.Equal(t, img.Data, decoded)
	})

	t.Run("ImageSetは順番を保ったままURIを返すのだ", func(t *testing.T) {
		set := ImageSet{
			{Data: []byte("a"), MIMEType: "image/png"},
			{Data: []byte("b"), MIMEType: "image/jpeg"},
		}
		uris := set.DataURIs()
		assert.Len(t, uris, 2)
		assert.True(t, strings.HasPrefix(uris[0], "data:image/png"))
		assert.True(t, strings.HasPrefix(uris[1], "data:image/jpeg"))
	})
}

func TestAspectRatio(t *testing.T) {
	tests := []struct {
		ratio    AspectRatio
		valid    bool
		video    bool
		describe string
	}{
		{AspectSquare, true, false, "square"},
		{AspectLandscape, true, true, "wide landscape"},
		{AspectPortrait, true, true, "tall portrait"},
		{"4:3", false, false, "square"},
	}
	for _, tt := range tests {
		t.Run(string(tt.ratio), func(t *testing.T) {
			assert.Equal(t, tt.valid, tt.ratio.Valid())
			assert.Equal(t, tt.video, tt.ratio.ValidForVideo())
			assert.Equal(t, tt.describe, tt.ratio.Describe())
		})
	}
}

func TestGenerationError_Is(t *testing.T) {
	cause := errors.New("boom")
	err := fmt.Errorf("wrapped: %w", NewError(KindParse, "structured", "", cause))

	assert.ErrorIs(t, err, ErrParse)
	assert.NotErrorIs(t, err, ErrTransport)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, KindParse, KindOf(err))
	assert.Equal(t, ErrorKind(0), KindOf(cause))
	assert.Contains(t, err.Error(), "structured: boom")
}

func TestVideoRequest_FromImage(t *testing.T) {
	assert.False(t, VideoRequest{Prompt: "cat"}.FromImage())
	assert.False(t, VideoRequest{Image: &MediaPart{}}.FromImage())
	assert.True(t, VideoRequest{Image: &MediaPart{Data: []byte{1}, MIMEType: "image/png"}}.FromImage())
}
