package studio

import (
	"context"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shouni/gemini-creator-kit/pkg/credential"
	"github.com/shouni/gemini-creator-kit/pkg/domain"
	"github.com/shouni/gemini-creator-kit/pkg/generator"
)

func newTestStudio(t *testing.T, gw *mockGateway, videos VideoGenerator) *Studio {
	t.Helper()
	s, err := New(gw, videos, 0)
	require.NoError(t, err)
	return s
}

func TestFeatures(t *testing.T) {
	features := Features()

	require.Len(t, features, 13)
	assert.Equal(t, FeatureTextToImage, features[0].Key)
	assert.Equal(t, FeatureImageToVideo, features[12].Key)
	for _, f := range features {
		assert.True(t, f.Implemented, f.Key)
		assert.NotEmpty(t, f.Name)
	}

	// 返り値を書き換えてもカタログは変わらない
	features[0].Name = "changed"
	f, ok := Lookup(FeatureTextToImage)
	require.True(t, ok)
	assert.NotEqual(t, "changed", f.Name)

	_, ok = Lookup("unknown")
	assert.False(t, ok)
}

func TestStudio_TextToImage(t *testing.T) {
	ctx := context.Background()

	t.Run("ゲートウェイの画像をそのまま返す", func(t *testing.T) {
		gw := &mockGateway{images: oneImage}
		s := newTestStudio(t, gw, nil)

		set, err := s.TextToImage(ctx, "a red bicycle", domain.AspectSquare)

		require.NoError(t, err)
		assert.Equal(t, oneImage, set)
		assert.Equal(t, []string{"a red bicycle"}, gw.batchCalls)
	})

	t.Run("空のプロンプトは呼び出さない", func(t *testing.T) {
		gw := &mockGateway{}
		s := newTestStudio(t, gw, nil)

		_, err := s.TextToImage(ctx, " ", domain.AspectSquare)

		assert.ErrorIs(t, err, domain.ErrInvalidInput)
		assert.Empty(t, gw.batchCalls)
	})

	t.Run("不正なアスペクト比は ErrInvalidInput", func(t *testing.T) {
		s := newTestStudio(t, &mockGateway{}, nil)

		_, err := s.TextToImage(ctx, "x", "4:3")

		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("画像が1枚も無ければ AbsentPayload", func(t *testing.T) {
		s := newTestStudio(t, &mockGateway{images: domain.ImageSet{}}, nil)

		_, err := s.TextToImage(ctx, "x", domain.AspectSquare)

		assert.ErrorIs(t, err, domain.ErrAbsentPayload)
	})
}

func TestStudio_CombineImages(t *testing.T) {
	ctx := context.Background()

	t.Run("背景の指定が指示文に反映される", func(t *testing.T) {
		gw := &mockGateway{images: oneImage}
		s := newTestStudio(t, gw, nil)

		_, err := s.CombineImages(ctx, testImage, testImage, "hold the bottle", domain.AspectPortrait, BackgroundRandom)

		require.NoError(t, err)
		require.Len(t, gw.editCalls, 1)
		call := gw.editCalls[0]
		assert.Len(t, call.parts, 2)
		assert.Equal(t, generator.DefaultImageCount, call.count)
		assert.Contains(t, call.instruction, `"hold the bottle"`)
		assert.Contains(t, call.instruction, "random background")
		assert.Contains(t, call.instruction, "tall portrait aspect ratio (9:16)")
	})

	t.Run("未知の背景指定は無視される", func(t *testing.T) {
		gw := &mockGateway{images: oneImage}
		s := newTestStudio(t, gw, nil)

		_, err := s.CombineImages(ctx, testImage, testImage, "x", domain.AspectSquare, "beach")

		require.NoError(t, err)
		assert.NotContains(t, gw.editCalls[0].instruction, "background")
	})

	t.Run("商品画像が無ければ ErrInvalidInput", func(t *testing.T) {
		s := newTestStudio(t, &mockGateway{}, nil)

		_, err := s.CombineImages(ctx, testImage, domain.MediaPart{}, "x", domain.AspectSquare, BackgroundOriginal)

		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestStudio_ChangeModelStyle(t *testing.T) {
	ctx := context.Background()

	t.Run("スタイル指定あり", func(t *testing.T) {
		gw := &mockGateway{images: oneImage}
		s := newTestStudio(t, gw, nil)

		_, err := s.ChangeModelStyle(ctx, testImage, "film noir")

		require.NoError(t, err)
		assert.Contains(t, gw.editCalls[0].instruction, `"film noir"`)
	})

	t.Run("スタイル指定なしはスタジオ写真の既定指示", func(t *testing.T) {
		gw := &mockGateway{images: oneImage}
		s := newTestStudio(t, gw, nil)

		_, err := s.ChangeModelStyle(ctx, testImage, "")

		require.NoError(t, err)
		assert.Contains(t, gw.editCalls[0].instruction, "professional studio photo")
	})
}

func TestStudio_ImageToImageAndRemoveBackground(t *testing.T) {
	ctx := context.Background()
	gw := &mockGateway{images: oneImage}
	s := newTestStudio(t, gw, nil)

	set, err := s.ImageToImage(ctx, testImage, "make it watercolor")
	require.NoError(t, err)
	assert.Len(t, set, 1)
	assert.Equal(t, "make it watercolor", gw.editCalls[0].instruction)

	img, err := s.RemoveBackground(ctx, testImage)
	require.NoError(t, err)
	assert.Equal(t, oneImage[0], img)

	_, err = s.RemoveBackground(ctx, domain.MediaPart{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestStudio_Storyboard(t *testing.T) {
	ctx := context.Background()
	scenes := []domain.StoryboardScene{{Description: "s1"}, {Description: "s2"}}

	t.Run("空の参照画像は参照なしとして扱う", func(t *testing.T) {
		gw := &mockGateway{scenes: scenes}
		s := newTestStudio(t, gw, nil)

		got, err := s.Storyboard(ctx, "script", &domain.MediaPart{})

		require.NoError(t, err)
		assert.Equal(t, scenes, got)
		assert.Nil(t, gw.reference)
	})

	t.Run("参照画像を渡す", func(t *testing.T) {
		gw := &mockGateway{scenes: scenes}
		s := newTestStudio(t, gw, nil)
		ref := testImage

		_, err := s.Storyboard(ctx, "script", &ref)

		require.NoError(t, err)
		assert.NotNil(t, gw.reference)
	})
}

func TestStudio_PromoScriptAndHashtags(t *testing.T) {
	ctx := context.Background()

	t.Run("台本は上位モデルで構造化される", func(t *testing.T) {
		gw := &mockGateway{raw: `{"hook":"h","problem":"p","solution":"s","cta":"c","caption":"cap ✨"}`}
		s := newTestStudio(t, gw, nil)

		script, err := s.PromoScript(ctx, "Kopi Susu", "creamy iced coffee", "Casual", "Gen Z")

		require.NoError(t, err)
		assert.Equal(t, "cap ✨", script.Caption)
		require.Len(t, gw.structured, 1)
		assert.True(t, gw.structured[0].pro)
		assert.Same(t, promoScriptSchema, gw.structured[0].schema)
		assert.Contains(t, gw.structured[0].prompt, "Product Name: Kopi Susu")
	})

	t.Run("ハッシュタグは通常モデル", func(t *testing.T) {
		gw := &mockGateway{raw: `{"mainHashtags":["#a"],"broadHashtags":["#b"],"trendingHashtags":["#c"],"audienceHashtags":["#d"]}`}
		s := newTestStudio(t, gw, nil)

		strategy, err := s.Hashtags(ctx, "coffee")

		require.NoError(t, err)
		assert.Equal(t, []string{"#a"}, strategy.MainHashtags)
		assert.Equal(t, []string{"#d"}, strategy.AudienceHashtags)
		assert.False(t, gw.structured[0].pro)
	})

	t.Run("壊れた応答は ParseError", func(t *testing.T) {
		s := newTestStudio(t, &mockGateway{raw: "{"}, nil)

		_, err := s.Hashtags(ctx, "coffee")

		assert.ErrorIs(t, err, domain.ErrParse)
	})

	t.Run("空のキーワードは ErrInvalidInput", func(t *testing.T) {
		gw := &mockGateway{}
		s := newTestStudio(t, gw, nil)

		_, err := s.Hashtags(ctx, "")

		assert.ErrorIs(t, err, domain.ErrInvalidInput)
		assert.Empty(t, gw.structured)
	})
}

func TestStudio_TextToSpeech(t *testing.T) {
	ctx := context.Background()

	t.Run("PCM は WAV に包まれる", func(t *testing.T) {
		pcm := []byte{0, 1, 2, 3}
		gw := &mockGateway{audio: domain.Audio{Data: pcm, MIMEType: "audio/L16;codec=pcm;rate=24000"}}
		s := newTestStudio(t, gw, nil)

		audio, err := s.TextToSpeech(ctx, "hello", "", "")

		require.NoError(t, err)
		assert.Equal(t, "audio/wav", audio.MIMEType)
		assert.Equal(t, ".wav", AudioExtension(audio))
		require.Len(t, audio.Data, 44+len(pcm))
		assert.Equal(t, "RIFF", string(audio.Data[0:4]))
		assert.Equal(t, "WAVE", string(audio.Data[8:12]))
		assert.Equal(t, uint32(24000), binary.LittleEndian.Uint32(audio.Data[24:28]))
		assert.Equal(t, pcm, audio.Data[44:])
		assert.Equal(t, []string{"Cheerful|Kore|hello"}, gw.speech)
	})

	t.Run("未対応のボイスは ErrInvalidInput", func(t *testing.T) {
		gw := &mockGateway{}
		s := newTestStudio(t, gw, nil)

		_, err := s.TextToSpeech(ctx, "hello", "Sad", "Nobody")

		assert.ErrorIs(t, err, domain.ErrInvalidInput)
		assert.Empty(t, gw.speech)
	})
}

func TestToWAV(t *testing.T) {
	t.Run("PCM 以外はそのまま", func(t *testing.T) {
		in := domain.Audio{Data: []byte("ID3"), MIMEType: "audio/mpeg"}
		out, err := ToWAV(in)
		require.NoError(t, err)
		assert.Equal(t, in, out)
	})

	t.Run("レート指定が反映される", func(t *testing.T) {
		out, err := ToWAV(domain.Audio{Data: []byte{0, 0}, MIMEType: "audio/pcm;rate=16000"})
		require.NoError(t, err)
		assert.Equal(t, uint32(16000), binary.LittleEndian.Uint32(out.Data[24:28]))
	})

	t.Run("空の音声は AbsentPayload", func(t *testing.T) {
		_, err := ToWAV(domain.Audio{})
		assert.ErrorIs(t, err, domain.ErrAbsentPayload)
	})
}

func TestStudio_PromptFeatures(t *testing.T) {
	ctx := context.Background()
	gw := &mockGateway{text: "prompt text"}
	s := newTestStudio(t, gw, nil)

	text, err := s.ImageToPrompt(ctx, testImage)
	require.NoError(t, err)
	assert.Equal(t, "prompt text", text)
	assert.Equal(t, imageToPromptInstruction, gw.mediaCalls[0])

	_, err = s.ImageToVideoPrompt(ctx, testImage, "slow zoom")
	require.NoError(t, err)
	assert.Contains(t, gw.mediaCalls[1], "creative video director")
	assert.Contains(t, gw.mediaCalls[1], `"slow zoom"`)

	_, err = s.ImageToVideoPrompt(ctx, testImage, "")
	require.NoError(t, err)
	assert.Equal(t, videoDirectorInstruction, gw.mediaCalls[2])
}

func TestStudio_Video(t *testing.T) {
	ctx := context.Background()
	sess := credential.NewSession(nil)

	t.Run("テキストから動画は既定の比率と解像度を補う", func(t *testing.T) {
		videos := &mockVideos{result: domain.VideoLocatorResult{Locator: domain.VideoLocator{URI: "https://example.com/v"}}}
		s := newTestStudio(t, &mockGateway{}, videos)

		res, err := s.TextToVideo(ctx, sess, "a cat", "", "", nil)

		require.NoError(t, err)
		assert.Equal(t, "https://example.com/v", res.Locator.URI)
		require.Len(t, videos.requests, 1)
		req := videos.requests[0]
		assert.False(t, req.FromImage())
		assert.Equal(t, domain.AspectLandscape, req.AspectRatio)
		assert.Equal(t, domain.Resolution720p, req.Resolution)
	})

	t.Run("画像から動画は画像を渡す", func(t *testing.T) {
		videos := &mockVideos{}
		s := newTestStudio(t, &mockGateway{}, videos)

		_, err := s.ImageToVideo(ctx, sess, testImage, "move", domain.AspectPortrait, domain.Resolution1080p, nil)

		require.NoError(t, err)
		assert.True(t, videos.requests[0].FromImage())
	})

	t.Run("1:1 は動画では使えない", func(t *testing.T) {
		videos := &mockVideos{}
		s := newTestStudio(t, &mockGateway{}, videos)

		_, err := s.TextToVideo(ctx, sess, "a cat", domain.AspectSquare, "", nil)

		assert.ErrorIs(t, err, domain.ErrInvalidInput)
		assert.Empty(t, videos.requests)
	})

	t.Run("動画生成が無ければエラー", func(t *testing.T) {
		s := newTestStudio(t, &mockGateway{}, nil)

		_, err := s.TextToVideo(ctx, sess, "a cat", "", "", nil)

		assert.Error(t, err)
	})
}
