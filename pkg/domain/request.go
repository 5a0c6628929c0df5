package domain

import "google.golang.org/genai"

// Request は生成要求の閉じた直和型です。各バリアントは生成後に変更されません。
type Request interface {
	Kind() Kind
	isRequest()
}

// Kind はリクエストと結果を判別するタグです。
type Kind string

const (
	KindTextToImage       Kind = "text_to_image"
	KindImageEdit         Kind = "image_edit"
	KindStructuredText    Kind = "structured_text"
	KindSpeech            Kind = "speech"
	KindPromptFromMedia   Kind = "prompt_from_media"
	KindBackgroundRemoval Kind = "background_removal"
	KindStoryboard        Kind = "storyboard"
	KindVideo             Kind = "video"
	KindVideoLocator      Kind = "video_locator"
)

// TextToImageRequest は1回の呼び出しで Count 枚のバリエーションを要求します。
type TextToImageRequest struct {
	Prompt      string
	AspectRatio AspectRatio
	Count       int
}

// ImageEditRequest は同じ入力パーツと指示で Count 回の独立した呼び出しを行います。
type ImageEditRequest struct {
	Parts       []MediaPart
	Instruction string
	AspectRatio AspectRatio
	Count       int
}

// StructuredTextRequest は出力スキーマを宣言したテキスト生成です。
type StructuredTextRequest struct {
	Prompt string
	Schema *genai.Schema
	// Pro が true の場合は高精度モデルを使います。
	Pro bool
}

type SpeechRequest struct {
	Text  string
	Style string
	Voice string
}

type PromptFromMediaRequest struct {
	Media       MediaPart
	Instruction string
}

type BackgroundRemovalRequest struct {
	Media MediaPart
}

// StoryboardRequest の Reference は任意のキャラクター参照画像です。
type StoryboardRequest struct {
	Script    string
	Reference *MediaPart
}

// VideoRequest は Image が nil ならテキストから、そうでなければ画像から動画を生成します。
type VideoRequest struct {
	Prompt      string
	Image       *MediaPart
	AspectRatio AspectRatio
	Resolution  Resolution
}

func (TextToImageRequest) Kind() Kind       { return KindTextToImage }
func (ImageEditRequest) Kind() Kind         { return KindImageEdit }
func (StructuredTextRequest) Kind() Kind    { return KindStructuredText }
func (SpeechRequest) Kind() Kind            { return KindSpeech }
func (PromptFromMediaRequest) Kind() Kind   { return KindPromptFromMedia }
func (BackgroundRemovalRequest) Kind() Kind { return KindBackgroundRemoval }
func (StoryboardRequest) Kind() Kind        { return KindStoryboard }
func (VideoRequest) Kind() Kind             { return KindVideo }

func (TextToImageRequest) isRequest()       {}
func (ImageEditRequest) isRequest()         {}
func (StructuredTextRequest) isRequest()    {}
func (SpeechRequest) isRequest()            {}
func (PromptFromMediaRequest) isRequest()   {}
func (BackgroundRemovalRequest) isRequest() {}
func (StoryboardRequest) isRequest()        {}
func (VideoRequest) isRequest()             {}

// FromImage は画像から動画への生成かどうかを返します。
func (r VideoRequest) FromImage() bool {
	return r.Image != nil && !r.Image.Empty()
}
