package generator

const (
	DefaultImageCount         = 3
	DefaultMaxScenes          = 6
	DefaultCompressionQuality = 75

	// Imagen の出力は常に JPEG を要求する
	batchOutputMIMEType = "image/jpeg"
	storyboardAspect    = "16:9"
)

// メトリクスとログに使う操作名
const (
	opImageBatch       = "image_batch"
	opImageEdit        = "image_edit"
	opStructuredText   = "structured_text"
	opSpeech           = "speech"
	opPromptFromMedia  = "prompt_from_media"
	opRemoveBackground = "remove_background"
	opStoryboard       = "storyboard"
)

// Models は用途ごとのモデル ID です。
type Models struct {
	Image     string
	ImageEdit string
	Text      string
	TextPro   string
	Speech    string
}

// DefaultModels は既定のモデル構成を返します。
func DefaultModels() Models {
	return Models{
		Image:     "imagen-4.0-generate-001",
		ImageEdit: "gemini-2.5-flash-image",
		Text:      "gemini-2.5-flash",
		TextPro:   "gemini-2.5-pro",
		Speech:    "gemini-2.5-flash-preview-tts",
	}
}

// Options はゲートウェイの挙動を調整します。ゼロ値の項目はデフォルトで補われます。
type Options struct {
	ImageCount int
	MaxScenes  int
	// CompressInputs が true の場合、参照画像を JPEG に圧縮してから送信する。
	// 背景除去の入力は透過を保つため対象外。
	CompressInputs     bool
	CompressionQuality int
}

func (o Options) withDefaults() Options {
	if o.ImageCount <= 0 {
		o.ImageCount = DefaultImageCount
	}
	if o.MaxScenes <= 0 {
		o.MaxScenes = DefaultMaxScenes
	}
	if o.CompressionQuality <= 0 || o.CompressionQuality > 100 {
		o.CompressionQuality = DefaultCompressionQuality
	}
	return o
}
