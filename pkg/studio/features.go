package studio

// FeatureKey は機能の識別子です。
type FeatureKey string

const (
	FeatureTextToImage        FeatureKey = "text-to-image"
	FeatureImageCombiner      FeatureKey = "image-combiner"
	FeatureChangeModelStyle   FeatureKey = "change-model-style"
	FeaturePromoScriptWriter  FeatureKey = "promo-script-writer"
	FeatureHashtagPlanner     FeatureKey = "hashtag-planner"
	FeatureTextToSpeech       FeatureKey = "text-to-speech"
	FeatureImageToPrompt      FeatureKey = "image-to-prompt"
	FeatureImageToImage       FeatureKey = "image-to-image"
	FeatureStoryboardDirector FeatureKey = "storyboard-director"
	FeatureRemoveBackground   FeatureKey = "remove-background"
	FeatureImageToVideoPrompt FeatureKey = "image-to-video-prompt"
	FeatureTextToVideo        FeatureKey = "text-to-video"
	FeatureImageToVideo       FeatureKey = "image-to-video"
)

// Feature は機能カタログの1項目です。
type Feature struct {
	Key         FeatureKey
	Name        string
	Icon        string
	Implemented bool
}

var catalog = []Feature{
	{Key: FeatureTextToImage, Name: "テキストから画像", Icon: "text-image", Implemented: true},
	{Key: FeatureImageCombiner, Name: "画像合成", Icon: "combine", Implemented: true},
	{Key: FeatureChangeModelStyle, Name: "モデルのスタイル変更", Icon: "style", Implemented: true},
	{Key: FeaturePromoScriptWriter, Name: "プロモーション台本", Icon: "script", Implemented: true},
	{Key: FeatureHashtagPlanner, Name: "ハッシュタグプランナー", Icon: "hashtag", Implemented: true},
	{Key: FeatureTextToSpeech, Name: "テキストから音声", Icon: "voice", Implemented: true},
	{Key: FeatureImageToPrompt, Name: "画像からプロンプト", Icon: "image-prompt", Implemented: true},
	{Key: FeatureImageToImage, Name: "画像から画像", Icon: "image-image", Implemented: true},
	{Key: FeatureStoryboardDirector, Name: "絵コンテディレクター", Icon: "storyboard", Implemented: true},
	{Key: FeatureRemoveBackground, Name: "背景除去", Icon: "background", Implemented: true},
	{Key: FeatureImageToVideoPrompt, Name: "画像から動画プロンプト", Icon: "video-prompt", Implemented: true},
	{Key: FeatureTextToVideo, Name: "テキストから動画", Icon: "video", Implemented: true},
	{Key: FeatureImageToVideo, Name: "画像から動画", Icon: "video", Implemented: true},
}

// Features は機能カタログのコピーを表示順で返します。
func Features() []Feature {
	out := make([]Feature, len(catalog))
	copy(out, catalog)
	return out
}

// Lookup はキーから機能を探します。
func Lookup(key FeatureKey) (Feature, bool) {
	for _, f := range catalog {
		if f.Key == key {
			return f, true
		}
	}
	return Feature{}, false
}
