package domain

// Result は生成結果の閉じた直和型です。リクエストの種類ごとに1つのバリアントがあります。
type Result interface {
	Kind() Kind
	isResult()
}

// 結果側のタグ。
const (
	KindImageSet         Kind = "image_set"
	KindStructuredObject Kind = "structured_object"
	KindText             Kind = "text"
	KindAudio            Kind = "audio"
	KindVideoJob         Kind = "video_job"
)

// ImageSetResult は画像生成・編集・背景除去の結果です。
type ImageSetResult struct {
	Images ImageSet
}

// StructuredResult はスキーマに従ってパースされたオブジェクトです。
type StructuredResult struct {
	Object map[string]any
}

type TextResult struct {
	Text string
}

type AudioResult struct {
	Audio Audio
}

type StoryboardResult struct {
	Scenes []StoryboardScene
}

// VideoJobResult はプロバイダ側の長時間オペレーションへの不透明な参照です。
type VideoJobResult struct {
	Name string
}

type VideoLocatorResult struct {
	Locator VideoLocator
	Data    []byte
}

func (ImageSetResult) Kind() Kind     { return KindImageSet }
func (StructuredResult) Kind() Kind   { return KindStructuredObject }
func (TextResult) Kind() Kind         { return KindText }
func (AudioResult) Kind() Kind        { return KindAudio }
func (StoryboardResult) Kind() Kind   { return KindStoryboard }
func (VideoJobResult) Kind() Kind     { return KindVideoJob }
func (VideoLocatorResult) Kind() Kind { return KindVideoLocator }

func (ImageSetResult) isResult()     {}
func (StructuredResult) isResult()   {}
func (TextResult) isResult()         {}
func (AudioResult) isResult()        {}
func (StoryboardResult) isResult()   {}
func (VideoJobResult) isResult()     {}
func (VideoLocatorResult) isResult() {}
