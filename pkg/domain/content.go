package domain

// PromoScript はプロモーション台本の構造化出力です。
type PromoScript struct {
	Hook     string `json:"hook"`
	Problem  string `json:"problem"`
	Solution string `json:"solution"`
	CTA      string `json:"cta"`
	Caption  string `json:"caption"`
}

// HashtagStrategy はキーワードに対するハッシュタグ戦略です。
type HashtagStrategy struct {
	MainHashtags     []string `json:"mainHashtags"`
	BroadHashtags    []string `json:"broadHashtags"`
	TrendingHashtags []string `json:"trendingHashtags"`
	AudienceHashtags []string `json:"audienceHashtags"`
}

// StoryboardScene は絵コンテの1シーンです。
// Image はフェーズ2で解決され、生成できなかった場合は nil のままです。
type StoryboardScene struct {
	Description  string `json:"scene_description"`
	VisualPrompt string `json:"visual_prompt"`
	Image        *Image `json:"-"`
}

// StoryboardPlan はフェーズ1の構造化出力です。
type StoryboardPlan struct {
	Scenes []StoryboardScene `json:"scenes"`
}
