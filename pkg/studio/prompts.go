package studio

import (
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/shouni/gemini-creator-kit/pkg/domain"
)

// Background は画像合成時の背景の扱いです。
type Background string

const (
	BackgroundOriginal Background = "original"
	BackgroundRandom   Background = "random"
)

// 音声のスタイルとボイスの選択肢
var (
	SpeechStyles = []string{"Cheerful", "Sad", "Funny", "Professional", "Whisper"}
	Voices       = []string{"Puck", "Charon", "Kore", "Fenrir", "Zephyr"}
)

const (
	DefaultSpeechStyle = "Cheerful"
	DefaultVoice       = "Kore"

	imageToPromptInstruction = "Describe this image in vivid detail. Create a descriptive prompt that an AI image generator could use to recreate a similar image. Focus on subject, setting, lighting, style, and composition."

	videoDirectorInstruction = "You are a creative video director. Based on this image, write a compelling and descriptive prompt for a text-to-video AI model. Describe a short, dynamic video clip that starts with or is inspired by this scene. Include details on camera movement (e.g., zoom in, dolly shot), character action, and atmosphere."
)

func combineInstruction(instructions string, ratio domain.AspectRatio, background Background) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Take the person from the first image and the product from the second image. Place the product realistically with the person according to these instructions: %q.", instructions)
	switch background {
	case BackgroundOriginal:
		b.WriteString(" Keep the original background of the model image.")
	case BackgroundRandom:
		b.WriteString(" Place them on a new, interesting, and random background that fits the scene.")
	}
	fmt.Fprintf(&b, " IMPORTANT: The final image's composition must strictly follow a %s aspect ratio (%s).", ratio.Describe(), ratio)
	return b.String()
}

func modelVariationInstruction(style string) string {
	text := "Generate a variation of this model. Keep the face, body, and clothing as consistent as possible with the original image."
	if s := strings.TrimSpace(style); s != "" {
		return text + fmt.Sprintf(" Apply this specific style or instruction: %q. Be creative with the composition, lighting, and background.", s)
	}
	return text + " Create a variation with a slightly different pose or style, for example in a professional studio photo setting."
}

func videoPromptInstruction(instructions string) string {
	if s := strings.TrimSpace(instructions); s != "" {
		return videoDirectorInstruction + fmt.Sprintf(" Follow these specific user instructions: %q.", s)
	}
	return videoDirectorInstruction
}

func promoScriptPrompt(productName, description, style, audience string) string {
	return fmt.Sprintf(`Create a promotional script for a product.
Product Name: %s
Description: %s
Writing Style: %s
Target Audience: %s

Structure the output into these exact sections: HOOK, PROBLEM, SOLUTION, CTA, CAPTION.
HOOK should be a catchy opening line.
PROBLEM should describe a problem the audience faces.
SOLUTION should present the product as the solution.
CTA should be a clear call to action.
CAPTION should be a ready-to-use social media caption with emojis.`, productName, description, style, audience)
}

func hashtagPrompt(keyword string) string {
	return fmt.Sprintf(`Generate a hashtag strategy for the keyword %q.
Categorize the hashtags into four groups:
1. mainHashtags: Core hashtags directly related to the keyword.
2. broadHashtags: More general hashtags to reach a wider audience.
3. trendingHashtags: Currently popular or viral hashtags that can be relevant.
4. audienceHashtags: Hashtags that target a specific user group or interest.
Provide 3-5 hashtags for each category.`, keyword)
}

var promoScriptSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"hook":     {Type: genai.TypeString, Description: "Catchy opening line."},
		"problem":  {Type: genai.TypeString, Description: "The problem the audience faces."},
		"solution": {Type: genai.TypeString, Description: "How the product solves the problem."},
		"cta":      {Type: genai.TypeString, Description: "A clear call to action."},
		"caption":  {Type: genai.TypeString, Description: "A social media caption with emojis."},
	},
	Required: []string{"hook", "problem", "solution", "cta", "caption"},
}

func stringArray() *genai.Schema {
	return &genai.Schema{Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}}
}

var hashtagSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"mainHashtags":     stringArray(),
		"broadHashtags":    stringArray(),
		"trendingHashtags": stringArray(),
		"audienceHashtags": stringArray(),
	},
	Required: []string{"mainHashtags", "broadHashtags", "trendingHashtags", "audienceHashtags"},
}
