package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/shouni/gemini-creator-kit/pkg/config"
	"github.com/shouni/gemini-creator-kit/pkg/domain"
	"github.com/shouni/gemini-creator-kit/pkg/imgutil"
	"github.com/shouni/gemini-creator-kit/pkg/studio"
	"github.com/shouni/gemini-creator-kit/pkg/video"
)

type command struct {
	summary string
	run     func(ctx context.Context, a *app, args []string) error
}

var commandOrder = []string{
	"image", "combine", "style", "edit", "rmbg", "storyboard", "promo",
	"hashtags", "tts", "img2prompt", "img2videoprompt", "t2v", "i2v",
}

var commands = map[string]command{
	"image":           {summary: "generate images from a prompt", run: runTextToImage},
	"combine":         {summary: "place a product onto a model image", run: runCombine},
	"style":           {summary: "create style variations of a model", run: runModelStyle},
	"edit":            {summary: "transform an image with a prompt", run: runImageToImage},
	"rmbg":            {summary: "remove the background of an image", run: runRemoveBackground},
	"storyboard":      {summary: "turn a script into storyboard scenes", run: runStoryboard},
	"promo":           {summary: "write a promotional script", run: runPromoScript},
	"hashtags":        {summary: "plan hashtags for a keyword", run: runHashtags},
	"tts":             {summary: "synthesize speech", run: runSpeech},
	"img2prompt":      {summary: "describe an image as a generation prompt", run: runImageToPrompt},
	"img2videoprompt": {summary: "write a video prompt from an image", run: runImageToVideoPrompt},
	"t2v":             {summary: "generate a video from a prompt", run: runTextToVideo},
	"i2v":             {summary: "generate a video from an image", run: runImageToVideo},
}

func runTextToImage(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("image", flag.ContinueOnError)
	prompt := fs.String("prompt", "", "image prompt")
	aspect := fs.String("aspect", string(domain.AspectSquare), "aspect ratio (1:1, 16:9, 9:16)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	ratio, err := config.ParseAspectRatio(*aspect)
	if err != nil {
		return err
	}
	set, err := a.studio.TextToImage(ctx, *prompt, ratio)
	if err != nil {
		return err
	}
	return a.saveImages("image", set)
}

func runCombine(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("combine", flag.ContinueOnError)
	modelPath := fs.String("model", "", "model image path")
	productPath := fs.String("product", "", "product image path")
	instructions := fs.String("instructions", "", "how the product should be worn or held")
	aspect := fs.String("aspect", string(domain.AspectSquare), "aspect ratio (1:1, 16:9, 9:16)")
	background := fs.String("background", string(studio.BackgroundOriginal), "background handling (original, random)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	ratio, err := config.ParseAspectRatio(*aspect)
	if err != nil {
		return err
	}
	model, err := readMedia(*modelPath)
	if err != nil {
		return err
	}
	product, err := readMedia(*productPath)
	if err != nil {
		return err
	}
	set, err := a.studio.CombineImages(ctx, model, product, *instructions, ratio, studio.Background(*background))
	if err != nil {
		return err
	}
	return a.saveImages("combined", set)
}

func runModelStyle(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("style", flag.ContinueOnError)
	modelPath := fs.String("model", "", "model image path")
	style := fs.String("style", "", "optional style direction")
	if err := fs.Parse(args); err != nil {
		return err
	}
	model, err := readMedia(*modelPath)
	if err != nil {
		return err
	}
	set, err := a.studio.ChangeModelStyle(ctx, model, *style)
	if err != nil {
		return err
	}
	return a.saveImages("style", set)
}

func runImageToImage(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("edit", flag.ContinueOnError)
	imagePath := fs.String("image", "", "input image path")
	prompt := fs.String("prompt", "", "transformation prompt")
	if err := fs.Parse(args); err != nil {
		return err
	}
	img, err := readMedia(*imagePath)
	if err != nil {
		return err
	}
	set, err := a.studio.ImageToImage(ctx, img, *prompt)
	if err != nil {
		return err
	}
	return a.saveImages("edited", set)
}

func runRemoveBackground(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("rmbg", flag.ContinueOnError)
	imagePath := fs.String("image", "", "input image path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	img, err := readMedia(*imagePath)
	if err != nil {
		return err
	}
	out, err := a.studio.RemoveBackground(ctx, img)
	if err != nil {
		return err
	}
	return a.saveImages("nobg", domain.ImageSet{out})
}

func runStoryboard(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("storyboard", flag.ContinueOnError)
	script := fs.String("script", "", "script text")
	scriptFile := fs.String("script-file", "", "read the script from a file")
	refPath := fs.String("ref", "", "optional character reference image")
	if err := fs.Parse(args); err != nil {
		return err
	}
	text := *script
	if *scriptFile != "" {
		b, err := os.ReadFile(*scriptFile)
		if err != nil {
			return fmt.Errorf("read script: %w", err)
		}
		text = string(b)
	}
	var ref *domain.MediaPart
	if *refPath != "" {
		m, err := readMedia(*refPath)
		if err != nil {
			return err
		}
		ref = &m
	}

	scenes, err := a.studio.Storyboard(ctx, text, ref)
	if err != nil {
		return err
	}
	for i, scene := range scenes {
		fmt.Printf("Scene %d: %s\n", i+1, scene.Description)
		if scene.Image == nil {
			fmt.Println("  (画像を生成できませんでした)")
			continue
		}
		path, err := a.write(fmt.Sprintf("scene-%d", i+1), extensionFor(scene.Image.MIMEType), scene.Image.Data)
		if err != nil {
			return err
		}
		fmt.Printf("  %s\n", path)
	}
	return nil
}

func runPromoScript(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("promo", flag.ContinueOnError)
	name := fs.String("name", "", "product name")
	desc := fs.String("desc", "", "product description")
	style := fs.String("style", "", "video style")
	audience := fs.String("audience", "", "target audience")
	if err := fs.Parse(args); err != nil {
		return err
	}
	script, err := a.studio.PromoScript(ctx, *name, *desc, *style, *audience)
	if err != nil {
		return err
	}
	return printJSON(os.Stdout, script)
}

func runHashtags(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("hashtags", flag.ContinueOnError)
	keyword := fs.String("keyword", "", "keyword or topic")
	if err := fs.Parse(args); err != nil {
		return err
	}
	strategy, err := a.studio.Hashtags(ctx, *keyword)
	if err != nil {
		return err
	}
	return printJSON(os.Stdout, strategy)
}

func runSpeech(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("tts", flag.ContinueOnError)
	text := fs.String("text", "", "text to read aloud")
	style := fs.String("style", studio.DefaultSpeechStyle, "speech style ("+strings.Join(studio.SpeechStyles, ", ")+")")
	voice := fs.String("voice", studio.DefaultVoice, "voice ("+strings.Join(studio.Voices, ", ")+")")
	if err := fs.Parse(args); err != nil {
		return err
	}
	audio, err := a.studio.TextToSpeech(ctx, *text, *style, *voice)
	if err != nil {
		return err
	}
	path, err := a.write("speech", studio.AudioExtension(audio), audio.Data)
	if err != nil {
		return err
	}
	fmt.Println(path)
	return nil
}

func runImageToPrompt(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("img2prompt", flag.ContinueOnError)
	imagePath := fs.String("image", "", "input image path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	img, err := readMedia(*imagePath)
	if err != nil {
		return err
	}
	prompt, err := a.studio.ImageToPrompt(ctx, img)
	if err != nil {
		return err
	}
	fmt.Println(prompt)
	return nil
}

func runImageToVideoPrompt(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("img2videoprompt", flag.ContinueOnError)
	imagePath := fs.String("image", "", "input image path")
	instructions := fs.String("instructions", "", "optional direction for the video")
	if err := fs.Parse(args); err != nil {
		return err
	}
	img, err := readMedia(*imagePath)
	if err != nil {
		return err
	}
	prompt, err := a.studio.ImageToVideoPrompt(ctx, img, *instructions)
	if err != nil {
		return err
	}
	fmt.Println(prompt)
	return nil
}

func runTextToVideo(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("t2v", flag.ContinueOnError)
	prompt := fs.String("prompt", "", "video prompt")
	aspect := fs.String("aspect", string(domain.AspectLandscape), "aspect ratio (16:9, 9:16)")
	res := fs.String("res", string(domain.Resolution720p), "resolution (720p, 1080p)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	result, err := a.studio.TextToVideo(ctx, a.session, *prompt, domain.AspectRatio(*aspect), domain.Resolution(*res), printProgress)
	if err != nil {
		return err
	}
	return a.saveVideo(result)
}

func runImageToVideo(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("i2v", flag.ContinueOnError)
	imagePath := fs.String("image", "", "starting image path")
	prompt := fs.String("prompt", "", "video prompt")
	aspect := fs.String("aspect", string(domain.AspectLandscape), "aspect ratio (16:9, 9:16)")
	res := fs.String("res", string(domain.Resolution720p), "resolution (720p, 1080p)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	img, err := readMedia(*imagePath)
	if err != nil {
		return err
	}
	result, err := a.studio.ImageToVideo(ctx, a.session, img, *prompt, domain.AspectRatio(*aspect), domain.Resolution(*res), printProgress)
	if err != nil {
		return err
	}
	return a.saveVideo(result)
}

// printProgress は進捗を標準エラーに1行ずつ書くのだ。
func printProgress(s video.State) {
	switch s.Phase {
	case video.PhasePolling:
		fmt.Fprintf(os.Stderr, "[%s #%d] %s\n", s.Phase, s.Attempts, s.Message)
	case video.PhaseFailed:
		fmt.Fprintf(os.Stderr, "[%s] %v\n", s.Phase, s.Err)
	default:
		fmt.Fprintf(os.Stderr, "[%s] %s\n", s.Phase, s.Message)
	}
}

func printFeatures(w io.Writer) {
	for _, f := range studio.Features() {
		fmt.Fprintf(w, "%-22s %s\n", f.Key, f.Name)
	}
}

func readMedia(path string) (domain.MediaPart, error) {
	if path == "" {
		return domain.MediaPart{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.MediaPart{}, fmt.Errorf("read %s: %w", path, err)
	}
	return domain.MediaPart{Data: data, MIMEType: imgutil.DetectMIME(data)}, nil
}

func (a *app) saveImages(prefix string, set domain.ImageSet) error {
	for i, img := range set {
		path, err := a.write(fmt.Sprintf("%s-%d", prefix, i+1), extensionFor(img.MIMEType), img.Data)
		if err != nil {
			return err
		}
		fmt.Println(path)
	}
	return nil
}

func (a *app) saveVideo(result domain.VideoLocatorResult) error {
	path, err := a.write("video", ".mp4", result.Data)
	if err != nil {
		return err
	}
	fmt.Printf("%s\n(locator: %s)\n", path, result.Locator.URI)
	return nil
}

func (a *app) write(name, ext string, data []byte) (string, error) {
	if err := os.MkdirAll(a.outDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(a.outDir, name+ext)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}

func extensionFor(mimeType string) string {
	switch mimeType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	default:
		return ".bin"
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
