package crew

import (
	"context"
	"crypto/md5"
	"encoding/base64"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/tidwall/gjson"

	"github.com/sorennelson/the-preview-crew/internal/llm"
)

// ImageGenTool generates a cover image, writes the PNG under fileDir/images
// and returns the outbound URL the front end can fetch it from.
type ImageGenTool struct {
	gen          llm.ImageGenerator
	fileDir      string
	outboundBase string
	now          func() time.Time
}

func NewImageGenTool(gen llm.ImageGenerator, fileDir, outboundBase string) *ImageGenTool {
	return &ImageGenTool{
		gen:          gen,
		fileDir:      fileDir,
		outboundBase: outboundBase,
		now:          time.Now,
	}
}

func (t *ImageGenTool) Definition() llm.Tool {
	return llm.Tool{
		Type: "function",
		Function: llm.Function{
			Name:        "generate_image",
			Description: "Generates an image from a text prompt and returns the URL of the generated image.",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"prompt": map[string]interface{}{
						"type":        "string",
						"description": "Text description of the image to generate.",
					},
				},
				"required": []string{"prompt"},
			},
		},
	}
}

func (t *ImageGenTool) Run(ctx context.Context, args string) (string, error) {
	prompt := gjson.Get(args, "prompt").String()
	if prompt == "" {
		return "", fmt.Errorf("generate_image requires a prompt")
	}

	b64, err := t.gen.GenerateImage(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("image generation failed: %w", err)
	}

	data, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return "", fmt.Errorf("failed to decode image data: %w", err)
	}

	filename := t.randomFilename(prompt)
	imagesDir := filepath.Join(t.fileDir, "images")
	if err := os.MkdirAll(imagesDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create images dir: %w", err)
	}
	if err := os.WriteFile(filepath.Join(imagesDir, filename), data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write image: %w", err)
	}

	return t.outboundBase + path.Join("/images", filename), nil
}

func (t *ImageGenTool) randomFilename(prompt string) string {
	seed := fmt.Sprintf("%d_%s", t.now().UnixMilli(), prompt)
	return fmt.Sprintf("%x.png", md5.Sum([]byte(seed)))
}
