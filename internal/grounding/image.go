package grounding

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// ImageEditResult is an edited image.
type ImageEditResult struct {
	MIMEType string `json:"mimeType"`
	Data     []byte `json:"-"`
}

// DataURL renders the image as a base64 data URL.
func (r *ImageEditResult) DataURL() string {
	return "data:" + r.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(r.Data)
}

// ParseDataURL splits a data:<mime>;base64,<payload> URL into its MIME
// type and decoded bytes.
func ParseDataURL(s string) (mimeType string, data []byte, err error) {
	rest, ok := strings.CutPrefix(s, "data:")
	if !ok {
		return "", nil, fmt.Errorf("not a data URL")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, fmt.Errorf("data URL has no payload")
	}
	mimeType, ok = strings.CutSuffix(meta, ";base64")
	if !ok {
		return "", nil, fmt.Errorf("data URL is not base64 encoded")
	}
	if mimeType == "" {
		return "", nil, fmt.Errorf("data URL has no MIME type")
	}
	data, err = base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("decode data URL: %w", err)
	}
	return mimeType, data, nil
}

// EditImage applies the instruction in prompt to a study material image and
// returns the first image the model produced.
func (c *Client) EditImage(ctx context.Context, image []byte, mimeType, prompt string) (*ImageEditResult, error) {
	if len(image) == 0 {
		return nil, fmt.Errorf("edit image: empty image")
	}
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, fmt.Errorf("edit image: empty prompt")
	}
	if mimeType == "" {
		mimeType = "image/png"
	}

	content := genai.NewContentFromParts([]*genai.Part{
		genai.NewPartFromBytes(image, mimeType),
		genai.NewPartFromText("Edite esta imagem de material de estudo: " + prompt),
	}, genai.RoleUser)

	resp, err := c.generate(ctx, "edit image", c.cfg.ImageModel, []*genai.Content{content},
		&genai.GenerateContentConfig{
			ResponseModalities: []string{string(genai.ModalityImage), string(genai.ModalityText)},
		},
	)
	if err != nil {
		return nil, err
	}

	if cand := resp.Candidates[0]; cand.Content != nil {
		for _, p := range cand.Content.Parts {
			if p != nil && p.InlineData != nil && len(p.InlineData.Data) > 0 {
				mt := p.InlineData.MIMEType
				if mt == "" {
					mt = "image/png"
				}
				return &ImageEditResult{MIMEType: mt, Data: p.InlineData.Data}, nil
			}
		}
	}
	return nil, fmt.Errorf("edit image: %w", ErrEmptyResponse)
}
