package vision

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/api/option"
	visionapi "google.golang.org/api/vision/v1"
)

const featureTextDetection = "TEXT_DETECTION"

type Engine struct {
	svc *visionapi.Service
}

// New builds a Cloud Vision client. With an empty apiKey the client falls back
// to Application Default Credentials. endpoint overrides the API base URL.
func New(ctx context.Context, apiKey, endpoint string, opts ...option.ClientOption) (*Engine, error) {
	if k := strings.TrimSpace(apiKey); k != "" {
		opts = append(opts, option.WithAPIKey(k))
	}
	if endpoint != "" {
		opts = append(opts, option.WithEndpoint(endpoint))
	}
	svc, err := visionapi.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("vision client: %w", err)
	}
	return &Engine{svc: svc}, nil
}

func (e *Engine) Name() string { return "vision" }

// Recognize sends one TEXT_DETECTION request. The first text annotation holds
// the full text of the image; later ones are individual words.
func (e *Engine) Recognize(ctx context.Context, image []byte) (string, error) {
	req := &visionapi.BatchAnnotateImagesRequest{
		Requests: []*visionapi.AnnotateImageRequest{{
			Image:    &visionapi.Image{Content: base64.StdEncoding.EncodeToString(image)},
			Features: []*visionapi.Feature{{Type: featureTextDetection}},
		}},
	}

	resp, err := e.svc.Images.Annotate(req).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("vision annotate: %w", err)
	}
	if len(resp.Responses) == 0 {
		return "", errors.New("vision annotate: empty response")
	}

	r := resp.Responses[0]
	// the transport call can succeed while the image itself failed
	if r.Error != nil && r.Error.Message != "" {
		return "", fmt.Errorf("Vision API error: %s", r.Error.Message)
	}
	if len(r.TextAnnotations) == 0 {
		return "", nil
	}
	return strings.TrimSpace(r.TextAnnotations[0].Description), nil
}
