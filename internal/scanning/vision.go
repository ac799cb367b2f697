package scanning

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"google.golang.org/api/option"
	vision "google.golang.org/api/vision/v1"
)

const documentTextDetection = "DOCUMENT_TEXT_DETECTION"

// Vision implements the Scanner interface using Google Cloud Vision document
// text detection, which keeps the line structure of the page.
type Vision struct {
	service       *vision.Service
	timeout       time.Duration
	languageHints []string
}

// NewVision creates a new Vision Scanner. Credentials and endpoint come from
// opts (option.WithAPIKey, option.WithCredentialsFile, ...); with no options
// the application default credentials are used.
func NewVision(timeout time.Duration, opts ...option.ClientOption) (*Vision, error) {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	service, err := vision.NewService(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("creating vision client: %w", err)
	}

	return &Vision{
		service:       service,
		timeout:       timeout,
		languageHints: []string{"vi", "en"},
	}, nil
}

// ScanText sends the image to Vision and returns the full text annotation.
func (v *Vision) ScanText(imageData []byte, contentType string) (*Document, error) {
	ctx, cancel := context.WithTimeout(context.Background(), v.timeout)
	defer cancel()

	img, err := prepareImage(imageData, contentType)
	if err != nil {
		return nil, err
	}

	req := &vision.BatchAnnotateImagesRequest{
		Requests: []*vision.AnnotateImageRequest{{
			Image:        &vision.Image{Content: base64.StdEncoding.EncodeToString(img.data)},
			Features:     []*vision.Feature{{Type: documentTextDetection}},
			ImageContext: &vision.ImageContext{LanguageHints: v.languageHints},
		}},
	}

	resp, err := v.service.Images.Annotate(req).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("calling vision API: %w", err)
	}
	if len(resp.Responses) == 0 {
		return nil, errors.New("no response from vision")
	}

	annotation := resp.Responses[0]
	if annotation.Error != nil && annotation.Error.Message != "" {
		return nil, fmt.Errorf("google cloud vision: %s", annotation.Error.Message)
	}

	doc := &Document{}
	if annotation.FullTextAnnotation != nil {
		doc.FullText = annotation.FullTextAnnotation.Text
	}
	return doc, nil
}

// Close is a no-op; the Vision REST client holds no connections of its own.
func (v *Vision) Close() error {
	return nil
}
