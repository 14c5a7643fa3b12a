package translator

import (
	"context"
	"fmt"
	"html"

	"github.com/oukeidos/codelex/internal/apperrors"
	"google.golang.org/api/option"
	translate "google.golang.org/api/translate/v2"
)

// GoogleProvider calls the Cloud Translation v2 REST API.
type GoogleProvider struct {
	svc *translate.Service
}

// NewGoogleProvider builds a provider authenticated with apiKey. Extra options
// are appended, which tests use to point the client at a local server.
func NewGoogleProvider(ctx context.Context, apiKey string, opts ...option.ClientOption) (*GoogleProvider, error) {
	all := opts
	if apiKey != "" {
		all = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	}
	svc, err := translate.NewService(ctx, all...)
	if err != nil {
		return nil, fmt.Errorf("failed to create translation service: %w", err)
	}
	return &GoogleProvider{svc: svc}, nil
}

func (p *GoogleProvider) Name() string { return "google" }

func (p *GoogleProvider) Translate(ctx context.Context, text, source, target string) (string, error) {
	resp, err := p.svc.Translations.List([]string{text}, target).
		Source(source).
		Format("text").
		Context(ctx).
		Do()
	if err != nil {
		return "", apperrors.FromGoogleAPI("Translation API", err)
	}
	if len(resp.Translations) == 0 {
		return "", apperrors.New(apperrors.KindValidation, "Translation response contained no results.", nil)
	}
	// format=text should return plain text; unescape in case the API still
	// sends entities.
	return html.UnescapeString(resp.Translations[0].TranslatedText), nil
}
