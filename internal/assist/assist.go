// Package assist talks to the generative collaborators that suggest item
// tags and produce item images. Both are best effort: failures degrade to
// an empty or fallback result and are never returned to callers.
package assist

import (
	"context"
	"log/slog"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MaxTags caps the number of suggestions returned.
const MaxTags = 10

var fallbacks = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "storefront",
	Name:      "assist_fallbacks_total",
	Help:      "Collaborator calls answered with a degraded result",
}, []string{"collaborator"})

// JSONPoster posts a JSON body and decodes the JSON answer.
// *httpclient.BreakerClient satisfies it.
type JSONPoster interface {
	PostJSON(ctx context.Context, url string, in, out any) error
}

// TagSuggester proposes tags for an item description.
type TagSuggester interface {
	SuggestTags(ctx context.Context, description string) []string
}

// ImageGenerator produces an image reference for an item.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, name, description string) string
}

// TagSuggestion is a tag answer and whether it is a degraded one.
type TagSuggestion struct {
	Tags     []string `json:"tags"`
	Degraded bool     `json:"degraded"`
}

// Image is an image answer and whether it is the fallback.
type Image struct {
	ImageRef string `json:"image_ref"`
	Degraded bool   `json:"degraded"`
}

// Tags is the tag suggestion client.
type Tags struct {
	client JSONPoster
	url    string
	logger *slog.Logger
}

var _ TagSuggester = (*Tags)(nil)

// NewTags creates a tag client posting to url. An empty url disables it.
func NewTags(client JSONPoster, url string, logger *slog.Logger) *Tags {
	return &Tags{client: client, url: url, logger: logger}
}

type tagsRequest struct {
	Description string `json:"description"`
}

type tagsResponse struct {
	Tags []string `json:"tags"`
}

// Suggest asks the collaborator for tags.
func (t *Tags) Suggest(ctx context.Context, description string) TagSuggestion {
	description = strings.TrimSpace(description)
	if description == "" {
		return TagSuggestion{Tags: []string{}}
	}
	if t.url == "" {
		fallbacks.WithLabelValues("tags").Inc()
		return TagSuggestion{Tags: []string{}, Degraded: true}
	}

	var resp tagsResponse
	if err := t.client.PostJSON(ctx, t.url, tagsRequest{Description: description}, &resp); err != nil {
		fallbacks.WithLabelValues("tags").Inc()
		t.logger.WarnContext(ctx, "tag suggestion failed", slog.String("error", err.Error()))
		return TagSuggestion{Tags: []string{}, Degraded: true}
	}
	return TagSuggestion{Tags: normalizeTags(resp.Tags)}
}

// SuggestTags returns suggested tags, empty on failure.
func (t *Tags) SuggestTags(ctx context.Context, description string) []string {
	return t.Suggest(ctx, description).Tags
}

// normalizeTags lowercases, trims and de-duplicates, keeping order.
func normalizeTags(raw []string) []string {
	seen := make(map[string]struct{}, len(raw))
	out := make([]string, 0, len(raw))
	for _, tag := range raw {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
		if len(out) == MaxTags {
			break
		}
	}
	return out
}

// Images is the image generation client.
type Images struct {
	client   JSONPoster
	url      string
	fallback string
	logger   *slog.Logger
}

var _ ImageGenerator = (*Images)(nil)

// NewImages creates an image client posting to url. Failures answer with
// fallback. An empty url disables it.
func NewImages(client JSONPoster, url, fallback string, logger *slog.Logger) *Images {
	return &Images{client: client, url: url, fallback: fallback, logger: logger}
}

type imageRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type imageResponse struct {
	ImageRef string `json:"image_ref"`
}

// Generate asks the collaborator for an image.
func (g *Images) Generate(ctx context.Context, name, description string) Image {
	if g.url == "" || strings.TrimSpace(name) == "" {
		fallbacks.WithLabelValues("image").Inc()
		return Image{ImageRef: g.fallback, Degraded: true}
	}

	var resp imageResponse
	err := g.client.PostJSON(ctx, g.url, imageRequest{
		Name:        strings.TrimSpace(name),
		Description: strings.TrimSpace(description),
	}, &resp)
	if err == nil && strings.TrimSpace(resp.ImageRef) != "" {
		return Image{ImageRef: strings.TrimSpace(resp.ImageRef)}
	}

	fallbacks.WithLabelValues("image").Inc()
	attrs := []any{slog.String("name", name)}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	} else {
		attrs = append(attrs, slog.String("error", "empty image reference"))
	}
	g.logger.WarnContext(ctx, "image generation failed", attrs...)
	return Image{ImageRef: g.fallback, Degraded: true}
}

// GenerateImage returns an image reference, the fallback on failure.
func (g *Images) GenerateImage(ctx context.Context, name, description string) string {
	return g.Generate(ctx, name, description).ImageRef
}
