package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/utafrali/storefront/internal/assist"
	"github.com/utafrali/storefront/pkg/httputil"
	"github.com/utafrali/storefront/pkg/validator"
)

// TagService suggests tags, reporting degraded answers.
type TagService interface {
	Suggest(ctx context.Context, description string) assist.TagSuggestion
}

// ImageService generates images, reporting fallback answers.
type ImageService interface {
	Generate(ctx context.Context, name, description string) assist.Image
}

// AssistHandler exposes the AI collaborators. It always answers 200; a
// failing collaborator shows up as degraded:true.
type AssistHandler struct {
	tags   TagService
	images ImageService
	logger *slog.Logger
}

// NewAssistHandler creates an assist HTTP handler.
func NewAssistHandler(tags TagService, images ImageService, logger *slog.Logger) *AssistHandler {
	return &AssistHandler{tags: tags, images: images, logger: logger}
}

// SuggestTagsRequest is the body of POST /api/v1/assist/tags.
type SuggestTagsRequest struct {
	Description string `json:"description" validate:"required,max=4000"`
}

// GenerateImageRequest is the body of POST /api/v1/assist/image.
type GenerateImageRequest struct {
	Name        string `json:"name" validate:"required,max=200"`
	Description string `json:"description" validate:"max=4000"`
}

// SuggestTags handles POST /api/v1/assist/tags
func (h *AssistHandler) SuggestTags(w http.ResponseWriter, r *http.Request) {
	var req SuggestTagsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "invalid request body")
		return
	}
	if err := validator.Validate(req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, h.tags.Suggest(r.Context(), req.Description))
}

// GenerateImage handles POST /api/v1/assist/image
func (h *AssistHandler) GenerateImage(w http.ResponseWriter, r *http.Request) {
	var req GenerateImageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "invalid request body")
		return
	}
	if err := validator.Validate(req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, h.images.Generate(r.Context(), req.Name, req.Description))
}
