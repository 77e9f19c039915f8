package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/SanketN15/url-shortner/internal/analytics"
	"github.com/SanketN15/url-shortner/internal/messaging"
	"github.com/SanketN15/url-shortner/internal/shortener"
	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Response bodies of the form routes.
const (
	msgStoreFailure   = "Error occurred"
	msgNotFound       = "Short URL not found"
	msgInvalidURL     = "Invalid URL"
	msgInvalidRequest = "Invalid request"
)

// LinkService creates and resolves short links.
type LinkService interface {
	Shorten(ctx context.Context, originalURL string) (*shortener.ShortLink, error)
	Resolve(ctx context.Context, code shortener.Code) (*shortener.ShortLink, error)
}

// LinkHandler serves the form, redirect and JSON link routes.
type LinkHandler struct {
	service        LinkService
	baseURL        string
	publishCreated messaging.Publish[analytics.LinkCreatedEvent]
	publishVisited messaging.Publish[analytics.LinkVisitedEvent]
	logger         *zap.Logger
}

// NewLinkHandler creates a new link handler. baseURL prefixes the short URLs
// returned by the JSON API.
func NewLinkHandler(
	service LinkService,
	baseURL string,
	publishCreated messaging.Publish[analytics.LinkCreatedEvent],
	publishVisited messaging.Publish[analytics.LinkVisitedEvent],
	logger *zap.Logger,
) *LinkHandler {
	return &LinkHandler{
		service:        service,
		baseURL:        baseURL,
		publishCreated: publishCreated,
		publishVisited: publishVisited,
		logger:         logger,
	}
}

// Shorten handles the form submission and answers with an HTML fragment
// linking to the new short path.
func (h *LinkHandler) Shorten(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeText(w, http.StatusBadRequest, "text/plain; charset=utf-8", msgInvalidRequest)

		return
	}

	link, err := h.service.Shorten(r.Context(), r.PostFormValue("url"))
	if err != nil {
		if errors.Is(err, shortener.ErrInvalidURL) {
			writeText(w, http.StatusBadRequest, "text/plain; charset=utf-8", msgInvalidURL)

			return
		}

		h.logger.Error("failed to shorten url", zap.Error(err))
		writeText(w, http.StatusInternalServerError, "text/plain; charset=utf-8", msgStoreFailure)

		return
	}

	h.linkCreated(r.Context(), link)

	code := string(link.ShortCode)
	writeText(w, http.StatusOK, "text/html; charset=utf-8",
		fmt.Sprintf(`Short URL: <a href="/%s">/%s</a>`, code, code))
}

// Redirect sends the visitor to the original URL of a short code. A missing
// code and a failed lookup both answer 404.
func (h *LinkHandler) Redirect(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "shortUrl")

	link, err := h.service.Resolve(r.Context(), shortener.Code(code))
	if err != nil {
		if !errors.Is(err, shortener.ErrNotFound) {
			h.logger.Error("failed to resolve short url", zap.String("code", code), zap.Error(err))
		}

		writeText(w, http.StatusNotFound, "text/plain; charset=utf-8", msgNotFound)

		return
	}

	h.linkVisited(r.Context(), link)

	http.Redirect(w, r, link.OriginalURL, http.StatusFound)
}

func (h *LinkHandler) CreateLink(ctx context.Context, req *CreateLinkRequest) (*CreateLinkResponse, error) {
	link, err := h.service.Shorten(ctx, req.Body.URL)
	if err != nil {
		if errors.Is(err, shortener.ErrInvalidURL) {
			return nil, huma.Error400BadRequest("url must be an absolute http or https URL")
		}

		h.logger.Error("failed to shorten url", zap.Error(err))

		return nil, huma.Error500InternalServerError("failed to save url")
	}

	h.linkCreated(ctx, link)

	resp := &CreateLinkResponse{Body: h.linkBody(link)}
	resp.Headers.Location = resp.Body.ShortURL

	return resp, nil
}

func (h *LinkHandler) GetLink(ctx context.Context, req *GetLinkRequest) (*GetLinkResponse, error) {
	link, err := h.service.Resolve(ctx, shortener.Code(req.Code))
	if err != nil {
		if errors.Is(err, shortener.ErrNotFound) {
			return nil, huma.Error404NotFound("short url not found")
		}

		h.logger.Error("failed to resolve short url", zap.String("code", req.Code), zap.Error(err))

		return nil, huma.Error500InternalServerError("failed to get url")
	}

	return &GetLinkResponse{Body: h.linkBody(link)}, nil
}

func (h *LinkHandler) linkBody(link *shortener.ShortLink) LinkBody {
	return LinkBody{
		ID:          link.ID,
		Code:        string(link.ShortCode),
		ShortURL:    fmt.Sprintf("%s/%s", h.baseURL, link.ShortCode),
		OriginalURL: link.OriginalURL,
		CreatedAt:   link.CreatedAt,
	}
}

func (h *LinkHandler) linkCreated(ctx context.Context, link *shortener.ShortLink) {
	meta := analytics.RequestMetaFromContext(ctx)
	event := &analytics.LinkCreatedEvent{
		ID:          link.ID,
		Code:        string(link.ShortCode),
		OriginalURL: link.OriginalURL,
		CreatedAt:   link.CreatedAt,
		ClientIP:    meta.ClientIP,
		UserAgent:   meta.UserAgent,
	}

	if err := h.publishCreated(ctx, event); err != nil {
		h.logger.Error("failed to publish analytics event",
			zap.String("code", event.Code),
			zap.Error(err),
		)
	}
}

func (h *LinkHandler) linkVisited(ctx context.Context, link *shortener.ShortLink) {
	meta := analytics.RequestMetaFromContext(ctx)
	event := &analytics.LinkVisitedEvent{
		Code:        string(link.ShortCode),
		OriginalURL: link.OriginalURL,
		VisitedAt:   time.Now().UTC(),
		ClientIP:    meta.ClientIP,
		UserAgent:   meta.UserAgent,
		Referrer:    meta.Referrer,
	}

	if err := h.publishVisited(ctx, event); err != nil {
		h.logger.Error("failed to publish visit event",
			zap.String("code", event.Code),
			zap.Error(err),
		)
	}
}

// writeText writes body verbatim, without the trailing newline http.Error adds.
func writeText(w http.ResponseWriter, status int, contentType, body string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}
