package handlers

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"
)

// RegisterAPI registers the JSON link operations. write and read, when set,
// wrap the create and lookup operations respectively.
func RegisterAPI(api huma.API, h *LinkHandler, write, read func(huma.Context, func(huma.Context))) {
	huma.Register(api, huma.Operation{
		OperationID:   "create-link",
		Method:        http.MethodPost,
		Path:          "/api/links",
		Summary:       "Create short link",
		Description:   "Stores the URL under a newly generated six character code.",
		Tags:          []string{"Links"},
		DefaultStatus: http.StatusCreated,
		Middlewares:   humaMiddlewares(write),
	}, h.CreateLink)

	huma.Register(api, huma.Operation{
		OperationID: "get-link",
		Method:      http.MethodGet,
		Path:        "/api/links/{code}",
		Summary:     "Get short link",
		Description: "Returns the link stored under the code.",
		Tags:        []string{"Links"},
		Middlewares: humaMiddlewares(read),
	}, h.GetLink)
}

// RegisterPages registers the form submission and redirect routes. write and
// read, when set, wrap the form and redirect routes respectively.
func RegisterPages(router chi.Router, h *LinkHandler, write, read func(http.Handler) http.Handler) {
	with(router, write).Post("/shorten", h.Shorten)
	with(router, read).Get("/{shortUrl}", h.Redirect)
}

func with(router chi.Router, mw func(http.Handler) http.Handler) chi.Router {
	if mw == nil {
		return router
	}

	return router.With(mw)
}

func humaMiddlewares(mw func(huma.Context, func(huma.Context))) huma.Middlewares {
	if mw == nil {
		return nil
	}

	return huma.Middlewares{mw}
}
