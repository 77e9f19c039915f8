package handlers

import "time"

// CreateLinkRequest is the request body for creating a short link.
type CreateLinkRequest struct {
	Body struct {
		URL string `doc:"The URL to shorten" example:"https://example.com/very/long/path" json:"url"`
	}
}

// LinkBody describes a stored short link.
type LinkBody struct {
	ID          int64     `doc:"Link id"            example:"42"                                 json:"id"`
	Code        string    `doc:"The short code"     example:"aB3xY9"                             json:"code"`
	ShortURL    string    `doc:"The full short URL" example:"http://localhost:9000/aB3xY9"       json:"shortUrl"`
	OriginalURL string    `doc:"The original URL"   example:"https://example.com/very/long/path" json:"originalUrl"`
	CreatedAt   time.Time `doc:"Creation time"                                                   json:"createdAt"`
}

// CreateLinkResponse is the response for a successfully created short link.
type CreateLinkResponse struct {
	Headers struct {
		Location string `doc:"The short URL location" header:"Location"`
	}
	Body LinkBody
}

// GetLinkRequest identifies a short link by its code.
type GetLinkRequest struct {
	Code string `doc:"The short code" example:"aB3xY9" path:"code"`
}

// GetLinkResponse is the response for a link lookup.
type GetLinkResponse struct {
	Body LinkBody
}
