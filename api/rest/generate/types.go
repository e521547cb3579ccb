package generate

import (
	"codeberg.org/printableperks/server/internal/imagegen"
	"codeberg.org/printableperks/server/internal/quota"
)

// Request represents the request body for coloring-page generation
type Request struct {
	Prompt   string  `json:"prompt" binding:"required"`
	Model    string  `json:"model"`
	Width    int     `json:"width"`
	Height   int     `json:"height"`
	AgeGroup string  `json:"age_group"`
	CFGScale float64 `json:"cfg_scale"`
}

// Response represents a successful generation
type Response struct {
	Image *imagegen.GeneratedImage `json:"image"`
	Stats quota.UserGenerationStats `json:"stats"`
}

// QuotaExceededResponse is the 429 body when the caller is out of generations
type QuotaExceededResponse struct {
	Error   string                    `json:"error"`
	Message string                    `json:"message"`
	Stats   quota.UserGenerationStats `json:"stats"`
}
