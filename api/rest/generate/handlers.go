package generate

import (
	"context"
	"net/http"

	"codeberg.org/printableperks/server/internal/auth"
	"codeberg.org/printableperks/server/internal/errors"
	"codeberg.org/printableperks/server/internal/imagegen"
	"codeberg.org/printableperks/server/internal/logger"
	"codeberg.org/printableperks/server/internal/quota"
	"github.com/gin-gonic/gin"
)

// ImageGenerator runs one inference task against the vendor
type ImageGenerator interface {
	GenerateImage(ctx context.Context, params imagegen.GenerateParams) (*imagegen.GeneratedImage, error)
}

// creates the coloring-page generation handler. The quota engine gates the
// request up front and is charged only after the vendor delivered an image.
func Handler(engine *quota.Engine, generator ImageGenerator) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req Request

		if err := c.ShouldBindJSON(&req); err != nil {
			errors.ValidationError(c, err)
			return
		}

		caller := auth.CallerFrom(c)
		ctx := c.Request.Context()

		if !engine.CheckAvailability(ctx, caller) {
			c.JSON(http.StatusTooManyRequests, QuotaExceededResponse{
				Error:   errors.CodeQuotaExceeded,
				Message: "generation limit reached",
				Stats:   engine.GetStats(ctx, caller),
			})
			return
		}

		image, err := generator.GenerateImage(ctx, imagegen.GenerateParams{
			PositivePrompt: req.Prompt,
			Model:          req.Model,
			Width:          req.Width,
			Height:         req.Height,
			AgeGroup:       imagegen.AgeGroup(req.AgeGroup),
			CFGScale:       req.CFGScale,
		})

		if err != nil {
			// a failed generation is never charged against the quota
			errors.UpstreamError(c, "failed to generate coloring page", err)
			return
		}

		// the user keeps the image even if recording fails; log so billing
		// discrepancies stay discoverable
		if err := engine.RecordGeneration(ctx, caller); err != nil {
			logger.ErrorErr(err, "failed to record generation",
				"caller_kind", caller.Kind,
				"user_id", caller.UserID,
			)
		}

		c.JSON(http.StatusOK, Response{
			Image: image,
			Stats: engine.GetStats(ctx, caller),
		})
	}
}
