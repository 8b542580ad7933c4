package config

import (
	"image"

	apperrors "chartline-trader/internal/errors"
	"chartline-trader/internal/extract"
)

// ExtractorConfig converts the [extract] section into extractor settings.
func (c *Config) ExtractorConfig() (extract.Config, error) {
	out := extract.DefaultConfig()

	red, err := extract.ParseHexColor(c.Extract.RedColor)
	if err != nil {
		return out, apperrors.NewValidationError("extract.red_color", c.Extract.RedColor, err.Error())
	}
	green, err := extract.ParseHexColor(c.Extract.GreenColor)
	if err != nil {
		return out, apperrors.NewValidationError("extract.green_color", c.Extract.GreenColor, err.Error())
	}

	out.Red = red
	out.Green = green
	out.Tolerance = c.Extract.Tolerance
	out.MinArea = c.Extract.MinArea
	out.Finder = c.Extract.Finder
	out.StartNumber = c.Pipeline.StartNumber
	if c.Extract.CropWidth > 0 && c.Extract.CropHeight > 0 {
		out.Crop = image.Rect(c.Extract.CropX, c.Extract.CropY,
			c.Extract.CropX+c.Extract.CropWidth, c.Extract.CropY+c.Extract.CropHeight)
	}
	return out, nil
}
