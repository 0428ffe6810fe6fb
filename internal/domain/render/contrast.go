package render

import "github.com/okian/timeline/internal/domain/model"

// Foreground colours and the intensity threshold that separates them.
const (
	LightText         = "#ffffff"
	DarkText          = "#000000"
	ContrastThreshold = 128.0
)

// Foreground picks a readable text colour for a fill. Fills whose mean
// channel intensity is below ContrastThreshold get LightText. Values that do
// not decompose into three channels fall back to DarkText.
func Foreground(fill any) string {
	c, ok := model.ParseRGB(fill)
	if !ok {
		return DarkText
	}
	if c.Average() < ContrastThreshold {
		return LightText
	}
	return DarkText
}
