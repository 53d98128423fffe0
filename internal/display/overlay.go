package display

import (
	"image"

	"github.com/fogleman/gg"

	"github.com/ah2166/trackeval/internal/detect"
)

// Overlay draws detection bounding boxes onto a copy of frame.
func Overlay(frame image.Image, detections []detect.Detection) image.Image {
	dc := gg.NewContextForImage(frame)
	dc.SetRGB(1, 0, 0)
	dc.SetLineWidth(1)
	for _, d := range detections {
		dc.DrawRectangle(
			float64(d.Box.X), float64(d.Box.Y),
			float64(d.Box.Width), float64(d.Box.Height),
		)
		dc.Stroke()
	}
	return dc.Image()
}
