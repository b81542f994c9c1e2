package render

import (
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const attributionPadding = 4

// drawAttribution renders a semi-transparent bar across the bottom of the
// canvas with the attribution text right-aligned inside it.
func (c *Compositor) drawAttribution(dst *image.RGBA) {
	text := c.attribution.Text
	face := basicfont.Face7x13

	bounds := dst.Bounds()
	barHeight := face.Height + 2*attributionPadding
	barRect := image.Rect(bounds.Min.X, bounds.Max.Y-barHeight, bounds.Max.X, bounds.Max.Y)

	background := c.attrBackground
	background.A = uint8(clampOpacity(c.attribution.Opacity) * 255)
	draw.Draw(dst, barRect, image.NewUniform(background), image.Point{}, draw.Over)

	textWidth := font.MeasureString(face, text).Ceil()
	x := bounds.Max.X - textWidth - attributionPadding
	if x < bounds.Min.X+attributionPadding {
		x = bounds.Min.X + attributionPadding
	}
	baseline := bounds.Max.Y - attributionPadding - face.Descent

	drawer := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(color.NRGBA{R: c.attrText.R, G: c.attrText.G, B: c.attrText.B, A: 0xFF}),
		Face: face,
		Dot:  fixed.P(x, baseline),
	}
	drawer.DrawString(text)
}

func clampOpacity(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
