// Package render rasterizes an env/grid board to a PNG, for visual
// inspection of self-play games.
package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/portstow/az/env/grid"
)

const (
	cellPx   = 48
	fontSize = 16
)

// palette assigns a deterministic, visually distinct color to each color
// index; wraps if a board uses more colors than the palette holds.
var palette = []color.RGBA{
	{R: 220, G: 60, B: 60, A: 255},
	{R: 60, G: 130, B: 220, A: 255},
	{R: 60, G: 190, B: 90, A: 255},
	{R: 230, G: 200, B: 40, A: 255},
	{R: 160, G: 90, B: 200, A: 255},
	{R: 240, G: 140, B: 40, A: 255},
	{R: 80, G: 200, B: 200, A: 255},
	{R: 230, G: 120, B: 170, A: 255},
}

// Board renders s as a size*cellPx square PNG, each cell filled with its
// color's palette swatch and labeled with its numeric color index, and
// writes the encoded PNG to w.
func Board(s *grid.State, w io.Writer) error {
	font, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return err
	}

	size := s.Size()
	px := size * cellPx
	img := image.NewRGBA(image.Rect(0, 0, px, px))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	cells := s.Cells()
	for i, c := range cells {
		r, col := i/size, i%size
		swatch := palette[int(c)%len(palette)]
		rect := image.Rect(col*cellPx, r*cellPx, (col+1)*cellPx, (r+1)*cellPx)
		draw.Draw(img, rect, image.NewUniform(swatch), image.Point{}, draw.Src)
	}

	ctx := freetype.NewContext()
	ctx.SetDPI(72)
	ctx.SetFont(font)
	ctx.SetFontSize(fontSize)
	ctx.SetClip(img.Bounds())
	ctx.SetDst(img)
	ctx.SetSrc(image.NewUniform(color.Black))

	for i, c := range cells {
		r, col := i/size, i%size
		pt := freetype.Pt(col*cellPx+cellPx/3, r*cellPx+2*cellPx/3)
		if _, err := ctx.DrawString(fmt.Sprintf("%d", c), pt); err != nil {
			return err
		}
	}

	return png.Encode(w, img)
}
