package chart

import (
	"image/color"

	"gonum.org/v1/plot/vg"
)

func rgb(r, g, b uint8) color.RGBA { return color.RGBA{R: r, G: g, B: b, A: 255} }

// Bar fills for the sector averages, in sector order.
var barColors = []color.Color{
	rgb(135, 206, 235), // skyblue
	rgb(240, 128, 128), // lightcoral
	rgb(144, 238, 144), // lightgreen
	rgb(255, 215, 0),   // gold
}

// Pie slice fills, in sector order.
var pieColors = []color.Color{
	rgb(0xff, 0x99, 0x99),
	rgb(0x66, 0xb3, 0xff),
	rgb(0x99, 0xff, 0x99),
	rgb(0xff, 0xcc, 0x99),
}

// tab10 is the ten-colour categorical palette used for ranked lines.
var tab10 = []color.Color{
	rgb(0x1f, 0x77, 0xb4),
	rgb(0xff, 0x7f, 0x0e),
	rgb(0x2c, 0xa0, 0x2c),
	rgb(0xd6, 0x27, 0x28),
	rgb(0x94, 0x67, 0xbd),
	rgb(0x8c, 0x56, 0x4b),
	rgb(0xe3, 0x77, 0xc2),
	rgb(0x7f, 0x7f, 0x7f),
	rgb(0xbc, 0xbd, 0x22),
	rgb(0x17, 0xbe, 0xcf),
}

var (
	blue  = rgb(0, 0, 255)
	red   = rgb(255, 0, 0)
	green = rgb(0, 128, 0)
)

// Dash patterns: solid, dashed, dash-dot, dotted.
var dashes = [][]vg.Length{
	nil,
	{vg.Points(6), vg.Points(3)},
	{vg.Points(6), vg.Points(2), vg.Points(1.5), vg.Points(2)},
	{vg.Points(1.5), vg.Points(2)},
}

// cycle picks the i-th entry, wrapping around.
func cycle[T any](xs []T, i int) T {
	return xs[i%len(xs)]
}
