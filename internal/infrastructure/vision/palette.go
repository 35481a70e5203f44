package vision

import (
	"image/color"
	"math"
)

// jet палитра JET для 8-битного уровня
func jet(level uint8) color.RGBA {
	v := float64(level) / 255.0
	return color.RGBA{
		R: channel(1.5 - math.Abs(4*v-3)),
		G: channel(1.5 - math.Abs(4*v-2)),
		B: channel(1.5 - math.Abs(4*v-1)),
		A: 255,
	}
}

func channel(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(math.Round(v * 255))
}
