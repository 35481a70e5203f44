package vision

import "math"

// quantize переводит значение из [0,1] в 8-битный уровень
func quantize(v float32) uint8 {
	if v <= 0 || math.IsNaN(float64(v)) {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(math.Round(float64(v) * 255))
}
