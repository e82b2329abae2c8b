package led

import (
	"image"
	"math"
)

// Limit scales a strip row in place: first by brightness, then per pixel so
// r+g+b stays under whiteCap*3*255. Values outside (0,1) disable a stage.
func Limit(row *image.RGBA, brightness, whiteCap float64) {
	if brightness > 0 && brightness < 1 {
		for i := 0; i+3 < len(row.Pix); i += 4 {
			for j := 0; j < 3; j++ {
				row.Pix[i+j] = uint8(math.Round(float64(row.Pix[i+j]) * brightness))
			}
		}
	}
	if whiteCap <= 0 || whiteCap >= 1 {
		return
	}
	limit := whiteCap * 3 * 255
	for i := 0; i+3 < len(row.Pix); i += 4 {
		s := float64(row.Pix[i]) + float64(row.Pix[i+1]) + float64(row.Pix[i+2])
		if s <= limit {
			continue
		}
		scale := limit / s
		for j := 0; j < 3; j++ {
			row.Pix[i+j] = uint8(math.Floor(float64(row.Pix[i+j]) * scale))
		}
	}
}
