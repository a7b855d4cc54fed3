package imageextract

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"

	"golang.org/x/image/draw"
)

// Posters arrive as photographs: bold text on busy art, colored text, light
// text on dark backgrounds. Each favors a different preprocessing, so
// recognition runs once per variant and results are merged.

// minRecognitionSize is the minimum longer-edge dimension; smaller images are
// upscaled before recognition.
const minRecognitionSize = 1500

// variants builds the preprocessed renditions of the source image.
func variants(src image.Image) []image.Image {
	img := upscale(src)

	highContrast := sharpen(adjustContrast(img, 1.8), 2.0)
	grayContrast := adjustContrast(grayscale(img), 2.0)
	inverted := adjustContrast(invert(grayscale(img)), 1.5)

	return []image.Image{highContrast, grayContrast, inverted}
}

// upscale resizes images whose longer edge is below minRecognitionSize,
// preserving aspect ratio. Catmull-Rom keeps glyph edges crisp enough for
// recognition.
func upscale(src image.Image) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	longer := w
	if h > longer {
		longer = h
	}
	if longer >= minRecognitionSize || longer == 0 {
		return src
	}

	scale := float64(minRecognitionSize) / float64(longer)
	dst := image.NewNRGBA(image.Rect(0, 0, int(float64(w)*scale), int(float64(h)*scale)))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	return dst
}

// adjustContrast scales pixel values away from middle gray by factor.
func adjustContrast(src image.Image, factor float64) image.Image {
	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bb, a := src.At(x, y).RGBA()
			dst.SetNRGBA(x-b.Min.X, y-b.Min.Y, color.NRGBA{
				R: stretch(r, factor),
				G: stretch(g, factor),
				B: stretch(bb, factor),
				A: uint8(a >> 8),
			})
		}
	}
	return dst
}

func stretch(v uint32, factor float64) uint8 {
	adjusted := (float64(v>>8)-128)*factor + 128
	if adjusted < 0 {
		return 0
	}
	if adjusted > 255 {
		return 255
	}
	return uint8(adjusted)
}

// grayscale converts to luminance.
func grayscale(src image.Image) image.Image {
	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			gray := color.GrayModel.Convert(src.At(x, y)).(color.Gray).Y
			dst.SetNRGBA(x-b.Min.X, y-b.Min.Y, color.NRGBA{R: gray, G: gray, B: gray, A: 255})
		}
	}
	return dst
}

// invert flips pixel values, turning light-on-dark posters into the
// dark-on-light form recognition engines prefer.
func invert(src image.Image) image.Image {
	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bb, a := src.At(x, y).RGBA()
			dst.SetNRGBA(x-b.Min.X, y-b.Min.Y, color.NRGBA{
				R: 255 - uint8(r>>8),
				G: 255 - uint8(g>>8),
				B: 255 - uint8(bb>>8),
				A: uint8(a >> 8),
			})
		}
	}
	return dst
}

// sharpen applies unsharp masking: out = src + (src - blurred) * (amount - 1).
func sharpen(src image.Image, amount float64) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	blurred := boxBlur(src)
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			sr, sg, sb, sa := src.At(b.Min.X+x, b.Min.Y+y).RGBA()
			br, bg, bbv, _ := blurred.At(x, y).RGBA()
			dst.SetNRGBA(x, y, color.NRGBA{
				R: blend(sr, br, amount),
				G: blend(sg, bg, amount),
				B: blend(sb, bbv, amount),
				A: uint8(sa >> 8),
			})
		}
	}
	return dst
}

func blend(src, blurred uint32, amount float64) uint8 {
	s := float64(src >> 8)
	bl := float64(blurred >> 8)
	v := s + (s-bl)*(amount-1)
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

// boxBlur is a single-pass 3x3 mean filter.
func boxBlur(src image.Image) *image.NRGBA {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var sumR, sumG, sumB, n uint32
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					nx, ny := x+dx, y+dy
					if nx < 0 || ny < 0 || nx >= w || ny >= h {
						continue
					}
					r, g, bb, _ := src.At(b.Min.X+nx, b.Min.Y+ny).RGBA()
					sumR += r >> 8
					sumG += g >> 8
					sumB += bb >> 8
					n++
				}
			}
			dst.SetNRGBA(x, y, color.NRGBA{
				R: uint8(sumR / n),
				G: uint8(sumG / n),
				B: uint8(sumB / n),
				A: 255,
			})
		}
	}
	return dst
}

// encodePNG serializes an image for the recognition service.
func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encoding variant: %w", err)
	}
	return buf.Bytes(), nil
}
