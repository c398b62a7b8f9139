// Package color samples facial color attributes (skin, lips, eyes, hair) from
// small pixel patches around face-mesh landmarks.
package color

import (
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"

	"github.com/ayusman/drishti/internal/landmark"
)

// RGB is an averaged 8-bit color.
type RGB struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// Hex returns the color as #rrggbb.
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Luma returns the Rec. 601 brightness in [0, 255].
func (c RGB) Luma() float64 {
	return 0.299*float64(c.R) + 0.587*float64(c.G) + 0.114*float64(c.B)
}

// HSV returns hue in degrees [0, 360), saturation and value in [0, 1].
func (c RGB) HSV() (h, s, v float64) {
	r, g, b := float64(c.R)/255, float64(c.G)/255, float64(c.B)/255
	hi := math.Max(r, math.Max(g, b))
	lo := math.Min(r, math.Min(g, b))
	v = hi
	delta := hi - lo
	if hi > 0 {
		s = delta / hi
	}
	if delta == 0 {
		return 0, s, v
	}
	switch hi {
	case r:
		h = 60 * math.Mod((g-b)/delta, 6)
	case g:
		h = 60 * ((b-r)/delta + 2)
	default:
		h = 60 * ((r-g)/delta + 4)
	}
	if h < 0 {
		h += 360
	}
	return h, s, v
}

// Attribute is one sampled region. Valid is false when the region was outside
// the frame or its landmarks were unavailable.
type Attribute struct {
	Color RGB    `json:"color"`
	Hex   string `json:"hex"`
	Label string `json:"label,omitempty"`
	Valid bool   `json:"valid"`
}

// Attributes are the colors sampled from one face.
type Attributes struct {
	Skin Attribute `json:"skin"`
	Lips Attribute `json:"lips"`
	Eyes Attribute `json:"eyes"`
	Hair Attribute `json:"hair"`
}

// Config holds the sampler tunables.
type Config struct {
	// PatchRatio is the patch half-size as a fraction of the image width.
	PatchRatio float64
	// HairOffset is how far above the forehead point the hair patch sits, as a
	// fraction of face height.
	HairOffset float64
}

// DefaultConfig returns a Config with the standard patch geometry.
func DefaultConfig() Config {
	return Config{
		PatchRatio: 0.01,
		HairOffset: 0.15,
	}
}

// Sampler averages image patches at face landmarks.
type Sampler struct {
	config Config
}

// NewSampler creates a Sampler with the given configuration.
func NewSampler(config Config) *Sampler {
	return &Sampler{config: config}
}

// Sample reads the facial colors of face from img. Eye color needs the iris
// points of a refined mesh; without them Eyes is left invalid.
func (s *Sampler) Sample(img image.Image, face landmark.Set) (Attributes, error) {
	if err := face.RequireAll(landmark.LeftCheek, landmark.RightCheek, landmark.UpperLip,
		landmark.LowerLip, landmark.Forehead, landmark.Chin); err != nil {
		return Attributes{}, fmt.Errorf("color: %w", err)
	}

	bounds := img.Bounds()
	half := max(1, int(s.config.PatchRatio*float64(bounds.Dx())))

	var a Attributes
	if c, ok := s.average(img, half, face[landmark.LeftCheek], face[landmark.RightCheek]); ok {
		a.Skin = attribute(c, SkinTone(c))
	}
	if c, ok := s.average(img, half, face[landmark.UpperLip], face[landmark.LowerLip]); ok {
		a.Lips = attribute(c, "")
	}
	if face.HasIris() {
		if c, ok := s.average(img, half, face[landmark.LeftIris], face[landmark.RightIris]); ok {
			a.Eyes = attribute(c, EyeColor(c))
		}
	}

	forehead := face[landmark.Forehead]
	height := math.Abs(face[landmark.Chin].Y - forehead.Y)
	hair := landmark.Point3D{X: forehead.X, Y: forehead.Y - s.config.HairOffset*height}
	if c, ok := s.average(img, half, hair); ok {
		a.Hair = attribute(c, HairColor(c))
	}
	return a, nil
}

func attribute(c RGB, label string) Attribute {
	return Attribute{Color: c, Hex: c.Hex(), Label: label, Valid: true}
}

// average returns the mean color of square patches centered on points. Patches
// are clipped to the frame; ok is false if nothing remained.
func (s *Sampler) average(img image.Image, half int, points ...landmark.Point3D) (RGB, bool) {
	bounds := img.Bounds()
	var r, g, b, n float64

	for _, p := range points {
		cx := bounds.Min.X + int(p.X*float64(bounds.Dx()))
		cy := bounds.Min.Y + int(p.Y*float64(bounds.Dy()))
		rect := image.Rect(cx-half, cy-half, cx+half+1, cy+half+1).Intersect(bounds)
		if rect.Empty() {
			continue
		}

		patch := imaging.Crop(img, rect)
		for i := 0; i+3 < len(patch.Pix); i += 4 {
			r += float64(patch.Pix[i])
			g += float64(patch.Pix[i+1])
			b += float64(patch.Pix[i+2])
			n++
		}
	}

	if n == 0 {
		return RGB{}, false
	}
	return RGB{
		R: uint8(math.Round(r / n)),
		G: uint8(math.Round(g / n)),
		B: uint8(math.Round(b / n)),
	}, true
}

// SkinTone buckets a skin color by brightness.
func SkinTone(c RGB) string {
	switch l := c.Luma(); {
	case l >= 180:
		return "light"
	case l >= 140:
		return "medium"
	case l >= 100:
		return "tan"
	default:
		return "deep"
	}
}

// EyeColor buckets an iris color.
func EyeColor(c RGB) string {
	h, s, v := c.HSV()
	switch {
	case v < 0.2:
		return "dark"
	case s < 0.15:
		return "gray"
	case h >= 180 && h <= 260:
		return "blue"
	case h >= 70 && h < 180:
		return "green"
	case h >= 40 && h < 70:
		return "hazel"
	default:
		return "brown"
	}
}

// HairColor buckets a hair color.
func HairColor(c RGB) string {
	h, s, v := c.HSV()
	switch {
	case v < 0.2:
		return "black"
	case s < 0.15 && v > 0.6:
		return "gray"
	case (h < 20 || h >= 340) && s > 0.5:
		return "red"
	case h >= 20 && h < 60 && v > 0.55:
		return "blonde"
	default:
		return "brown"
	}
}
