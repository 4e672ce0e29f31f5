package scorer

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"math/rand"
	"os"
	"time"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"

	"photoclean/internal/logging"
	"photoclean/internal/services"
)

const (
	highSkinRatio = 0.3
	midSkinRatio  = 0.2

	highSkinWeight  = 0.4
	midSkinWeight   = 0.2
	aspectWeight    = 0.1
	jitterMax       = 0.3
	aspectLowBound  = 0.5
	aspectHighBound = 2.0
)

// Scorer computes heuristic sensitivity scores for image files.
type Scorer struct {
	jitter func() float64
	logger *slog.Logger
}

// Option customizes scorer construction.
type Option func(*Scorer)

// WithRandom replaces the jitter source. Tests inject a seeded source to make
// classification deterministic.
func WithRandom(rng *rand.Rand) Option {
	return func(s *Scorer) {
		s.jitter = func() float64 { return rng.Float64() * jitterMax }
	}
}

// WithoutJitter disables the random term entirely.
func WithoutJitter() Option {
	return func(s *Scorer) {
		s.jitter = func() float64 { return 0 }
	}
}

// New constructs a scorer. The default jitter source is seeded from the clock.
func New(logger *slog.Logger, opts ...Option) *Scorer {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	s := &Scorer{
		jitter: func() float64 { return rng.Float64() * jitterMax },
		logger: logging.NewComponentLogger(logger, "scorer"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Score decodes the image at path and returns its sensitivity score in [0,1].
// Decode and processing failures return services.ErrDecode; callers decide
// how to route the file (the pipeline leaves it in place and counts the
// error rather than treating it as clean).
func (s *Scorer) Score(ctx context.Context, path string) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	img, err := decodeImage(path)
	if err != nil {
		return 0, services.Wrap(services.ErrDecode, "scoring", "decode image", path, err)
	}

	base, skinRatio, aspect := heuristicScore(img)
	score := clamp01(base + s.jitter())

	s.logger.Debug(
		"scored image",
		logging.String("file", path),
		logging.Float64("score", score),
		logging.Float64("skin_ratio", skinRatio),
		logging.Float64("aspect_ratio", aspect),
	)
	return score, nil
}

func decodeImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return img, nil
}

// heuristicScore computes the deterministic score components: the skin-ratio
// contribution and the aspect-ratio bonus.
func heuristicScore(img image.Image) (score, skinRatio, aspect float64) {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	if width == 0 || height == 0 {
		return 0, 0, 0
	}

	skin := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r16, g16, b16, _ := img.At(x, y).RGBA()
			r := int(r16 >> 8)
			g := int(g16 >> 8)
			b := int(b16 >> 8)
			if isSkinTone(r, g, b) {
				skin++
			}
		}
	}

	skinRatio = float64(skin) / float64(width*height)
	switch {
	case skinRatio > highSkinRatio:
		score = highSkinWeight
	case skinRatio > midSkinRatio:
		score = midSkinWeight
	}

	aspect = float64(width) / float64(height)
	if aspect > aspectLowBound && aspect < aspectHighBound {
		score += aspectWeight
	}
	return score, skinRatio, aspect
}

// isSkinTone applies the fixed color-channel inequality the heuristic uses to
// count skin-like pixels. It is a crude approximation, kept only because the
// scorer is a placeholder.
func isSkinTone(r, g, b int) bool {
	return r > 95 && g > 40 && b > 20 && r > g && r > b && r-g > 15
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
