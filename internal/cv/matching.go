package cv

import (
	"image"
	"math"
)

// MatchResult contains template matching results
type MatchResult struct {
	Found      bool
	Location   image.Point
	Confidence float64
}

// MatchMethod defines template matching algorithm
type MatchMethod int

const (
	// MatchMethodSAD - Sum of Absolute Differences (fastest)
	MatchMethodSAD MatchMethod = iota
	// MatchMethodSSD - Sum of Squared Differences (balanced)
	MatchMethodSSD
	// MatchMethodNCC - Normalized Cross-Correlation (most accurate)
	MatchMethodNCC
)

// MatchConfig configures template matching
type MatchConfig struct {
	Method       MatchMethod
	Threshold    float64          // 0.0-1.0, higher = more strict
	SearchRegion *image.Rectangle // Optional: limit search area
	StopAtFirst  bool             // Return the first position meeting Threshold
}

// DefaultMatchConfig returns recommended settings for arrow icons
func DefaultMatchConfig() *MatchConfig {
	return &MatchConfig{
		Method:    MatchMethodNCC,
		Threshold: 0.90,
	}
}

// Contains reports whether needle appears anywhere in haystack at the given
// confidence. The scan stops at the first qualifying position.
func Contains(haystack, needle *image.RGBA, confidence float64) bool {
	return FindTemplate(haystack, needle, &MatchConfig{
		Method:      MatchMethodNCC,
		Threshold:   confidence,
		StopAtFirst: true,
	}).Found
}

// FindTemplate finds a template image within a larger image
func FindTemplate(haystack, needle *image.RGBA, config *MatchConfig) *MatchResult {
	if config == nil {
		config = DefaultMatchConfig()
	}
	if haystack == nil || needle == nil {
		return &MatchResult{Found: false}
	}

	haystackBounds := haystack.Bounds()
	needleBounds := needle.Bounds()

	needleWidth := needleBounds.Dx()
	needleHeight := needleBounds.Dy()

	if needleWidth == 0 || needleHeight == 0 {
		return &MatchResult{Found: false}
	}
	if needleWidth > haystackBounds.Dx() || needleHeight > haystackBounds.Dy() {
		return &MatchResult{Found: false}
	}

	searchBounds := haystackBounds
	if config.SearchRegion != nil {
		searchBounds = config.SearchRegion.Intersect(haystackBounds)
		if searchBounds.Empty() {
			return &MatchResult{Found: false}
		}
	}

	// Use <= for the last valid origin so the needle never leaves the search area
	maxY := searchBounds.Max.Y - needleHeight
	maxX := searchBounds.Max.X - needleWidth
	if maxY < searchBounds.Min.Y || maxX < searchBounds.Min.X {
		return &MatchResult{Found: false}
	}

	stats := newNeedleStats(needle)

	bestScore := 0.0
	bestLocation := image.Point{}
	found := false

	for y := searchBounds.Min.Y; y <= maxY; y++ {
		for x := searchBounds.Min.X; x <= maxX; x++ {
			score := calculateMatchScore(haystack, needle, stats, x, y, config.Method)

			if score > bestScore {
				bestScore = score
				bestLocation = image.Point{X: x, Y: y}
				if score >= config.Threshold {
					found = true
					if config.StopAtFirst {
						return &MatchResult{Found: true, Location: bestLocation, Confidence: bestScore}
					}
				}
			}
		}
	}

	return &MatchResult{
		Found:      found,
		Location:   bestLocation,
		Confidence: bestScore,
	}
}

// needleStats caches per-needle sums used by NCC so they are computed once per search
type needleStats struct {
	sum, sumSq float64
	n          float64
}

func newNeedleStats(needle *image.RGBA) needleStats {
	b := needle.Bounds()
	var s needleStats
	for y := b.Min.Y; y < b.Max.Y; y++ {
		idx := needle.PixOffset(b.Min.X, y)
		for x := 0; x < b.Dx(); x++ {
			for c := 0; c < 3; c++ {
				v := float64(needle.Pix[idx+x*4+c])
				s.sum += v
				s.sumSq += v * v
			}
		}
	}
	s.n = float64(b.Dx() * b.Dy() * 3)
	return s
}

// calculateMatchScore computes similarity between template and image region
func calculateMatchScore(haystack, needle *image.RGBA, stats needleStats, x, y int, method MatchMethod) float64 {
	needleBounds := needle.Bounds()
	width := needleBounds.Dx()
	height := needleBounds.Dy()

	switch method {
	case MatchMethodSAD:
		return matchSAD(haystack, needle, x, y, width, height)
	case MatchMethodNCC:
		return matchNCC(haystack, needle, stats, x, y, width, height)
	default:
		return matchSSD(haystack, needle, x, y, width, height)
	}
}

// matchSAD - Sum of Absolute Differences (fastest, least accurate)
func matchSAD(haystack, needle *image.RGBA, x, y, width, height int) float64 {
	var sad uint64
	nMin := needle.Bounds().Min

	for ny := 0; ny < height; ny++ {
		hRow := haystack.PixOffset(x, y+ny)
		nRow := needle.PixOffset(nMin.X, nMin.Y+ny)
		for nx := 0; nx < width; nx++ {
			hIdx := hRow + nx*4
			nIdx := nRow + nx*4

			sad += uint64(abs(int(haystack.Pix[hIdx]) - int(needle.Pix[nIdx])))
			sad += uint64(abs(int(haystack.Pix[hIdx+1]) - int(needle.Pix[nIdx+1])))
			sad += uint64(abs(int(haystack.Pix[hIdx+2]) - int(needle.Pix[nIdx+2])))
		}
	}

	maxSAD := float64(width * height * 3 * 255)
	return 1.0 - (float64(sad) / maxSAD)
}

// matchSSD - Sum of Squared Differences (balanced)
func matchSSD(haystack, needle *image.RGBA, x, y, width, height int) float64 {
	var ssd uint64
	nMin := needle.Bounds().Min

	for ny := 0; ny < height; ny++ {
		hRow := haystack.PixOffset(x, y+ny)
		nRow := needle.PixOffset(nMin.X, nMin.Y+ny)
		for nx := 0; nx < width; nx++ {
			hIdx := hRow + nx*4
			nIdx := nRow + nx*4

			dr := int(haystack.Pix[hIdx]) - int(needle.Pix[nIdx])
			dg := int(haystack.Pix[hIdx+1]) - int(needle.Pix[nIdx+1])
			db := int(haystack.Pix[hIdx+2]) - int(needle.Pix[nIdx+2])

			ssd += uint64(dr*dr + dg*dg + db*db)
		}
	}

	maxSSD := float64(width * height * 3 * 255 * 255)
	return 1.0 - (float64(ssd) / maxSSD)
}

// flatVariance is the per-sample variance below which a patch counts as a solid color
const flatVariance = 1e-6

// matchNCC - Normalized Cross-Correlation (slowest, most accurate).
// Returns the correlation coefficient clamped to [0,1]. A solid-color needle has no
// defined correlation, so it is scored with SSD instead. A patterned needle never
// matches a solid-color window.
func matchNCC(haystack, needle *image.RGBA, stats needleStats, x, y, width, height int) float64 {
	var sumH, sumHN, sumHH float64
	nMin := needle.Bounds().Min

	for ny := 0; ny < height; ny++ {
		hRow := haystack.PixOffset(x, y+ny)
		nRow := needle.PixOffset(nMin.X, nMin.Y+ny)
		for nx := 0; nx < width; nx++ {
			hIdx := hRow + nx*4
			nIdx := nRow + nx*4

			for c := 0; c < 3; c++ {
				h := float64(haystack.Pix[hIdx+c])
				n := float64(needle.Pix[nIdx+c])

				sumH += h
				sumHN += h * n
				sumHH += h * h
			}
		}
	}

	varH := sumHH - (sumH * sumH / stats.n)
	varN := stats.sumSq - (stats.sum * stats.sum / stats.n)
	if varN <= flatVariance*stats.n {
		return matchSSD(haystack, needle, x, y, width, height)
	}
	if varH <= flatVariance*stats.n {
		return 0
	}

	numerator := sumHN - (sumH * stats.sum / stats.n)
	correlation := numerator / (math.Sqrt(varH) * math.Sqrt(varN))
	if correlation < 0 {
		return 0
	}
	if correlation > 1 {
		return 1
	}
	return correlation
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
