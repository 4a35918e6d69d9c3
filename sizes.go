package emojiwin

// CanonicalSizes are the strike sizes in pixels per em that DirectWrite expects, in ascending order.
var CanonicalSizes = []int{16, 20, 24, 32, 40, 48, 64, 96, 128}

// NearestSize returns the canonical size closest to size. Ties go to the smaller size.
func NearestSize(size int) int {
	nearest, best := CanonicalSizes[0], -1
	for _, c := range CanonicalSizes {
		d := c - size
		if d < 0 {
			d = -d
		}
		if best == -1 || d < best {
			nearest, best = c, d
		}
	}
	return nearest
}

// IsCanonicalSize returns true if size is one of CanonicalSizes.
func IsCanonicalSize(size int) bool {
	for _, c := range CanonicalSizes {
		if c == size {
			return true
		}
	}
	return false
}
