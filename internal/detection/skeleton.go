package detection

// Skeletonize reduces thick foreground shapes to 1-pixel-wide centerlines
// using the Zhang-Suen thinning algorithm.
//
// The input mask is not modified; the returned mask is a new buffer. The
// algorithm alternates two sub-iterations that peel boundary pixels whose
// removal cannot disconnect the shape, until no pixel changes.
func Skeletonize(mask [][]bool) [][]bool {
	height := len(mask)
	if height == 0 {
		return nil
	}
	width := len(mask[0])

	skel := make([][]bool, height)
	for y := range mask {
		skel[y] = append([]bool(nil), mask[y]...)
	}

	at := func(x, y int) bool {
		if x < 0 || x >= width || y < 0 || y >= height {
			return false
		}
		return skel[y][x]
	}

	changed := true
	for changed {
		changed = false
		for pass := 0; pass < 2; pass++ {
			var remove []int
			for y := 0; y < height; y++ {
				for x := 0; x < width; x++ {
					if !skel[y][x] {
						continue
					}

					// Clockwise neighbors p2..p9 starting north.
					p := [8]bool{
						at(x, y-1), at(x+1, y-1), at(x+1, y),
						at(x+1, y+1), at(x, y+1), at(x-1, y+1),
						at(x-1, y), at(x-1, y-1),
					}

					// B: foreground neighbor count.
					b := 0
					for _, v := range p {
						if v {
							b++
						}
					}
					if b < 2 || b > 6 {
						continue
					}

					// A: 0->1 transitions around the ring.
					a := 0
					for i := 0; i < 8; i++ {
						if !p[i] && p[(i+1)%8] {
							a++
						}
					}
					if a != 1 {
						continue
					}

					// Directional conditions differ per sub-iteration.
					if pass == 0 {
						if (p[0] && p[2] && p[4]) || (p[2] && p[4] && p[6]) {
							continue
						}
					} else {
						if (p[0] && p[2] && p[6]) || (p[0] && p[4] && p[6]) {
							continue
						}
					}

					remove = append(remove, y*width+x)
				}
			}
			for _, idx := range remove {
				skel[idx/width][idx%width] = false
				changed = true
			}
		}
	}
	return skel
}
