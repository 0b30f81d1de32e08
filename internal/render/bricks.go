// Package render implements the per-peer volume raymarcher: brick
// assignment, trilinear sampling, the bioelectric procedural field, and the
// ray-marching inner loop that fills a core.Frame.
package render

import (
	"math"
)

// AssignBricks partitions the B bricks across size peers: per =
// ceil(B/N); rank r owns ids in [r*per, min((r+1)*per, B)). Lower ranks
// receive leftover bricks; ordering within a rank is ascending id. A rank
// with r*per >= B owns no bricks.
func AssignBricks(rank, size, numBricks int) []int {
	if size <= 0 || rank < 0 || rank >= size {
		return nil
	}
	per := int(math.Ceil(float64(numBricks) / float64(size)))
	start := rank * per
	if start >= numBricks {
		return nil
	}
	end := start + per
	if end > numBricks {
		end = numBricks
	}
	ids := make([]int, 0, end-start)
	for id := start; id < end; id++ {
		ids = append(ids, id)
	}
	return ids
}
