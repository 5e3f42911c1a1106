package engine

import "math"

// Rect is an axis-aligned rectangle
type Rect struct {
	X, Y, Width, Height float64
}

// RectAround returns a w×h rectangle centred on p
func RectAround(p Point, w, h float64) Rect {
	return Rect{X: p.X - w/2, Y: p.Y - h/2, Width: w, Height: h}
}

// Area returns width times height
func (r Rect) Area() float64 {
	return r.Width * r.Height
}

// Intersection returns the overlapping rectangle and whether it is non-empty
func (r Rect) Intersection(o Rect) (Rect, bool) {
	x1 := math.Max(r.X, o.X)
	y1 := math.Max(r.Y, o.Y)
	x2 := math.Min(r.X+r.Width, o.X+o.Width)
	y2 := math.Min(r.Y+r.Height, o.Y+o.Height)
	if x2 <= x1 || y2 <= y1 {
		return Rect{}, false
	}
	return Rect{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}, true
}

// OverlapsHalf reports whether the intersection covers at least half of the
// smaller rectangle. Touching edges do not count.
func (r Rect) OverlapsHalf(o Rect) bool {
	in, ok := r.Intersection(o)
	if !ok {
		return false
	}
	threshold := math.Min(r.Area(), o.Area()) * 0.5
	return in.Area() >= threshold
}

// clamp restricts v to [lo, hi]
func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// CountDiscoverable returns how many catalog elements can ever be produced
// starting from the base elements.
func CountDiscoverable(c *Catalog) int {
	order, _ := DiscoveryOrder(c)
	return len(order)
}

// DiscoveryOrder computes the closure of the recipe graph from the base
// elements. It returns elements in the order they become reachable and the
// number of combination rounds needed to reach all of them.
func DiscoveryOrder(c *Catalog) ([]*Element, int) {
	known := make(map[ElementID]bool, c.Len())
	order := make([]*Element, 0, c.Len())
	for _, el := range c.BaseElementList() {
		known[el.id] = true
		order = append(order, el)
	}

	rounds := 0
	for {
		var found []*Element
		for _, r := range c.Recipes() {
			first, _ := c.Lookup(r.First)
			second, _ := c.Lookup(r.Second)
			result, _ := c.Lookup(r.Result)
			if known[first.id] && known[second.id] && !known[result.id] {
				found = append(found, result)
			}
		}
		if len(found) == 0 {
			break
		}
		rounds++
		for _, el := range found {
			if !known[el.id] {
				known[el.id] = true
				order = append(order, el)
			}
		}
	}
	return order, rounds
}

// Unreachable returns catalog elements that no combination can produce
func Unreachable(c *Catalog) []*Element {
	order, _ := DiscoveryOrder(c)
	reached := make(map[ElementID]bool, len(order))
	for _, el := range order {
		reached[el.id] = true
	}
	var missing []*Element
	for _, el := range c.elements {
		if !reached[el.id] {
			missing = append(missing, el)
		}
	}
	return missing
}
