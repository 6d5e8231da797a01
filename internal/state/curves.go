// Copyright (c) 2017 Western Digital Corporation or its affiliates. All rights reserved.
// SPDX-License-Identifier: MIT

package state

import (
	"math"
	"sort"
)

// Velocity curves map a note's velocity (x) to a gain (y). The stored points
// are sorted by x. If the first point isn't at x=0 the curve starts at a
// virtual (0,0); if the last isn't at x=1 it ends at a virtual (1,1). An empty
// curve is therefore the identity.

// FlatCurve returns a curve that is y everywhere.
func FlatCurve(y float32) []CurvePoint {
	return []CurvePoint{{X: 0, Y: y}, {X: 1, Y: y}}
}

// withAnchors returns the points including the virtual anchors.
func withAnchors(points []CurvePoint) []CurvePoint {
	out := make([]CurvePoint, 0, len(points)+2)
	if len(points) == 0 || points[0].X > 0 {
		out = append(out, CurvePoint{X: 0, Y: 0})
	}
	out = append(out, points...)
	if len(points) == 0 || points[len(points)-1].X < 1 {
		out = append(out, CurvePoint{X: 1, Y: 1})
	}
	return out
}

// CurveValue evaluates a velocity curve at x.
func CurveValue(points []CurvePoint, x float32) float32 {
	if x <= 0 {
		x = 0
	} else if x >= 1 {
		x = 1
	}
	all := withAnchors(points)
	// First point with X > x; the segment is [i-1, i].
	i := sort.Search(len(all), func(i int) bool { return all[i].X > x })
	if i == 0 {
		return all[0].Y
	}
	if i == len(all) {
		return all[len(all)-1].Y
	}
	a, b := all[i-1], all[i]
	width := b.X - a.X
	if width <= 0 {
		return b.Y
	}
	t := shape((x-a.X)/width, a.Curve)
	return a.Y + (b.Y-a.Y)*t
}

// shape bends t in [0,1] by curve in [-1,1].
func shape(t, curve float32) float32 {
	switch {
	case curve > 0:
		return float32(math.Pow(float64(t), float64(1+3*curve)))
	case curve < 0:
		return 1 - float32(math.Pow(float64(1-t), float64(1-3*curve)))
	}
	return t
}

// SortCurve orders points by x, keeping the relative order of equal xs.
func SortCurve(points []CurvePoint) {
	sort.SliceStable(points, func(i, j int) bool { return points[i].X < points[j].X })
}
