package pdflayout

import (
	"math"

	"github.com/dgallion1/pdfoutline/internal/doctree"
	pdflib "github.com/ledongthuc/pdf"
)

// paintedRect is a rectangle that reached the page, in top-left page
// coordinates. Shaded is set only for fills in a non-white colour.
type paintedRect struct {
	box    doctree.BBox
	shaded bool
}

// matrix is a PDF transformation [a b c d e f].
type matrix [6]float64

var identity = matrix{1, 0, 0, 1, 0, 0}

// then returns the transform that applies m first and n second.
func (m matrix) then(n matrix) matrix {
	return matrix{
		m[0]*n[0] + m[1]*n[2],
		m[0]*n[1] + m[1]*n[3],
		m[2]*n[0] + m[3]*n[2],
		m[2]*n[1] + m[3]*n[3],
		m[4]*n[0] + m[5]*n[2] + n[4],
		m[4]*n[1] + m[5]*n[3] + n[5],
	}
}

func (m matrix) apply(x, y float64) (float64, float64) {
	return m[0]*x + m[2]*y + m[4], m[1]*x + m[3]*y + m[5]
}

// rect maps an axis-aligned rectangle through m and returns its bounds in
// user space.
func (m matrix) rect(x, y, w, h float64) pdflib.Rect {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, c := range [4][2]float64{{x, y}, {x + w, y}, {x, y + h}, {x + w, y + h}} {
		px, py := m.apply(c[0], c[1])
		minX, maxX = math.Min(minX, px), math.Max(maxX, px)
		minY, maxY = math.Min(minY, py), math.Max(maxY, py)
	}
	return pdflib.Rect{Min: pdflib.Point{X: minX, Y: minY}, Max: pdflib.Point{X: maxX, Y: maxY}}
}

type paintState struct {
	ctm   matrix
	white bool // non-stroking colour
}

// Colour components within this distance of white count as white.
const whiteTolerance = 0.05

// paintedRects walks the page content stream and keeps the rectangles that
// are filled or stroked. Paths ended with n, which includes clipping paths
// (re W n), are never painted and are dropped.
func paintedRects(p pdflib.Page, box pageBox) []paintedRect {
	strm := p.V.Key("Contents")
	if strm.Kind() == pdflib.Null {
		return nil
	}

	g := paintState{ctm: identity}
	var saved []paintState
	var path []pdflib.Rect
	var out []paintedRect

	emit := func(shaded bool) {
		for _, r := range path {
			out = append(out, paintedRect{box: topLeft(r, box), shaded: shaded})
		}
		path = path[:0]
	}

	pdflib.Interpret(strm, func(stk *pdflib.Stack, op string) {
		n := stk.Len()
		args := make([]pdflib.Value, n)
		for i := n - 1; i >= 0; i-- {
			args[i] = stk.Pop()
		}

		switch op {
		case "q":
			saved = append(saved, g)
		case "Q":
			if len(saved) > 0 {
				g = saved[len(saved)-1]
				saved = saved[:len(saved)-1]
			}
		case "cm":
			if n == 6 {
				var m matrix
				for i := range m {
					m[i] = args[i].Float64()
				}
				g.ctm = m.then(g.ctm)
			}
		case "g", "rg", "k", "sc", "scn":
			c, ok := components(args)
			g.white = ok && isWhite(c)
		case "cs":
			// A new colour space starts at its initial colour, black for
			// the device spaces.
			g.white = false
		case "re":
			if n == 4 {
				path = append(path, g.ctm.rect(args[0].Float64(), args[1].Float64(), args[2].Float64(), args[3].Float64()))
			}
		case "f", "F", "f*", "B", "B*", "b", "b*":
			emit(!g.white)
		case "S", "s":
			emit(false)
		case "n":
			path = path[:0]
		}
	})
	return out
}

// components reads numeric colour operands. Pattern names make it fail.
func components(args []pdflib.Value) ([]float64, bool) {
	c := make([]float64, len(args))
	for i, a := range args {
		if k := a.Kind(); k != pdflib.Integer && k != pdflib.Real {
			return nil, false
		}
		c[i] = a.Float64()
	}
	return c, true
}

// isWhite reports whether colour components describe white. One component
// is gray, three are RGB and four are CMYK.
func isWhite(c []float64) bool {
	switch len(c) {
	case 1, 3:
		for _, v := range c {
			if v < 1-whiteTolerance {
				return false
			}
		}
		return true
	case 4:
		for _, v := range c {
			if v > whiteTolerance {
				return false
			}
		}
		return true
	}
	return false
}

// topLeft converts a user-space rectangle to top-left page coordinates.
func topLeft(r pdflib.Rect, box pageBox) doctree.BBox {
	x0, x1 := math.Min(r.Min.X, r.Max.X), math.Max(r.Min.X, r.Max.X)
	y0, y1 := math.Min(r.Min.Y, r.Max.Y), math.Max(r.Min.Y, r.Max.Y)
	return doctree.BBox{
		X0: x0 - box.llx,
		Y0: box.ury - y1,
		X1: x1 - box.llx,
		Y1: box.ury - y0,
	}
}
