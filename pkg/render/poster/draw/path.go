package draw

import "strings"

// PathBuilder assembles SVG path data.
type PathBuilder struct {
	b strings.Builder
}

func (pb *PathBuilder) cmd(c string, p Point) *PathBuilder {
	if pb.b.Len() > 0 {
		pb.b.WriteByte(' ')
	}
	pb.b.WriteString(c)
	pb.b.WriteString(Num(p.X))
	pb.b.WriteByte(',')
	pb.b.WriteString(Num(p.Y))
	return pb
}

// MoveTo starts a new subpath at p.
func (pb *PathBuilder) MoveTo(p Point) *PathBuilder { return pb.cmd("M", p) }

// LineTo draws a straight line to p.
func (pb *PathBuilder) LineTo(p Point) *PathBuilder { return pb.cmd("L", p) }

// ArcTo draws a circular arc of radius r to p.
func (pb *PathBuilder) ArcTo(r float64, large, sweep bool, p Point) *PathBuilder {
	if pb.b.Len() > 0 {
		pb.b.WriteByte(' ')
	}
	pb.b.WriteString("A")
	pb.b.WriteString(Num(r))
	pb.b.WriteByte(',')
	pb.b.WriteString(Num(r))
	pb.b.WriteString(" 0 ")
	pb.b.WriteString(flag(large))
	pb.b.WriteByte(',')
	pb.b.WriteString(flag(sweep))
	pb.b.WriteByte(' ')
	pb.b.WriteString(Num(p.X))
	pb.b.WriteByte(',')
	pb.b.WriteString(Num(p.Y))
	return pb
}

// Close closes the current subpath.
func (pb *PathBuilder) Close() *PathBuilder {
	pb.b.WriteString(" Z")
	return pb
}

// String returns the path data.
func (pb *PathBuilder) String() string { return pb.b.String() }

func flag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// Wedge returns the outline of an annular sector around c between radii
// r0 < r1 and angles a0 < a1 (radians, clockwise from twelve o'clock).
func Wedge(c Point, r0, r1, a0, a1 float64) string {
	large := a1-a0 > 3.141592653589793
	var pb PathBuilder
	pb.MoveTo(c.Polar(r0, a0)).
		LineTo(c.Polar(r1, a0)).
		ArcTo(r1, large, true, c.Polar(r1, a1)).
		LineTo(c.Polar(r0, a1)).
		ArcTo(r0, large, false, c.Polar(r0, a0)).
		Close()
	return pb.String()
}
