package draw

// DefaultUnit is the physical unit of canvas coordinates.
const DefaultUnit = "mm"

// Document is a complete poster: canvas geometry and ordered primitives.
type Document struct {
	Width      float64
	Height     float64
	Unit       string
	Title      string
	Primitives []Primitive
}

// NewDocument returns an empty document of the given size.
func NewDocument(width, height float64) *Document {
	return &Document{Width: width, Height: height, Unit: DefaultUnit}
}

// ViewBox returns the user coordinate system (minX, minY, width, height).
func (d *Document) ViewBox() [4]float64 {
	return [4]float64{0, 0, d.Width, d.Height}
}

// Add appends primitives in drawing order.
func (d *Document) Add(ps ...Primitive) {
	d.Primitives = append(d.Primitives, ps...)
}

// Walk visits every primitive depth-first in drawing order.
func (d *Document) Walk(fn func(p Primitive, depth int)) {
	walk(d.Primitives, 0, fn)
}

func walk(ps []Primitive, depth int, fn func(Primitive, int)) {
	for _, p := range ps {
		fn(p, depth)
		if g, ok := p.(Group); ok {
			walk(g.Children, depth+1, fn)
		}
	}
}

// Count returns the number of primitives, at any depth, matching pred.
func (d *Document) Count(pred func(Primitive) bool) int {
	n := 0
	d.Walk(func(p Primitive, _ int) {
		if pred(p) {
			n++
		}
	})
	return n
}

// Cells returns every primitive carrying cell metadata.
func (d *Document) Cells() []Primitive {
	var cells []Primitive
	d.Walk(func(p Primitive, _ int) {
		switch v := p.(type) {
		case Rect:
			if v.Meta != nil {
				cells = append(cells, v)
			}
		case Path:
			if v.Meta != nil {
				cells = append(cells, v)
			}
		}
	})
	return cells
}

// CellFill returns the fill color of a cell primitive.
func CellFill(p Primitive) string {
	switch v := p.(type) {
	case Rect:
		return v.Style.Fill
	case Path:
		return v.Style.Fill
	}
	return ""
}

// CellMeta returns the metadata of a cell primitive, or nil.
func CellMeta(p Primitive) *Meta {
	switch v := p.(type) {
	case Rect:
		return v.Meta
	case Path:
		return v.Meta
	}
	return nil
}
