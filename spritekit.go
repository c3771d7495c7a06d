package spritekit

// Vec3 is an integer triple used for pose offsets, angles and scales.
type Vec3 struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
	Z int `yaml:"z"`
}

// Size is an integer width/height pair in pixels.
type Size struct {
	Width  int `yaml:"w"`
	Height int `yaml:"h"`
}

// Rect is an axis-aligned rectangle. The atlas coordinate space has its origin
// at the atlas center, with Y increasing downward.
type Rect struct {
	X, Y, Width, Height float64
}

// Contains reports whether the point (x, y) lies inside the rectangle.
// Points on the edge are considered inside.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// Intersects reports whether r and other overlap.
// Adjacent rectangles (sharing only an edge) are considered intersecting.
func (r Rect) Intersects(other Rect) bool {
	return r.X <= other.X+other.Width &&
		r.X+r.Width >= other.X &&
		r.Y <= other.Y+other.Height &&
		r.Y+r.Height >= other.Y
}

// Overlaps reports whether r and other share interior area. Unlike
// Intersects, touching edges do not count.
func (r Rect) Overlaps(other Rect) bool {
	return r.X < other.X+other.Width &&
		r.X+r.Width > other.X &&
		r.Y < other.Y+other.Height &&
		r.Y+r.Height > other.Y
}

// Expand returns r grown by pad on every side.
func (r Rect) Expand(pad float64) Rect {
	return Rect{r.X - pad, r.Y - pad, r.Width + 2*pad, r.Height + 2*pad}
}

// ScaleMode selects which axes a SetScale command writes.
type ScaleMode uint8

const (
	ScaleUniform ScaleMode = iota // all three axes
	ScaleX                        // X axis only
	ScaleY                        // Y axis only
)

// ParentKind is the discriminator packed into the high nibble of a SetParent
// immediate.
type ParentKind uint8

const (
	ParentRoot      ParentKind = iota // detach back to the sprite root
	ParentComponent                   // follow another component of the same animation
	ParentSpecial                     // engine-defined attachment, index 1 or 2
)

func (k ParentKind) String() string {
	switch k {
	case ParentRoot:
		return "root"
	case ParentComponent:
		return "component"
	case ParentSpecial:
		return "special"
	default:
		return "invalid"
	}
}

// ParentLink is a same-animation reference by component index. It never owns
// the referenced component.
type ParentLink struct {
	Kind  ParentKind `yaml:"kind"`
	Index int        `yaml:"index"`
}

// WorldScale converts sprite units to world units when rendering in a map.
const WorldScale = 0.714286
