package scene2d

// Scene2D is the complete 2D scene output for an SVG top-down renderer of
// school needs.
type Scene2D struct {
	Metadata Metadata   `json:"metadata"`
	Bounds   Bounds     `json:"bounds"`
	Regions  []Region2D `json:"regions"`
	Schools  []School2D `json:"schools"`
	Legend   []Class    `json:"legend"`
}

// Metadata holds run-level summary data.
type Metadata struct {
	Capacity    float64 `json:"capacity"`
	Population  float64 `json:"population"`
	RegionCount int     `json:"region_count"`
	Flagged     int     `json:"flagged"`
	SchoolCount int     `json:"school_count"`
	Additional  int     `json:"additional"`
	GeneratedAt string  `json:"generated_at"`
}

// Bounds is the extent of every region and school, in layer coordinates.
type Bounds struct {
	Min [2]float64 `json:"min"`
	Max [2]float64 `json:"max"`
}

// Region2D is one region polygon with its needs annotation.
// Rings of every member polygon are listed flat and fill even-odd.
type Region2D struct {
	Name       string         `json:"name"`
	Rings      [][][2]float64 `json:"rings"`
	Label      string         `json:"label"`
	LabelAt    [2]float64     `json:"label_at"`
	Area       float64        `json:"area"`
	Population float64        `json:"population"`
	Required   int            `json:"required"`
	Existing   int            `json:"existing"`
	Additional int            `json:"additional"`
	Class      string         `json:"class"`
	Error      string         `json:"error,omitempty"`
}

// School2D is an existing school.
type School2D struct {
	ID       string     `json:"id"`
	Position [2]float64 `json:"position"`
}

// Class is a fill class for regions.
type Class struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Count       int    `json:"count"`
}

// Region fill classes.
const (
	ClassServed   = "served"
	ClassShortage = "shortage"
	ClassFlagged  = "flagged"
)
