package chart

// Kind enumerates the renderable chart shapes.
type Kind string

const (
	KindBar     Kind = "bar"
	KindHBar    Kind = "hbar"
	KindLine    Kind = "line"
	KindScatter Kind = "scatter"
	KindRadar   Kind = "radar"
)

// Role drives color assignment: the club is always drawn in the fixed
// highlight color, the synthetic league average in the average color and
// every peer in the shared neutral color.
type Role string

const (
	RoleHighlight Role = "highlight"
	RoleAverage   Role = "average"
	RolePeer      Role = "peer"
)

type Value struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
	Role  Role    `json:"role"`
}

type Point struct {
	Label string  `json:"label"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Role  Role    `json:"role"`
}

type Series struct {
	Name   string  `json:"name"`
	Role   Role    `json:"role"`
	Values []Value `json:"values,omitempty"`
	Points []Point `json:"points,omitempty"`
}

// Spec is the renderer input: a chart kind, axis bindings and the series
// to draw. Bars use Series.Values, lines and scatters use Series.Points.
type Spec struct {
	Kind      Kind     `json:"kind"`
	Title     string   `json:"title"`
	XLabel    string   `json:"xLabel,omitempty"`
	YLabel    string   `json:"yLabel,omitempty"`
	Series    []Series `json:"series"`
	XMean     float64  `json:"xMean,omitempty"`
	YMean     float64  `json:"yMean,omitempty"`
	ShowMeans bool     `json:"showMeans,omitempty"`
}

// Empty reports whether the spec carries nothing to draw.
func (s Spec) Empty() bool {
	for _, series := range s.Series {
		if len(series.Values) > 0 || len(series.Points) > 0 {
			return false
		}
	}
	return true
}

// Artifact is one rendered output: raster bytes or an encoded JSON series.
type Artifact struct {
	ContentType string
	Payload     []byte
}

// Palette holds the fixed corporate colors, hex-encoded without '#'.
type Palette struct {
	Highlight string
	Average   string
	Neutral   string
}

func DefaultPalette() Palette {
	return Palette{
		Highlight: "DC143C",
		Average:   "2ecc71",
		Neutral:   "95a5a6",
	}
}

func (p Palette) For(role Role) string {
	switch role {
	case RoleHighlight:
		return p.Highlight
	case RoleAverage:
		return p.Average
	default:
		return p.Neutral
	}
}
