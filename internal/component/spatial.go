package component

// Position is a point in world units.
type Position struct {
	X float64 `yaml:"x" json:"x"`
	Y float64 `yaml:"y" json:"y"`
}

// Velocity is applied to Position once per tick, scaled by the tick delta.
type Velocity struct {
	X float64 `yaml:"x" json:"x"`
	Y float64 `yaml:"y" json:"y"`
}

// Dimensions is an axis-aligned size.
type Dimensions struct {
	Width  float64 `yaml:"width" json:"width"`
	Height float64 `yaml:"height" json:"height"`
}

func (Dimensions) Default() Dimensions { return Dimensions{Width: 1, Height: 1} }
