package component

// Lifetime counts down once per tick; the expiry system deletes the entity
// when it reaches zero.
type Lifetime struct {
	Ticks int `yaml:"ticks" json:"ticks"`
}

func (Lifetime) Default() Lifetime { return Lifetime{Ticks: 1} }
