package component

type Sprite struct {
	Image string `yaml:"image" json:"image"`
	Layer int    `yaml:"layer" json:"layer"`
}

func (Sprite) Default() Sprite { return Sprite{Image: "blank.png"} }
