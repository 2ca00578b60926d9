package component

type Sensor struct {
	Name     string  `mapstructure:"name"`
	NodeID   string  `mapstructure:"node_id"`
	Mean     float64 `mapstructure:"mean"`
	Std      float64 `mapstructure:"standard_deviation"`
	DelayMs  uint32  `mapstructure:"delay_ms"`
	Writable bool    `mapstructure:"writable"`
}
