package option

type LogOption struct {
	Disabled         bool   `config:"disabled"`
	File             string `config:"file"`
	Debug            bool   `config:"debug"`
	Quiet            bool   `config:"quiet"`
	DisableTimestamp bool   `config:"disable_timestamp"`
}
