package statuses

// Status is one execution status a run entry can hold.
type Status struct {
	ID      string `yaml:"id" json:"id"`
	Label   string `yaml:"label" json:"label"`
	Color   string `yaml:"color" json:"color"`
	IsFinal bool   `yaml:"is_final" json:"is_final"`
}

// Priority is one selectable test case priority.
type Priority struct {
	ID    string `yaml:"id" json:"id"`
	Label string `yaml:"label" json:"label"`
	Rank  int    `yaml:"rank" json:"rank"`
}

// Catalog is the full set of statuses and priorities loaded from YAML.
type Catalog struct {
	Statuses   []Status   `yaml:"statuses" json:"statuses"`
	Priorities []Priority `yaml:"priorities" json:"priorities"`
	Default    struct {
		Status   string `yaml:"status" json:"status"`
		Priority string `yaml:"priority" json:"priority"`
	} `yaml:"defaults" json:"defaults"`
}
