package styles

// ValueKind says which value column a property uses
type ValueKind string

const (
	ValueKindString ValueKind = "string"
	ValueKindNumber ValueKind = "number"
)

// PropertySpec describes one allowed style property
type PropertySpec struct {
	Name      string    `yaml:"-" json:"name"`
	Kind      ValueKind `yaml:"kind" json:"kind"`
	Units     []string  `yaml:"units" json:"units,omitempty"`
	Values    []string  `yaml:"values" json:"values,omitempty"` // closed set for string properties
	MaxLength int       `yaml:"max_length" json:"max_length,omitempty"`
	Min       *int32    `yaml:"min" json:"min,omitempty"`
	Max       *int32    `yaml:"max" json:"max,omitempty"`
}

type catalogFile struct {
	Units      []string                 `yaml:"units"`
	Properties map[string]*PropertySpec `yaml:"properties"`
}
