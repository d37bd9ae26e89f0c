// Package styles holds the closed set of style properties and units an
// outline item may carry.
package styles

import (
	"embed"
	"fmt"
	"slices"
	"sort"
	"sync"

	"seriatim/internal/domain"
	"seriatim/internal/domain/models/outline"

	"gopkg.in/yaml.v3"
)

//go:embed config/*.yaml
var configFiles embed.FS

// Catalog validates style edits against the embedded property list
type Catalog struct {
	properties map[string]*PropertySpec
	units      map[string]bool
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
	defaultErr     error
)

// Default returns the catalog loaded from the embedded YAML, parsed once.
func Default() (*Catalog, error) {
	defaultOnce.Do(func() {
		data, err := configFiles.ReadFile("config/catalog.yaml")
		if err != nil {
			defaultErr = fmt.Errorf("failed to read catalog.yaml: %w", err)
			return
		}
		defaultCatalog, defaultErr = Parse(data)
	})
	return defaultCatalog, defaultErr
}

// Parse builds a catalog from YAML
func Parse(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to unmarshal catalog: %w", err)
	}

	c := &Catalog{
		properties: make(map[string]*PropertySpec, len(file.Properties)),
		units:      make(map[string]bool, len(file.Units)),
	}
	for _, u := range file.Units {
		c.units[u] = true
	}
	for name, spec := range file.Properties {
		if spec == nil {
			return nil, fmt.Errorf("property %s has no definition", name)
		}
		if spec.Kind != ValueKindString && spec.Kind != ValueKindNumber {
			return nil, fmt.Errorf("property %s has unknown kind %q", name, spec.Kind)
		}
		for _, u := range spec.Units {
			if !c.units[u] {
				return nil, fmt.Errorf("property %s allows undeclared unit %q", name, u)
			}
		}
		spec.Name = name
		c.properties[name] = spec
	}

	return c, nil
}

// Property returns the spec for a property name
func (c *Catalog) Property(name outline.StyleProperty) (*PropertySpec, bool) {
	spec, ok := c.properties[string(name)]
	return spec, ok
}

// Properties lists every property, sorted by name
func (c *Catalog) Properties() []PropertySpec {
	out := make([]PropertySpec, 0, len(c.properties))
	for _, spec := range c.properties {
		out = append(out, *spec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// IsUnit reports whether u is a known unit
func (c *Catalog) IsUnit(u outline.StyleUnit) bool {
	return c.units[string(u)]
}

// Validate checks one edit. A nil value clears that column.
func (c *Catalog) Validate(edit outline.StyleEdit) error {
	spec, ok := c.Property(edit.Property)
	if !ok {
		return fmt.Errorf("%w: unknown style property %q", domain.ErrValidation, edit.Property)
	}

	if edit.Unit != nil {
		if !c.IsUnit(*edit.Unit) {
			return fmt.Errorf("%w: unknown style unit %q", domain.ErrValidation, *edit.Unit)
		}
		if !slices.Contains(spec.Units, string(*edit.Unit)) {
			return fmt.Errorf("%w: %s does not take unit %q", domain.ErrValidation, spec.Name, *edit.Unit)
		}
	}

	switch spec.Kind {
	case ValueKindString:
		if edit.ValueNumber != nil {
			return fmt.Errorf("%w: %s takes a string value", domain.ErrValidation, spec.Name)
		}
		if edit.ValueString == nil {
			return nil
		}
		v := *edit.ValueString
		if spec.MaxLength > 0 && len(v) > spec.MaxLength {
			return fmt.Errorf("%w: %s value longer than %d", domain.ErrValidation, spec.Name, spec.MaxLength)
		}
		if len(spec.Values) > 0 && !slices.Contains(spec.Values, v) {
			return fmt.Errorf("%w: %s must be one of %v", domain.ErrValidation, spec.Name, spec.Values)
		}
	case ValueKindNumber:
		if edit.ValueString != nil {
			return fmt.Errorf("%w: %s takes a number value", domain.ErrValidation, spec.Name)
		}
		if edit.ValueNumber == nil {
			return nil
		}
		v := *edit.ValueNumber
		if spec.Min != nil && v < *spec.Min {
			return fmt.Errorf("%w: %s below %d", domain.ErrValidation, spec.Name, *spec.Min)
		}
		if spec.Max != nil && v > *spec.Max {
			return fmt.Errorf("%w: %s above %d", domain.ErrValidation, spec.Name, *spec.Max)
		}
	}

	return nil
}
