package tools

import (
	"context"
	"fmt"

	"github.com/eino-contrib/jsonschema"
)

// Definition is a tool description in the shape agent dashboards expect:
// a name, a description, and a JSON Schema for the arguments.
type Definition struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Parameters  *jsonschema.Schema `json:"parameters,omitempty"`
}

// Definitions renders every registered tool for agent configuration.
func (d *Dispatcher) Definitions(_ context.Context) ([]Definition, error) {
	infos := d.Tools()
	defs := make([]Definition, 0, len(infos))
	for _, info := range infos {
		def := Definition{Name: info.Name, Description: info.Desc}
		if info.ParamsOneOf != nil {
			s, err := info.ParamsOneOf.ToJSONSchema()
			if err != nil {
				return nil, fmt.Errorf("tool %s: %w", info.Name, err)
			}
			def.Parameters = s
		}
		defs = append(defs, def)
	}
	return defs, nil
}
