package arrayfile

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// Schema returns the JSON Schema of the named document, "config" or
// "manifest", so editors can validate hand-written YAML.
func Schema(name string) ([]byte, error) {
	r := &jsonschema.Reflector{FieldNameTag: "yaml"}
	var s *jsonschema.Schema
	switch name {
	case "config":
		s = r.Reflect(&Config{})
	case "manifest":
		s = r.Reflect(&Manifest{})
	default:
		return nil, fmt.Errorf("unknown schema %q (want config or manifest)", name)
	}
	return json.MarshalIndent(s, "", "  ")
}

// JSONSchemaExtend describes retry_delay as the duration string YAML accepts
// rather than the integer it is stored as.
func (Config) JSONSchemaExtend(s *jsonschema.Schema) {
	if p, ok := s.Properties.Get("retry_delay"); ok {
		p.Type = "string"
		p.Pattern = `^([0-9]+(\.[0-9]+)?(ns|us|µs|ms|s|m|h))+$`
	}
}
