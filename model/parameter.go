package model

// ParamType is the JSON-Schema-derived primitive type of a parameter.
type ParamType string

const (
	TypeString  ParamType = "string"
	TypeNumber  ParamType = "number"
	TypeInteger ParamType = "integer"
	TypeBoolean ParamType = "boolean"
	TypeArray   ParamType = "array"
	TypeObject  ParamType = "object"
	TypeNull    ParamType = "null"
)

// ParamFormat refines a ParamType, most importantly distinguishing the
// media formats that drive the File Handler and request-layer file routing.
type ParamFormat string

const (
	FormatFile         ParamFormat = "file"
	FormatImage        ParamFormat = "image"
	FormatVideo        ParamFormat = "video"
	FormatAudio        ParamFormat = "audio"
	FormatURI          ParamFormat = "uri"
	FormatBinary       ParamFormat = "binary"
	FormatOtherString  ParamFormat = "other_string"
	FormatNone         ParamFormat = ""
)

// IsMedia reports whether this format designates file-bearing content -
// the trigger for the orchestrator's LoadFiles stage and for the base
// client tagging a parameter as a file parameter regardless of its
// declared location (spec.md §4.6).
func (f ParamFormat) IsMedia() bool {
	switch f {
	case FormatFile, FormatImage, FormatVideo, FormatAudio:
		return true
	default:
		return false
	}
}

// ParameterDefinition is one candidate shape for a parameter's value. An
// EndpointParameter may carry several of these (expressing anyOf/oneOf/allOf)
// deduplicated by (Type, Format).
type ParameterDefinition struct {
	Type                 ParamType
	Format               ParamFormat
	Enum                 []any
	MinLength            *int
	MaxLength            *int
	Minimum              *float64
	Maximum              *float64
	AdditionalProperties *bool
}

// Key is the (Type, Format) pair definitions are deduplicated by.
func (d ParameterDefinition) Key() [2]string {
	return [2]string{string(d.Type), string(d.Format)}
}

// DedupeDefinitions collapses a list of alternatives to unique (Type, Format) pairs,
// preserving first-seen order.
func DedupeDefinitions(defs []ParameterDefinition) []ParameterDefinition {
	seen := make(map[[2]string]bool, len(defs))
	out := make([]ParameterDefinition, 0, len(defs))
	for _, d := range defs {
		k := d.Key()
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, d)
	}
	return out
}

// ParamLocation is where on the wire a parameter's value is placed.
type ParamLocation string

const (
	LocationQuery  ParamLocation = "query"
	LocationPath   ParamLocation = "path"
	LocationHeader ParamLocation = "header"
	LocationCookie ParamLocation = "cookie"
	LocationBody   ParamLocation = "body"
)

// EndpointParameter is a single named input an endpoint accepts. Definition
// holds one or more alternative ParameterDefinitions (anyOf/oneOf/allOf).
//
// Invariant: Required == false && Default == nil implies the parameter is
// omittable; Required == true implies the caller must supply a value or the
// job fails with MissingParameter.
type EndpointParameter struct {
	Name        string
	Definition  []ParameterDefinition
	Required    bool
	Default     any
	Location    ParamLocation
	RawSchema   map[string]any
	Description string
}

// Omittable reports whether formatRequest may proceed without this
// parameter supplied by the caller.
func (p EndpointParameter) Omittable() bool {
	return !p.Required || p.Default != nil
}

// HasMediaFormat reports whether any alternative definition is a media
// format - the condition under which the base client treats this parameter
// as a file parameter irrespective of its declared Location.
func (p EndpointParameter) HasMediaFormat() bool {
	for _, d := range p.Definition {
		if d.Format.IsMedia() {
			return true
		}
	}
	return false
}
