package model

// HTTPMethod is the verb an endpoint is invoked with. Default is POST,
// matching spec.md §4.4 and the job-queue conventions this runtime targets.
type HTTPMethod string

const (
	MethodGet    HTTPMethod = "GET"
	MethodPost   HTTPMethod = "POST"
	MethodPut    HTTPMethod = "PUT"
	MethodDelete HTTPMethod = "DELETE"
	MethodPatch  HTTPMethod = "PATCH"
)

// EndpointDefinition describes one callable operation on a service.
//
// Path is preserved verbatim for request assembly. ID is derived as
// "method_path" when no operationId is present in the source spec (see
// parsers.EndpointID).
type EndpointDefinition struct {
	ID             string
	Path           string
	DisplayName    string
	Description    string
	ShortDesc      string
	Method         HTTPMethod
	Parameters     []EndpointParameter
	Responses      map[string]map[string]any
	TimeoutSeconds *int
}

// HasMediaParameter reports whether any parameter carries a media format -
// the condition that puts LoadFiles into the endpoint's task plan
// (spec.md §4.8 rule 2).
func (e EndpointDefinition) HasMediaParameter() bool {
	for _, p := range e.Parameters {
		if p.HasMediaFormat() {
			return true
		}
	}
	return false
}

// ParameterByName looks up a declared parameter by name, ok=false if absent.
func (e EndpointDefinition) ParameterByName(name string) (EndpointParameter, bool) {
	for _, p := range e.Parameters {
		if p.Name == name {
			return p, true
		}
	}
	return EndpointParameter{}, false
}

// OrderedForCodegen returns parameters ordered required-first,
// optional-with-default next, optional-without-default last - the order
// the (out-of-scope) SDK generator's method signatures must follow
// (spec.md §6).
func (e EndpointDefinition) OrderedForCodegen() []EndpointParameter {
	var required, withDefault, rest []EndpointParameter
	for _, p := range e.Parameters {
		switch {
		case p.Required:
			required = append(required, p)
		case p.Default != nil:
			withDefault = append(withDefault, p)
		default:
			rest = append(rest, p)
		}
	}
	out := make([]EndpointParameter, 0, len(e.Parameters))
	out = append(out, required...)
	out = append(out, withDefault...)
	out = append(out, rest...)
	return out
}
