package parsers

import (
	"fmt"
	"sort"
	"strings"

	"github.com/SocAIty/fastsdk-go/model"
)

// ParseOpenAPI reduces a generic OpenAPI 3.0/3.1 document to a
// ServiceDefinition (spec.md §4.2's "Common OpenAPI parsing"). It is also
// the base every other dialect parser in this package builds on.
func ParseOpenAPI(spec map[string]any, sourceURL string) (*model.ServiceDefinition, error) {
	paths, _ := spec["paths"].(map[string]any)
	if len(paths) == 0 {
		return nil, fmt.Errorf("parsers: openapi spec has no paths")
	}

	var endpoints []model.EndpointDefinition
	// Sorted path iteration keeps endpoint order deterministic across
	// re-parses of the same document, matching spec.md §8's round-trip
	// property (structural equality modulo map ordering).
	pathKeys := make([]string, 0, len(paths))
	for p := range paths {
		pathKeys = append(pathKeys, p)
	}
	sort.Strings(pathKeys)

	for _, path := range pathKeys {
		item, ok := paths[path].(map[string]any)
		if !ok {
			continue
		}
		pathLevelParams := collectRawParameters(item["parameters"])

		methodKeys := make([]string, 0, len(item))
		for m := range item {
			if isHTTPMethod(m) {
				methodKeys = append(methodKeys, m)
			}
		}
		sort.Strings(methodKeys)

		for _, methodKey := range methodKeys {
			op, ok := item[methodKey].(map[string]any)
			if !ok {
				continue
			}
			ep := parseOperation(spec, path, methodKey, op, pathLevelParams)
			endpoints = append(endpoints, ep)
		}
	}

	info, _ := spec["info"].(map[string]any)
	svc := &model.ServiceDefinition{
		DisplayName:   asString(info["title"]),
		Description:   asString(info["description"]),
		Specification: model.SpecOpenAPI,
		Endpoints:     endpoints,
		RawSchema:     spec,
		Version:       VersionHash(spec),
	}
	return svc, nil
}

func isHTTPMethod(s string) bool {
	switch strings.ToUpper(s) {
	case "GET", "POST", "PUT", "DELETE", "PATCH":
		return true
	default:
		return false
	}
}

func collectRawParameters(raw any) []any {
	list, _ := raw.([]any)
	return list
}

// parseOperation aggregates path-level parameters, operation-level
// parameters, and requestBody-derived parameters into one EndpointDefinition
// (spec.md §4.2: "For an operation: aggregate path-level parameters,
// operation parameters, and requestBody parameters ... Deduplicate by
// (name, location) where body is treated as a single bucket.").
func parseOperation(root map[string]any, path, method string, op map[string]any, pathLevelParams []any) model.EndpointDefinition {
	seen := make(map[string]bool)
	var params []model.EndpointParameter

	addParam := func(p model.EndpointParameter) {
		key := p.Name
		if p.Location == model.LocationBody {
			key = "__body__:" + p.Name
		} else {
			key = string(p.Location) + ":" + p.Name
		}
		if seen[key] {
			return
		}
		seen[key] = true
		params = append(params, p)
	}

	for _, raw := range pathLevelParams {
		if p, ok := parseRawParameter(root, raw); ok {
			addParam(p)
		}
	}
	for _, raw := range collectRawParameters(op["parameters"]) {
		if p, ok := parseRawParameter(root, raw); ok {
			addParam(p)
		}
	}
	for _, p := range parseRequestBody(root, op["requestBody"]) {
		addParam(p)
	}

	operationID := asString(op["operationId"])
	return model.EndpointDefinition{
		ID:          EndpointID(operationID, method, path),
		Path:        path,
		DisplayName: operationID,
		Description: asString(op["description"]),
		ShortDesc:   asString(op["summary"]),
		Method:      model.HTTPMethod(strings.ToUpper(method)),
		Parameters:  params,
		Responses:   parseResponses(op["responses"]),
	}
}

func parseResponses(raw any) map[string]map[string]any {
	responses, _ := raw.(map[string]any)
	out := make(map[string]map[string]any, len(responses))
	for code, v := range responses {
		if m, ok := v.(map[string]any); ok {
			out[code] = m
		}
	}
	return out
}

// parseRawParameter converts one OpenAPI "parameter object" into an
// EndpointParameter.
func parseRawParameter(root map[string]any, raw any) (model.EndpointParameter, bool) {
	m, ok := raw.(map[string]any)
	if !ok {
		return model.EndpointParameter{}, false
	}
	m = resolveRef(root, m)

	name := asString(m["name"])
	if name == "" {
		return model.EndpointParameter{}, false
	}
	location := model.ParamLocation(asString(m["in"]))
	if location == "" {
		location = model.LocationQuery
	}
	required, _ := m["required"].(bool)

	schema, _ := m["schema"].(map[string]any)
	var defs []model.ParameterDefinition
	if schema != nil {
		defs = definitionsFromSchema(root, schema)
	}

	return model.EndpointParameter{
		Name:        name,
		Definition:  defs,
		Required:    required,
		Default:     schemaDefault(schema),
		Location:    location,
		RawSchema:   m,
		Description: asString(m["description"]),
	}, true
}

func schemaDefault(schema map[string]any) any {
	if schema == nil {
		return nil
	}
	return schema["default"]
}

// parseRequestBody inspects requestBody.content for "application/json" and
// "multipart/form-data", unwrapping an object schema's properties into
// per-property parameters in the "body" bucket (spec.md §4.2).
func parseRequestBody(root map[string]any, raw any) []model.EndpointParameter {
	body, ok := raw.(map[string]any)
	if !ok {
		return nil
	}
	content, _ := body["content"].(map[string]any)
	requiredFields := map[string]bool{}
	if reqList, ok := body["required"].([]any); ok {
		for _, r := range reqList {
			requiredFields[asString(r)] = true
		}
	}

	for _, mediaType := range []string{"application/json", "multipart/form-data"} {
		media, ok := content[mediaType].(map[string]any)
		if !ok {
			continue
		}
		schema, _ := media["schema"].(map[string]any)
		if schema == nil {
			continue
		}
		schema = resolveRef(root, schema)
		return propertiesToParameters(root, schema)
	}
	return nil
}

// propertiesToParameters unwraps an object schema's properties into
// per-property body parameters, honoring the schema's own "required" list.
func propertiesToParameters(root map[string]any, schema map[string]any) []model.EndpointParameter {
	props, _ := schema["properties"].(map[string]any)
	if len(props) == 0 {
		return nil
	}
	requiredFields := map[string]bool{}
	if reqList, ok := schema["required"].([]any); ok {
		for _, r := range reqList {
			requiredFields[asString(r)] = true
		}
	}

	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	sort.Strings(names)

	params := make([]model.EndpointParameter, 0, len(names))
	for _, name := range names {
		propSchema, _ := props[name].(map[string]any)
		propSchema = resolveRef(root, propSchema)
		params = append(params, model.EndpointParameter{
			Name:        name,
			Definition:  definitionsFromSchema(root, propSchema),
			Required:    requiredFields[name],
			Default:     schemaDefault(propSchema),
			Location:    model.LocationBody,
			RawSchema:   propSchema,
			Description: asString(propSchema["description"]),
		})
	}
	return params
}
