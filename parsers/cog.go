package parsers

import (
	"fmt"

	"github.com/SocAIty/fastsdk-go/model"
)

// ParseCog reduces a Cog v1 document - an OpenAPI document with a single
// "/predictions" endpoint whose request body wraps an "input" object - to
// a ServiceDefinition (spec.md §4.2).
func ParseCog(spec map[string]any, sourceURL string) (*model.ServiceDefinition, error) {
	paths, _ := spec["paths"].(map[string]any)
	predictions, ok := paths["/predictions"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("parsers: cog spec has no /predictions path")
	}
	op, ok := predictions["post"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("parsers: cog /predictions has no POST operation")
	}

	inputSchema, err := cogInputSchema(spec, op)
	if err != nil {
		return nil, err
	}

	params := propertiesToParameters(spec, inputSchema)
	applyCogFieldConventions(params)

	info, _ := spec["info"].(map[string]any)
	endpoint := model.EndpointDefinition{
		ID:          "predictions",
		Path:        "/predictions",
		DisplayName: asString(op["summary"]),
		Description: asString(op["description"]),
		Method:      model.MethodPost,
		Parameters:  params,
		Responses:   parseResponses(op["responses"]),
	}

	return &model.ServiceDefinition{
		DisplayName:   asString(info["title"]),
		Description:   asString(info["description"]),
		Specification: model.SpecCog,
		Endpoints:     []model.EndpointDefinition{endpoint},
		RawSchema:     spec,
		Version:       VersionHash(spec),
	}, nil
}

// cogInputSchema unwraps requestBody.content.application/json.schema
// .properties.input (a $ref) into the resolved Input schema object
// (spec.md §4.2: "unwrap requestBody.schema.properties.input (a $ref) into
// per-field parameters").
func cogInputSchema(root map[string]any, op map[string]any) (map[string]any, error) {
	body, ok := op["requestBody"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("parsers: cog /predictions has no requestBody")
	}
	content, _ := body["content"].(map[string]any)
	media, ok := content["application/json"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("parsers: cog requestBody has no application/json content")
	}
	bodySchema, _ := media["schema"].(map[string]any)
	bodySchema = resolveRef(root, bodySchema)

	props, _ := bodySchema["properties"].(map[string]any)
	inputRef, ok := props["input"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("parsers: cog requestBody schema has no input property")
	}
	return resolveRef(root, inputRef), nil
}

// applyCogFieldConventions applies the two Cog-specific field conventions
// recovered in SPEC_FULL.md §6: a string typed "uri" or "file" becomes
// {type: string, format: file}; any integer-typed parameter literally
// named "seed" with no declared default is patched to default 42
// (compensating for a provider bug where Cog's own schema omits it).
func applyCogFieldConventions(params []model.EndpointParameter) {
	for i := range params {
		p := &params[i]
		for j := range p.Definition {
			d := &p.Definition[j]
			if d.Format == model.FormatURI || d.Type == model.ParamType("file") {
				d.Type = model.TypeString
				d.Format = model.FormatFile
			}
		}
		if p.Name == "seed" && p.Default == nil {
			for _, d := range p.Definition {
				if d.Type == model.TypeInteger {
					p.Default = 42
					break
				}
			}
		}
	}
}
