package parsers

import (
	"fmt"

	"github.com/SocAIty/fastsdk-go/model"
)

// ParseCog2 reduces a Cog v2 stub - an OpenAPI document with no "paths",
// only components.schemas.Input and Output - by synthesizing the
// "/predictions" endpoint spec.md §4.2 describes.
func ParseCog2(spec map[string]any, sourceURL string) (*model.ServiceDefinition, error) {
	schemas, ok := dig(spec, "components", "schemas")
	if !ok {
		return nil, fmt.Errorf("parsers: cog2 spec has no components.schemas")
	}
	schemasMap, _ := schemas.(map[string]any)

	inputSchema, ok := schemasMap["Input"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("parsers: cog2 spec has no components.schemas.Input")
	}
	_, hasOutput := schemasMap["Output"].(map[string]any)
	if !hasOutput {
		return nil, fmt.Errorf("parsers: cog2 spec has no components.schemas.Output")
	}

	params := propertiesToParameters(spec, inputSchema)
	applyCogFieldConventions(params)

	endpoint := model.EndpointDefinition{
		ID:         "predictions",
		Path:       "/predictions",
		Method:     model.MethodPost,
		Parameters: params,
	}

	info, _ := spec["info"].(map[string]any)
	return &model.ServiceDefinition{
		DisplayName:   asString(info["title"]),
		Description:   asString(info["description"]),
		Specification: model.SpecCog2,
		Endpoints:     []model.EndpointDefinition{endpoint},
		RawSchema:     spec,
		Version:       VersionHash(spec),
	}, nil
}
