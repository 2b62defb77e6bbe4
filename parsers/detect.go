package parsers

import (
	"strings"

	"github.com/SocAIty/fastsdk-go/model"
)

// Detect classifies a spec document by the priority order in spec.md §4.2:
// fast-task-api marker, then FastTaskAPI schema names, then Cog/Cog2 by
// title and shape, then hosted-provider detection by source URL, falling
// back to generic OpenAPI.
func Detect(spec map[string]any, sourceURL string) model.Specification {
	info, _ := spec["info"].(map[string]any)

	if _, ok := info["fast-task-api"]; ok {
		return model.SpecFastTaskAPI
	}

	if schemas, ok := dig(spec, "components", "schemas"); ok {
		if schemasMap, ok := schemas.(map[string]any); ok {
			for name := range schemasMap {
				if IsFastTaskAPISchema(name) {
					return model.SpecFastTaskAPI
				}
			}
		}
	}

	title := strings.ToLower(asString(info["title"]))
	if title == "cog" {
		paths, _ := spec["paths"].(map[string]any)
		if len(paths) == 0 {
			if schemas, ok := dig(spec, "components", "schemas"); ok {
				if schemasMap, ok := schemas.(map[string]any); ok {
					_, hasInput := schemasMap["Input"]
					_, hasOutput := schemasMap["Output"]
					if hasInput && hasOutput {
						return model.SpecCog2
					}
				}
			}
		}
		return model.SpecCog
	}

	lowerURL := strings.ToLower(sourceURL)
	switch {
	case strings.Contains(lowerURL, "replicate"):
		return model.SpecReplicate
	case strings.Contains(lowerURL, "runpod"):
		return model.SpecRunpod
	case strings.Contains(lowerURL, "api.socaity.ai"):
		return model.SpecSocaity
	case strings.Contains(title, "openai"):
		return model.SpecOpenAI
	}

	return model.SpecOpenAPI
}
