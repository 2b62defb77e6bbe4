package parsers

import (
	"strings"

	"github.com/SocAIty/fastsdk-go/model"
)

// ParseFastTaskAPI reduces a FastTaskAPI-flavored OpenAPI document, which
// differs from generic OpenAPI only in its file-model schema convention
// (spec.md §4.2): parameters whose schema title contains
// imagefilemodel/videofilemodel/audiofilemodel, or whose shape is
// {file_name, content_type, content}, are mapped to
// {type: string, format: <image|video|audio|file>}.
func ParseFastTaskAPI(spec map[string]any, sourceURL string) (*model.ServiceDefinition, error) {
	svc, err := ParseOpenAPI(spec, sourceURL)
	if err != nil {
		return nil, err
	}
	svc.Specification = model.SpecFastTaskAPI

	for i := range svc.Endpoints {
		ep := &svc.Endpoints[i]
		for j := range ep.Parameters {
			p := &ep.Parameters[j]
			if format, ok := fileModelFormat(p.RawSchema); ok {
				p.Definition = []model.ParameterDefinition{{Type: model.TypeString, Format: format}}
			}
		}
	}
	return svc, nil
}

var fileModelTitleFormats = map[string]model.ParamFormat{
	"imagefilemodel": model.FormatImage,
	"videofilemodel": model.FormatVideo,
	"audiofilemodel": model.FormatAudio,
}

// fileModelFormat recognizes a FastTaskAPI file-model schema either by a
// title containing one of the known file-model names, or by its canonical
// {file_name, content_type, content} shape (title-less inline schemas).
func fileModelFormat(schema map[string]any) (model.ParamFormat, bool) {
	if schema == nil {
		return model.FormatNone, false
	}
	title := strings.ToLower(asString(schema["title"]))
	for suffix, format := range fileModelTitleFormats {
		if strings.Contains(title, suffix) {
			return format, true
		}
	}

	props, ok := schema["properties"].(map[string]any)
	if !ok {
		return model.FormatNone, false
	}
	_, hasFileName := props["file_name"]
	_, hasContentType := props["content_type"]
	_, hasContent := props["content"]
	if hasFileName && hasContentType && hasContent {
		return model.FormatFile, true
	}
	return model.FormatNone, false
}

// IsFastTaskAPISchema reports whether a schema node (a components.schema
// entry) is a JobResult or *FileModel marker (spec.md §4.2 detection rule 2).
func IsFastTaskAPISchema(schemaName string) bool {
	lower := strings.ToLower(schemaName)
	return lower == "jobresult" || strings.HasSuffix(lower, "filemodel")
}
