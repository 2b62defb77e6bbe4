// Package parsers reduces the spec dialects spec.md §4.2 enumerates
// (generic OpenAPI, FastTaskAPI, Cog v1/v2, and the hosted-provider
// variants detected by source URL) to the normalized model.ServiceDefinition.
package parsers

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/SocAIty/fastsdk-go/model"
)

// resolveRef resolves a "#/components/schemas/Name" pointer against root,
// returning the pointed-to schema object. A target that is itself a $ref
// is followed in turn, so a chain of refs resolves to its final schema.
func resolveRef(root map[string]any, schema map[string]any) map[string]any {
	ref, ok := schema["$ref"].(string)
	if !ok {
		return schema
	}
	const prefix = "#/components/schemas/"
	if !strings.HasPrefix(ref, prefix) {
		return schema
	}
	name := strings.TrimPrefix(ref, prefix)
	schemas, _ := dig(root, "components", "schemas")
	schemasMap, _ := schemas.(map[string]any)
	if target, ok := schemasMap[name].(map[string]any); ok {
		// A resolved schema may itself be another $ref (rare but legal).
		if _, isRef := target["$ref"]; isRef {
			return resolveRef(root, target)
		}
		return target
	}
	return schema
}

// dig walks a chain of map[string]any keys, returning (nil, false) as soon
// as one is missing or not a map.
func dig(m map[string]any, keys ...string) (any, bool) {
	var cur any = m
	for _, k := range keys {
		asMap, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = asMap[k]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// paramType maps a JSON-Schema "type" value to model.ParamType, defaulting
// to TypeString for an absent/unrecognized type (matching the permissive
// behavior of the dialects this package consumes).
func paramType(schemaType string) model.ParamType {
	switch schemaType {
	case "number":
		return model.TypeNumber
	case "integer":
		return model.TypeInteger
	case "boolean":
		return model.TypeBoolean
	case "array":
		return model.TypeArray
	case "object":
		return model.TypeObject
	case "null":
		return model.TypeNull
	default:
		return model.TypeString
	}
}

// paramFormat maps a JSON-Schema "format" (or a file-ish "type") to
// model.ParamFormat.
func paramFormat(schemaType, format string) model.ParamFormat {
	switch format {
	case "binary":
		return model.FormatBinary
	case "uri":
		return model.FormatURI
	case "image":
		return model.FormatImage
	case "video":
		return model.FormatVideo
	case "audio":
		return model.FormatAudio
	case "file":
		return model.FormatFile
	}
	if schemaType == "file" {
		return model.FormatFile
	}
	if format != "" {
		return model.FormatOtherString
	}
	return model.FormatNone
}

// definitionsFromSchema computes one or many ParameterDefinitions for a
// resolved JSON-Schema node (spec.md §4.2's "Common OpenAPI parsing"
// rules): direct {type, format}; arrays become {type: array, format:
// <item-type-or-format>}; anyOf/oneOf/allOf produce a deduplicated list
// of alternatives.
func definitionsFromSchema(root map[string]any, schema map[string]any) []model.ParameterDefinition {
	schema = resolveRef(root, schema)

	if alts, ok := compositionAlternatives(root, schema); ok {
		var defs []model.ParameterDefinition
		for _, alt := range alts {
			defs = append(defs, definitionsFromSchema(root, alt)...)
		}
		return model.DedupeDefinitions(defs)
	}

	schemaType, _ := schema["type"].(string)
	format, _ := schema["format"].(string)

	def := model.ParameterDefinition{
		Type:   paramType(schemaType),
		Format: paramFormat(schemaType, format),
	}

	if schemaType == "array" {
		if items, ok := schema["items"].(map[string]any); ok {
			items = resolveRef(root, items)
			itemType, _ := items["type"].(string)
			itemFormat, _ := items["format"].(string)
			if itemFormat == "" {
				itemFormat = itemType
			}
			def.Format = paramFormat(itemType, itemFormat)
		}
	}

	if enum, ok := schema["enum"].([]any); ok {
		def.Enum = enum
	}
	if v, ok := intField(schema, "minLength"); ok {
		def.MinLength = &v
	}
	if v, ok := intField(schema, "maxLength"); ok {
		def.MaxLength = &v
	}
	if v, ok := floatField(schema, "minimum"); ok {
		def.Minimum = &v
	}
	if v, ok := floatField(schema, "maximum"); ok {
		def.Maximum = &v
	}
	if v, ok := schema["additionalProperties"].(bool); ok {
		def.AdditionalProperties = &v
	}

	return model.DedupeDefinitions([]model.ParameterDefinition{def})
}

// compositionAlternatives returns the branches of an anyOf/oneOf/allOf
// composition, ok=false if schema carries none.
func compositionAlternatives(root map[string]any, schema map[string]any) ([]map[string]any, bool) {
	for _, key := range []string{"anyOf", "oneOf", "allOf"} {
		raw, ok := schema[key].([]any)
		if !ok || len(raw) == 0 {
			continue
		}
		var alts []map[string]any
		for _, r := range raw {
			if m, ok := r.(map[string]any); ok {
				alts = append(alts, resolveRef(root, m))
			}
		}
		if len(alts) > 0 {
			return alts, true
		}
	}
	return nil, false
}

func intField(m map[string]any, key string) (int, bool) {
	v, ok := numField(m, key)
	if !ok {
		return 0, false
	}
	return int(v), true
}

func floatField(m map[string]any, key string) (float64, bool) {
	return numField(m, key)
}

func numField(m map[string]any, key string) (float64, bool) {
	raw, ok := m[key]
	if !ok {
		return 0, false
	}
	switch v := raw.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// asString is a defensive accessor: spec documents are untyped
// map[string]any trees and fields are sometimes absent or the wrong type.
func asString(v any) string {
	s, _ := v.(string)
	return s
}

// EndpointID derives an endpoint's id as "method_path" when operationId is
// absent, per spec.md §3.
func EndpointID(operationID, method, path string) string {
	if operationID != "" {
		return operationID
	}
	sanitized := strings.Map(func(r rune) rune {
		if r == '/' || r == '{' || r == '}' {
			return '_'
		}
		return r
	}, path)
	sanitized = strings.Trim(sanitized, "_")
	return fmt.Sprintf("%s_%s", strings.ToLower(method), sanitized)
}
