package response

import (
	"encoding/base64"
	"strings"
)

// MediaKind is the concrete media type a decoded result's content_type
// resolves to.
type MediaKind string

const (
	MediaImage MediaKind = "image"
	MediaAudio MediaKind = "audio"
	MediaVideo MediaKind = "video"
	MediaFile  MediaKind = "file"
)

// DecodedMedia is a {file_name, content_type, content} result triple
// converted to its concrete media type (spec.md §4.7).
type DecodedMedia struct {
	Kind        MediaKind
	FileName    string
	ContentType string
	Bytes       []byte
}

func classifyContentType(ct string) MediaKind {
	switch {
	case strings.HasPrefix(ct, "image/"):
		return MediaImage
	case strings.HasPrefix(ct, "audio/"):
		return MediaAudio
	case strings.HasPrefix(ct, "video/"):
		return MediaVideo
	default:
		return MediaFile
	}
}

func decodeMediaTriple(raw map[string]any) (DecodedMedia, bool) {
	contentStr, ok := raw["content"].(string)
	if !ok {
		return DecodedMedia{}, false
	}
	data, err := base64.StdEncoding.DecodeString(contentStr)
	if err != nil {
		return DecodedMedia{}, false
	}
	fileName, _ := raw["file_name"].(string)
	contentType, _ := raw["content_type"].(string)
	return DecodedMedia{Kind: classifyContentType(contentType), FileName: fileName, ContentType: contentType, Bytes: data}, true
}

// DecodeMedia converts a result value shaped {file_name, content_type,
// content} - or a list of such - into concrete DecodedMedia values.
// Anything else passes through unchanged.
func DecodeMedia(result any) any {
	switch v := result.(type) {
	case map[string]any:
		if m, ok := decodeMediaTriple(v); ok {
			return m
		}
		return v
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = DecodeMedia(item)
		}
		return out
	default:
		return v
	}
}

const replicateDeliveryHost = "replicate.delivery"

// LazyMediaURL marks a Replicate output value that is a URL on
// replicate.delivery: it is not fetched during parsing, only referenced,
// so a large upstream transfer never blocks response decoding (spec.md §4.7).
type LazyMediaURL struct {
	URL string
}

// DecodeReplicateMedia wraps any replicate.delivery URL - scalar or
// within a list - into a LazyMediaURL; any other shape is decoded via
// DecodeMedia as usual.
func DecodeReplicateMedia(result any) any {
	switch v := result.(type) {
	case string:
		if strings.Contains(v, replicateDeliveryHost) {
			return LazyMediaURL{URL: v}
		}
		return v
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = DecodeReplicateMedia(item)
		}
		return out
	default:
		return DecodeMedia(result)
	}
}
