// Package filehandler turns file-typed endpoint parameters into the wire
// fragment a provider actually accepts: a URL reference left untouched, a
// small file attached inline, or a large batch pushed through an Uploader
// first (spec.md §4.5).
package filehandler

import (
	"encoding/base64"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
)

// MediaFile is the external-capability contract this package drives but
// never implements: a concrete codec (image/audio/video decode, format
// conversion) lives outside this module (spec.md §1 scope boundary).
// MediaFile itself is the normalized shape every file input collapses to:
// either a URL reference, or named bytes.
type MediaFile struct {
	Name        string
	ContentType string
	Bytes       []byte
	URL         string
}

// IsURL reports whether this entry is a URL reference rather than
// in-memory content - URL references are never re-uploaded.
func (m MediaFile) IsURL() bool {
	return m.URL != ""
}

// Size is the byte length that counts toward the profile's upload
// thresholds. A URL reference has zero size: its bytes never transit
// this process.
func (m MediaFile) Size() int {
	if m.IsURL() {
		return 0
	}
	return len(m.Bytes)
}

// Base64 inlines the content as a base64 string, the `attachFormat:
// base64` wire shape.
func (m MediaFile) Base64() string {
	return base64.StdEncoding.EncodeToString(m.Bytes)
}

// MultipartTuple is the `attachFormat: multipart` wire shape: a named
// form field carrying bytes and a content type.
type MultipartTuple struct {
	FieldName   string
	FileName    string
	Bytes       []byte
	ContentType string
}

// Multipart converts m into a multipart form field tuple.
func (m MediaFile) Multipart(fieldName string) MultipartTuple {
	return MultipartTuple{
		FieldName:   fieldName,
		FileName:    m.Name,
		Bytes:       m.Bytes,
		ContentType: m.ContentType,
	}
}

// isURL reports whether raw parses as an absolute URL with a network
// scheme, distinguishing a remote reference from a local file path.
func isURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}

// Load materializes a single caller-supplied value into a MediaFile. A
// string is treated as a URL if it parses as one, otherwise as a local
// file path to read. A []byte is wrapped as anonymous inline content. A
// MediaFile value passes through unchanged.
func Load(value any) (MediaFile, error) {
	switch v := value.(type) {
	case MediaFile:
		return v, nil
	case string:
		if isURL(v) {
			return MediaFile{URL: v}, nil
		}
		data, err := os.ReadFile(v)
		if err != nil {
			return MediaFile{}, fmt.Errorf("could not read file %q: %w", v, err)
		}
		return MediaFile{Name: filepath.Base(v), Bytes: data}, nil
	case []byte:
		return MediaFile{Bytes: v}, nil
	default:
		return MediaFile{}, fmt.Errorf("unsupported file input type %T", value)
	}
}
