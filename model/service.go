package model

import (
	"regexp"
	"strings"
	"time"
)

// Specification is the dialect a service's catalog document was authored in.
type Specification string

const (
	SpecSocaity     Specification = "socaity"
	SpecFastTaskAPI Specification = "fasttaskapi"
	SpecRunpod      Specification = "runpod"
	SpecCog         Specification = "cog"
	SpecCog2        Specification = "cog2"
	SpecReplicate   Specification = "replicate"
	SpecOpenAI      Specification = "openai"
	SpecOpenAPI     Specification = "openapi"
	SpecOther       Specification = "other"
)

// IsAsync reports whether services of this dialect are polled to
// completion rather than answered synchronously (spec.md §4.8 rule 5).
func (s Specification) IsAsync() bool {
	switch s {
	case SpecFastTaskAPI, SpecSocaity, SpecRunpod, SpecReplicate:
		return true
	default:
		return false
	}
}

// ServiceDefinition is the normalized catalog entry every dialect parser
// produces. ID is unique within a Registry; DisplayName's normalized form
// is also indexed and must not collide with another service's ID.
type ServiceDefinition struct {
	ID             string
	DisplayName    string
	Description    string
	ShortDesc      string
	Specification  Specification
	Endpoints      []EndpointDefinition
	ServiceAddress ServiceAddress
	Category       []string
	FamilyID       string
	UsedModels     []string
	CreatedAt      time.Time
	Version        string // sha1(canonicalJSON(spec)), see parsers.VersionHash
	RawSchema      map[string]any
}

// EndpointByID looks up a declared endpoint by id.
func (s ServiceDefinition) EndpointByID(id string) (EndpointDefinition, bool) {
	for _, e := range s.Endpoints {
		if e.ID == id {
			return e, true
		}
	}
	return EndpointDefinition{}, false
}

var (
	nonAlphaNumeric = regexp.MustCompile(`[^a-z0-9]+`)
	collapseDashes  = regexp.MustCompile(`_+`)
	leadingDigit    = regexp.MustCompile(`^[0-9]`)
)

// NormalizeName reduces a display name to the form the Registry's
// name index keys on: lowercase, non-alphanumeric runs collapsed to a
// single underscore, leading digit prefixed with "_" so the result is a
// valid identifier. Idempotent: NormalizeName(NormalizeName(x)) == NormalizeName(x).
func NormalizeName(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	n = nonAlphaNumeric.ReplaceAllString(n, "_")
	n = collapseDashes.ReplaceAllString(n, "_")
	n = strings.Trim(n, "_")
	if leadingDigit.MatchString(n) {
		n = "_" + n
	}
	return n
}
