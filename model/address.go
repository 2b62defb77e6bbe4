// Package model holds the normalized, in-memory representation of services,
// endpoints, parameters, jobs, and server responses that every spec dialect
// parser reduces to and every provider client reads from.
package model

import "strings"

// AddressKind tags the variant a ServiceAddress carries.
type AddressKind string

const (
	AddressGeneric   AddressKind = "generic"
	AddressSocaity   AddressKind = "socaity"
	AddressRunpod    AddressKind = "runpod"
	AddressReplicate AddressKind = "replicate"
)

// ServiceAddress is a tagged variant over the four provider address shapes.
// Only the fields relevant to Kind are meaningful; the zero value of the
// others is left unset. URL is always non-empty, scheme-prefixed, and
// trailing-slash-stripped - callers construct values through the
// NewXxxAddress helpers below or through address.Resolve, never by
// hand-filling the struct, so that invariant always holds.
type ServiceAddress struct {
	Kind AddressKind
	URL  string

	// Runpod
	PodID string
	Path  string

	// Replicate
	ModelName string
	Version   string
}

// NewGenericAddress builds an untagged, provider-agnostic address.
func NewGenericAddress(url string) ServiceAddress {
	return ServiceAddress{Kind: AddressGeneric, URL: normalizeURL(url)}
}

// NewSocaityAddress builds an address for the hosted Socaity protocol.
func NewSocaityAddress(url string) ServiceAddress {
	return ServiceAddress{Kind: AddressSocaity, URL: normalizeURL(url)}
}

// NewRunpodAddress builds a Runpod serverless address from its triple.
func NewRunpodAddress(url, podID, path string) ServiceAddress {
	return ServiceAddress{Kind: AddressRunpod, URL: normalizeURL(url), PodID: podID, Path: path}
}

// NewReplicateAddress builds a Replicate address from model name and/or version.
func NewReplicateAddress(url, modelName, version string) ServiceAddress {
	return ServiceAddress{Kind: AddressReplicate, URL: normalizeURL(url), ModelName: modelName, Version: version}
}

// IsAsync is a convenience mirror of Specification.IsAsync keyed off the
// address shape instead of the declared dialect. The orchestrator's task
// plan uses ServiceDefinition.Specification.IsAsync as the authoritative
// rule (spec.md §4.8 rule 5); this is for callers that only have an address.
func (a ServiceAddress) IsAsync() bool {
	switch a.Kind {
	case AddressSocaity, AddressRunpod, AddressReplicate:
		return true
	default:
		return false
	}
}

func normalizeURL(url string) string {
	url = strings.TrimSpace(url)
	if !strings.Contains(url, "://") {
		url = "http://" + url
	}
	return strings.TrimSuffix(url, "/")
}
