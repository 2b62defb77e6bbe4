package parsers

import (
	"fmt"

	"github.com/SocAIty/fastsdk-go/address"
	"github.com/SocAIty/fastsdk-go/model"
	"github.com/SocAIty/fastsdk-go/pkg/apperror"
)

// hintFor maps a detected spec dialect to the address hint that resolves
// sourceURL to the matching provider ServiceAddress kind, so a service
// parsed from its own URL dispatches to the right request.ProviderClient
// instead of always falling back to the generic one.
func hintFor(dialect model.Specification) address.Hint {
	switch dialect {
	case model.SpecRunpod:
		return address.HintRunpod
	case model.SpecReplicate:
		return address.HintReplicate
	case model.SpecSocaity:
		return address.HintSocaity
	default:
		return address.HintNone
	}
}

// Parse detects a spec document's dialect and reduces it to a
// ServiceDefinition, failing apperror.CodeUnsupportedSpec if no parser can
// extract endpoints from it (spec.md §4.2, §7).
func Parse(spec map[string]any, sourceURL string) (*model.ServiceDefinition, error) {
	dialect := Detect(spec, sourceURL)

	var (
		svc *model.ServiceDefinition
		err error
	)

	switch dialect {
	case model.SpecFastTaskAPI:
		svc, err = ParseFastTaskAPI(spec, sourceURL)
	case model.SpecCog:
		svc, err = ParseCog(spec, sourceURL)
	case model.SpecCog2:
		svc, err = ParseCog2(spec, sourceURL)
	case model.SpecReplicate, model.SpecRunpod, model.SpecSocaity, model.SpecOpenAI, model.SpecOpenAPI:
		svc, err = ParseOpenAPI(spec, sourceURL)
		if err == nil {
			svc.Specification = dialect
		}
	default:
		svc, err = ParseOpenAPI(spec, sourceURL)
	}

	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeUnsupportedSpec,
			fmt.Sprintf("could not extract endpoints from spec (detected dialect %q)", dialect))
	}
	if len(svc.Endpoints) == 0 {
		return nil, apperror.New(apperror.CodeUnsupportedSpec, "spec parsed to zero endpoints")
	}

	addr, err := address.Resolve(sourceURL, hintFor(dialect))
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeUnsupportedSpec,
			fmt.Sprintf("could not resolve service address from %q", sourceURL))
	}
	svc.ServiceAddress = addr
	return svc, nil
}
