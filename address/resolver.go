// Package address classifies and normalizes service location strings into
// the model.ServiceAddress tagged variant (spec.md §4.3).
package address

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/SocAIty/fastsdk-go/model"
)

// Hint lets a caller force classification instead of relying on URL shape,
// for addresses that don't carry a recognizable host (e.g. a bare pod id).
type Hint string

const (
	HintNone      Hint = ""
	HintRunpod    Hint = "runpod"
	HintReplicate Hint = "replicate"
	HintSocaity   Hint = "socaity"
)

var (
	runpodHostRe    = regexp.MustCompile(`api\.runpod\.ai`)
	runpodShortRe   = regexp.MustCompile(`^[a-zA-Z0-9]+(/run)?$`)
	replicateHostRe = regexp.MustCompile(`api\.replicate\.com`)
	socaityHostRe   = regexp.MustCompile(`socaity\.ai`)
	versionHashRe   = regexp.MustCompile(`^[0-9a-f]{40,64}$`)
)

// Resolve classifies raw into a tagged ServiceAddress. hint forces
// classification for inputs that don't carry a recognizable host, such as
// a bare Runpod pod id.
func Resolve(raw string, hint Hint) (model.ServiceAddress, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return model.ServiceAddress{}, fmt.Errorf("address: empty input")
	}

	switch {
	case hint == HintRunpod || runpodHostRe.MatchString(raw) || (hint == HintNone && runpodShortRe.MatchString(raw) && !strings.Contains(raw, ".")):
		return resolveRunpod(raw)
	case hint == HintReplicate || replicateHostRe.MatchString(raw) || (hint == HintNone && versionHashRe.MatchString(raw)):
		return resolveReplicate(raw)
	case hint == HintSocaity || socaityHostRe.MatchString(raw):
		return model.NewSocaityAddress(raw), nil
	default:
		return model.NewGenericAddress(raw), nil
	}
}

// resolveRunpod accepts: a bare pod id ("abc123"), "abc123/run", a full
// "https://api.runpod.ai/v2/abc123/run" URL (or any trailing route), and
// localhost variants used in development ("http://localhost:8000/abc123").
func resolveRunpod(raw string) (model.ServiceAddress, error) {
	trimmed := strings.TrimSuffix(strings.TrimSpace(raw), "/")

	if !strings.Contains(trimmed, "://") {
		// Bare "pod_id" or "pod_id/run" shorthand.
		parts := strings.SplitN(trimmed, "/", 2)
		podID := parts[0]
		path := ""
		if len(parts) == 2 {
			path = "/" + parts[1]
		}
		url := fmt.Sprintf("https://api.runpod.ai/v2/%s", podID)
		return model.NewRunpodAddress(url, podID, path), nil
	}

	// Full URL form: find the path segment after the host and treat the
	// first segment as the pod id, everything after as the route.
	withoutScheme := trimmed
	if idx := strings.Index(withoutScheme, "://"); idx != -1 {
		withoutScheme = withoutScheme[idx+3:]
	}
	slash := strings.Index(withoutScheme, "/")
	if slash == -1 {
		return model.ServiceAddress{}, fmt.Errorf("address: runpod url %q has no pod id segment", raw)
	}
	host := withoutScheme[:slash]
	rest := strings.TrimPrefix(withoutScheme[slash:], "/")

	// Strip a leading "v2/" API version segment if present (api.runpod.ai form).
	rest = strings.TrimPrefix(rest, "v2/")

	segs := strings.SplitN(rest, "/", 2)
	podID := segs[0]
	path := ""
	if len(segs) == 2 {
		path = "/" + segs[1]
	}

	scheme := "https"
	if strings.HasPrefix(trimmed, "http://") {
		scheme = "http"
	}
	url := fmt.Sprintf("%s://%s", scheme, host)
	return model.NewRunpodAddress(url, podID, path), nil
}

// resolveReplicate accepts: a bare version hash, "user/model", "user/model:version",
// a model URL ("https://api.replicate.com/v1/models/user/model"), or a
// prediction URL ("https://api.replicate.com/v1/predictions/...").
func resolveReplicate(raw string) (model.ServiceAddress, error) {
	trimmed := strings.TrimSuffix(strings.TrimSpace(raw), "/")

	if versionHashRe.MatchString(trimmed) {
		url := "https://api.replicate.com/v1/predictions"
		return model.NewReplicateAddress(url, "", trimmed), nil
	}

	if !strings.Contains(trimmed, "://") {
		// "user/model" or "user/model:version" shorthand.
		modelName := trimmed
		version := ""
		if idx := strings.Index(trimmed, ":"); idx != -1 {
			modelName = trimmed[:idx]
			version = trimmed[idx+1:]
		}
		url := fmt.Sprintf("https://api.replicate.com/v1/models/%s/predictions", modelName)
		return model.NewReplicateAddress(url, modelName, version), nil
	}

	// Full URL form.
	url := trimmed
	if strings.Contains(url, "/predictions") && !strings.Contains(url, "/models/") {
		return model.NewReplicateAddress(url, "", ""), nil
	}
	if idx := strings.Index(url, "/models/"); idx != -1 {
		rest := url[idx+len("/models/"):]
		rest = strings.TrimSuffix(rest, "/predictions")
		version := ""
		if vidx := strings.Index(rest, ":"); vidx != -1 {
			version = rest[vidx+1:]
			rest = rest[:vidx]
		}
		return model.NewReplicateAddress(url, rest, version), nil
	}
	return model.NewReplicateAddress(url, "", ""), nil
}
