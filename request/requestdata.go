package request

// RequestData is the partitioned form of an endpoint call's input map,
// split by where on the wire each parameter lands (spec.md §4.6):
// Path substitutes into the endpoint's route template, Query becomes the
// URL query string, Headers and Cookies ride the HTTP request, File holds
// the raw values the file handler still needs to load/upload/attach, and
// everything else lands in Body.
type RequestData struct {
	Path    map[string]string
	Query   map[string]string
	Headers map[string]string
	Cookies map[string]string
	Body    map[string]any
	File    map[string]any
}

// NewRequestData returns a RequestData with every bucket initialized, so
// callers can assign into it without nil-map panics.
func NewRequestData() *RequestData {
	return &RequestData{
		Path:    make(map[string]string),
		Query:   make(map[string]string),
		Headers: make(map[string]string),
		Cookies: make(map[string]string),
		Body:    make(map[string]any),
		File:    make(map[string]any),
	}
}
