package filehandler

import "context"

// AttachFormat is how a file still carrying bytes after the upload
// decision gets placed on the wire.
type AttachFormat string

const (
	AttachMultipart AttachFormat = "multipart"
	AttachBase64    AttachFormat = "base64"
)

// Uploader is the external capability this package drives but never
// implements (spec.md §1): given a batch of files, push them somewhere
// reachable and return their URLs, one per input, in order.
type Uploader interface {
	Upload(ctx context.Context, files []MediaFile) ([]string, error)
}

// Profile is a provider's file-handling policy: whether it has cloud
// upload at all, the thresholds that gate it, and the wire shape for
// whatever is attached inline.
type Profile struct {
	Uploader          Uploader
	UploadThresholdMB float64
	MaxUploadMB       float64
	AttachFormat      AttachFormat
}

// hasUploadThreshold reports whether the profile is configured to ever
// upload rather than always attaching inline.
func (p Profile) hasUploadThreshold() bool {
	return p.Uploader != nil && p.UploadThresholdMB > 0
}

func mbToBytes(mb float64) int64 {
	return int64(mb * 1024 * 1024)
}
