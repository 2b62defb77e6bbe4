package filehandler

import (
	"context"
	"fmt"

	"github.com/SocAIty/fastsdk-go/pkg/apperror"
)

// Attachment is one file parameter's final wire fragment after Process
// has run: exactly one of URL, Base64, or Multipart is set, matching the
// profile's resolved disposition for that entry.
type Attachment struct {
	Name      string
	URL       string
	Base64    string
	Multipart *MultipartTuple
}

// Process runs the three-stage pipeline spec.md §4.5 describes: Load
// materializes each raw value into a MediaFile, Decide-Upload computes
// whether the batch clears the profile's upload threshold (and rejects
// it outright if it exceeds MaxUploadMB), and Attach converts whatever
// is still carrying bytes into the profile's wire shape.
//
// files maps a parameter name to its raw, caller-supplied value (a URL
// string, a local path string, raw bytes, or an already-built MediaFile).
func Process(ctx context.Context, files map[string]any, profile Profile) (map[string]Attachment, error) {
	loaded := make(map[string]MediaFile, len(files))
	for name, raw := range files {
		mf, err := Load(raw)
		if err != nil {
			return nil, apperror.Wrap(err, apperror.CodeFileNotReadable, fmt.Sprintf("could not load file parameter %q", name))
		}
		loaded[name] = mf
	}

	if err := decideUpload(ctx, loaded, profile); err != nil {
		return nil, err
	}

	return attach(loaded, profile)
}

// decideUpload computes the non-URL batch's total size, fails
// FileTooLarge if it exceeds MaxUploadMB, and otherwise either leaves
// everything alone (no uploader, no threshold, or under threshold) or
// uploads the batch and rewrites each entry to the returned URL.
func decideUpload(ctx context.Context, loaded map[string]MediaFile, profile Profile) error {
	names := make([]string, 0, len(loaded))
	var total int64
	for name, mf := range loaded {
		if mf.IsURL() {
			continue
		}
		names = append(names, name)
		total += int64(mf.Size())
	}

	if profile.MaxUploadMB > 0 && total > mbToBytes(profile.MaxUploadMB) {
		return apperror.New(apperror.CodeFileTooLarge,
			fmt.Sprintf("file batch is %d bytes, exceeding the %.0fMB limit", total, profile.MaxUploadMB))
	}

	if len(names) == 0 {
		return nil
	}
	if !profile.hasUploadThreshold() || total < mbToBytes(profile.UploadThresholdMB) {
		return nil
	}

	batch := make([]MediaFile, len(names))
	for i, name := range names {
		batch[i] = loaded[name]
	}

	urls, err := profile.Uploader.Upload(ctx, batch)
	if err != nil {
		return apperror.Wrap(err, apperror.CodeUploadFailed, "uploader failed to upload file batch")
	}
	if len(urls) != len(batch) {
		return apperror.New(apperror.CodeUploadFailed, "uploader returned a different number of urls than files submitted")
	}

	for i, name := range names {
		loaded[name] = MediaFile{URL: urls[i]}
	}
	return nil
}

// attach converts every entry still carrying bytes into the profile's
// wire shape. A URL entry passes through as a plain URL reference.
func attach(loaded map[string]MediaFile, profile Profile) (map[string]Attachment, error) {
	out := make(map[string]Attachment, len(loaded))
	for name, mf := range loaded {
		if mf.IsURL() {
			out[name] = Attachment{Name: name, URL: mf.URL}
			continue
		}
		switch profile.AttachFormat {
		case AttachBase64:
			out[name] = Attachment{Name: name, Base64: mf.Base64()}
		case AttachMultipart, "":
			tuple := mf.Multipart(name)
			out[name] = Attachment{Name: name, Multipart: &tuple}
		default:
			return nil, apperror.New(apperror.CodeInternal, fmt.Sprintf("unknown attach format %q", profile.AttachFormat))
		}
	}
	return out, nil
}
