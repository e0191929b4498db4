package extract

import "errors"

// Reasons attached to a Result whose Value could not be fully derived.
var (
	ErrUnsupportedKind    = errors.New("unsupported content kind")
	ErrAssetNotFound      = errors.New("asset not found")
	ErrMalformedPDF       = errors.New("malformed pdf")
	ErrThumbnailRender    = errors.New("thumbnail could not be rendered")
	ErrNoMediaID          = errors.New("no media identifier")
	ErrTranscriptNotFound = errors.New("transcript not found")
	ErrInvalidTranscript  = errors.New("invalid transcript")
	ErrQuarantined        = errors.New("transcript chunk carries quarantine metadata")
)

// Result is the outcome of a text or thumbnail extraction. Extraction never
// fails outright: Reason explains an empty or degraded Value, and a nil
// Reason with an empty Value means the content is genuinely empty.
type Result struct {
	Value  string
	Reason error
}

// absent reports whether reason only says there was nothing to extract, as
// opposed to content or a backend that is broken.
func absent(reason error) bool {
	for _, err := range []error{
		ErrUnsupportedKind, ErrAssetNotFound, ErrNoMediaID, ErrTranscriptNotFound, ErrQuarantined,
	} {
		if errors.Is(reason, err) {
			return true
		}
	}

	return false
}
