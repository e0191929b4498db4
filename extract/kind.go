package extract

// Kind selects the extraction strategy for a content item.
type Kind int

// Supported kinds. Unsupported is an explicit variant so that items the
// indexer does not handle yet are visible rather than silently skipped.
const (
	Unsupported Kind = iota
	Document
	Problem
	Transcript
)

func (k Kind) String() string {
	switch k {
	case Document:
		return "document"
	case Problem:
		return "problem"
	case Transcript:
		return "transcript"
	default:
		return "unsupported"
	}
}
