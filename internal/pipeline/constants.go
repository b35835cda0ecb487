package pipeline

// Default values for document processing.
const (
	// DefaultContentType is stored with every uploaded statement.
	DefaultContentType = "application/pdf"

	// DefaultCount is used when the extractor omits a transaction count.
	DefaultCount = 1

	// tempFilePattern names staged copies handed to the extractor.
	tempFilePattern = "fintrackr-*.pdf"
)

// Ledger outcome values reported in Result.Details.
const (
	DetailsCreated  = "created"
	DetailsAppended = "appended"
	DetailsEmpty    = "empty"
)
