package shifter

// Status classifies the outcome of processing a single file.
type Status int

const (
	// StatusOK means the output was written and committed.
	StatusOK Status = iota
	// StatusSkipped means the file was rejected before any output was written.
	StatusSkipped
	// StatusFailed means processing started but could not complete; any partial output was removed.
	StatusFailed
)

// String returns the lowercase name of the status.
func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusSkipped:
		return "skipped"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Result represents the outcome of processing a single file.
type Result struct {
	// Input file path
	Input string

	// Output file path, empty if it was never determined
	Output string

	// Shift value written to or read from the header
	Shift byte

	// Output file size in bytes
	Size int64

	// Status of the operation
	Status Status

	// Error for skipped and failed files
	Err error
}

// OK reports whether the file was processed successfully.
func (r Result) OK() bool {
	return r.Status == StatusOK
}

func skipped(input, output string, err error) Result {
	return Result{Input: input, Output: output, Status: StatusSkipped, Err: err}
}

func failed(input, output string, err error) Result {
	return Result{Input: input, Output: output, Status: StatusFailed, Err: err}
}
