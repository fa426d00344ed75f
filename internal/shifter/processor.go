package shifter

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/idelchi/datashift/internal/fileutil"
	"github.com/idelchi/datashift/internal/frame"
)

// DefaultChunkSize is the size of the scratch buffer used to stream payloads.
const DefaultChunkSize = 4096

// Mode selects the pipeline direction.
type Mode int

const (
	// ModeShift obfuscates files into <name>.shift.
	ModeShift Mode = iota
	// ModeRestore recovers the original files from shifted ones.
	ModeRestore
)

// String returns the name accepted by ParseMode.
func (m Mode) String() string {
	if m == ModeRestore {
		return "restore"
	}

	return "shift"
}

// ParseMode converts "shift" or "restore" into a Mode.
func ParseMode(name string) (Mode, error) {
	switch name {
	case "shift":
		return ModeShift, nil
	case "restore":
		return ModeRestore, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownMode, name)
	}
}

// Options configures a Processor.
type Options struct {
	// Dir receives all outputs. Empty means the current directory.
	Dir string
	// Force replaces existing outputs instead of skipping them.
	Force bool
	// Source draws one shift value per shifted file. Nil means crypto/rand.
	Source frame.ShiftSource
	// ChunkSize is the streaming buffer size. Zero means DefaultChunkSize.
	ChunkSize int
	// PreserveTimestamps copies the source modification time to the output.
	PreserveTimestamps bool
}

// Processor handles shifting and restoring of files.
// It is not safe for concurrent use: the scratch buffer is shared across files.
type Processor struct {
	opts Options
	buf  []byte
}

// NewProcessor creates a Processor, filling in defaults for unset options.
func NewProcessor(opts Options) *Processor {
	if opts.Dir == "" {
		opts.Dir = "."
	}

	if opts.Source == nil {
		opts.Source = frame.NewRandomSource()
	}

	if opts.ChunkSize <= 0 {
		opts.ChunkSize = DefaultChunkSize
	}

	return &Processor{
		opts: opts,
		buf:  make([]byte, opts.ChunkSize),
	}
}

// Process runs mode over paths in order, passing each Result to emit.
// It returns early only if ctx is cancelled.
func (p *Processor) Process(ctx context.Context, mode Mode, paths []string, emit func(Result)) error {
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("processing files: %w", err)
		}

		if mode == ModeRestore {
			emit(p.Restore(path))
		} else {
			emit(p.Shift(path))
		}
	}

	return nil
}

// Shift writes Dir/<base name of path>.shift, containing the header and the shifted payload.
func (p *Processor) Shift(path string) Result {
	src, info, err := openSource(path)
	if err != nil {
		return skipped(path, "", err)
	}
	defer src.Close()

	base := filepath.Base(path)
	outPath := filepath.Join(p.opts.Dir, base+frame.Extension)

	dst, err := fileutil.OpenDestination(outPath, p.opts.Force, info.Mode().Perm())
	if err != nil {
		return skipped(path, outPath, err)
	}

	shift, size, err := p.shiftInto(dst, src, frame.DecodeName([]byte(base)), info.ModTime())
	if err != nil {
		return failed(path, outPath, err)
	}

	return Result{Input: path, Output: outPath, Shift: shift, Size: size, Status: StatusOK}
}

// Restore reads the header of path and writes the recovered payload to Dir/<original name>.
func (p *Processor) Restore(path string) Result {
	src, info, err := openSource(path)
	if err != nil {
		return skipped(path, "", err)
	}
	defer src.Close()

	reader := bufio.NewReaderSize(src, p.opts.ChunkSize)

	header, err := frame.ReadHeader(reader)
	if err != nil {
		return skipped(path, "", err)
	}

	if err := frame.ValidateName(header.Name); err != nil {
		return skipped(path, "", err)
	}

	outPath := filepath.Join(p.opts.Dir, header.Name)

	dst, err := fileutil.OpenDestination(outPath, p.opts.Force, info.Mode().Perm())
	if err != nil {
		return skipped(path, outPath, err)
	}

	size, err := p.restoreInto(dst, reader, header.Shift, info.ModTime())
	if err != nil {
		return failed(path, outPath, err)
	}

	return Result{Input: path, Output: outPath, Shift: header.Shift, Size: size, Status: StatusOK}
}

func (p *Processor) shiftInto(
	dst *fileutil.Destination,
	src io.Reader,
	name string,
	modTime time.Time,
) (shift byte, size int64, err error) {
	defer dst.CleanupOnError(&err)

	shift, err = p.opts.Source.Shift()
	if err != nil {
		return 0, 0, err
	}

	header, err := frame.EncodeHeader(name, shift)
	if err != nil {
		return 0, 0, fmt.Errorf("encoding header: %w", err)
	}

	writer := bufio.NewWriterSize(dst.File, p.opts.ChunkSize)

	if _, err = writer.Write(header); err != nil {
		return 0, 0, fmt.Errorf("writing header: %w", err)
	}

	if err = p.stream(writer, src, shift, frame.Encode); err != nil {
		return 0, 0, err
	}

	size, err = p.finish(dst, writer, modTime)

	return shift, size, err
}

func (p *Processor) restoreInto(
	dst *fileutil.Destination,
	src io.Reader,
	shift byte,
	modTime time.Time,
) (size int64, err error) {
	defer dst.CleanupOnError(&err)

	writer := bufio.NewWriterSize(dst.File, p.opts.ChunkSize)

	if err = p.stream(writer, src, shift, frame.Decode); err != nil {
		return 0, err
	}

	return p.finish(dst, writer, modTime)
}

// finish flushes, finalizes and commits the output, returning its final size.
// Nothing reaches dst.Path unless every step succeeds.
func (p *Processor) finish(dst *fileutil.Destination, writer *bufio.Writer, modTime time.Time) (int64, error) {
	if err := writer.Flush(); err != nil {
		return 0, fmt.Errorf("flushing output: %w", err)
	}

	size, err := fileutil.FinalizeOutput(dst.Name(), p.opts.PreserveTimestamps, modTime)
	if err != nil {
		return 0, fmt.Errorf("finalizing output: %w", err)
	}

	if err := dst.Commit(); err != nil {
		return 0, err
	}

	return size, nil
}

// stream copies reader to writer chunk by chunk, transforming each chunk in place.
func (p *Processor) stream(writer io.Writer, reader io.Reader, shift byte, dir frame.Direction) error {
	for {
		n, err := reader.Read(p.buf)
		if n > 0 {
			frame.Transform(p.buf[:n], shift, dir)

			if _, err := writer.Write(p.buf[:n]); err != nil {
				return fmt.Errorf("writing payload: %w", err)
			}
		}

		if errors.Is(err, io.EOF) {
			return nil
		}

		if err != nil {
			return fmt.Errorf("reading payload: %w", err)
		}
	}
}

// openSource opens path for reading, rejecting anything that is not a regular file.
func openSource(path string) (*os.File, os.FileInfo, error) {
	file, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	info, err := file.Stat()
	if err != nil {
		file.Close() //nolint:errcheck,gosec // best-effort cleanup

		return nil, nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	if !info.Mode().IsRegular() {
		file.Close() //nolint:errcheck,gosec // best-effort cleanup

		return nil, nil, fmt.Errorf("%w: %q is not a regular file", ErrInvalidInput, path)
	}

	return file, info, nil
}
