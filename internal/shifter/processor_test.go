package shifter_test

import (
	"bytes"
	"context"
	"crypto/rand"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/idelchi/datashift/internal/fileutil"
	"github.com/idelchi/datashift/internal/frame"
	"github.com/idelchi/datashift/internal/shifter"
)

// fixedSource always returns the same shift value.
type fixedSource byte

func (s fixedSource) Shift() (byte, error) { return byte(s), nil }

// brokenSource always fails.
type brokenSource struct{}

func (brokenSource) Shift() (byte, error) { return 0, errors.New("entropy exhausted") }

func writeFile(t *testing.T, path string, data []byte) string {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, data, 0o600))

	return path
}

func readFile(t *testing.T, path string) []byte {
	t.Helper()

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	return data
}

func listDir(t *testing.T, dir string) []string {
	t.Helper()

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}

	return names
}

func TestShiftScenario(t *testing.T) {
	t.Parallel()

	src := writeFile(t, filepath.Join(t.TempDir(), "a.txt"), []byte{0x00, 0x01, 0xFF})
	out := t.TempDir()

	proc := shifter.NewProcessor(shifter.Options{Dir: out, Source: fixedSource(5)})

	res := proc.Shift(src)
	require.True(t, res.OK(), "result: %+v", res)
	require.Equal(t, filepath.Join(out, "a.txt.shift"), res.Output)
	require.Equal(t, byte(5), res.Shift)

	want := append([]byte("SHIFTED\x05\x05a.txt"), 0x05, 0x06, 0x04)
	require.Equal(t, want, readFile(t, res.Output))
	require.EqualValues(t, len(want), res.Size)
}

func TestRestoreScenario(t *testing.T) {
	t.Parallel()

	stream := append([]byte("SHIFTED\x05\x05a.txt"), 0x05, 0x06, 0x04)
	src := writeFile(t, filepath.Join(t.TempDir(), "anything.bin"), stream)
	out := t.TempDir()

	res := shifter.NewProcessor(shifter.Options{Dir: out}).Restore(src)
	require.True(t, res.OK(), "result: %+v", res)
	require.Equal(t, filepath.Join(out, "a.txt"), res.Output)
	require.Equal(t, []byte{0x00, 0x01, 0xFF}, readFile(t, res.Output))
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	large := make([]byte, 3*shifter.DefaultChunkSize+17)
	_, err := rand.Read(large)
	require.NoError(t, err)

	tests := []struct {
		name    string
		file    string
		content []byte
		chunk   int
	}{
		{name: "empty", file: "empty", content: nil},
		{name: "text", file: "notes.txt", content: []byte("hello, world\n")},
		{name: "all bytes", file: "bytes.bin", content: allBytes()},
		{name: "large", file: "large.bin", content: large},
		{name: "odd chunk", file: "odd.bin", content: large, chunk: 7},
		{name: "unicode name", file: "résumé ✓.pdf", content: []byte("pdf")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			src := writeFile(t, filepath.Join(t.TempDir(), tt.file), tt.content)
			shifted := t.TempDir()
			restored := t.TempDir()

			proc := shifter.NewProcessor(shifter.Options{
				Dir:       shifted,
				Source:    frame.NewSeededSource(42),
				ChunkSize: tt.chunk,
			})

			res := proc.Shift(src)
			require.True(t, res.OK(), "shift: %+v", res)
			require.NotZero(t, res.Shift)

			back := shifter.NewProcessor(shifter.Options{Dir: restored, ChunkSize: tt.chunk}).Restore(res.Output)
			require.True(t, back.OK(), "restore: %+v", back)
			require.Equal(t, filepath.Join(restored, tt.file), back.Output)
			require.Equal(t, res.Shift, back.Shift)

			got := readFile(t, back.Output)
			require.True(t, bytes.Equal(tt.content, got), "content mismatch")
		})
	}
}

func TestRoundTripEveryShift(t *testing.T) {
	t.Parallel()

	content := allBytes()
	src := writeFile(t, filepath.Join(t.TempDir(), "data"), content)

	for shift := 1; shift <= 255; shift++ {
		shifted, restored := t.TempDir(), t.TempDir()

		res := shifter.NewProcessor(shifter.Options{Dir: shifted, Source: fixedSource(shift)}).Shift(src)
		require.True(t, res.OK())

		back := shifter.NewProcessor(shifter.Options{Dir: restored}).Restore(res.Output)
		require.True(t, back.OK())
		require.Equal(t, content, readFile(t, back.Output), "shift %d", shift)
	}
}

func TestShiftDrawsPerFile(t *testing.T) {
	t.Parallel()

	srcDir, out := t.TempDir(), t.TempDir()

	var paths []string
	for _, name := range []string{"a", "b", "c", "d", "e", "f", "g", "h"} {
		paths = append(paths, writeFile(t, filepath.Join(srcDir, name), []byte(name)))
	}

	want := frame.NewSeededSource(1)
	proc := shifter.NewProcessor(shifter.Options{Dir: out, Source: frame.NewSeededSource(1)})

	var results []shifter.Result

	require.NoError(t, proc.Process(context.Background(), shifter.ModeShift, paths, func(r shifter.Result) {
		results = append(results, r)
	}))

	require.Len(t, results, len(paths))

	for i, res := range results {
		require.True(t, res.OK())
		require.Equal(t, paths[i], res.Input)

		expected, _ := want.Shift()
		require.Equal(t, expected, res.Shift)
		require.Equal(t, expected, readFile(t, res.Output)[len(frame.Magic)])
	}
}

func TestRestoreRejectsInvalidHeaders(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input []byte
		want  error
	}{
		{name: "bad magic", input: []byte("SHIFTEZ\x05\x05a.txt\x05"), want: frame.ErrBadMagic},
		{name: "zero name length", input: []byte("SHIFTED\x05\x00a.txt"), want: frame.ErrEmptyName},
		{name: "truncated prefix", input: []byte("SHIF"), want: frame.ErrTruncated},
		{name: "truncated name", input: []byte("SHIFTED\x05\x09a.t"), want: frame.ErrTruncated},
		{name: "empty file", input: nil, want: frame.ErrTruncated},
		{name: "parent traversal", input: []byte("SHIFTED\x05\x02..x"), want: frame.ErrUnsafeName},
		{name: "separator", input: []byte("SHIFTED\x05\x0a../evil.sh"), want: frame.ErrUnsafeName},
		{name: "absolute", input: []byte("SHIFTED\x05\x05/evil"), want: frame.ErrUnsafeName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			root := t.TempDir()
			src := writeFile(t, filepath.Join(root, "in", "x.shift"), tt.input)
			out := filepath.Join(root, "out")
			require.NoError(t, os.Mkdir(out, 0o750))

			res := shifter.NewProcessor(shifter.Options{Dir: out}).Restore(src)
			require.Equal(t, shifter.StatusSkipped, res.Status)
			require.ErrorIs(t, res.Err, tt.want)

			require.Empty(t, listDir(t, out))
			require.ElementsMatch(t, []string{"in", "out"}, listDir(t, root))
		})
	}
}

func TestInvalidSources(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	out := t.TempDir()
	proc := shifter.NewProcessor(shifter.Options{Dir: out})

	for _, mode := range []shifter.Mode{shifter.ModeShift, shifter.ModeRestore} {
		for _, path := range []string{filepath.Join(dir, "missing"), dir} {
			var res shifter.Result

			require.NoError(t, proc.Process(context.Background(), mode, []string{path}, func(r shifter.Result) {
				res = r
			}))

			require.Equal(t, shifter.StatusSkipped, res.Status, "%s %s", mode, path)
			require.ErrorIs(t, res.Err, shifter.ErrInvalidInput)
		}
	}

	require.Empty(t, listDir(t, out))
}

func TestOverwritePolicy(t *testing.T) {
	t.Parallel()

	t.Run("shift", func(t *testing.T) {
		t.Parallel()

		src := writeFile(t, filepath.Join(t.TempDir(), "a.txt"), []byte("payload"))
		out := t.TempDir()
		existing := writeFile(t, filepath.Join(out, "a.txt.shift"), []byte("existing"))

		res := shifter.NewProcessor(shifter.Options{Dir: out, Source: fixedSource(1)}).Shift(src)
		require.Equal(t, shifter.StatusSkipped, res.Status)
		require.ErrorIs(t, res.Err, fileutil.ErrExists)
		require.Equal(t, []byte("existing"), readFile(t, existing))

		res = shifter.NewProcessor(shifter.Options{Dir: out, Force: true, Source: fixedSource(1)}).Shift(src)
		require.True(t, res.OK(), "result: %+v", res)
		require.Equal(t, []byte("SHIFTED\x01\x05a.txtqbzmpbe"), readFile(t, existing))
	})

	t.Run("restore", func(t *testing.T) {
		t.Parallel()

		src := writeFile(t, filepath.Join(t.TempDir(), "in.shift"), []byte("SHIFTED\x01\x05a.txtqbzmpbe"))
		out := t.TempDir()
		existing := writeFile(t, filepath.Join(out, "a.txt"), []byte("existing"))

		res := shifter.NewProcessor(shifter.Options{Dir: out}).Restore(src)
		require.Equal(t, shifter.StatusSkipped, res.Status)
		require.ErrorIs(t, res.Err, fileutil.ErrExists)
		require.Equal(t, []byte("existing"), readFile(t, existing))

		res = shifter.NewProcessor(shifter.Options{Dir: out, Force: true}).Restore(src)
		require.True(t, res.OK(), "result: %+v", res)
		require.Equal(t, []byte("payload"), readFile(t, existing))
		require.ElementsMatch(t, []string{"a.txt"}, listDir(t, out))
	})
}

func TestSameBaseNameCollision(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	first := writeFile(t, filepath.Join(root, "one", "data.txt"), []byte("first"))
	second := writeFile(t, filepath.Join(root, "two", "data.txt"), []byte("second"))
	out := filepath.Join(root, "out")
	require.NoError(t, os.Mkdir(out, 0o750))

	proc := shifter.NewProcessor(shifter.Options{Dir: out, Source: fixedSource(3)})

	var results []shifter.Result

	require.NoError(t, proc.Process(context.Background(), shifter.ModeShift, []string{first, second}, func(r shifter.Result) {
		results = append(results, r)
	}))

	require.Len(t, results, 2)
	require.True(t, results[0].OK())
	require.Equal(t, shifter.StatusSkipped, results[1].Status)
	require.ErrorIs(t, results[1].Err, fileutil.ErrExists)

	restored := t.TempDir()
	back := shifter.NewProcessor(shifter.Options{Dir: restored}).Restore(results[0].Output)
	require.True(t, back.OK())
	require.Equal(t, []byte("first"), readFile(t, back.Output))
}

func TestShiftFailureLeavesNoOutput(t *testing.T) {
	t.Parallel()

	src := writeFile(t, filepath.Join(t.TempDir(), "a.txt"), []byte("payload"))
	out := t.TempDir()

	res := shifter.NewProcessor(shifter.Options{Dir: out, Source: brokenSource{}}).Shift(src)
	require.Equal(t, shifter.StatusFailed, res.Status)
	require.Error(t, res.Err)
	require.Empty(t, listDir(t, out))
}

func TestPreserveTimestamps(t *testing.T) {
	t.Parallel()

	modTime := time.Date(2021, 3, 4, 5, 6, 7, 0, time.UTC)

	for _, force := range []bool{false, true} {
		src := writeFile(t, filepath.Join(t.TempDir(), "a.txt"), []byte("payload"))
		require.NoError(t, os.Chtimes(src, modTime, modTime))

		out := t.TempDir()
		if force {
			writeFile(t, filepath.Join(out, "a.txt.shift"), []byte("existing"))
		}

		proc := shifter.NewProcessor(shifter.Options{
			Dir:                out,
			Force:              force,
			Source:             fixedSource(1),
			PreserveTimestamps: true,
		})

		res := proc.Shift(src)
		require.True(t, res.OK(), "force=%v result: %+v", force, res)
		require.EqualValues(t, len("SHIFTED\x01\x05a.txtqbzmpbe"), res.Size)
		require.Equal(t, []string{"a.txt.shift"}, listDir(t, out), "force=%v", force)

		info, err := os.Stat(res.Output)
		require.NoError(t, err)
		require.True(t, info.ModTime().Equal(modTime), "force=%v mtime %v", force, info.ModTime())
	}
}

func TestProcessCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := shifter.NewProcessor(shifter.Options{}).Process(ctx, shifter.ModeShift, []string{"x"}, func(shifter.Result) {
		called = true
	})

	require.ErrorIs(t, err, context.Canceled)
	require.False(t, called)
}

func TestParseMode(t *testing.T) {
	t.Parallel()

	mode, err := shifter.ParseMode("restore")
	require.NoError(t, err)
	require.Equal(t, shifter.ModeRestore, mode)
	require.Equal(t, "restore", mode.String())

	_, err = shifter.ParseMode("recover")
	require.ErrorIs(t, err, shifter.ErrUnknownMode)
}

func allBytes() []byte {
	data := make([]byte, 256)
	for i := range data {
		data[i] = byte(i)
	}

	return data
}
