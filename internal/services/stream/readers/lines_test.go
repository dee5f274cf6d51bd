package readers

import (
	"errors"
	"io"
	"slices"
	"strings"
	"testing"

	"github.com/kp666/twitter-stream/internal/services/stream/streamtest"
)

// drain polls until a terminal result and returns every line produced.
func drain(t *testing.T, d *LineDecoder) ([]string, error) {
	t.Helper()
	var lines []string
	for range 10000 {
		line, ok, err := d.Poll()
		if err != nil {
			return lines, err
		}
		if !ok {
			t.Fatalf("decoder stalled after %q with a source that already ended", lines)
		}
		lines = append(lines, string(line))
	}
	t.Fatal("decoder did not terminate")
	return nil, nil
}

func decodeChunks(t *testing.T, chunks ...string) []string {
	t.Helper()
	d := NewLineDecoder(streamtest.Chunks(chunks...))
	defer d.Close()
	lines, err := drain(t, d)
	if !errors.Is(err, io.EOF) {
		t.Fatalf("terminal error = %v, want io.EOF", err)
	}
	return lines
}

func TestLineDecoderVectors(t *testing.T) {
	tests := []struct {
		name   string
		chunks []string
		want   []string
	}{
		{"straddled delimiter", []string{"ab\r", "\ndef\r\n"}, []string{"ab", "def"}},
		{"several lines per chunk", []string{"x\r\ny\r\nz\r\n"}, []string{"x", "y", "z"}},
		{"blank lines", []string{"\r\n\r\n"}, []string{"", ""}},
		{"trailing partial flush", []string{"abc"}, []string{"abc"}},
		{"lone carriage return", []string{"a\rb\r\n"}, []string{"a\rb"}},
		{"bare line feed", []string{"a\nb\r\nc\nd"}, []string{"a\nb", "c\nd"}},
		{"carriage return before delimiter", []string{"x\r", "\r\n"}, []string{"x\r"}},
		{"line feed after bare line feed", []string{"a\n", "\n"}, []string{"a\n\n"}},
		{"empty source", nil, nil},
		{"only empty chunks", []string{"", "", ""}, nil},
		{"delimiter as its own chunks", []string{"abc", "\r", "\n", "def", "\r", "\n"}, []string{"abc", "def"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := decodeChunks(t, tt.chunks...)
			if !slices.Equal(got, tt.want) {
				t.Fatalf("lines = %q, want %q", got, tt.want)
			}
		})
	}
}

// Mirrors a realistic body with mixed bare CR and LF bytes inside records.
func TestLineDecoderMixedBody(t *testing.T) {
	chunks := []string{
		"abc\r\ndef\r",
		"\nghi\r\njk",
		"l\r\nmno\r\r\n",
		"pq\rrs\r",
		"\n\n\rtuv\r\r\n",
		"wxyz\n",
	}

	body := strings.Join(chunks, "")
	want := strings.Split(body, "\r\n")

	got := decodeChunks(t, chunks...)
	if !slices.Equal(got, want) {
		t.Fatalf("lines = %q, want %q", got, want)
	}
}

func TestLineDecoderSplitInvariance(t *testing.T) {
	inputs := []string{
		"x\r\ny\r\nz\r\n",
		"\r\n\r\n",
		"ab\r\ndef\r\n",
		"{\"id\":1}\r\n\r\n{\"id\":2}\r\ntrailing",
		"a\rb\nc\r\r\n\r\nd",
		"\r\r\n\n\r\n",
	}

	for _, input := range inputs {
		want := decodeChunks(t, input)

		for i := 0; i <= len(input); i++ {
			got := decodeChunks(t, input[:i], input[i:])
			if !slices.Equal(got, want) {
				t.Fatalf("input %q split at %d: lines = %q, want %q", input, i, got, want)
			}

			for j := i; j <= len(input); j++ {
				got := decodeChunks(t, input[:i], "", input[i:j], input[j:])
				if !slices.Equal(got, want) {
					t.Fatalf("input %q split at %d,%d: lines = %q, want %q", input, i, j, got, want)
				}
			}
		}

		bytewise := make([]string, 0, len(input))
		for _, b := range []byte(input) {
			bytewise = append(bytewise, string(b))
		}
		if got := decodeChunks(t, bytewise...); !slices.Equal(got, want) {
			t.Fatalf("input %q byte by byte: lines = %q, want %q", input, got, want)
		}
	}
}

func TestLineDecoderPendingUntilDelimiter(t *testing.T) {
	src := streamtest.NewSource("par")
	d := NewLineDecoder(src)
	defer d.Close()

	if _, ok, err := d.Poll(); ok || err != nil {
		t.Fatalf("Poll() = ok %v err %v, want pending", ok, err)
	}
	if got := d.Buffered(); got != 3 {
		t.Fatalf("Buffered() = %d, want 3", got)
	}

	src.Push("tial\r", "\nnext")
	line, ok, err := d.Poll()
	if err != nil || !ok || string(line) != "partial" {
		t.Fatalf("Poll() = %q %v %v, want \"partial\"", line, ok, err)
	}

	if _, ok, err := d.Poll(); ok || err != nil {
		t.Fatalf("Poll() = ok %v err %v, want pending", ok, err)
	}
}

func TestLineDecoderBufferedLinesSkipSource(t *testing.T) {
	src := streamtest.NewSource("a\r\nb\r\nc\r\n")
	d := NewLineDecoder(src)
	defer d.Close()

	for _, want := range []string{"a", "b", "c"} {
		line, ok, err := d.Poll()
		if err != nil || !ok || string(line) != want {
			t.Fatalf("Poll() = %q %v %v, want %q", line, ok, err, want)
		}
	}
	if got := src.Pulls(); got != 1 {
		t.Fatalf("source pulled %d times, want 1", got)
	}
}

func TestLineDecoderLinesDoNotAlias(t *testing.T) {
	d := NewLineDecoder(streamtest.Chunks("first\r\nsecond\r\n"))
	defer d.Close()

	first, _, _ := d.Poll()
	second, _, _ := d.Poll()
	if string(first) != "first" || string(second) != "second" {
		t.Fatalf("lines = %q %q", first, second)
	}
}

func TestLineDecoderSourceError(t *testing.T) {
	boom := errors.New("connection reset")
	src := streamtest.NewSource("ok\r\npartial")
	src.Fail(boom)

	d := NewLineDecoder(src)
	defer d.Close()

	line, ok, err := d.Poll()
	if err != nil || !ok || string(line) != "ok" {
		t.Fatalf("Poll() = %q %v %v, want \"ok\"", line, ok, err)
	}

	for range 3 {
		line, ok, err := d.Poll()
		if ok || line != nil {
			t.Fatalf("Poll() yielded %q after a source error", line)
		}
		if !errors.Is(err, boom) {
			t.Fatalf("err = %v, want %v", err, boom)
		}
	}
}

func TestLineDecoderEndIsSticky(t *testing.T) {
	d := NewLineDecoder(streamtest.Chunks("tail"))
	defer d.Close()

	line, ok, err := d.Poll()
	if err != nil || !ok || string(line) != "tail" {
		t.Fatalf("Poll() = %q %v %v, want \"tail\"", line, ok, err)
	}
	for range 3 {
		if _, ok, err := d.Poll(); ok || !errors.Is(err, io.EOF) {
			t.Fatalf("Poll() = ok %v err %v, want io.EOF", ok, err)
		}
	}
}

func TestLineDecoderClose(t *testing.T) {
	src := streamtest.NewSource("unfinished")
	d := NewLineDecoder(src)

	if _, ok, _ := d.Poll(); ok {
		t.Fatal("unexpected line")
	}
	if err := d.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := d.Close(); err != nil {
		t.Fatalf("second Close() error = %v", err)
	}
	if !src.Closed() {
		t.Fatal("source not closed")
	}
	if _, ok, err := d.Poll(); ok || !errors.Is(err, io.EOF) {
		t.Fatalf("Poll() after Close = ok %v err %v, want io.EOF", ok, err)
	}
	if d.Buffered() != 0 {
		t.Fatal("buffer kept after Close")
	}
}
