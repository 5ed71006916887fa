// Package fasta reads nucleotide records from FASTA files and extracts the
// UNITE-style taxonomy carried in record identifiers.
package fasta

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/turtacn/SeqPrep/pkg/errors"
)

// Record is a single FASTA entry.
type Record struct {
	// ID is the first whitespace-delimited field of the header.
	ID string `json:"id"`
	// Description is the remainder of the header, if any.
	Description string `json:"description,omitempty"`
	Sequence    string `json:"sequence"`
}

// maxLineSize bounds a single input line.  Unwrapped genome records can be
// far longer than bufio's default.
const maxLineSize = 64 << 20

// Reader streams records from a FASTA source.
type Reader struct {
	scanner *bufio.Scanner
	line    int
	pending *Record
	done    bool
}

// NewReader returns a Reader over r.
func NewReader(r io.Reader) *Reader {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return &Reader{scanner: s}
}

// Read returns the next record, or io.EOF once the input is exhausted.
// Sequence data before the first header is a CodeMalformedFASTA error.
func (r *Reader) Read() (*Record, error) {
	if r.done {
		return nil, io.EOF
	}

	var seq strings.Builder
	for r.scanner.Scan() {
		r.line++
		line := strings.TrimSpace(r.scanner.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, ">") {
			next := parseHeader(line[1:])
			if r.pending == nil {
				r.pending = next
				continue
			}
			rec := r.pending
			rec.Sequence = seq.String()
			r.pending = next
			return rec, nil
		}
		if r.pending == nil {
			return nil, errors.New(errors.CodeMalformedFASTA, "sequence data before first header").
				WithDetail("line=" + strconv.Itoa(r.line))
		}
		seq.WriteString(strings.Join(strings.Fields(line), ""))
	}
	if err := r.scanner.Err(); err != nil {
		return nil, errors.Wrap(err, errors.CodeMalformedFASTA, "failed to read FASTA input")
	}

	r.done = true
	if r.pending == nil {
		return nil, io.EOF
	}
	rec := r.pending
	rec.Sequence = seq.String()
	r.pending = nil
	return rec, nil
}

// ReadAll drains r.
func (r *Reader) ReadAll() ([]Record, error) {
	var out []Record
	for {
		rec, err := r.Read()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
}

// ReadFile parses every record of the file at path.
func ReadFile(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeMalformedFASTA, "failed to open FASTA file").WithDetail("path=" + path)
	}
	defer f.Close()
	return NewReader(f).ReadAll()
}

func parseHeader(header string) *Record {
	fields := strings.Fields(header)
	if len(fields) == 0 {
		return &Record{}
	}
	id := fields[0]
	desc := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(header), id))
	return &Record{ID: id, Description: desc}
}
