package stores

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/danieljhkim/lendlog/internal/fsops"
	"github.com/danieljhkim/lendlog/internal/ledger"
)

// CSVStore keeps the log in a CSV file: a header row followed by one
// record per operation.
type CSVStore struct {
	fs   fsops.FS
	path string
}

// NewCSVStore creates a CSVStore backed by the file at path.
func NewCSVStore(fs fsops.FS, path string) *CSVStore {
	return &CSVStore{fs: fs, path: path}
}

// Path returns the log file location.
func (s *CSVStore) Path() string {
	return s.path
}

// Load reads every operation from the file. The first row is the header.
func (s *CSVStore) Load(ctx context.Context) ([]ledger.Operation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := s.read()
	if err != nil {
		return nil, err
	}
	return decodeCSV(data)
}

// Append adds ops after the existing records and replaces the file
// atomically, so a failed write leaves the previous log untouched.
func (s *CSVStore) Append(ctx context.Context, ops []ledger.Operation) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(ops) == 0 {
		return nil
	}

	data, err := s.read()
	if err != nil {
		return err
	}
	existing, err := decodeCSV(data)
	if err != nil {
		return err
	}
	if err := checkBatch(existing, ops); err != nil {
		return err
	}

	// A blank file is an empty log, so it starts over with a header row.
	fresh := len(bytes.TrimSpace(data)) == 0
	var buf bytes.Buffer
	if !fresh {
		buf.Write(data)
		if data[len(data)-1] != '\n' {
			buf.WriteByte('\n')
		}
	}
	w := csv.NewWriter(&buf)
	if fresh {
		if err := w.Write(header); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
	}
	for _, op := range ops {
		rec, err := encodeRecord(op)
		if err != nil {
			return err
		}
		if err := w.Write(rec); err != nil {
			return fmt.Errorf("failed to encode operation %d: %w", op.Seq, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to encode operations: %w", err)
	}

	if err := s.fs.AtomicWrite(s.path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write log: %w", err)
	}
	return nil
}

// Close is a no-op; the file is only open during Load and Append.
func (s *CSVStore) Close() error {
	return nil
}

// read returns the raw file, or nil when it does not exist yet.
func (s *CSVStore) read() ([]byte, error) {
	data, err := s.fs.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read log: %w", err)
	}
	return data, nil
}

func decodeCSV(data []byte) ([]ledger.Operation, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return []ledger.Operation{}, nil
	}

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1

	ops := []ledger.Operation{}
	for row := 1; ; row++ {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("malformed log at row %d: %w", row, err)
		}
		if row == 1 {
			continue
		}
		op, err := decodeRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("malformed log at row %d: %w", row, err)
		}
		ops = append(ops, op)
	}
	return ops, nil
}
