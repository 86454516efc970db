// Package jsonfile reads airdrop allocations and writes snapshot records as JSON files
package jsonfile

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/screwyprof/airdrop/snapshot"
)

// Sentinel errors for malformed allocations
var (
	ErrMissingAddress = errors.New("allocation has no address")
	ErrMissingAmount  = errors.New("allocation has no amount")
)

type allocationRow struct {
	Address *string          `json:"address"`
	Amount  *snapshot.Amount `json:"amount"`
}

// ReadFile reads allocations from path
func ReadFile(path string) ([]snapshot.Allocation, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &snapshot.Error{Kind: snapshot.KindIO, Cause: err}
	}
	defer func() { _ = f.Close() }()

	return Read(f)
}

// Read decodes either a JSON array of allocations or a stream of allocation objects.
// Any malformed entry fails the whole read.
func Read(r io.Reader) ([]snapshot.Allocation, error) {
	br := bufio.NewReader(r)
	first, err := peekToken(br)
	if errors.Is(err, io.EOF) {
		return nil, &snapshot.Error{Kind: snapshot.KindParse, Cause: errors.New("empty allocation input")}
	}
	if err != nil {
		return nil, &snapshot.Error{Kind: snapshot.KindIO, Cause: err}
	}

	dec := json.NewDecoder(br)
	if first == '[' {
		var rows []allocationRow
		if err := dec.Decode(&rows); err != nil {
			return nil, &snapshot.Error{Kind: snapshot.KindParse, Cause: err}
		}
		if err := expectEOF(dec); err != nil {
			return nil, err
		}
		return toAllocations(rows)
	}

	var rows []allocationRow
	for {
		var row allocationRow
		err := dec.Decode(&row)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &snapshot.Error{Kind: snapshot.KindParse, Cause: fmt.Errorf("entry %d: %w", len(rows), err)}
		}
		rows = append(rows, row)
	}
	return toAllocations(rows)
}

// WriteFile writes records to path as a pretty-printed JSON array
func WriteFile(path string, records []snapshot.Record) error {
	f, err := os.Create(path)
	if err != nil {
		return &snapshot.Error{Kind: snapshot.KindIO, Cause: err}
	}
	if err := Write(f, records); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return &snapshot.Error{Kind: snapshot.KindIO, Cause: err}
	}
	return nil
}

// Write encodes records as a JSON array indented with two spaces
func Write(w io.Writer, records []snapshot.Record) error {
	if records == nil {
		records = []snapshot.Record{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return &snapshot.Error{Kind: snapshot.KindParse, Cause: err}
	}
	data = append(data, '\n')
	if _, err := w.Write(data); err != nil {
		return &snapshot.Error{Kind: snapshot.KindIO, Cause: err}
	}
	return nil
}

// WriteLine writes a single record as one compact JSON line
func WriteLine(w io.Writer, record snapshot.Record) error {
	data, err := json.Marshal(record)
	if err != nil {
		return &snapshot.Error{Kind: snapshot.KindParse, Address: record.Address, Cause: err}
	}
	data = append(data, '\n')
	if _, err := w.Write(data); err != nil {
		return &snapshot.Error{Kind: snapshot.KindIO, Address: record.Address, Cause: err}
	}
	return nil
}

func toAllocations(rows []allocationRow) ([]snapshot.Allocation, error) {
	allocations := make([]snapshot.Allocation, 0, len(rows))
	for i, row := range rows {
		if row.Address == nil || *row.Address == "" {
			return nil, &snapshot.Error{Kind: snapshot.KindParse, Cause: fmt.Errorf("entry %d: %w", i, ErrMissingAddress)}
		}
		if row.Amount == nil {
			return nil, &snapshot.Error{Kind: snapshot.KindParse, Address: *row.Address, Cause: fmt.Errorf("entry %d: %w", i, ErrMissingAmount)}
		}
		allocations = append(allocations, snapshot.Allocation{Address: *row.Address, Amount: *row.Amount})
	}
	return allocations, nil
}

// peekToken returns the first non-space byte without consuming it
func peekToken(br *bufio.Reader) (byte, error) {
	for {
		b, err := br.Peek(1)
		if err != nil {
			return 0, err
		}
		if !bytes.ContainsRune([]byte(" \t\r\n"), rune(b[0])) {
			return b[0], nil
		}
		if _, err := br.Discard(1); err != nil {
			return 0, err
		}
	}
}

func expectEOF(dec *json.Decoder) error {
	var extra json.RawMessage
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return &snapshot.Error{Kind: snapshot.KindParse, Cause: errors.New("unexpected data after allocation array")}
	}
	return nil
}
