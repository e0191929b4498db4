package index

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// bulkAction is the action line that precedes every data line in a bulk
// payload.
type bulkAction struct {
	Index bulkTarget `json:"index"`
}

type bulkTarget struct {
	Partition Partition `json:"_index"`
	Type      string    `json:"_type"`
	ID        string    `json:"_id"`
}

// EncodeBulk writes actions to w using the newline-delimited bulk format:
// one action line naming the partition, type and key of the document
// followed by one data line with the document itself. The payload is
// terminated by a trailing newline.
func EncodeBulk(w io.Writer, actions []Action) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	for i, a := range actions {
		if a.Doc == nil {
			return fmt.Errorf("bulk action %d: %w", i, ErrIncompleteDocument)
		}

		line := bulkAction{Index: bulkTarget{
			Partition: a.Partition,
			Type:      a.Doc.TypeHash,
			ID:        a.Doc.Hash,
		}}

		// Encode appends a newline after each value.
		if err := enc.Encode(line); err != nil {
			return fmt.Errorf("bulk action %d: %w", i, err)
		}

		if err := enc.Encode(a.Doc); err != nil {
			return fmt.Errorf("bulk action %d: %w", i, err)
		}
	}

	return nil
}

// BulkBody returns the encoded bulk payload for actions.
func BulkBody(actions []Action) ([]byte, error) {
	var buf bytes.Buffer
	if err := EncodeBulk(&buf, actions); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// DecodeBulk parses a payload produced by EncodeBulk.
func DecodeBulk(r io.Reader) ([]Action, error) {
	var (
		actions []Action
		pending *bulkAction
		lineNo  int
	)

	scanner := bufio.NewScanner(r)
	// Data lines carry whole transcripts and can get large.
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	for scanner.Scan() {
		lineNo++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		if pending == nil {
			var a bulkAction
			if err := json.Unmarshal(line, &a); err != nil {
				return nil, fmt.Errorf("line %d: %w: %v", lineNo, ErrMalformedBulk, err)
			}

			if a.Index.Partition == "" || a.Index.ID == "" {
				return nil, fmt.Errorf("line %d: %w: missing index target", lineNo, ErrMalformedBulk)
			}

			pending = &a

			continue
		}

		doc := new(Document)
		if err := json.Unmarshal(line, doc); err != nil {
			return nil, fmt.Errorf("line %d: %w: %v", lineNo, ErrMalformedBulk, err)
		}

		actions = append(actions, Action{Partition: pending.Index.Partition, Doc: doc})
		pending = nil
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if pending != nil {
		return nil, fmt.Errorf("%w: action without data line", ErrMalformedBulk)
	}

	return actions, nil
}
