package tabular

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Field is one key/value pair of a row record, order-preserving.
type Field struct {
	Key   string
	Value Value
}

// Record is an ordered row record as received from a data source. Column
// order of a loaded table follows the order keys first appear across the
// records, which a plain Go map cannot preserve; hence the explicit slice.
type Record []Field

// DecodeRecords decodes a JSON array of objects into ordered records,
// preserving object key order. Whole JSON numbers become ints, others
// floats.
func DecodeRecords(raw []byte) ([]Record, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("decode rows: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '[' {
		return nil, fmt.Errorf("decode rows: expected a JSON array, got %v", tok)
	}

	var records []Record
	for dec.More() {
		rec, err := decodeRecord(dec)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("decode rows: %w", err)
	}
	return records, nil
}

func decodeRecord(dec *json.Decoder) (Record, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("decode row: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("decode row: expected a JSON object, got %v", tok)
	}
	var rec Record
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("decode row key: %w", err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("decode row key: expected string, got %v", keyTok)
		}
		val, err := decodeValue(dec)
		if err != nil {
			return nil, fmt.Errorf("decode row value for %q: %w", key, err)
		}
		rec = append(rec, Field{Key: key, Value: val})
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("decode row: %w", err)
	}
	return rec, nil
}

func decodeValue(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return Null(), err
	}
	switch v := tok.(type) {
	case nil:
		return Null(), nil
	case string:
		return String(v), nil
	case bool:
		return Bool(v), nil
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return Int(i), nil
		}
		f, err := v.Float64()
		if err != nil {
			return Null(), err
		}
		return Float(f), nil
	case json.Delim:
		// Nested arrays/objects are flattened to their JSON text; the
		// transform operations treat them as opaque strings.
		var buf bytes.Buffer
		if err := captureNested(dec, v, &buf); err != nil {
			return Null(), err
		}
		return String(buf.String()), nil
	default:
		return Null(), fmt.Errorf("unsupported JSON value %v", tok)
	}
}

// captureNested consumes the remainder of a nested structure whose opening
// delimiter was already read, re-serializing it so the captured text is
// valid JSON.
func captureNested(dec *json.Decoder, open json.Delim, buf *bytes.Buffer) error {
	buf.WriteString(open.String())
	if open == '{' {
		for i := 0; dec.More(); i++ {
			if i > 0 {
				buf.WriteByte(',')
			}
			keyTok, err := dec.Token()
			if err != nil {
				return err
			}
			key, ok := keyTok.(string)
			if !ok {
				return fmt.Errorf("decode nested key: expected string, got %v", keyTok)
			}
			b, _ := json.Marshal(key)
			buf.Write(b)
			buf.WriteByte(':')
			if err := captureToken(dec, buf); err != nil {
				return err
			}
		}
		if _, err := dec.Token(); err != nil {
			return err
		}
		buf.WriteByte('}')
		return nil
	}
	for i := 0; dec.More(); i++ {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := captureToken(dec, buf); err != nil {
			return err
		}
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	buf.WriteByte(']')
	return nil
}

func captureToken(dec *json.Decoder, buf *bytes.Buffer) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	switch t := tok.(type) {
	case json.Delim:
		return captureNested(dec, t, buf)
	case string:
		b, _ := json.Marshal(t)
		buf.Write(b)
	case json.Number:
		buf.WriteString(t.String())
	case bool:
		fmt.Fprintf(buf, "%v", t)
	case nil:
		buf.WriteString("null")
	}
	return nil
}

// FromRecords builds a table from ordered records. The column set and order
// are the union of keys in first-appearance order; missing keys become
// nulls. Returns nil for an empty record set.
func FromRecords(records []Record) *Table {
	if len(records) == 0 {
		return nil
	}
	var columns []string
	seen := make(map[string]bool)
	for _, rec := range records {
		for _, f := range rec {
			if !seen[f.Key] {
				seen[f.Key] = true
				columns = append(columns, f.Key)
			}
		}
	}
	t := New(columns)
	for _, rec := range records {
		row := make(Row, len(columns))
		for i := range row {
			row[i] = Null()
		}
		for _, f := range rec {
			ci := t.index[f.Key]
			row[ci] = f.Value
		}
		t.rows = append(t.rows, row)
	}
	return t
}
