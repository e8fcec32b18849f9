package content

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// jsonIndent matches the four-space layout of hand-maintained data files.
const jsonIndent = "    "

// MarshalIndent returns the pretty-printed JSON form of s. HTML is not
// escaped so that news fragments stay readable in the exported file.
func MarshalIndent(s Site) ([]byte, error) {
	s = s.Clone()
	s.Normalize()
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", jsonIndent)
	if err := enc.Encode(s); err != nil {
		return nil, fmt.Errorf("encode site: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// EncodeJSON writes the pretty-printed JSON form of s to w.
func EncodeJSON(w io.Writer, s Site) error {
	b, err := MarshalIndent(s)
	if err != nil {
		return err
	}
	b = append(b, '\n')
	_, err = w.Write(b)
	return err
}

// Marshal returns the compact JSON form of s, used for storage and equality.
func Marshal(s Site) ([]byte, error) {
	s = s.Clone()
	s.Normalize()
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return nil, fmt.Errorf("encode site: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Unmarshal decodes stored JSON without validation. Use DecodeImport for
// untrusted files.
func Unmarshal(b []byte) (Site, error) {
	var s Site
	if err := json.Unmarshal(b, &s); err != nil {
		return Site{}, fmt.Errorf("decode site: %w", err)
	}
	s.Normalize()
	return s, nil
}

// Equal reports whether a and b serialize identically.
func Equal(a, b Site) bool {
	ab, err := Marshal(a)
	if err != nil {
		return false
	}
	bb, err := Marshal(b)
	if err != nil {
		return false
	}
	return bytes.Equal(ab, bb)
}
