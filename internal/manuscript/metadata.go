package manuscript

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	errs "github.com/ironsheep/glyptodon/internal/errors"
)

// Recognized metadata keys.
const (
	KeyWork        = "Work"
	KeyAuthor      = "Author"
	KeyLanguage    = "Language"
	KeyCountry     = "Country"
	KeyCity        = "City"
	KeyInstitution = "Institution"
	KeyCenturies   = "Centuries"
)

// RecognizedKeys lists the metadata keys the catalog knows about, in the
// order the information form presents them.
var RecognizedKeys = []string{
	KeyWork, KeyAuthor, KeyLanguage, KeyCountry, KeyCity, KeyInstitution, KeyCenturies,
}

// Field is one key:value metadata entry.
type Field struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Metadata is an insertion-ordered set of key:value entries. The order is
// preserved in the .cfg file and in JSON.
type Metadata struct {
	fields []Field
}

// NewMetadata builds metadata from alternating key, value arguments.
// A trailing key without a value is stored with an empty value.
func NewMetadata(kv ...string) Metadata {
	var m Metadata
	for i := 0; i < len(kv); i += 2 {
		v := ""
		if i+1 < len(kv) {
			v = kv[i+1]
		}
		m.Set(kv[i], v)
	}
	return m
}

// Set stores value under key, replacing an existing entry in place or
// appending a new one.
func (m *Metadata) Set(key, value string) {
	for i := range m.fields {
		if m.fields[i].Key == key {
			m.fields[i].Value = value
			return
		}
	}
	m.fields = append(m.fields, Field{Key: key, Value: value})
}

// Get returns the value stored under key.
func (m Metadata) Get(key string) (string, bool) {
	for _, f := range m.fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return "", false
}

// Value returns the value stored under key, or "" when absent.
func (m Metadata) Value(key string) string {
	v, _ := m.Get(key)
	return v
}

// Fields returns a copy of the entries in insertion order.
func (m Metadata) Fields() []Field {
	out := make([]Field, len(m.fields))
	copy(out, m.fields)
	return out
}

// Len returns the number of entries.
func (m Metadata) Len() int {
	return len(m.fields)
}

// Map returns the entries as a map, losing order.
func (m Metadata) Map() map[string]string {
	out := make(map[string]string, len(m.fields))
	for _, f := range m.fields {
		out[f.Key] = f.Value
	}
	return out
}

// Validate checks that Work is present and every key is storable.
func (m Metadata) Validate() error {
	for _, f := range m.fields {
		if err := errs.ValidateMetadataKey(f.Key); err != nil {
			return err
		}
	}
	if strings.TrimSpace(m.Value(KeyWork)) == "" {
		return errs.New(errs.ErrCodeInvalidInput, KeyWork, "metadata key %q is required", KeyWork)
	}
	return nil
}

// MarshalText renders the .cfg representation: one key:value line per entry.
// Backslashes, newlines and carriage returns in values are escaped so that
// every entry stays on a single line.
func (m Metadata) MarshalText() ([]byte, error) {
	var buf bytes.Buffer
	for _, f := range m.fields {
		if err := errs.ValidateMetadataKey(f.Key); err != nil {
			return nil, err
		}
		buf.WriteString(f.Key)
		buf.WriteByte(':')
		buf.WriteString(escapeValue(f.Value))
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}

// ParseMetadata reads a .cfg stream. Each non-empty line is split on its
// first colon; the remainder is the (unescaped) value.
func ParseMetadata(r io.Reader) (Metadata, error) {
	var m Metadata
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 4096), 1024*1024)

	for n := 1; sc.Scan(); n++ {
		line := strings.TrimSuffix(sc.Text(), "\r")
		if line == "" {
			continue
		}
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			return Metadata{}, errs.New(errs.ErrCodeInvalidMetadata, fmt.Sprintf("line %d", n), "missing ':' separator")
		}
		m.Set(key, unescapeValue(value))
	}
	if err := sc.Err(); err != nil {
		return Metadata{}, errs.Wrap(errs.ErrCodeIO, err, "", "failed to read metadata")
	}
	return m, nil
}

// MarshalJSON encodes the metadata as a JSON object with keys in insertion order.
func (m Metadata) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range m.fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(f.Key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(f.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object of string values, keeping key order.
func (m *Metadata) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("metadata must be a JSON object")
	}

	var out Metadata
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("metadata key must be a string")
		}
		var value string
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("metadata value for %q: %w", key, err)
		}
		out.Set(key, value)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*m = out
	return nil
}

var valueEscaper = strings.NewReplacer(`\`, `\\`, "\n", `\n`, "\r", `\r`)

func escapeValue(s string) string {
	return valueEscaper.Replace(s)
}

// unescapeValue reverses escapeValue. Unknown escape sequences are kept
// verbatim so values written without escaping read back unchanged.
func unescapeValue(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 == len(s) {
			b.WriteByte(c)
			continue
		}
		switch s[i+1] {
		case '\\':
			b.WriteByte('\\')
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		default:
			b.WriteByte(c)
			continue
		}
		i++
	}
	return b.String()
}
