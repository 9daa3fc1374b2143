package services

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Codec converts between a file's bytes and its structured content.
type Codec interface {
	Decode(data []byte) (interface{}, error)
	Encode(value interface{}) ([]byte, error)
}

// DefaultExt is used when a data file is created without an explicit extension.
const DefaultExt = ".yml"

var codecs = map[string]Codec{
	".yml":  yamlCodec{},
	".yaml": yamlCodec{},
	".json": jsonCodec{},
	".toml": tomlCodec{},
	".csv":  csvCodec{comma: ','},
	".tsv":  csvCodec{comma: '\t'},
}

// CodecFor returns the codec registered for ext, falling back to raw text.
func CodecFor(ext string) Codec {
	if c, ok := codecs[strings.ToLower(ext)]; ok {
		return c
	}
	return rawCodec{}
}

// IsRecognizedExt reports whether ext has a structured codec.
func IsRecognizedExt(ext string) bool {
	_, ok := codecs[strings.ToLower(ext)]
	return ok
}

type yamlCodec struct{}

func (yamlCodec) Decode(data []byte) (interface{}, error) {
	var v interface{}
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return normalizeValue(v), nil
}

func (yamlCodec) Encode(value interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(value); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type jsonCodec struct{}

func (jsonCodec) Decode(data []byte) (interface{}, error) {
	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return v, nil
}

func (jsonCodec) Encode(value interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(value); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type tomlCodec struct{}

func (tomlCodec) Decode(data []byte) (interface{}, error) {
	var v map[string]interface{}
	if err := toml.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return normalizeValue(v), nil
}

func (tomlCodec) Encode(value interface{}) ([]byte, error) {
	table, ok := value.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("toml document must be a table, got %T", value)
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(table); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// csvCodec maps a header row plus records to an array of objects.
type csvCodec struct {
	comma rune
}

func (c csvCodec) Decode(data []byte) (interface{}, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = c.comma
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	rows := []interface{}{}
	if len(records) == 0 {
		return rows, nil
	}
	header := records[0]
	for _, rec := range records[1:] {
		row := make(map[string]interface{}, len(header))
		for i, name := range header {
			if i < len(rec) {
				row[name] = rec[i]
			} else {
				row[name] = nil
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (c csvCodec) Encode(value interface{}) ([]byte, error) {
	list, ok := value.([]interface{})
	if !ok {
		return nil, fmt.Errorf("tabular data must be an array of objects, got %T", value)
	}

	rows := make([]map[string]interface{}, 0, len(list))
	seen := map[string]bool{}
	var header []string
	for i, item := range list {
		row, ok := item.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("row %d: expected object, got %T", i, item)
		}
		for k := range row {
			if !seen[k] {
				seen[k] = true
				header = append(header, k)
			}
		}
		rows = append(rows, row)
	}
	sort.Strings(header)

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Comma = c.comma
	if len(header) > 0 {
		if err := w.Write(header); err != nil {
			return nil, err
		}
	}
	for _, row := range rows {
		rec := make([]string, len(header))
		for i, k := range header {
			if v := row[k]; v != nil {
				rec[i] = fmt.Sprint(v)
			}
		}
		if err := w.Write(rec); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// rawCodec passes text through unchanged.
type rawCodec struct{}

func (rawCodec) Decode(data []byte) (interface{}, error) {
	return string(data), nil
}

func (rawCodec) Encode(value interface{}) ([]byte, error) {
	s, ok := value.(string)
	if !ok {
		return nil, fmt.Errorf("content for an unstructured file must be a string, got %T", value)
	}
	return []byte(s), nil
}

// normalizeValue turns decoder output into JSON-encodable values.
func normalizeValue(value interface{}) interface{} {
	switch v := value.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(v))
		for k, inner := range v {
			out[k] = normalizeValue(inner)
		}
		return out
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(v))
		for k, inner := range v {
			out[fmt.Sprint(k)] = normalizeValue(inner)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(v))
		for i := range v {
			out[i] = normalizeValue(v[i])
		}
		return out
	case []map[string]interface{}:
		out := make([]interface{}, len(v))
		for i := range v {
			out[i] = normalizeValue(v[i])
		}
		return out
	case time.Time:
		return v.UTC().Format(time.RFC3339Nano)
	case float64:
		// JSON has no Inf or NaN; keep the YAML spelling
		switch {
		case math.IsInf(v, 1):
			return ".inf"
		case math.IsInf(v, -1):
			return "-.inf"
		case math.IsNaN(v):
			return ".nan"
		}
		return v
	default:
		return v
	}
}
