package extractor

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// JSONExtractor renders a JSON document as readable text. Top-level objects
// become "key: value" lines; anything else is pretty-printed.
type JSONExtractor struct{}

// Extract returns the rendered JSON as page 1.
func (e *JSONExtractor) Extract(data []byte) ([]Page, error) {
	var value any
	if err := json.Unmarshal(data, &value); err != nil {
		return nil, fmt.Errorf("failed to parse JSON document: %w", err)
	}

	var text string
	switch v := value.(type) {
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		lines := make([]string, 0, len(keys))
		for _, k := range keys {
			lines = append(lines, fmt.Sprintf("%s: %v", k, v[k]))
		}
		text = strings.Join(lines, "\n")
	default:
		pretty, err := json.MarshalIndent(value, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to render JSON document: %w", err)
		}
		text = string(pretty)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}
	return []Page{{Number: 1, Text: text}}, nil
}

// CSVExtractor renders a CSV file as one pipe-separated line per record.
type CSVExtractor struct{}

// Extract returns the rendered rows as page 1.
func (e *CSVExtractor) Extract(data []byte) ([]Page, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV document: %w", err)
	}

	lines := make([]string, 0, len(records))
	for _, record := range records {
		line := strings.TrimSpace(strings.Join(record, " | "))
		if line != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) == 0 {
		return nil, nil
	}
	return []Page{{Number: 1, Text: strings.Join(lines, "\n")}}, nil
}
