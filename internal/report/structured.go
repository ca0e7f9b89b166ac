package report

import (
	"encoding/json"
	"io"

	"gopkg.in/yaml.v3"
)

type document struct {
	Results []Entry `json:"results" yaml:"results"`
}

// JSONFormatter writes {"results": [...]}.
type JSONFormatter struct{}

func (f *JSONFormatter) Name() string {
	return "json"
}

func (f *JSONFormatter) Format(w io.Writer, entries []Entry) error {
	if entries == nil {
		entries = []Entry{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(document{Results: entries})
}

// YAMLFormatter writes the same document as JSONFormatter in YAML.
type YAMLFormatter struct{}

func (f *YAMLFormatter) Name() string {
	return "yaml"
}

func (f *YAMLFormatter) Format(w io.Writer, entries []Entry) error {
	if entries == nil {
		entries = []Entry{}
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(document{Results: entries}); err != nil {
		return err
	}
	return enc.Close()
}
