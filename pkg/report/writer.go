/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: writer.go
Description: Writes reports to timestamped files. Reports are encoded as indented JSON
or YAML and named <timestamp>_<kind>.<ext> inside the output directory.
*/

package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Format selects the encoding of a report file.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat accepts json, yaml and yml in any case.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported report format: %q", s)
	}
}

// Encode renders v in the given format.
func Encode(format Format, v interface{}) ([]byte, error) {
	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to marshal report: %w", err)
		}
		return append(data, '\n'), nil
	case FormatYAML:
		data, err := yaml.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal report: %w", err)
		}
		return data, nil
	default:
		return nil, fmt.Errorf("unsupported report format: %q", format)
	}
}

// Write encodes v and stores it under dir, creating dir if needed.
// It returns the path of the written file.
func Write(dir, kind string, format Format, v interface{}) (string, error) {
	data, err := Encode(format, v)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}

	// 2024-06-11_01-30-00.123_posterior.json
	timestamp := time.Now().Format("2006-01-02_15-04-05.000")
	path := filepath.Join(dir, fmt.Sprintf("%s_%s.%s", timestamp, kind, format))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write report file: %w", err)
	}
	return path, nil
}
