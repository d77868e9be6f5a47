// Package roster loads lawyer records from files and writes them into the
// store.
package roster

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"legalconnect-engine/internal/domain"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatHTML Format = "html"
)

// FormatFromPath picks a format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".html", ".htm":
		return FormatHTML, nil
	default:
		return "", fmt.Errorf("unsupported roster file %q (want json, yaml or html)", path)
	}
}

// FormatFromName accepts "json", "yaml", "yml" or "html".
func FormatFromName(name string) (Format, error) {
	return FormatFromPath("roster." + strings.TrimPrefix(strings.TrimSpace(name), "."))
}

// FormatFromContentType maps an upload's media type onto a format.
func FormatFromContentType(ct string) (Format, error) {
	mt, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return "", fmt.Errorf("bad content type %q: %w", ct, err)
	}
	switch mt {
	case "application/json":
		return FormatJSON, nil
	case "application/yaml", "application/x-yaml", "text/yaml", "text/x-yaml":
		return FormatYAML, nil
	case "text/html":
		return FormatHTML, nil
	default:
		return "", fmt.Errorf("unsupported roster content type %q", mt)
	}
}

// Parse decodes a roster. JSON and YAML accept either a bare list or an
// object with a "lawyers" list. Records come back normalized.
func Parse(r io.Reader, f Format) ([]domain.Lawyer, error) {
	var (
		out []domain.Lawyer
		err error
	)
	switch f {
	case FormatJSON:
		out, err = parseJSON(r)
	case FormatYAML:
		out, err = parseYAML(r)
	case FormatHTML:
		out, err = parseHTML(r)
	default:
		return nil, fmt.Errorf("unknown roster format %q", f)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s roster: %w", f, err)
	}
	out = domain.NormalizeAll(out)
	for i := range out {
		if out[i].ExternalID == "" {
			out[i].ExternalID = ExternalKey(out[i])
		}
	}
	return out, nil
}

type wrapped struct {
	Lawyers []domain.Lawyer `json:"lawyers" yaml:"lawyers"`
}

func parseJSON(r io.Reader) ([]domain.Lawyer, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '[' {
		var list []domain.Lawyer
		err := json.Unmarshal(b, &list)
		return list, err
	}
	var w wrapped
	err = json.Unmarshal(b, &w)
	return w.Lawyers, err
}

func parseYAML(r io.Reader) ([]domain.Lawyer, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var node yaml.Node
	if err := yaml.Unmarshal(b, &node); err != nil {
		return nil, err
	}
	if len(node.Content) == 0 {
		return nil, nil
	}
	if node.Content[0].Kind == yaml.SequenceNode {
		var list []domain.Lawyer
		err := node.Decode(&list)
		return list, err
	}
	var w wrapped
	err = node.Decode(&w)
	return w.Lawyers, err
}

// ExternalKey derives a stable import key for records that carry none, so
// importing the same file twice does not duplicate lawyers.
func ExternalKey(l domain.Lawyer) string {
	parts := []string{l.Name, l.Firm, l.Location}
	for i, p := range parts {
		parts[i] = strings.ToLower(strings.Join(strings.Fields(p), " "))
	}
	return strings.Join(parts, "|")
}
