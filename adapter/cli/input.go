package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/felixgeelhaar/taskrank/internal/prioritization/domain/priority"
	"github.com/felixgeelhaar/taskrank/internal/shared/infrastructure/security"
	"gopkg.in/yaml.v3"
)

// readBatch loads a task batch as a JSON document. YAML files are converted
// so that both formats go through the same validation. "-" reads JSON from
// stdin.
func readBatch(path string, stdin io.Reader) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	if path == "" || path == "-" {
		data, err = io.ReadAll(io.LimitReader(stdin, security.DefaultMaxFileBytes))
	} else {
		data, err = security.ReadFile(path, security.DefaultMaxFileBytes)
	}
	if err != nil {
		return nil, fmt.Errorf("read tasks: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yamlToJSON(data)
	default:
		return data, nil
	}
}

func yamlToJSON(data []byte) ([]byte, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse YAML tasks: %w", err)
	}
	out, err := json.Marshal(normalizeYAML(doc))
	if err != nil {
		return nil, fmt.Errorf("convert YAML tasks: %w", err)
	}
	return out, nil
}

// normalizeYAML makes a decoded YAML value JSON-encodable.
func normalizeYAML(v any) any {
	switch val := v.(type) {
	case map[string]any:
		for k, item := range val {
			val[k] = normalizeYAML(item)
		}
		return val
	case map[any]any:
		m := make(map[string]any, len(val))
		for k, item := range val {
			m[fmt.Sprint(k)] = normalizeYAML(item)
		}
		return m
	case []any:
		for i, item := range val {
			val[i] = normalizeYAML(item)
		}
		return val
	case time.Time:
		return priority.DateOf(val).String()
	default:
		return v
	}
}
