package content

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// NewCatalog loads a content directory. File naming conventions:
//
//	quiz_<lang>.yaml   quiz bank for one language: level -> questions
//	themes_<name>.json one ordered theme dataset
//	strings.yaml       overrides for the embedded UI string table
//
// Theme files are schema-validated before use. Invalid files are skipped
// with a warning so one bad dataset never takes the whole catalog down.
func NewCatalog(rootDir string) (*Catalog, error) {
	c := &Catalog{
		quizzes: map[string]map[string][]QuestionRecord{},
		strings: defaultStrings(),
	}

	err := filepath.Walk(rootDir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return err
		}
		name := filepath.Base(path)
		switch {
		case strings.HasPrefix(name, "quiz_") && (strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml")):
			return c.loadQuizBank(path)
		case strings.HasPrefix(name, "themes_") && strings.HasSuffix(name, ".json"):
			return c.loadThemeSet(path)
		case name == "strings.yaml":
			return c.loadStrings(path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("loading content: %w", err)
	}

	slog.Info("content catalog loaded",
		"languages", len(c.quizzes),
		"theme_sets", len(c.sets),
	)
	return c, nil
}

func (c *Catalog) loadQuizBank(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var bank map[string][]QuestionRecord
	if err := yaml.Unmarshal(data, &bank); err != nil {
		slog.Warn("skipping invalid quiz bank", "path", path, "error", err)
		return nil
	}

	lang := strings.TrimSuffix(strings.TrimSuffix(filepath.Base(path), ".yaml"), ".yml")
	lang = strings.TrimPrefix(lang, "quiz_")
	if lang == "" {
		return nil
	}

	c.quizzes[lang] = bank
	return nil
}

func (c *Catalog) loadThemeSet(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	if err := validateThemeDocument(data); err != nil {
		slog.Warn("skipping invalid theme dataset", "path", path, "error", err)
		return nil
	}

	var nodes map[string]Node
	if err := json.Unmarshal(data, &nodes); err != nil {
		slog.Warn("skipping unreadable theme dataset", "path", path, "error", err)
		return nil
	}

	keys, err := topLevelKeys(data)
	if err != nil {
		slog.Warn("skipping unordered theme dataset", "path", path, "error", err)
		return nil
	}

	name := strings.TrimSuffix(strings.TrimPrefix(filepath.Base(path), "themes_"), ".json")
	c.sets = append(c.sets, NewThemeSet(name, keys, nodes))
	return nil
}

func (c *Catalog) loadStrings(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var table map[string]map[string]string
	if err := yaml.Unmarshal(data, &table); err != nil {
		slog.Warn("skipping invalid strings file", "path", path, "error", err)
		return nil
	}

	c.mergeStrings(table)
	return nil
}

// topLevelKeys extracts the top-level object keys of a JSON document in
// file order. Go maps lose that order and theme lists need it for
// stable numeric selection.
func topLevelKeys(data []byte) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("expected top-level object, got %v", tok)
	}

	var keys []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected token %v", tok)
		}
		keys = append(keys, key)

		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return nil, err
		}
	}
	return keys, nil
}
