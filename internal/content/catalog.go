// Package content provides the read-only content catalog: quiz banks
// keyed by language and level, ordered theme datasets, and the localized
// UI string table. A Catalog is immutable after loading and safe to
// share across concurrent sessions without synchronization.
package content

import (
	_ "embed"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed strings.yaml
var defaultStringsYAML []byte

const fallbackLanguage = "fr"

// Catalog is the assembled content set served to the dialogue engine.
type Catalog struct {
	quizzes map[string]map[string][]QuestionRecord // lang -> level -> questions
	sets    []*ThemeSet
	strings map[string]map[string]string // id -> lang -> template
}

// NewStaticCatalog builds a catalog from in-memory data. The embedded
// default string table is always present; entries in strs override it.
func NewStaticCatalog(quizzes map[string]map[string][]QuestionRecord, sets []*ThemeSet, strs map[string]map[string]string) *Catalog {
	c := &Catalog{
		quizzes: quizzes,
		sets:    sets,
		strings: defaultStrings(),
	}
	if c.quizzes == nil {
		c.quizzes = map[string]map[string][]QuestionRecord{}
	}
	c.mergeStrings(strs)
	return c
}

// Quizzes returns the question set for a language and internal level key.
// A missing language or level yields an empty set, never an error.
func (c *Catalog) Quizzes(lang, level string) []QuestionRecord {
	byLevel, ok := c.quizzes[lang]
	if !ok {
		return nil
	}
	return byLevel[level]
}

// ThemeSets returns the theme datasets in catalog order.
func (c *Catalog) ThemeSets() []*ThemeSet { return c.sets }

// Text renders the localized string for a message id, interpolating
// {name} placeholders from params. Unknown languages fall back to
// French; an unknown id falls back to the id itself so a missing
// translation never breaks a turn.
func (c *Catalog) Text(id, lang string, params map[string]string) string {
	byLang, ok := c.strings[id]
	if !ok {
		return id
	}
	tmpl, ok := byLang[lang]
	if !ok || tmpl == "" {
		tmpl, ok = byLang[fallbackLanguage]
		if !ok {
			return id
		}
	}
	for k, v := range params {
		tmpl = strings.ReplaceAll(tmpl, "{"+k+"}", v)
	}
	return tmpl
}

func (c *Catalog) mergeStrings(strs map[string]map[string]string) {
	for id, byLang := range strs {
		if c.strings[id] == nil {
			c.strings[id] = map[string]string{}
		}
		for lang, tmpl := range byLang {
			c.strings[id][lang] = tmpl
		}
	}
}

func defaultStrings() map[string]map[string]string {
	var table map[string]map[string]string
	// The embedded table is part of the build; a parse failure here is a
	// programming error surfaced by the package tests, not a runtime path.
	if err := yaml.Unmarshal(defaultStringsYAML, &table); err != nil {
		return map[string]map[string]string{}
	}
	return table
}
