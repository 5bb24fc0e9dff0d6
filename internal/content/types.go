package content

import (
	"encoding/json"
	"fmt"
	"strings"
)

// QuestionRecord is one multiple-choice question from a quiz bank.
// Answer holds either the literal text of the correct choice or a
// single-letter answer key ("a".."d") pointing into Choices.
type QuestionRecord struct {
	Question string   `yaml:"question" json:"question"`
	Choices  []string `yaml:"choices" json:"choices"`
	Answer   string   `yaml:"answer" json:"answer"`
}

// ResolveAnswer returns the index into Choices that Answer designates.
// An answer that resolves to zero or multiple choices is a content
// integrity error, not a user error.
func (q QuestionRecord) ResolveAnswer() (int, error) {
	key := strings.ToLower(strings.TrimSpace(q.Answer))
	if len(key) == 1 && key[0] >= 'a' && key[0] <= 'z' {
		idx := int(key[0] - 'a')
		if idx < len(q.Choices) {
			return idx, nil
		}
		return 0, fmt.Errorf("answer key %q out of range for %d choices", q.Answer, len(q.Choices))
	}

	found := -1
	for i, c := range q.Choices {
		if strings.EqualFold(strings.TrimSpace(c), key) {
			if found >= 0 {
				return 0, fmt.Errorf("answer %q matches more than one choice", q.Answer)
			}
			found = i
		}
	}
	if found < 0 {
		return 0, fmt.Errorf("answer %q matches none of the choices", q.Answer)
	}
	return found, nil
}

// StringList accepts either a single JSON string or an array of strings.
// Theme datasets use both forms interchangeably.
type StringList []string

func (l *StringList) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*l = StringList{single}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*l = StringList(many)
	return nil
}

// Expression is one entry of a bilingual expression list.
type Expression struct {
	EN StringList `json:"en"`
	FR string     `json:"fr,omitempty"`
}

// Entity is an enumerated named item (a martyr, a recipe).
type Entity struct {
	Name  string `json:"name,omitempty"`
	Title string `json:"title,omitempty"`
}

// Label returns whichever of Name or Title is set.
func (e Entity) Label() string {
	if e.Name != "" {
		return e.Name
	}
	return e.Title
}

// Node is a theme document. A document carries at most one of the shape
// fields below; renderers must probe them in the order they are declared
// here and never assume more than one is present.
type Node struct {
	Title   string `json:"title,omitempty"`
	TitleEN string `json:"title_en,omitempty"`

	Summary      string                       `json:"summary,omitempty"`
	Translations map[string]string            `json:"translations,omitempty"`
	Vocab        map[string]string            `json:"vocab,omitempty"`
	Categories   map[string]map[string]string `json:"categories,omitempty"`
	Topics       map[string]map[string]string `json:"topics,omitempty"`
	Expressions  map[string]Expression        `json:"expressions,omitempty"`
	History      []string                     `json:"history,omitempty"`
	FunFacts     []string                     `json:"fun_facts,omitempty"`
	Martyrs      []Entity                     `json:"martyrs,omitempty"`
	Recipes      []Entity                     `json:"recettes,omitempty"`
}

// DisplayTitle returns the node's title, preferring the English one for
// English sessions, falling back to the raw theme key.
func (n Node) DisplayTitle(lang, key string) string {
	if lang == "en" && n.TitleEN != "" {
		return n.TitleEN
	}
	if n.Title != "" {
		return n.Title
	}
	if n.TitleEN != "" {
		return n.TitleEN
	}
	return strings.ReplaceAll(key, "_", " ")
}

// ThemeSet is one ordered theme dataset. Keys preserve the document
// order of the source file so numeric selection stays stable.
type ThemeSet struct {
	Name  string
	keys  []string
	nodes map[string]Node
}

// NewThemeSet builds a dataset from an ordered key list and its nodes.
func NewThemeSet(name string, keys []string, nodes map[string]Node) *ThemeSet {
	return &ThemeSet{Name: name, keys: keys, nodes: nodes}
}

// Keys returns the theme keys in dataset order.
func (s *ThemeSet) Keys() []string { return s.keys }

// Node returns the document for a key.
func (s *ThemeSet) Node(key string) (Node, bool) {
	n, ok := s.nodes[key]
	return n, ok
}
