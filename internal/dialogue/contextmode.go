package dialogue

import (
	"sort"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/unicode/norm"

	"github.com/fennlabs/fennlingo/internal/content"
)

// startContext opens the theme browser with a numbered list of every
// theme across the loaded datasets, in catalog order.
func (e *Engine) startContext(s *Session) Reply {
	lang := e.lang(s)
	var keys []string
	var b strings.Builder
	b.WriteString(e.text("context_intro", lang))
	for _, set := range e.catalog.ThemeSets() {
		for _, key := range set.Keys() {
			node, _ := set.Node(key)
			keys = append(keys, key)
			b.WriteString("\n")
			b.WriteString(strconv.Itoa(len(keys)))
			b.WriteString(". ")
			b.WriteString(node.DisplayTitle(lang, key))
		}
	}
	s.State = StateContext
	s.Context = &ContextState{AvailableThemes: keys}
	return reply(TypeContextList,
		seg(TypeContextList, b.String()),
		seg(TypeContextIntro, e.text("context_hint", lang)))
}

func (e *Engine) contextTurn(input, lower string, s *Session) Reply {
	lang := e.lang(s)

	if isEscape(lower) {
		return e.escapeToMenu(s)
	}
	if s.Context == nil {
		return e.startContext(s)
	}

	key, ok := e.resolveTheme(lower, s.Context.AvailableThemes)
	if !ok {
		return reply(TypeContextError,
			seg(TypeContextError, e.text("context_not_found", lang)),
			seg(TypeContextIntro, e.text("context_hint", lang)))
	}

	node, found := e.lookupTheme(key)
	if !found {
		return reply(TypeContextError,
			seg(TypeContextError, e.text("context_not_found", lang)),
			seg(TypeContextIntro, e.text("context_hint", lang)))
	}
	return reply(TypeContextTheme,
		seg(TypeContextTheme, renderNode(node, lang, key)),
		seg(TypeContextIntro, e.text("context_hint", lang)))
}

// resolveTheme maps user input to a theme key: 1-based list number
// first, then fuzzy title/key matching in decreasing strictness.
func (e *Engine) resolveTheme(lower string, available []string) (string, bool) {
	if n, err := strconv.Atoi(lower); err == nil {
		if n >= 1 && n <= len(available) {
			return available[n-1], true
		}
		return "", false
	}

	want := normalizeTheme(lower)
	if want == "" {
		return "", false
	}

	// Datasets are searched in catalog order and the first one holding
	// any match wins, so a weak match in an earlier dataset beats a
	// strong match in a later one.
	for _, set := range e.catalog.ThemeSets() {
		if key, ok := matchThemeInSet(want, set); ok {
			return key, true
		}
	}
	return "", false
}

// matchThemeInSet scans one dataset in decreasing strictness. Pass 1:
// exact key. Pass 2: exact title. Pass 3: input contained in a title.
// Pass 4: key prefix, either direction.
func matchThemeInSet(want string, set *content.ThemeSet) (string, bool) {
	for pass := 1; pass <= 4; pass++ {
		for _, key := range set.Keys() {
			node, _ := set.Node(key)
			nkey := normalizeTheme(key)
			switch pass {
			case 1:
				if want == nkey {
					return key, true
				}
			case 2:
				if want == normalizeTheme(node.Title) || want == normalizeTheme(node.TitleEN) {
					return key, true
				}
			case 3:
				if title := normalizeTheme(node.Title); title != "" && strings.Contains(title, want) {
					return key, true
				}
				if title := normalizeTheme(node.TitleEN); title != "" && strings.Contains(title, want) {
					return key, true
				}
			case 4:
				if strings.HasPrefix(nkey, want) || strings.HasPrefix(want, nkey) {
					return key, true
				}
			}
		}
	}
	return "", false
}

func (e *Engine) lookupTheme(key string) (content.Node, bool) {
	for _, set := range e.catalog.ThemeSets() {
		if node, ok := set.Node(key); ok {
			return node, true
		}
	}
	return content.Node{}, false
}

var themeStripper = runes.Remove(runes.In(unicode.Mn))

// normalizeTheme lowercases, strips diacritics and collapses separators
// so "Journée de l'Indépendance" matches "journee de l independance".
func normalizeTheme(s string) string {
	s = norm.NFD.String(s)
	s = themeStripper.String(s)
	s = strings.ToLower(s)
	var b strings.Builder
	prevSpace := false
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			prevSpace = false
			continue
		}
		if !prevSpace && b.Len() > 0 {
			b.WriteRune(' ')
			prevSpace = true
		}
	}
	return strings.TrimSpace(b.String())
}

// renderNode flattens a theme document to text. It probes the shape
// fields in their declared priority order and renders the first one
// present; header and trailing lists always render when set.
func renderNode(n content.Node, lang, key string) string {
	var b strings.Builder
	b.WriteString("📖 ")
	b.WriteString(n.DisplayTitle(lang, key))

	switch {
	case n.Summary != "":
		b.WriteString("\n")
		b.WriteString(n.Summary)
	case len(n.Translations) > 0:
		writePairs(&b, n.Translations)
	case len(n.Vocab) > 0:
		writePairs(&b, n.Vocab)
	case len(n.Categories) > 0:
		writeGroups(&b, n.Categories)
	case len(n.Topics) > 0:
		writeGroups(&b, n.Topics)
	case len(n.Expressions) > 0:
		for _, name := range sortedKeys(n.Expressions) {
			ex := n.Expressions[name]
			b.WriteString("\n• ")
			b.WriteString(name)
			if len(ex.EN) > 0 {
				b.WriteString(" — ")
				b.WriteString(strings.Join(ex.EN, " / "))
			}
			if ex.FR != "" {
				b.WriteString(" (")
				b.WriteString(ex.FR)
				b.WriteString(")")
			}
		}
	}

	writeLines(&b, n.History)
	writeLines(&b, n.FunFacts)
	writeEntities(&b, n.Martyrs)
	writeEntities(&b, n.Recipes)
	return b.String()
}

func writePairs(b *strings.Builder, m map[string]string) {
	for _, k := range sortedKeys(m) {
		b.WriteString("\n• ")
		b.WriteString(k)
		b.WriteString(" : ")
		b.WriteString(m[k])
	}
}

func writeGroups(b *strings.Builder, m map[string]map[string]string) {
	for _, group := range sortedKeys(m) {
		b.WriteString("\n▸ ")
		b.WriteString(group)
		writePairs(b, m[group])
	}
}

func writeLines(b *strings.Builder, lines []string) {
	for _, l := range lines {
		b.WriteString("\n• ")
		b.WriteString(l)
	}
}

func writeEntities(b *strings.Builder, ents []content.Entity) {
	for _, e := range ents {
		b.WriteString("\n• ")
		b.WriteString(e.Label())
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
