package domain

import (
	"strings"

	"golang.org/x/text/language"
)

// Audience is anything that can receive a rendered transaction message,
// typically the caller that initiated the mutation.
type Audience interface {
	// Locale returns the audience's preferred language.
	Locale() language.Tag
	// SendMessage delivers a rendered message to the audience.
	SendMessage(text string)
}

// MessageTemplate is a locale-aware message bound to a result code.
// Templates may reference {amount}, {balance} and {currency}, which are
// substituted at render time.
type MessageTemplate struct {
	fallback  string
	localized map[language.Tag]string
}

// NewMessage creates a template with a fallback rendering used when no
// localization matches the audience's locale.
func NewMessage(fallback string) MessageTemplate {
	return MessageTemplate{fallback: fallback}
}

// Localize returns a copy of the template with a rendering for the given
// language. The receiver is not modified.
func (m MessageTemplate) Localize(tag language.Tag, text string) MessageTemplate {
	localized := make(map[language.Tag]string, len(m.localized)+1)
	for k, v := range m.localized {
		localized[k] = v
	}
	localized[tag] = text
	return MessageTemplate{fallback: m.fallback, localized: localized}
}

// Resolve picks the rendering for a locale, falling back to the default.
func (m MessageTemplate) Resolve(tag language.Tag) string {
	if text, ok := m.localized[tag]; ok {
		return text
	}
	return m.fallback
}

// Empty reports whether the template has no rendering at all.
func (m MessageTemplate) Empty() bool {
	return m.fallback == "" && len(m.localized) == 0
}

func renderTemplate(text string, pairs ...string) string {
	if text == "" {
		return ""
	}
	return strings.NewReplacer(pairs...).Replace(text)
}
