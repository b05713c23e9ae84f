// Package i18n holds the UI translations served to the web app.
//
// A lookup returns a Value that is either a plain text or a formatter taking a count;
// callers branch on Value.Kind.
package i18n

import (
	"strconv"

	"github.com/go-playground/locales"
	"github.com/go-playground/locales/ar"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/pkg/errors"
)

type Kind string

const (
	KindText      Kind = "text"
	KindFormatter Kind = "formatter"

	DefaultLang = "en"
)

// Value is the result of a lookup: Text for KindText, Format for KindFormatter.
type Value struct {
	Kind   Kind
	Text   string
	Format func(n int) string
}

// String renders the value, formatting n when it is a formatter.
func (v Value) String(n int) string {
	if v.Kind == KindFormatter && v.Format != nil {
		return v.Format(n)
	}
	return v.Text
}

type Catalog struct {
	uni        *ut.UniversalTranslator
	langs      []string
	formatters map[string]bool // cardinal keys
}

// NewCatalog loads the english and arabic translations.
func NewCatalog() (*Catalog, error) {
	_en := en.New()
	c := &Catalog{
		uni:        ut.New(_en, _en, ar.New()),
		langs:      []string{"en", "ar"},
		formatters: make(map[string]bool),
	}
	for lang, entries := range translations {
		trans, _ := c.uni.GetTranslator(lang)
		for key, text := range entries.texts {
			if err := trans.Add(key, text, false); err != nil {
				return nil, errors.Wrapf(err, "adding %s translation %q", lang, key)
			}
		}
		for key, rules := range entries.cardinals {
			c.formatters[key] = true
			for rule, text := range rules {
				if err := trans.AddCardinal(key, text, rule, false); err != nil {
					return nil, errors.Wrapf(err, "adding %s cardinal translation %q", lang, key)
				}
			}
		}
	}
	if err := c.uni.VerifyTranslations(); err != nil {
		return nil, errors.Wrap(err, "verifying translations")
	}
	return c, nil
}

func (c *Catalog) Languages() []string {
	return append([]string(nil), c.langs...)
}

// Translator returns the translator of lang, falling back to english.
func (c *Catalog) Translator(lang string) ut.Translator {
	trans, found := c.uni.GetTranslator(lang)
	if !found {
		return c.uni.GetFallback()
	}
	return trans
}

// Lookup translates key in lang. An unknown key is returned as a text equal to the key.
func (c *Catalog) Lookup(lang, key string) Value {
	trans := c.Translator(lang)

	if c.formatters[key] {
		return Value{
			Kind: KindFormatter,
			Format: func(n int) string {
				s, err := trans.C(key, float64(n), 0, strconv.Itoa(n))
				if err != nil {
					return key
				}
				return s
			},
		}
	}

	s, err := trans.T(key)
	if err != nil {
		return Value{Kind: KindText, Text: key}
	}
	return Value{Kind: KindText, Text: s}
}

// T is Lookup rendered with a count of 0 for formatters.
func (c *Catalog) T(lang, key string) string {
	return c.Lookup(lang, key).String(0)
}

type entries struct {
	texts     map[string]string
	cardinals map[string]map[locales.PluralRule]string
}
