// Package i18n translates the site between English and Hindi.
package i18n

import (
	"encoding/json"
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/locales"
	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/hi"
	ut "github.com/go-playground/universal-translator"
	"github.com/pkg/errors"
)

const (
	English = "en"
	Hindi   = "hi"

	dictionariesDir = "i18n"
)

var (
	ErrUnsupportedLanguage = errors.New("unsupported language")

	// Supported lists the site languages; the first one is the fallback.
	Supported = []string{English, Hindi}
)

// IsSupported reports whether `lang` is one of Supported.
func IsSupported(lang string) bool {
	for _, l := range Supported {
		if l == lang {
			return true
		}
	}
	return false
}

// Catalog holds the translations of every supported language.
// Lookups of a missing key fall back to English, then to the key itself.
type Catalog struct {
	mu    sync.RWMutex
	uni   *ut.UniversalTranslator
	dicts map[string]map[string]string
}

// NewCatalog loads the "i18n/<lang>.json" dictionaries of `fsys`.
func NewCatalog(fsys fs.FS) (*Catalog, error) {
	_en := en.New()
	c := &Catalog{
		uni:   ut.New(_en, _en, hi.New()),
		dicts: make(map[string]map[string]string, len(Supported)),
	}

	for _, lang := range Supported {
		data, err := fs.ReadFile(fsys, path.Join(dictionariesDir, lang+".json"))
		if err != nil {
			return nil, errors.Wrapf(err, "reading %s dictionary", lang)
		}
		var dict map[string]string
		if err := json.Unmarshal(data, &dict); err != nil {
			return nil, errors.Wrapf(err, "decoding %s dictionary", lang)
		}

		c.dicts[lang] = make(map[string]string, len(dict))
		for key, text := range dict {
			if err := c.add(lang, key, text); err != nil {
				return nil, err
			}
		}
	}
	return c, nil
}

func (c *Catalog) translator(lang string) (ut.Translator, error) {
	if !IsSupported(lang) {
		return nil, ErrUnsupportedLanguage
	}
	trans, _ := c.uni.GetTranslator(lang)
	return trans, nil
}

// add must be called with c.mu held for writing (or before c is shared).
func (c *Catalog) add(lang, key, text string) error {
	trans, err := c.translator(lang)
	if err != nil {
		return err
	}
	if err := trans.Add(key, text, true); err != nil {
		return errors.Wrapf(err, "adding %s translation %q", lang, key)
	}
	c.dicts[lang][key] = text
	return nil
}

// Translator returns the universal translator of `lang`, e.g. to register validation messages.
func (c *Catalog) Translator(lang string) (ut.Translator, error) {
	return c.translator(lang)
}

// Locale returns the locale of `lang` (plural rules, number and date formats).
func (c *Catalog) Locale(lang string) (locales.Translator, error) {
	trans, err := c.translator(lang)
	if err != nil {
		return nil, err
	}
	return trans, nil
}

func (c *Catalog) Translate(lang, key string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if text, ok := c.dicts[lang][key]; ok {
		return text
	}
	if text, ok := c.dicts[English][key]; ok {
		return text
	}
	return key
}

// Dictionary returns a copy of every translation of `lang`.
func (c *Catalog) Dictionary(lang string) (map[string]string, error) {
	if !IsSupported(lang) {
		return nil, ErrUnsupportedLanguage
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	dict := make(map[string]string, len(c.dicts[lang]))
	for k, v := range c.dicts[lang] {
		dict[k] = v
	}
	return dict, nil
}

// Keys returns the sorted keys of `lang`.
func (c *Catalog) Keys(lang string) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	keys := make([]string, 0, len(c.dicts[lang]))
	for k := range c.dicts[lang] {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// AddTranslation sets the translation of `key`, creating the key if needed.
func (c *Catalog) AddTranslation(lang, key, text string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New("empty translation key")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.add(lang, key, text)
}

// UpdateTranslation replaces the translation of an existing `key`. It reports whether the key existed.
func (c *Catalog) UpdateTranslation(lang, key, text string) (bool, error) {
	if !IsSupported(lang) {
		return false, ErrUnsupportedLanguage
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.dicts[lang][key]; !ok {
		return false, nil
	}
	return true, c.add(lang, key, text)
}
