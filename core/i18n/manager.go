package i18n

import (
	"sync"
)

// Manager holds the current site language and the listeners to notify when it changes.
type Manager struct {
	catalog *Catalog

	mu        sync.RWMutex
	lang      string
	listeners []func(lang string)
}

func NewManager(catalog *Catalog, defaultLang string) (*Manager, error) {
	lang := Normalize(defaultLang)
	if !IsSupported(lang) {
		return nil, ErrUnsupportedLanguage
	}
	return &Manager{catalog: catalog, lang: lang}, nil
}

func (m *Manager) Catalog() *Catalog { return m.catalog }

func (m *Manager) Language() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lang
}

// SetLanguage switches the current language and notifies every listener, even when unchanged.
func (m *Manager) SetLanguage(lang string) error {
	lang = Normalize(lang)
	if !IsSupported(lang) {
		return ErrUnsupportedLanguage
	}

	m.mu.Lock()
	m.lang = lang
	listeners := append([]func(string){}, m.listeners...)
	m.mu.Unlock()

	for _, fn := range listeners {
		fn(lang)
	}
	return nil
}

// OnChange registers `fn` to be called with the new language on every change.
func (m *Manager) OnChange(fn func(lang string)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, fn)
}

// Translate translates `key` in the current language.
func (m *Manager) Translate(key string) string {
	return m.catalog.Translate(m.Language(), key)
}

// UpdateTranslation overrides the text of an existing key.
// Listeners are re-run when `lang` is the current language.
func (m *Manager) UpdateTranslation(lang, key, text string) (bool, error) {
	lang = Normalize(lang)
	ok, err := m.catalog.UpdateTranslation(lang, key, text)
	if err != nil || !ok {
		return ok, err
	}

	m.mu.RLock()
	current := m.lang == lang
	listeners := append([]func(string){}, m.listeners...)
	m.mu.RUnlock()

	if current {
		for _, fn := range listeners {
			fn(lang)
		}
	}
	return true, nil
}
