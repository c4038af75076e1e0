package i18n_test

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mishra-aashu/Kind-Heart-s-Sangam-Foundation/core/i18n"
	appfs "github.com/mishra-aashu/Kind-Heart-s-Sangam-Foundation/fs"
)

var testDicts = fstest.MapFS{
	"i18n/en.json": {Data: []byte(`{
		"nav.home": "Home",
		"hero.subtitle": "Every 3 seconds",
		"form.name": "Full name",
		"form.submit": "Submit",
		"about.html": "Read <strong>more</strong>",
		"only.english": "English only"
	}`)},
	"i18n/hi.json": {Data: []byte(`{
		"nav.home": "होम",
		"hero.subtitle": "हर 3 सेकंड में",
		"form.name": "पूरा नाम",
		"form.submit": "जमा करें",
		"about.html": "<strong>और</strong> पढ़ें"
	}`)},
}

func newCatalog(t *testing.T) *i18n.Catalog {
	t.Helper()
	c, err := i18n.NewCatalog(testDicts)
	require.NoError(t, err)
	return c
}

func TestEmbeddedDictionaries(t *testing.T) {
	c, err := i18n.NewCatalog(appfs.FS)
	require.NoError(t, err)
	assert.Equal(t, c.Keys(i18n.English), c.Keys(i18n.Hindi))
	assert.Equal(t, "होम", c.Translate(i18n.Hindi, "nav.home"))
}

func TestNewCatalogErrors(t *testing.T) {
	_, err := i18n.NewCatalog(fstest.MapFS{})
	assert.Error(t, err)

	_, err = i18n.NewCatalog(fstest.MapFS{
		"i18n/en.json": {Data: []byte(`{}`)},
		"i18n/hi.json": {Data: []byte(`[not json`)},
	})
	assert.Error(t, err)
}

func TestCatalogTranslate(t *testing.T) {
	c := newCatalog(t)
	tests := []struct {
		name string
		lang string
		key  string
		want string
	}{
		{"english", "en", "nav.home", "Home"},
		{"hindi", "hi", "nav.home", "होम"},
		{"falls back to english", "hi", "only.english", "English only"},
		{"falls back to key", "hi", "missing.key", "missing.key"},
		{"unsupported language", "fr", "nav.home", "Home"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, c.Translate(tc.lang, tc.key))
		})
	}
}

func TestCatalogDictionary(t *testing.T) {
	c := newCatalog(t)

	dict, err := c.Dictionary("hi")
	require.NoError(t, err)
	assert.Len(t, dict, 5)

	dict["nav.home"] = "changed"
	assert.Equal(t, "होम", c.Translate("hi", "nav.home"), "dictionary is a copy")

	_, err = c.Dictionary("fr")
	assert.Equal(t, i18n.ErrUnsupportedLanguage, err)
}

func TestCatalogAddAndUpdate(t *testing.T) {
	c := newCatalog(t)

	require.NoError(t, c.AddTranslation("hi", "only.english", "केवल अंग्रेज़ी"))
	assert.Equal(t, "केवल अंग्रेज़ी", c.Translate("hi", "only.english"))
	assert.Error(t, c.AddTranslation("hi", "  ", "x"))
	assert.Equal(t, i18n.ErrUnsupportedLanguage, c.AddTranslation("fr", "k", "v"))

	ok, err := c.UpdateTranslation("en", "nav.home", "Start")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Start", c.Translate("en", "nav.home"))

	ok, err = c.UpdateTranslation("en", "unknown.key", "x")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, "unknown.key", c.Translate("en", "unknown.key"))

	_, err = c.UpdateTranslation("fr", "nav.home", "x")
	assert.Equal(t, i18n.ErrUnsupportedLanguage, err)
}

func TestCatalogTranslator(t *testing.T) {
	c := newCatalog(t)

	trans, err := c.Translator("hi")
	require.NoError(t, err)
	assert.Equal(t, "hi", trans.Locale())
	s, err := trans.T("nav.home")
	require.NoError(t, err)
	assert.Equal(t, "होम", s)

	_, err = c.Translator("fr")
	assert.Equal(t, i18n.ErrUnsupportedLanguage, err)
}

func TestManager(t *testing.T) {
	c := newCatalog(t)

	_, err := i18n.NewManager(c, "fr")
	assert.Equal(t, i18n.ErrUnsupportedLanguage, err)

	m, err := i18n.NewManager(c, "en")
	require.NoError(t, err)
	assert.Equal(t, "en", m.Language())

	var (
		mu      sync.Mutex
		changes []string
	)
	m.OnChange(func(lang string) {
		mu.Lock()
		defer mu.Unlock()
		changes = append(changes, lang)
	})

	require.NoError(t, m.SetLanguage("hi-IN"))
	assert.Equal(t, "hi", m.Language())
	assert.Equal(t, "होम", m.Translate("nav.home"))

	assert.Equal(t, i18n.ErrUnsupportedLanguage, m.SetLanguage("fr"))
	assert.Equal(t, "hi", m.Language())

	// updating the current language re-runs the listeners, other languages do not
	ok, err := m.UpdateTranslation("hi", "nav.home", "मुख्य पृष्ठ")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = m.UpdateTranslation("en", "nav.home", "Start")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = m.UpdateTranslation("hi", "missing", "x")
	require.NoError(t, err)
	assert.False(t, ok)

	assert.Equal(t, []string{"hi", "hi"}, changes)
	assert.Equal(t, "मुख्य पृष्ठ", m.Translate("nav.home"))
}

func TestManagerConcurrency(t *testing.T) {
	m, err := i18n.NewManager(newCatalog(t), "en")
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			lang := i18n.Supported[i%2]
			assert.NoError(t, m.SetLanguage(lang))
			assert.True(t, i18n.IsSupported(m.Language()))
		}(i)
	}
	wg.Wait()
}

func TestMatchLanguage(t *testing.T) {
	tests := []struct {
		header string
		want   string
		ok     bool
	}{
		{"hi-IN,hi;q=0.9,en;q=0.8", "hi", true},
		{"en-US,en;q=0.9", "en", true},
		{"fr-FR,hi;q=0.5", "hi", true},
		{"", "", false},
		{"zz", "", false},
	}
	for _, tc := range tests {
		t.Run(tc.header, func(t *testing.T) {
			got, ok := i18n.MatchLanguage(tc.header)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "hi", i18n.Normalize("hi-IN"))
	assert.Equal(t, "en", i18n.Normalize(" en-GB "))
	assert.Equal(t, "hi", i18n.Normalize("hi"))
}

func TestApply(t *testing.T) {
	c := newCatalog(t)
	page := `<!DOCTYPE html><html lang="en"><head></head><body>
<a data-translate="nav.home">Home</a>
<p id="rotating-subtitle" data-translate="hero.subtitle">Every 3 seconds</p>
<p id="rotating-subtitle" data-translate="hero.subtitle" data-dynamic-content="true">Typed by script</p>
<input type="text" data-translate="form.name">
<textarea data-translate="form.name"></textarea>
<input type="submit" data-translate="form.submit" value="Submit">
<div data-translate-html="about.html">Read more</div>
<button id="language-toggle">हिन्दी</button>
<span data-translate="missing.key">kept?</span>
</body></html>`

	var buf bytes.Buffer
	require.NoError(t, i18n.Apply(&buf, strings.NewReader(page), c, "hi"))
	out := buf.String()

	assert.Contains(t, out, `<html lang="hi">`)
	assert.Contains(t, out, `<a data-translate="nav.home">होम</a>`)
	assert.Contains(t, out, `<p id="rotating-subtitle" data-translate="hero.subtitle">हर 3 सेकंड में</p>`)
	assert.Contains(t, out, `data-dynamic-content="true">Typed by script</p>`)
	assert.Contains(t, out, `<input type="text" data-translate="form.name" placeholder="पूरा नाम"/>`)
	assert.Contains(t, out, `<textarea data-translate="form.name" placeholder="पूरा नाम"></textarea>`)
	assert.Contains(t, out, `<input type="submit" data-translate="form.submit" value="जमा करें"/>`)
	assert.Contains(t, out, `<div data-translate-html="about.html"><strong>और</strong> पढ़ें</div>`)
	assert.Contains(t, out, `<button id="language-toggle" title="Switch to English">English</button>`)
	assert.Contains(t, out, `<span data-translate="missing.key">missing.key</span>`)
}

func TestApplyEnglish(t *testing.T) {
	c := newCatalog(t)
	page := `<html><body><button id="language-toggle">English</button><a data-translate="nav.home">होम</a></body></html>`

	var buf bytes.Buffer
	require.NoError(t, i18n.Apply(&buf, strings.NewReader(page), c, "en"))
	out := buf.String()

	assert.Contains(t, out, `<html lang="en">`)
	assert.Contains(t, out, `<a data-translate="nav.home">Home</a>`)
	assert.Contains(t, out, `title="हिन्दी में बदलें">हिन्दी</button>`)
}
