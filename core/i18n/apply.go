package i18n

import (
	"io"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const (
	attrTranslate     = "data-translate"
	attrTranslateHTML = "data-translate-html"
	attrDynamic       = "data-dynamic-content"

	rotatingSubtitleID = "rotating-subtitle"
	languageToggleID   = "language-toggle"
)

// toggle labels show the language the toggle switches to
var toggleLabels = map[string][2]string{
	English: {"हिन्दी", "हिन्दी में बदलें"},
	Hindi:   {"English", "Switch to English"},
}

// Apply translates the HTML document read from `r` into `lang` and writes it to `w`:
//
//	data-translate="key"      sets the text, the placeholder of inputs and textareas,
//	                          or the value of submit and button inputs
//	data-translate-html="key" replaces the inner HTML
//
// The rotating subtitle keeps its content once scripts marked it dynamic.
// The root element gets the `lang` attribute.
func Apply(w io.Writer, r io.Reader, c *Catalog, lang string) error {
	doc, err := html.Parse(r)
	if err != nil {
		return errors.Wrap(err, "parsing html")
	}
	if err := translateTree(doc, func(key string) string { return c.Translate(lang, key) }, lang); err != nil {
		return err
	}
	return errors.Wrap(html.Render(w, doc), "rendering html")
}

func translateTree(n *html.Node, translate func(string) string, lang string) error {
	if n.Type == html.ElementNode {
		if err := translateElement(n, translate, lang); err != nil {
			return err
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := translateTree(c, translate, lang); err != nil {
			return err
		}
	}
	return nil
}

func translateElement(n *html.Node, translate func(string) string, lang string) error {
	if n.DataAtom == atom.Html {
		setAttr(n, "lang", lang)
	}

	if getAttr(n, "id") == languageToggleID {
		if labels, ok := toggleLabels[lang]; ok {
			setText(n, labels[0])
			setAttr(n, "title", labels[1])
		}
	}

	if key, ok := lookupAttr(n, attrTranslate); ok {
		text := translate(key)
		switch {
		case getAttr(n, "id") == rotatingSubtitleID:
			if _, dynamic := lookupAttr(n, attrDynamic); !dynamic {
				setText(n, text)
			}
		case n.DataAtom == atom.Input || n.DataAtom == atom.Textarea:
			if t := strings.ToLower(getAttr(n, "type")); t == "submit" || t == "button" {
				setAttr(n, "value", text)
			} else {
				setAttr(n, "placeholder", text)
			}
		default:
			setText(n, text)
		}
	}

	if key, ok := lookupAttr(n, attrTranslateHTML); ok {
		nodes, err := html.ParseFragment(strings.NewReader(translate(key)), n)
		if err != nil {
			return errors.Wrapf(err, "parsing translation %q", key)
		}
		removeChildren(n)
		for _, c := range nodes {
			n.AppendChild(c)
		}
	}
	return nil
}

func lookupAttr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func getAttr(n *html.Node, key string) string {
	v, _ := lookupAttr(n, key)
	return v
}

func setAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

func removeChildren(n *html.Node) {
	for c := n.FirstChild; c != nil; c = n.FirstChild {
		n.RemoveChild(c)
	}
}

func setText(n *html.Node, text string) {
	removeChildren(n)
	n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
}
