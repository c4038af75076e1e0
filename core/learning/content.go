package learning

import (
	"bytes"
	"io/fs"
	"path"
	"strings"

	"github.com/pkg/errors"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"

	"github.com/mishra-aashu/Kind-Heart-s-Sangam-Foundation/core"
)

var ErrContentNotFound = errors.New("content not found")

const (
	lessonsDir    = "lessons"
	flashcardsDir = "flashcards"
)

type (
	// Flashcard is a question (Front) and its answer rendered as HTML (Back).
	Flashcard struct {
		Number int    `json:"number"`
		Front  string `json:"front"`
		Back   string `json:"back"`
	}

	FlashcardPage struct {
		Module string      `json:"module"`
		Cards  []Flashcard `json:"cards"`
		core.Pagination
	}

	// ContentStore renders the markdown lessons and flashcards of a content tree:
	//
	//	lessons/<lesson slug>.md
	//	flashcards/<module name>.md (one card per level-2 heading)
	ContentStore struct {
		fsys fs.FS
		md   goldmark.Markdown
	}
)

func NewContentStore(fsys fs.FS) *ContentStore {
	return &ContentStore{
		fsys: fsys,
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		),
	}
}

func (c *ContentStore) read(fp string) ([]byte, error) {
	src, err := fs.ReadFile(c.fsys, fp)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrContentNotFound
		}
		return nil, errors.Wrapf(err, "reading %s", fp)
	}
	return src, nil
}

// RenderLesson renders the markdown of lesson `l` to HTML.
func (c *ContentStore) RenderLesson(l Lesson) (string, error) {
	src, err := c.read(path.Join(lessonsDir, l.Slug+".md"))
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := c.md.Convert(src, &buf); err != nil {
		return "", errors.Wrap(err, "rendering lesson")
	}
	return buf.String(), nil
}

// Flashcards returns every flashcard of module `m`, in document order.
// Content before the first level-2 heading is ignored.
func (c *ContentStore) Flashcards(m Module) ([]Flashcard, error) {
	src, err := c.read(path.Join(flashcardsDir, m.Name+".md"))
	if err != nil {
		return nil, err
	}

	doc := c.md.Parser().Parse(text.NewReader(src))
	var (
		cards []Flashcard
		back  bytes.Buffer
	)
	flush := func() {
		if len(cards) > 0 {
			cards[len(cards)-1].Back = strings.TrimSpace(back.String())
		}
		back.Reset()
	}

	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		if h, ok := n.(*ast.Heading); ok && h.Level == 2 {
			flush()
			cards = append(cards, Flashcard{
				Number: len(cards) + 1,
				Front:  strings.TrimSpace(string(h.Text(src))),
			})
			continue
		}
		if len(cards) == 0 {
			continue
		}
		if err := c.md.Renderer().Render(&back, src, n); err != nil {
			return nil, errors.Wrap(err, "rendering flashcard")
		}
	}
	flush()

	if cards == nil {
		cards = []Flashcard{}
	}
	return cards, nil
}

// FlashcardPage returns page `page` of the flashcards of `m`, `size` cards per page.
func (c *ContentStore) FlashcardPage(m Module, page, size int) (FlashcardPage, error) {
	cards, err := c.Flashcards(m)
	if err != nil {
		return FlashcardPage{}, err
	}
	p := core.Paginate(len(cards), page, size)
	lo, hi := p.Bounds()
	return FlashcardPage{Module: m.Name, Cards: cards[lo:hi], Pagination: p}, nil
}
