package sangtacviet

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"github.com/brogergvhs/noveld/internal/providers"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/text/unicode/norm"
)

// systemNotice is prepended by the site to cached copies of a chapter.
const systemNotice = "@Bạn đang đọc bản lưu trong hệ thống"

// annotationAttr holds the origin-language rendering of an <i> annotation.
const annotationAttr = "t"

// reMarkup matches anything an HTML parser would treat as a tag, comment or
// character reference. Text without a match is already plain.
var reMarkup = regexp.MustCompile(`(?i)<[a-z/!]|&(?:[a-z][a-z0-9]*|#[0-9]+|#x[0-9a-f]+);`)

var blockElements = map[atom.Atom]bool{
	atom.P: true, atom.Div: true, atom.Li: true, atom.Ul: true, atom.Ol: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Blockquote: true, atom.Tr: true, atom.Table: true, atom.Center: true,
	atom.Section: true, atom.Article: true,
}

// ExtractText turns a chapter body into plain prose, one paragraph per line.
// Each <i t="..."> annotation is replaced by the rendering lang asks for.
// Running it on its own output returns the output unchanged.
func ExtractText(markup string, lang providers.Language) string {
	text := markup
	if looksLikeMarkup(markup) {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
		if err == nil {
			text = renderText(doc, lang)
		}
	}

	text = norm.NFC.String(text)
	text = joinLines(text)
	text = stripNotice(text)

	if lang == providers.LangOrigin {
		text = collapseHanSpaces(text)
	}

	return text
}

func looksLikeMarkup(s string) bool {
	return reMarkup.MatchString(s)
}

func renderText(doc *goquery.Document, lang providers.Language) string {
	doc.Find("script, style").Remove()

	doc.Find("i").Each(func(_ int, s *goquery.Selection) {
		replacement := s.Text()
		if lang == providers.LangOrigin {
			if t, ok := s.Attr(annotationAttr); ok && strings.TrimSpace(t) != "" {
				replacement = strings.ReplaceAll(t, " ", "")
			}
		}

		s.ReplaceWithNodes(&html.Node{Type: html.TextNode, Data: replacement})
	})

	var b strings.Builder
	for _, n := range doc.Nodes {
		writeText(&b, n)
	}

	return b.String()
}

func writeText(b *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(n.Data)
		return
	case html.CommentNode, html.DoctypeNode:
		return
	case html.ElementNode:
		if n.DataAtom == atom.Br || n.DataAtom == atom.Hr {
			b.WriteByte('\n')
			return
		}
		if blockElements[n.DataAtom] {
			b.WriteByte('\n')
			defer b.WriteByte('\n')
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		writeText(b, c)
	}
}

func joinLines(text string) string {
	var lines []string
	for line := range strings.Lines(text) {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}

	return strings.Join(lines, "\n")
}

// stripNotice removes the cache notice only when the text starts with it.
func stripNotice(text string) string {
	for strings.HasPrefix(text, systemNotice) {
		text = strings.TrimLeftFunc(strings.TrimPrefix(text, systemNotice), unicode.IsSpace)
	}

	return text
}

// collapseHanSpaces drops horizontal whitespace sitting between two Han
// characters; the translated layout spaces out every token.
func collapseHanSpaces(text string) string {
	runes := []rune(text)
	out := make([]rune, 0, len(runes))

	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if isHorizontalSpace(r) && len(out) > 0 && unicode.Is(unicode.Han, out[len(out)-1]) {
			j := i
			for j < len(runes) && isHorizontalSpace(runes[j]) {
				j++
			}
			if j < len(runes) && unicode.Is(unicode.Han, runes[j]) {
				i = j - 1
				continue
			}
		}
		out = append(out, r)
	}

	return string(out)
}

func isHorizontalSpace(r rune) bool {
	return r != '\n' && r != '\r' && unicode.IsSpace(r)
}
