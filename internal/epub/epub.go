// Package epub writes a novel as a single-document EPUB 3 book: one XHTML
// file holding a generated table of contents followed by every chapter, plus
// the navigation document, stylesheet and package files readers require.
package epub

import (
	"archive/zip"
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"
	"text/template"
	"time"

	"github.com/brogergvhs/noveld/internal/book"
	"github.com/brogergvhs/noveld/internal/util"

	"github.com/google/uuid"
)

const (
	MimeType = "application/epub+zip"

	EntryMimeType  = "mimetype"
	EntryContainer = "META-INF/container.xml"
	EntryPackage   = "OEBPS/content.opf"
	EntryNav       = "OEBPS/nav.xhtml"
	EntryStyle     = "OEBPS/stylesheet.css"
	EntryContent   = "OEBPS/book.xhtml"

	DefaultAuthor = "Unknown author"
)

// Entries lists every archive member in write order.
var Entries = []string{EntryMimeType, EntryContainer, EntryPackage, EntryNav, EntryStyle, EntryContent}

// Manifest is everything the packager needs for one book.
type Manifest struct {
	Title       string
	Author      string
	Language    string
	Description string
	Identifier  string
	Chapters    []book.Chapter
}

// Packager serialises manifests. Now and NewID are the only sources of
// variation between two runs over the same manifest.
type Packager struct {
	Now       func() time.Time
	NewID     func() string
	Generator string
}

func NewPackager() *Packager {
	return &Packager{
		Now:       time.Now,
		NewID:     uuid.NewString,
		Generator: "noveld",
	}
}

// Manifest assembles a manifest with a freshly generated identifier.
func (p *Packager) Manifest(title, author, language string, chapters []book.Chapter) Manifest {
	if strings.TrimSpace(author) == "" {
		author = DefaultAuthor
	}
	if language == "" {
		language = "vi"
	}

	return Manifest{
		Title:      title,
		Author:     author,
		Language:   language,
		Identifier: p.NewID(),
		Chapters:   book.Sorted(chapters),
	}
}

// Write packages m into path. The archive is assembled next to path,
// re-opened and checked, and only then renamed into place.
func (p *Packager) Write(path string, m Manifest) error {
	return util.WriteFileAtomic(path, func(w *bufio.Writer) error {
		return p.Build(w, m)
	}, Verify)
}

type docData struct {
	Manifest
	Generator string
	Date      string
	Modified  string
	Created   string
}

// Build streams the zip archive for m into w.
func (p *Packager) Build(w io.Writer, m Manifest) error {
	if len(m.Chapters) == 0 {
		return fmt.Errorf("epub: manifest has no chapters")
	}
	if m.Identifier == "" {
		m.Identifier = p.NewID()
	}
	m.Chapters = book.Sorted(m.Chapters)

	now := p.Now()
	data := docData{
		Manifest:  m,
		Generator: p.Generator,
		Date:      now.Format("2006-01-02"),
		Modified:  now.UTC().Format("2006-01-02T15:04:05Z"),
		Created:   now.Format("02/01/2006 15:04"),
	}

	zw := zip.NewWriter(w)

	// The mimetype entry must come first and be stored uncompressed.
	mw, err := zw.CreateHeader(&zip.FileHeader{Name: EntryMimeType, Method: zip.Store, Modified: now})
	if err != nil {
		return err
	}
	if _, err := io.WriteString(mw, MimeType); err != nil {
		return err
	}

	docs := []struct {
		name string
		tmpl *template.Template
	}{
		{EntryContainer, containerTmpl},
		{EntryPackage, packageTmpl},
		{EntryNav, navTmpl},
		{EntryStyle, nil},
		{EntryContent, contentTmpl},
	}

	for _, d := range docs {
		fw, err := zw.CreateHeader(&zip.FileHeader{Name: d.name, Method: zip.Deflate, Modified: now})
		if err != nil {
			return err
		}

		if d.tmpl == nil {
			_, err = io.WriteString(fw, stylesheet)
		} else {
			err = d.tmpl.Execute(fw, data)
		}
		if err != nil {
			return fmt.Errorf("epub %s: %w", d.name, err)
		}
	}

	return zw.Close()
}

// Verify checks that path is a readable EPUB holding exactly the expected
// entries, with an uncompressed mimetype first.
func Verify(path string) error {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return err
	}
	defer func() {
		_ = zr.Close()
	}()

	if len(zr.File) == 0 || zr.File[0].Name != EntryMimeType {
		return fmt.Errorf("first entry is not %s", EntryMimeType)
	}
	if zr.File[0].Method != zip.Store {
		return fmt.Errorf("%s entry is compressed", EntryMimeType)
	}

	rc, err := zr.File[0].Open()
	if err != nil {
		return err
	}
	mt, err := io.ReadAll(rc)
	_ = rc.Close()
	if err != nil {
		return err
	}
	if !bytes.Equal(mt, []byte(MimeType)) {
		return fmt.Errorf("unexpected mimetype %q", mt)
	}

	want := make(map[string]int, len(Entries))
	for _, e := range Entries {
		want[e] = 0
	}
	for _, f := range zr.File {
		if _, ok := want[f.Name]; !ok {
			return fmt.Errorf("unexpected entry %s", f.Name)
		}
		want[f.Name]++
	}
	for name, n := range want {
		if n != 1 {
			return fmt.Errorf("entry %s present %d times", name, n)
		}
	}

	return nil
}
