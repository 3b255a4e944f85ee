package epub

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/brogergvhs/noveld/internal/book"
)

func testPackager() *Packager {
	return &Packager{
		Now:       func() time.Time { return time.Date(2025, 3, 1, 12, 30, 0, 0, time.UTC) },
		NewID:     func() string { return "00000000-0000-4000-8000-000000000001" },
		Generator: "noveld",
	}
}

func readEntries(t *testing.T, path string) ([]*zip.File, map[string]string) {
	t.Helper()

	zr, err := zip.OpenReader(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = zr.Close() })

	contents := make(map[string]string)
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open %s: %v", f.Name, err)
		}
		b, err := io.ReadAll(rc)
		_ = rc.Close()
		if err != nil {
			t.Fatalf("read %s: %v", f.Name, err)
		}
		contents[f.Name] = string(b)
	}

	return zr.File, contents
}

func wellFormed(t *testing.T, name, doc string) {
	t.Helper()

	d := xml.NewDecoder(strings.NewReader(doc))
	d.Strict = true
	d.Entity = xml.HTMLEntity
	for {
		_, err := d.Token()
		if errors.Is(err, io.EOF) {
			return
		}
		if err != nil {
			t.Fatalf("%s is not well-formed: %v", name, err)
		}
	}
}

func TestWriteProducesExactEntries(t *testing.T) {
	p := testPackager()
	m := p.Manifest("Test Novel", "", "vi", []book.Chapter{
		{Ordinal: 1, Title: "One", Content: "first"},
		{Ordinal: 2, Title: "Two", Content: "second"},
	})

	path := filepath.Join(t.TempDir(), "book.epub")
	if err := p.Write(path, m); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("temp file left behind: %v", err)
	}

	files, contents := readEntries(t, path)

	var names []string
	for _, f := range files {
		names = append(names, f.Name)
	}
	if strings.Join(names, ",") != strings.Join(Entries, ",") {
		t.Fatalf("entries = %v, want %v", names, Entries)
	}
	if files[0].Method != zip.Store {
		t.Fatalf("mimetype must be stored, got method %d", files[0].Method)
	}
	if contents[EntryMimeType] != MimeType {
		t.Fatalf("mimetype = %q", contents[EntryMimeType])
	}

	for _, name := range []string{EntryContainer, EntryPackage, EntryNav, EntryContent} {
		wellFormed(t, name, contents[name])
	}

	if !strings.Contains(contents[EntryPackage], "urn:uuid:00000000-0000-4000-8000-000000000001") {
		t.Fatal("identifier missing from package document")
	}
	if !strings.Contains(contents[EntryPackage], DefaultAuthor) {
		t.Fatal("default author missing")
	}
	if !strings.Contains(contents[EntryPackage], "2025-03-01T12:30:00Z") {
		t.Fatal("modified timestamp missing")
	}
	if !strings.Contains(contents[EntryPackage], `properties="nav"`) {
		t.Fatal("nav property missing")
	}
}

func TestTitlesRoundTrip(t *testing.T) {
	p := testPackager()
	title := `A <b> & "quoted" 'one'`
	m := p.Manifest(title, "Ann & Bob", "zh", []book.Chapter{
		{Ordinal: 1, Title: `<tag> & "x"`, Content: "a < b\nc & d"},
	})

	var buf bytes.Buffer
	if err := p.Build(&buf, m); err != nil {
		t.Fatalf("build: %v", err)
	}

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("zip: %v", err)
	}

	var pkg struct {
		Metadata struct {
			Title   string `xml:"title"`
			Creator string `xml:"creator"`
		} `xml:"metadata"`
	}
	var body struct {
		Divs []struct {
			ID    string   `xml:"id,attr"`
			H2    string   `xml:"h2"`
			Paras []string `xml:"p"`
		} `xml:"body>div"`
	}

	for _, f := range zr.File {
		var target any
		switch f.Name {
		case EntryPackage:
			target = &pkg
		case EntryContent:
			target = &body
		default:
			continue
		}
		rc, err := f.Open()
		if err != nil {
			t.Fatal(err)
		}
		d := xml.NewDecoder(rc)
		d.Entity = xml.HTMLEntity
		if err := d.Decode(target); err != nil {
			t.Fatalf("decode %s: %v", f.Name, err)
		}
		_ = rc.Close()
	}

	if pkg.Metadata.Title != title {
		t.Fatalf("title = %q, want %q", pkg.Metadata.Title, title)
	}
	if pkg.Metadata.Creator != "Ann & Bob" {
		t.Fatalf("creator = %q", pkg.Metadata.Creator)
	}

	var chapter bool
	for _, d := range body.Divs {
		if d.ID != "chapter-1" {
			continue
		}
		chapter = true
		if d.H2 != `Chapter 1: <tag> & "x"` {
			t.Fatalf("chapter heading = %q", d.H2)
		}
		if len(d.Paras) != 2 || d.Paras[0] != "a < b" || d.Paras[1] != "c & d" {
			t.Fatalf("paragraphs = %q", d.Paras)
		}
	}
	if !chapter {
		t.Fatal("chapter-1 div missing")
	}
}

func TestChaptersOrderedByOrdinal(t *testing.T) {
	p := testPackager()
	m := p.Manifest("Order", "", "vi", []book.Chapter{
		{Ordinal: 3, Title: "C", Content: "c"},
		{Ordinal: 1, Title: "A", Content: "a"},
		{Ordinal: 2, Title: "B", Content: "b"},
	})

	var buf bytes.Buffer
	if err := p.Build(&buf, m); err != nil {
		t.Fatalf("build: %v", err)
	}
	zr, _ := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))

	for _, f := range zr.File {
		if f.Name != EntryNav && f.Name != EntryContent {
			continue
		}
		rc, _ := f.Open()
		doc, _ := io.ReadAll(rc)
		_ = rc.Close()

		ids := regexp.MustCompile(`#chapter-(\d+)`).FindAllStringSubmatch(string(doc), -1)
		var got []string
		for _, m := range ids {
			got = append(got, m[1])
		}
		if strings.Join(got, ",") != "1,2,3" {
			t.Fatalf("%s link order = %v", f.Name, got)
		}
	}
}

func TestControlCharactersStripped(t *testing.T) {
	if got := escape("a\x00b\x1fc\td"); got != "abc\td" {
		t.Fatalf("escape = %q", got)
	}

	p := testPackager()
	m := p.Manifest("Bad\x0bTitle", "", "vi", []book.Chapter{
		{Ordinal: 1, Title: "x\x01", Content: "line\x02one"},
	})
	var buf bytes.Buffer
	if err := p.Build(&buf, m); err != nil {
		t.Fatalf("build: %v", err)
	}

	zr, _ := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	for _, f := range zr.File {
		if !strings.HasSuffix(f.Name, ".xhtml") && !strings.HasSuffix(f.Name, ".opf") {
			continue
		}
		rc, _ := f.Open()
		doc, _ := io.ReadAll(rc)
		_ = rc.Close()
		wellFormed(t, f.Name, string(doc))
	}
}

func TestBuildRejectsEmptyManifest(t *testing.T) {
	p := testPackager()
	if err := p.Build(io.Discard, Manifest{Title: "x"}); err == nil {
		t.Fatal("expected error for empty manifest")
	}
}

func TestVerifyRejectsForeignArchive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x.epub")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	zw := zip.NewWriter(f)
	w, _ := zw.Create("mimetype")
	_, _ = io.WriteString(w, MimeType)
	_ = zw.Close()
	_ = f.Close()

	if err := Verify(path); err == nil {
		t.Fatal("expected deflated mimetype to be rejected")
	}
}

func TestParagraphs(t *testing.T) {
	got := paragraphs("  one \n\n two\r\nthree")
	want := []string{"one", "two", "three"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("paragraphs = %q", got)
	}
}
