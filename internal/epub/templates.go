package epub

import "text/template"

var funcs = template.FuncMap{
	"x":          escape,
	"paragraphs": paragraphs,
	"label":      label,
}

var containerTmpl = template.Must(template.New("container").Parse(`<?xml version="1.0" encoding="UTF-8"?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <rootfiles>
    <rootfile full-path="OEBPS/content.opf" media-type="application/oebps-package+xml"/>
  </rootfiles>
</container>
`))

var packageTmpl = template.Must(template.New("package").Funcs(funcs).Parse(`<?xml version="1.0" encoding="UTF-8"?>
<package xmlns="http://www.idpf.org/2007/opf" version="3.0" unique-identifier="bookid" xml:lang="{{x .Language}}">
  <metadata xmlns:dc="http://purl.org/dc/elements/1.1/">
    <dc:identifier id="bookid">urn:uuid:{{x .Identifier}}</dc:identifier>
    <dc:title>{{x .Title}}</dc:title>
    <dc:creator id="creator">{{x .Author}}</dc:creator>
    <dc:language>{{x .Language}}</dc:language>
{{- if .Description}}
    <dc:description>{{x .Description}}</dc:description>
{{- end}}
    <dc:date>{{.Date}}</dc:date>
    <meta property="dcterms:modified">{{.Modified}}</meta>
    <meta name="generator" content="{{x .Generator}}"/>
  </metadata>
  <manifest>
    <item id="nav" href="nav.xhtml" media-type="application/xhtml+xml" properties="nav"/>
    <item id="stylesheet" href="stylesheet.css" media-type="text/css"/>
    <item id="book" href="book.xhtml" media-type="application/xhtml+xml"/>
  </manifest>
  <spine>
    <itemref idref="book"/>
  </spine>
</package>
`))

var navTmpl = template.Must(template.New("nav").Funcs(funcs).Parse(`<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE html>
<html xmlns="http://www.w3.org/1999/xhtml" xmlns:epub="http://www.idpf.org/2007/ops" lang="{{x .Language}}" xml:lang="{{x .Language}}">
<head>
  <meta charset="utf-8"/>
  <title>{{x .Title}}</title>
  <link rel="stylesheet" type="text/css" href="stylesheet.css"/>
</head>
<body>
  <nav epub:type="toc" id="nav">
    <h1>Contents</h1>
    <ol>
      <li><a href="book.xhtml#toc">Table of Contents</a></li>
{{- range .Chapters}}
      <li><a href="book.xhtml#chapter-{{.Ordinal}}">{{x (label .)}}</a></li>
{{- end}}
    </ol>
  </nav>
</body>
</html>
`))

var contentTmpl = template.Must(template.New("content").Funcs(funcs).Parse(`<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE html>
<html xmlns="http://www.w3.org/1999/xhtml" xmlns:epub="http://www.idpf.org/2007/ops" lang="{{x .Language}}" xml:lang="{{x .Language}}">
<head>
  <meta charset="utf-8"/>
  <title>{{x .Title}}</title>
  <link rel="stylesheet" type="text/css" href="stylesheet.css"/>
</head>
<body>
  <div class="book-header">
    <h1 class="book-title">{{x .Title}}</h1>
    <p class="book-author">{{x .Author}}</p>
    <p class="book-info">{{len .Chapters}} chapters</p>
    <p class="book-info">Created {{.Created}}</p>
{{- range paragraphs .Description}}
    <p class="book-description">{{x .}}</p>
{{- end}}
  </div>

  <div class="toc" id="toc">
    <h2>Table of Contents</h2>
    <ol>
{{- range .Chapters}}
      <li><a href="#chapter-{{.Ordinal}}">{{x (label .)}}</a></li>
{{- end}}
    </ol>
  </div>
{{range .Chapters}}
  <div class="chapter" id="chapter-{{.Ordinal}}">
    <h2 class="chapter-title">{{x (label .)}}</h2>
{{- range paragraphs .Content}}
    <p>{{x .}}</p>
{{- end}}
  </div>
{{end}}
</body>
</html>
`))

const stylesheet = `body {
  font-family: "Noto Serif", Georgia, serif;
  line-height: 1.6;
  margin: 0 5%;
}

.book-header {
  text-align: center;
  margin: 3em 0;
  page-break-after: always;
}

.book-title {
  font-size: 2em;
  margin-bottom: 0.5em;
}

.book-author {
  font-style: italic;
}

.book-description {
  text-align: left;
  font-size: 0.95em;
}

.book-info {
  color: #555;
  font-size: 0.9em;
}

.toc {
  page-break-after: always;
}

.toc ol {
  list-style: none;
  padding: 0;
}

.toc li {
  margin: 0.3em 0;
}

.chapter {
  page-break-before: always;
}

.chapter-title {
  text-align: center;
  margin: 2em 0 1em;
}

p {
  text-indent: 1.5em;
  margin: 0 0 0.8em;
  text-align: justify;
}
`
