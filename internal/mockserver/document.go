package mockserver

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strings"
	"unicode"
)

// Kind is the format of an uploaded document.
type Kind string

const (
	KindPDF      Kind = "pdf"
	KindDOCX     Kind = "docx"
	KindMarkdown Kind = "markdown"
)

// NoMatchAnswer is returned when no passage shares a term with the query.
const NoMatchAnswer = "I could not find anything about that in the document."

const maxPassageRunes = 1000

// Document is an uploaded file split into passages.
type Document struct {
	Name     string
	Kind     Kind
	Passages []string
}

// NewDocument extracts text from raw and splits it into passages.
func NewDocument(name string, kind Kind, raw []byte) (*Document, error) {
	var (
		text string
		err  error
	)
	switch kind {
	case KindMarkdown:
		text = stripMarkdown(string(raw))
	case KindDOCX:
		text, err = docxText(raw)
	case KindPDF:
		text = printableRuns(raw)
	default:
		return nil, fmt.Errorf("unsupported kind %q", kind)
	}
	if err != nil {
		return nil, err
	}

	return &Document{
		Name:     name,
		Kind:     kind,
		Passages: splitPassages(text),
	}, nil
}

// Answer returns the passage sharing the most terms with query.
func (d *Document) Answer(query string) string {
	terms := tokenize(query)
	if len(terms) == 0 {
		return NoMatchAnswer
	}

	type scored struct {
		index int
		score int
	}
	var results []scored
	for i, passage := range d.Passages {
		words := make(map[string]struct{})
		for _, w := range tokenize(passage) {
			words[w] = struct{}{}
		}
		score := 0
		for _, t := range terms {
			if _, ok := words[t]; ok {
				score++
			}
		}
		if score > 0 {
			results = append(results, scored{index: i, score: score})
		}
	}
	if len(results) == 0 {
		return NoMatchAnswer
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].score > results[j].score
	})
	return d.Passages[results[0].index]
}

var (
	mdHeading  = regexp.MustCompile(`(?m)^[ \t]{0,3}#{1,6}[ \t]*`)
	mdList     = regexp.MustCompile(`(?m)^[ \t]*([-*+]|\d+\.)[ \t]+`)
	mdEmphasis = regexp.MustCompile("[*_`]+")
	mdLink     = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)
)

func stripMarkdown(s string) string {
	s = mdLink.ReplaceAllString(s, "$1")
	s = mdHeading.ReplaceAllString(s, "")
	s = mdList.ReplaceAllString(s, "- ")
	return mdEmphasis.ReplaceAllString(s, "")
}

// docxText reads the paragraphs of word/document.xml.
func docxText(raw []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return "", fmt.Errorf("not a docx archive: %w", err)
	}

	for _, f := range zr.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", err
		}
		defer rc.Close()
		return wordParagraphs(rc)
	}
	return "", fmt.Errorf("docx archive has no word/document.xml")
}

func wordParagraphs(r io.Reader) (string, error) {
	dec := xml.NewDecoder(r)
	var (
		out    strings.Builder
		inText bool
	)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return out.String(), nil
		}
		if err != nil {
			return "", fmt.Errorf("invalid document.xml: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			inText = t.Name.Local == "t"
		case xml.EndElement:
			if t.Name.Local == "p" {
				out.WriteString("\n\n")
			}
			inText = false
		case xml.CharData:
			if inText {
				out.Write(t)
			}
		}
	}
}

// printableRuns keeps runs of at least four printable characters. It is a
// crude stand-in for real PDF text extraction.
func printableRuns(raw []byte) string {
	var (
		out strings.Builder
		run []rune
	)
	flush := func() {
		if len(run) >= 4 {
			out.WriteString(string(run))
			out.WriteString("\n\n")
		}
		run = run[:0]
	}
	for _, r := range string(raw) {
		if r != unicode.ReplacementChar && (unicode.IsPrint(r) || r == ' ') {
			run = append(run, r)
			continue
		}
		flush()
	}
	flush()
	return out.String()
}

func splitPassages(text string) []string {
	var passages []string
	for _, block := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n\n") {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		for len([]rune(block)) > maxPassageRunes {
			runes := []rune(block)
			passages = append(passages, string(runes[:maxPassageRunes]))
			block = strings.TrimSpace(string(runes[maxPassageRunes:]))
		}
		if block != "" {
			passages = append(passages, block)
		}
	}
	return passages
}

func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}
