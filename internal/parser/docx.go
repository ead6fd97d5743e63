package parser

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/pdfoutline/internal/outline"
	"github.com/fumiama/go-docx"
)

// DOCXParser handles .docx files. Paragraphs styled Heading1-3 become
// outline entries; explicit page breaks advance the page number.
type DOCXParser struct{}

func (p *DOCXParser) Parse(r io.Reader, filename string) (*outline.Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read docx: %w", err)
	}
	doc, err := docx.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("parse docx: %w", err)
	}

	var entries []outline.Entry
	page := 1
	for _, item := range doc.Document.Body.Items {
		para, ok := item.(*docx.Paragraph)
		if !ok {
			continue
		}

		text, before, after := docxParagraph(para)
		page += before
		if lvl, ok := markupLevel(docxHeadingLevel(para)); ok && text != "" {
			entries = append(entries, outline.Entry{Level: lvl, Text: text, Page: page})
		}
		page += after
	}

	res := outline.Finalize(stem(filename), entries)
	return &res, nil
}

func docxHeadingLevel(para *docx.Paragraph) int {
	if para.Properties == nil || para.Properties.Style == nil {
		return 0
	}
	style := para.Properties.Style.Val
	switch {
	case strings.EqualFold(style, "Heading1") || strings.EqualFold(style, "heading 1"):
		return 1
	case strings.EqualFold(style, "Heading2") || strings.EqualFold(style, "heading 2"):
		return 2
	case strings.EqualFold(style, "Heading3") || strings.EqualFold(style, "heading 3"):
		return 3
	case strings.EqualFold(style, "Heading4") || strings.EqualFold(style, "heading 4"):
		return 4
	}
	return 0
}

// docxParagraph returns the paragraph text and the number of page breaks
// found before and after its first text run.
func docxParagraph(para *docx.Paragraph) (text string, before, after int) {
	var buf strings.Builder
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			switch v := rc.(type) {
			case *docx.Text:
				buf.WriteString(v.Text)
			case *docx.BarterRabbet:
				if v.Type != "page" {
					continue
				}
				if strings.TrimSpace(buf.String()) == "" {
					before++
				} else {
					after++
				}
			}
		}
	}
	return strings.TrimSpace(buf.String()), before, after
}
