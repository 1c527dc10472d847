package summary

import (
	"regexp"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
)

var markdownHeading = regexp.MustCompile(`^(#{1,6})\s+(.+?)\s*$`)

// Markdown lists ATX headings that start at column zero.
func Markdown(text string, cfg Config) *Summary {
	s := &Summary{Type: TypeMarkdown, Headings: []Heading{}}
	for _, line := range splitLines(text) {
		m := markdownHeading.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		s.Headings = append(s.Headings, Heading{Level: len(m[1]), Text: m[2]})
		if len(s.Headings) >= cfg.MaxHeadings {
			break
		}
	}
	return s
}

// HTML lists the document title and its h1 to h6 headings in document order.
func HTML(text string, cfg Config) (*Summary, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(text))
	if err != nil {
		return nil, &ParseError{Format: "HTML", Err: err}
	}

	s := &Summary{
		Type:     TypeHTML,
		Title:    strings.TrimSpace(doc.Find("title").First().Text()),
		Headings: []Heading{},
	}
	doc.Find("h1, h2, h3, h4, h5, h6").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		text := strings.Join(strings.Fields(sel.Text()), " ")
		if text == "" {
			return true
		}
		level := int(goquery.NodeName(sel)[1] - '0')
		s.Headings = append(s.Headings, Heading{Level: level, Text: text})
		return len(s.Headings) < cfg.MaxHeadings
	})
	return s, nil
}

// HTMLToMarkdown converts an HTML document to Markdown.
func HTMLToMarkdown(text string) (string, error) {
	converter := md.NewConverter("", true, nil)
	out, err := converter.ConvertString(text)
	if err != nil {
		return "", &ParseError{Format: "HTML", Err: err}
	}
	return out, nil
}

// splitLines splits on \n, \r\n and \r without yielding a trailing empty line.
func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}
