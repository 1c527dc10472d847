package main

import (
	"fmt"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/jung-kurt/gofpdf"
	"go.uber.org/zap"

	"github.com/BradSegal/anatomize/internal/pack"
	"github.com/BradSegal/anatomize/internal/representation"
)

const (
	pdfPageWidth  = 210 // A4 width in mm
	pdfMargin     = 10
	pdfLineHeight = 5
	pdfFontSize   = 9
	pdfTabWidth   = 4
	pdfTextWidth  = pdfPageWidth - 2*pdfMargin
)

// generatePDF writes m as a syntax-highlighted PDF: the tree, one page per
// file, then the summary.
func generatePDF(m *pack.Manifest, outputPath string) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(true, pdfMargin)
	pdf.AddPage()

	style := styles.Get("github")
	if style == nil {
		style = styles.Fallback
	}
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Courier", "", pdfFontSize)
	pdf.SetTextColor(0, 0, 0)
	pdf.MultiCell(pdfTextWidth, pdfLineHeight, tr(printTree(buildTree(m))), "", "L", false)

	for _, e := range m.Entries {
		pdf.AddPage()
		pdf.SetFont("Helvetica", "B", pdfFontSize+1)
		pdf.SetTextColor(0, 0, 0)
		pdf.MultiCell(pdfTextWidth, pdfLineHeight, tr("File: "+e.Path), "", "L", false)

		pdf.SetFont("Helvetica", "", pdfFontSize-1)
		header := describe(e)
		if m.Tokens != nil && e.Representation != representation.Meta {
			header += fmt.Sprintf(", %d tokens", e.Tokens)
		}
		pdf.MultiCell(pdfTextWidth, pdfLineHeight, tr(header), "", "L", false)
		pdf.Line(pdfMargin, pdf.GetY(), pdfPageWidth-pdfMargin, pdf.GetY())
		pdf.Ln(pdfLineHeight / 2)

		body, err := entryBody(e)
		if err != nil {
			return err
		}
		if body == "" {
			continue
		}
		lang := e.Language
		if e.Representation == representation.Summary {
			lang = "JSON"
		}
		if err := writeHighlightedCode(pdf, style, tr, body, e.Path, lang); err != nil {
			logger.Warn("syntax highlighting failed, writing plain text", zap.String("path", e.Path), zap.Error(err))
			pdf.SetFont("Courier", "", pdfFontSize)
			pdf.SetTextColor(0, 0, 0)
			pdf.MultiCell(pdfTextWidth, pdfLineHeight, tr(body), "", "L", false)
		}
	}

	pdf.AddPage()
	pdf.SetFont("Courier", "", pdfFontSize)
	pdf.SetTextColor(0, 0, 0)
	pdf.MultiCell(pdfTextWidth, pdfLineHeight, tr(summaryText(m)), "", "L", false)

	if err := pdf.OutputFileAndClose(outputPath); err != nil {
		return fmt.Errorf("failed to save PDF to %s: %w", outputPath, err)
	}
	logger.Info("saved PDF", zap.String("path", outputPath))
	return nil
}

// pickLexer prefers the detected language, then the file name, then content analysis.
func pickLexer(lang, filePath, code string) chroma.Lexer {
	var lexer chroma.Lexer
	if lang != "" {
		lexer = lexers.Get(lang)
	}
	if lexer == nil {
		lexer = lexers.Match(filePath)
	}
	if lexer == nil {
		lexer = lexers.Analyse(code)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	return chroma.Coalesce(lexer)
}

// writeHighlightedCode tokenizes code and writes it with the style's colours.
func writeHighlightedCode(pdf *gofpdf.Fpdf, style *chroma.Style, tr func(string) string, code, filePath, lang string) error {
	iterator, err := pickLexer(lang, filePath, code).Tokenise(nil, code)
	if err != nil {
		return fmt.Errorf("tokenization failed: %w", err)
	}

	pdf.SetFont("Courier", "", pdfFontSize)
	for token := iterator(); token != chroma.EOF; token = iterator() {
		entry := style.Get(token.Type)
		fontStyle := ""
		if entry.Bold == chroma.Yes {
			fontStyle += "B"
		}
		if entry.Italic == chroma.Yes {
			fontStyle += "I"
		}
		pdf.SetFontStyle(fontStyle)

		colour := entry.Colour
		if !colour.IsSet() {
			colour = style.Get(chroma.Text).Colour
		}
		if colour.IsSet() {
			pdf.SetTextColor(int(colour.Red()), int(colour.Green()), int(colour.Blue()))
		} else {
			pdf.SetTextColor(0, 0, 0)
		}

		pdf.Write(pdfLineHeight, tr(strings.ReplaceAll(token.Value, "\t", strings.Repeat(" ", pdfTabWidth))))
	}
	pdf.Ln(-1)
	return nil
}
