package extract

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strings"
)

const docxDocumentXMLPath = "word/document.xml"

var (
	// paragraph bodies, attributes allowed on <w:p>
	wpTag = regexp.MustCompile(`(?s)<w:p[ >].*?</w:p>`)
	// <w:t>text</w:t> and <w:t xml:space="preserve">text</w:t>
	wtTag = regexp.MustCompile(`<w:t(?:\s[^>]*)?>([^<]*)</w:t>`)
)

// extractDOCX returns one line per non-empty paragraph of word/document.xml.
func extractDOCX(content []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("not a docx archive: %w", err)
	}

	var docXML []byte
	for _, f := range zr.File {
		if f.Name != docxDocumentXMLPath {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", fmt.Errorf("open %s: %w", f.Name, err)
		}
		docXML, err = io.ReadAll(rc)
		_ = rc.Close()
		if err != nil {
			return "", fmt.Errorf("read %s: %w", f.Name, err)
		}
		break
	}
	if docXML == nil {
		return "", fmt.Errorf("%s not found", docxDocumentXMLPath)
	}

	var lines []string
	for _, para := range wpTag.FindAllString(string(docXML), -1) {
		var b strings.Builder
		for _, run := range wtTag.FindAllStringSubmatch(para, -1) {
			b.WriteString(unescapeXML(run[1]))
		}
		if text := strings.TrimSpace(b.String()); text != "" {
			lines = append(lines, text)
		}
	}
	return strings.Join(lines, "\n"), nil
}

var xmlEntities = strings.NewReplacer("&lt;", "<", "&gt;", ">", "&quot;", `"`, "&apos;", "'", "&amp;", "&")

func unescapeXML(s string) string {
	return xmlEntities.Replace(s)
}
