package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"regexp"
	"strings"
)

// docxDocumentXMLPath is the default path to the main document body inside a .docx zip.
const docxDocumentXMLPath = "word/document.xml"

// contentTypesPath is the path to [Content_Types].xml in OOXML packages.
const contentTypesPath = "[Content_Types].xml"

// docxMainContentType is the content type for the main document in DOCX files.
const docxMainContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"

const (
	wordprocessingNS       = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	wordprocessingStrictNS = "http://purl.oclc.org/ooxml/wordprocessingml/main"
)

// partNameRe extracts PartName from Override elements in [Content_Types].xml.
var partNameRe = regexp.MustCompile(`<Override[^>]+PartName="([^"]+)"[^>]+ContentType="` + regexp.QuoteMeta(docxMainContentType) + `"`)

// partNameRe2 handles the case where ContentType appears before PartName.
var partNameRe2 = regexp.MustCompile(`<Override[^>]+ContentType="` + regexp.QuoteMeta(docxMainContentType) + `"[^>]+PartName="([^"]+)"`)

func extractWord(path string) Result {
	text, err := readWordText(path)
	if err != nil {
		return errorResult(labelWord, err)
	}
	if text == "" {
		return emptyResult(msgEmptyWord)
	}
	return textResult(Normalize(text))
}

// readWordText returns body paragraphs one per line, followed by one line per table
// holding every cell's text followed by a space. Legacy binary .doc files are not
// zip packages and fail here.
func readWordText(path string) (string, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return "", fmt.Errorf("open package: %w", err)
	}
	defer zr.Close()

	docPath := findDocxMainDocumentPath(&zr.Reader)
	if docPath == "" {
		docPath = docxDocumentXMLPath
	}
	var part *zip.File
	for _, f := range zr.File {
		if f.Name == docPath {
			part = f
			break
		}
	}
	if part == nil {
		return "", fmt.Errorf("%s not found", docPath)
	}
	rc, err := part.Open()
	if err != nil {
		return "", fmt.Errorf("open %s: %w", docPath, err)
	}
	defer rc.Close()

	body, err := parseWordBody(rc)
	if err != nil {
		return "", fmt.Errorf("parse %s: %w", docPath, err)
	}
	return body.text(), nil
}

// findDocxMainDocumentPath finds the main document path from [Content_Types].xml.
// Returns the path without leading slash, or empty string if not found.
func findDocxMainDocumentPath(zr *zip.Reader) string {
	for _, f := range zr.File {
		if f.Name != contentTypesPath {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return ""
		}
		var buf bytes.Buffer
		_, err = buf.ReadFrom(rc)
		_ = rc.Close()
		if err != nil {
			return ""
		}
		content := buf.String()
		if m := partNameRe.FindStringSubmatch(content); len(m) > 1 {
			return strings.TrimPrefix(m[1], "/")
		}
		if m := partNameRe2.FindStringSubmatch(content); len(m) > 1 {
			return strings.TrimPrefix(m[1], "/")
		}
		return ""
	}
	return ""
}

type wordBody struct {
	paragraphs []string
	// tables -> rows -> cells
	tables [][][]string
}

func (b *wordBody) text() string {
	var sb strings.Builder
	for _, p := range b.paragraphs {
		sb.WriteString(p)
		sb.WriteByte('\n')
	}
	for _, table := range b.tables {
		for _, row := range table {
			for _, cell := range row {
				sb.WriteString(cell)
				sb.WriteByte(' ')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

func isWordElement(name xml.Name) bool {
	switch name.Space {
	case wordprocessingNS, wordprocessingStrictNS, "w":
		return true
	}
	return false
}

// parseWordBody streams document.xml. Only top-level paragraphs and first-level
// tables are collected; paragraphs nested in text boxes or inner tables are skipped.
func parseWordBody(r io.Reader) (*wordBody, error) {
	dec := xml.NewDecoder(r)
	body := &wordBody{}
	var (
		para       strings.Builder
		paraDepth  int
		runDepth   int
		tableDepth int
		inText     bool
		row        []string
		cellParas  []string
	)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if !isWordElement(t.Name) {
				continue
			}
			switch t.Name.Local {
			case "tbl":
				tableDepth++
				if tableDepth == 1 {
					body.tables = append(body.tables, nil)
				}
			case "tr":
				if tableDepth == 1 {
					row = nil
				}
			case "tc":
				if tableDepth == 1 {
					cellParas = nil
				}
			case "p":
				paraDepth++
				if paraDepth == 1 {
					para.Reset()
				}
			case "r":
				runDepth++
			case "t":
				inText = paraDepth == 1
			case "tab":
				if runDepth > 0 && paraDepth == 1 {
					para.WriteByte('\t')
				}
			case "br", "cr":
				if runDepth > 0 && paraDepth == 1 {
					para.WriteByte('\n')
				}
			}
		case xml.EndElement:
			if !isWordElement(t.Name) {
				continue
			}
			switch t.Name.Local {
			case "t":
				inText = false
			case "r":
				if runDepth > 0 {
					runDepth--
				}
			case "p":
				if paraDepth == 1 {
					switch tableDepth {
					case 0:
						body.paragraphs = append(body.paragraphs, para.String())
					case 1:
						cellParas = append(cellParas, para.String())
					}
				}
				if paraDepth > 0 {
					paraDepth--
				}
			case "tc":
				if tableDepth == 1 {
					row = append(row, strings.Join(cellParas, "\n"))
				}
			case "tr":
				if tableDepth == 1 {
					last := len(body.tables) - 1
					body.tables[last] = append(body.tables[last], row)
				}
			case "tbl":
				if tableDepth > 0 {
					tableDepth--
				}
			}
		case xml.CharData:
			if inText {
				para.Write(t)
			}
		}
	}
	return body, nil
}
