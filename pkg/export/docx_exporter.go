package export

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
)

const wordprocessingNS = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"

const docxContentTypes = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
<Default Extension="xml" ContentType="application/xml"/>
<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
<Override PartName="/word/styles.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.styles+xml"/>
</Types>`

const docxPackageRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>`

const docxDocumentRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles" Target="styles.xml"/>
</Relationships>`

const docxStyles = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:styles xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:style w:type="paragraph" w:default="1" w:styleId="Normal"><w:name w:val="Normal"/><w:rPr><w:sz w:val="22"/></w:rPr></w:style>
<w:style w:type="paragraph" w:styleId="Heading1"><w:name w:val="heading 1"/><w:basedOn w:val="Normal"/><w:next w:val="Normal"/><w:pPr><w:spacing w:before="240" w:after="120"/><w:outlineLvl w:val="0"/></w:pPr><w:rPr><w:b/><w:sz w:val="32"/></w:rPr></w:style>
</w:styles>`

type docxDocument struct {
	XMLName    xml.Name        `xml:"w:document"`
	Namespace  string          `xml:"xmlns:w,attr"`
	Paragraphs []docxParagraph `xml:"w:body>w:p"`
}

type docxParagraph struct {
	Style *docxValue `xml:"w:pPr>w:pStyle"`
	Text  docxText   `xml:"w:r>w:t"`
}

type docxValue struct {
	Val string `xml:"w:val,attr"`
}

type docxText struct {
	Space string `xml:"xml:space,attr"`
	Value string `xml:",chardata"`
}

// DOCXExporter renders narrative documents into Word (.docx) files.
type DOCXExporter struct{}

// NewDOCXExporter constructs a DOCX exporter.
func NewDOCXExporter() *DOCXExporter {
	return &DOCXExporter{}
}

// Render writes the title as a level one heading followed by one paragraph per entry.
func (e *DOCXExporter) Render(doc Document) ([]byte, error) {
	body := docxDocument{Namespace: wordprocessingNS, Paragraphs: make([]docxParagraph, 0, len(doc.Paragraphs)+1)}
	if doc.Title != "" {
		body.Paragraphs = append(body.Paragraphs, docxParagraph{Style: &docxValue{Val: "Heading1"}, Text: preserved(doc.Title)})
	}
	for _, paragraph := range doc.Paragraphs {
		body.Paragraphs = append(body.Paragraphs, docxParagraph{Text: preserved(paragraph)})
	}
	document, err := xml.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode docx body: %w", err)
	}

	buf := &bytes.Buffer{}
	zw := zip.NewWriter(buf)
	parts := []struct {
		name    string
		content []byte
	}{
		{"[Content_Types].xml", []byte(docxContentTypes)},
		{"_rels/.rels", []byte(docxPackageRels)},
		{"word/_rels/document.xml.rels", []byte(docxDocumentRels)},
		{"word/styles.xml", []byte(docxStyles)},
		{"word/document.xml", append([]byte(xml.Header), document...)},
	}
	for _, part := range parts {
		w, err := zw.Create(part.name)
		if err != nil {
			return nil, fmt.Errorf("create docx part %s: %w", part.name, err)
		}
		if _, err := w.Write(part.content); err != nil {
			return nil, fmt.Errorf("write docx part %s: %w", part.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("finalize docx: %w", err)
	}
	return buf.Bytes(), nil
}

func preserved(text string) docxText {
	return docxText{Space: "preserve", Value: text}
}
