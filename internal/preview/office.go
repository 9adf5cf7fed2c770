package preview

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// OfficeExtractor previews OOXML documents (docx, xlsx, pptx). The formats
// are ZIP containers holding XML parts; only the parts carrying display text
// are read. Word and PowerPoint files preview as text, spreadsheets as a
// table.
type OfficeExtractor struct{}

func (o *OfficeExtractor) ID() string { return "office" }

func (o *OfficeExtractor) Extract(ctx context.Context, path string, limits Limits) (Preview, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return ErrorPreview(o.ID(), fmt.Errorf("%w: %v", ErrCorruptOrEncrypted, err)), nil
	}
	defer zr.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".docx":
		return o.extractDocx(&zr.Reader, limits)
	case ".xlsx":
		return o.extractXlsx(&zr.Reader, limits)
	case ".pptx":
		return o.extractPptx(&zr.Reader, limits)
	default:
		return ErrorPreview(o.ID(), fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))), nil
	}
}

// openPart returns a reader for one named part of the container.
func openPart(zr *zip.Reader, name string) (io.ReadCloser, error) {
	for _, f := range zr.File {
		if f.Name == name {
			return f.Open()
		}
	}
	return nil, fmt.Errorf("%w: missing part %s", ErrCorruptOrEncrypted, name)
}

// extractDocx concatenates paragraph text from word/document.xml, then
// renders tables row by row.
func (o *OfficeExtractor) extractDocx(zr *zip.Reader, limits Limits) (Preview, error) {
	part, err := openPart(zr, "word/document.xml")
	if err != nil {
		return ErrorPreview(o.ID(), err), nil
	}
	defer part.Close()

	var (
		paragraphs []string
		tables     [][][]string
		current    strings.Builder
		row        []string
		table      [][]string
		inCell     bool
		inText     bool
		tableDepth int
	)

	dec := xml.NewDecoder(part)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return ErrorPreview(o.ID(), fmt.Errorf("%w: %v", ErrCorruptOrEncrypted, err)), nil
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "tbl":
				tableDepth++
			case "tr":
				row = nil
			case "tc":
				inCell = true
				current.Reset()
			case "t":
				inText = true
			case "tab":
				current.WriteByte('\t')
			case "br":
				current.WriteByte('\n')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				if tableDepth == 0 && !inCell {
					if s := strings.TrimSpace(current.String()); s != "" {
						paragraphs = append(paragraphs, s)
					}
					current.Reset()
				}
			case "tc":
				row = append(row, strings.TrimSpace(current.String()))
				current.Reset()
				inCell = false
			case "tr":
				if tableDepth > 0 && len(row) > 0 {
					table = append(table, row)
				}
			case "tbl":
				tableDepth--
				if tableDepth == 0 && len(table) > 0 {
					tables = append(tables, table)
					table = nil
				}
			}
		case xml.CharData:
			if inText {
				current.Write(t)
			}
		}
	}

	var sb strings.Builder
	sb.WriteString(strings.Join(paragraphs, "\n"))
	for _, tbl := range tables {
		sb.WriteString("\n\nTable:\n")
		for _, r := range tbl {
			sb.WriteString(strings.Join(r, " | "))
			sb.WriteByte('\n')
		}
	}

	p := Preview{
		Category:    CategoryText,
		Text:        strings.TrimSpace(sb.String()),
		ExtractorID: o.ID(),
	}
	p.SetMeta("paragraphs", strconv.Itoa(len(paragraphs)))
	if len(tables) > 0 {
		p.SetMeta("tables", strconv.Itoa(len(tables)))
	}
	return p, nil
}

// sharedStrings parses xl/sharedStrings.xml into the shared string table.
// Each <si> may hold several runs; their <t> contents are concatenated.
func sharedStrings(zr *zip.Reader) ([]string, error) {
	part, err := openPart(zr, "xl/sharedStrings.xml")
	if err != nil {
		// A workbook with only inline or numeric values has no shared
		// strings part.
		return nil, nil
	}
	defer part.Close()

	var (
		strs    []string
		current strings.Builder
		inText  bool
		depth   int
	)
	dec := xml.NewDecoder(part)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: shared strings: %v", ErrCorruptOrEncrypted, err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "si":
				depth++
				current.Reset()
			case "t":
				inText = true
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "si":
				depth--
				strs = append(strs, current.String())
			case "t":
				inText = false
			}
		case xml.CharData:
			if inText && depth > 0 {
				current.Write(t)
			}
		}
	}
	return strs, nil
}

// sheetNames reads the workbook part and returns worksheet names in workbook
// order.
func sheetNames(zr *zip.Reader) []string {
	part, err := openPart(zr, "xl/workbook.xml")
	if err != nil {
		return nil
	}
	defer part.Close()

	var names []string
	dec := xml.NewDecoder(part)
	for {
		tok, err := dec.Token()
		if err != nil {
			break
		}
		if se, ok := tok.(xml.StartElement); ok && se.Name.Local == "sheet" {
			for _, a := range se.Attr {
				if a.Name.Local == "name" {
					names = append(names, a.Value)
				}
			}
		}
	}
	return names
}

var sheetFileRe = regexp.MustCompile(`^xl/worksheets/sheet(\d+)\.xml$`)

// extractXlsx renders the first rows and columns of each sheet into tabular
// content. Blank rows are skipped; cut rows or columns mark the sheet
// truncated.
func (o *OfficeExtractor) extractXlsx(zr *zip.Reader, limits Limits) (Preview, error) {
	shared, err := sharedStrings(zr)
	if err != nil {
		return ErrorPreview(o.ID(), err), nil
	}
	names := sheetNames(zr)

	// Worksheet parts are stored as sheetN.xml; N follows workbook order.
	type sheetFile struct {
		num  int
		file *zip.File
	}
	var files []sheetFile
	for _, f := range zr.File {
		if m := sheetFileRe.FindStringSubmatch(f.Name); m != nil {
			n, _ := strconv.Atoi(m[1])
			files = append(files, sheetFile{num: n, file: f})
		}
	}
	sort.Slice(files, func(i, j int) bool { return files[i].num < files[j].num })

	if len(files) == 0 {
		return ErrorPreview(o.ID(), fmt.Errorf("%w: no worksheets", ErrCorruptOrEncrypted)), nil
	}

	table := &Table{}
	anyTruncated := false
	for i, sf := range files {
		name := fmt.Sprintf("Sheet%d", sf.num)
		if i < len(names) {
			name = names[i]
		}

		rc, err := sf.file.Open()
		if err != nil {
			return ErrorPreview(o.ID(), fmt.Errorf("%w: %v", ErrCorruptOrEncrypted, err)), nil
		}
		rows, truncated, err := parseWorksheet(rc, shared, limits)
		rc.Close()
		if err != nil {
			return ErrorPreview(o.ID(), err), nil
		}

		table.Sheets = append(table.Sheets, Sheet{Name: name, Rows: rows, Truncated: truncated})
		anyTruncated = anyTruncated || truncated
	}

	p := Preview{
		Category:    CategoryTable,
		Table:       table,
		Truncated:   anyTruncated,
		ExtractorID: o.ID(),
	}
	p.SetMeta("sheets", strconv.Itoa(len(table.Sheets)))
	if anyTruncated {
		p.SetMeta("note", fmt.Sprintf("showing first %d rows x %d columns per sheet", limits.MaxSheetRows, limits.MaxSheetCols))
	}
	return p, nil
}

// parseWorksheet streams one worksheet part into capped rows of cell text.
func parseWorksheet(r io.Reader, shared []string, limits Limits) ([][]string, bool, error) {
	var (
		rows      [][]string
		row       []string
		cellType  string
		cellCol   int
		inValue   bool
		inInline  bool
		value     strings.Builder
		truncated bool
	)

	appendCell := func() {
		if cellCol >= limits.MaxSheetCols {
			truncated = true
			return
		}
		// Pad skipped columns so cell positions survive sparse rows.
		for len(row) < cellCol {
			row = append(row, "")
		}
		v := value.String()
		if cellType == "s" {
			if idx, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && idx >= 0 && idx < len(shared) {
				v = shared[idx]
			}
		}
		row = append(row, v)
	}

	dec := xml.NewDecoder(r)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, false, fmt.Errorf("%w: worksheet: %v", ErrCorruptOrEncrypted, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "row":
				if len(rows) >= limits.MaxSheetRows {
					truncated = true
					// Rows past the cap are not parsed.
					if err := dec.Skip(); err != nil {
						return rows, true, nil
					}
					continue
				}
				row = nil
			case "c":
				cellType = ""
				cellCol = len(row)
				value.Reset()
				for _, a := range t.Attr {
					switch a.Name.Local {
					case "t":
						cellType = a.Value
					case "r":
						cellCol = columnIndex(a.Value)
					}
				}
			case "v":
				inValue = true
			case "is":
				inInline = true
			case "t":
				if inInline {
					inValue = true
				}
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "v", "t":
				inValue = false
			case "is":
				inInline = false
			case "c":
				appendCell()
			case "row":
				if !rowBlank(row) {
					rows = append(rows, row)
				}
			}
		case xml.CharData:
			if inValue {
				value.Write(t)
			}
		}
	}
	return rows, truncated, nil
}

// columnIndex converts a cell reference like "B2" to a zero-based column.
func columnIndex(ref string) int {
	col := 0
	for _, r := range ref {
		if r < 'A' || r > 'Z' {
			break
		}
		col = col*26 + int(r-'A') + 1
	}
	if col == 0 {
		return 0
	}
	return col - 1
}

func rowBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

var slideFileRe = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)

// extractPptx concatenates slide text in slide order.
func (o *OfficeExtractor) extractPptx(zr *zip.Reader, limits Limits) (Preview, error) {
	type slideFile struct {
		num  int
		file *zip.File
	}
	var slides []slideFile
	for _, f := range zr.File {
		if m := slideFileRe.FindStringSubmatch(f.Name); m != nil {
			n, _ := strconv.Atoi(m[1])
			slides = append(slides, slideFile{num: n, file: f})
		}
	}
	sort.Slice(slides, func(i, j int) bool { return slides[i].num < slides[j].num })

	if len(slides) == 0 {
		return ErrorPreview(o.ID(), fmt.Errorf("%w: no slides", ErrCorruptOrEncrypted)), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Slides: %d\n", len(slides))
	for _, s := range slides {
		rc, err := s.file.Open()
		if err != nil {
			return ErrorPreview(o.ID(), fmt.Errorf("%w: %v", ErrCorruptOrEncrypted, err)), nil
		}
		texts, err := slideText(rc)
		rc.Close()
		if err != nil {
			return ErrorPreview(o.ID(), err), nil
		}

		fmt.Fprintf(&sb, "\nSlide %d:\n", s.num)
		for _, t := range texts {
			fmt.Fprintf(&sb, "  %s\n", t)
		}
	}

	p := Preview{
		Category:    CategoryText,
		Text:        strings.TrimSpace(sb.String()),
		ExtractorID: o.ID(),
	}
	p.SetMeta("slides", strconv.Itoa(len(slides)))
	return p, nil
}

// slideText collects the text runs of one slide.
func slideText(r io.Reader) ([]string, error) {
	var (
		texts  []string
		inText bool
	)
	dec := xml.NewDecoder(r)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: slide: %v", ErrCorruptOrEncrypted, err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "t" {
				inText = true
			}
		case xml.EndElement:
			if t.Name.Local == "t" {
				inText = false
			}
		case xml.CharData:
			if inText {
				if s := strings.TrimSpace(string(t)); s != "" {
					texts = append(texts, s)
				}
			}
		}
	}
	return texts, nil
}
