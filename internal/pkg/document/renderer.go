// Package document renders offer letters to PDF.
//
// Rendering is split in two steps: Layout computes every text block and its
// position on the page, Render draws those blocks. Output depends only on the
// input Data and the configured logo, so the same letter always produces the
// same bytes.
package document

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/yigit/offerdesk/internal/pkg/helpers"
)

// Page geometry in millimetres
const (
	PageWidth    = 210.0
	MarginLeft   = 20.0
	ContentWidth = PageWidth - MarginLeft*2

	fontFamily = "Helvetica"

	// jsPDF style baseline spacing for multi-line text
	defaultLineFactor = 1.15
	ptToMM            = 25.4 / 72
)

// ErrInvalidData is returned when the input cannot produce a letter
var ErrInvalidData = errors.New("invalid offer letter data")

// Data is everything the template needs
type Data struct {
	CandidateName string
	Domain        string
	JoiningDate   time.Time
	EndDate       time.Time
	RefNo         string
}

func (d Data) validate() error {
	switch {
	case strings.TrimSpace(d.CandidateName) == "":
		return fmt.Errorf("%w: candidate name is empty", ErrInvalidData)
	case strings.TrimSpace(d.RefNo) == "":
		return fmt.Errorf("%w: reference number is empty", ErrInvalidData)
	case d.JoiningDate.IsZero() || d.EndDate.IsZero():
		return fmt.Errorf("%w: dates are required", ErrInvalidData)
	}
	return nil
}

// Align is the horizontal anchor of a block
type Align int

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

// Block is a run of lines drawn with one font setting. X is the anchor
// (left edge, centre or right edge depending on Align), Y the baseline of the
// first line and Step the distance between consecutive baselines.
// Lines are already in the PDF's cp1252 encoding.
type Block struct {
	Lines []string
	X, Y  float64
	Size  float64
	Bold  bool
	Align Align
	Step  float64
}

// Renderer produces offer letter PDFs
type Renderer struct {
	logo     []byte
	logoType string
}

// Option configures a Renderer
type Option func(*Renderer)

// WithLogo places an image at the top-left of the letterhead.
// imageType is "PNG", "JPG" or "GIF".
func WithLogo(data []byte, imageType string) Option {
	return func(r *Renderer) {
		r.logo = data
		r.logoType = strings.ToUpper(imageType)
	}
}

// NewRenderer creates a renderer
func NewRenderer(opts ...Option) *Renderer {
	r := &Renderer{}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// LoadLogo reads a logo file and infers its image type from the extension.
// An empty path yields no option.
func LoadLogo(path string) ([]Option, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read logo %s: %w", path, err)
	}

	var imageType string
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		imageType = "PNG"
	case ".jpg", ".jpeg":
		imageType = "JPG"
	case ".gif":
		imageType = "GIF"
	default:
		return nil, fmt.Errorf("unsupported logo format %q", filepath.Ext(path))
	}
	return []Option{WithLogo(data, imageType)}, nil
}

// Layout computes the positioned text blocks for data
func (r *Renderer) Layout(data Data) ([]Block, error) {
	if err := data.validate(); err != nil {
		return nil, err
	}
	pdf := newPDF()
	blocks := layout(pdf, data)
	if err := pdf.Error(); err != nil {
		return nil, err
	}
	return blocks, nil
}

// Render draws the letter and returns the PDF bytes
func (r *Renderer) Render(data Data) ([]byte, error) {
	if err := data.validate(); err != nil {
		return nil, err
	}

	pdf := newPDF()

	// Fixed timestamps keep the output byte-stable
	stamp := time.Date(data.JoiningDate.Year(), data.JoiningDate.Month(), data.JoiningDate.Day(), 0, 0, 0, 0, time.UTC)
	pdf.SetCreationDate(stamp)
	pdf.SetModificationDate(stamp)
	pdf.SetCatalogSort(true)
	pdf.SetTitle("Offer Letter - "+data.RefNo, true)
	pdf.SetSubject("Internship offer letter: "+data.Domain, true)
	pdf.SetAuthor(orgName, true)
	pdf.SetCreator("offerdesk", false)

	pdf.AddPage()

	if len(r.logo) > 0 {
		opts := fpdf.ImageOptions{ImageType: r.logoType}
		pdf.RegisterImageOptionsReader("logo", opts, bytes.NewReader(r.logo))
		pdf.ImageOptions("logo", MarginLeft, 15, 25, 25, false, opts, 0, "")
	}

	for _, b := range layout(pdf, data) {
		draw(pdf, b)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func newPDF() *fpdf.Fpdf {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(MarginLeft, MarginLeft, MarginLeft)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCellMargin(0)
	pdf.SetFont(fontFamily, "", 11)
	return pdf
}

func lineStep(size, factor float64) float64 {
	return size * factor * ptToMM
}

// layout mirrors the fixed letter template. The cursor arithmetic after each
// wrapped block is part of the template and is kept as is.
func layout(pdf *fpdf.Fpdf, data Data) []Block {
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	joining := helpers.FormatDisplayDate(data.JoiningDate)
	end := helpers.FormatDisplayDate(data.EndDate)

	encode := func(lines []string) []string {
		out := make([]string, len(lines))
		for i, l := range lines {
			out[i] = tr(l)
		}
		return out
	}

	wrap := func(text string, size float64, bold bool) []string {
		setFont(pdf, size, bold)
		raw := pdf.SplitLines([]byte(tr(text)), ContentWidth)
		lines := make([]string, len(raw))
		for i, l := range raw {
			lines[i] = string(l)
		}
		return lines
	}

	single := func(text string, x, y, size float64, bold bool, align Align) Block {
		return Block{Lines: encode([]string{text}), X: x, Y: y, Size: size, Bold: bold, Align: align, Step: lineStep(size, defaultLineFactor)}
	}

	paragraph := func(text string, y, size float64, bold bool) Block {
		return Block{Lines: wrap(text, size, bold), X: MarginLeft, Y: y, Size: size, Bold: bold, Align: AlignLeft, Step: lineStep(size, defaultLineFactor)}
	}

	blocks := []Block{
		single(orgName, PageWidth/2, 20, 16, false, AlignCenter),
		{Lines: encode(registrationLines), X: PageWidth / 2, Y: 25, Size: 11, Align: AlignCenter, Step: lineStep(11, 1.2)},
		{Lines: encode(contactLines), X: PageWidth - MarginLeft, Y: 20, Size: 7, Align: AlignRight, Step: lineStep(7, 1.3)},
		single("Date:"+joining, MarginLeft, 50, 11, false, AlignLeft),
		single("Ref. No. "+data.RefNo, MarginLeft, 55, 11, false, AlignLeft),
		single(title, PageWidth/2, 65, 12, true, AlignCenter),
		single("To", MarginLeft, 75, 12, false, AlignLeft),
		single(data.CandidateName+",", MarginLeft, 80, 12, false, AlignLeft),
		paragraph(mainParagraph, 90, 12, false),
	}

	yPos := 103.0
	for _, term := range terms(joining, end) {
		b := paragraph(term, yPos, 12, false)
		blocks = append(blocks, b)
		yPos += float64(len(b.Lines)) * 5
	}

	yPos += 5
	notice := paragraph(legalNotice, yPos, 12, false)
	blocks = append(blocks, notice)

	yPos += float64(len(notice.Lines))*4 + 10
	blocks = append(blocks, single(agreementHeading, MarginLeft, yPos, 12, true, AlignLeft))

	yPos += 5
	agr := paragraph(agreement, yPos, 12, false)
	blocks = append(blocks, agr)

	yPos += float64(len(agr.Lines))*5 + 10
	blocks = append(blocks, single("AND", MarginLeft, yPos, 12, false, AlignLeft))
	yPos += 5
	blocks = append(blocks, single(data.CandidateName+"(                    )", MarginLeft, yPos, 12, false, AlignLeft))
	yPos += 5
	blocks = append(blocks, single(closingLine, MarginLeft, yPos, 12, false, AlignLeft))
	yPos += 10
	blocks = append(blocks,
		single(signatory, MarginLeft, yPos, 12, false, AlignLeft),
		single(signatoryRole, MarginLeft, yPos+5, 12, false, AlignLeft),
	)

	return blocks
}

func setFont(pdf *fpdf.Fpdf, size float64, bold bool) {
	style := ""
	if bold {
		style = "B"
	}
	pdf.SetFont(fontFamily, style, size)
}

func draw(pdf *fpdf.Fpdf, b Block) {
	setFont(pdf, b.Size, b.Bold)
	for i, line := range b.Lines {
		x := b.X
		switch b.Align {
		case AlignCenter:
			x -= pdf.GetStringWidth(line) / 2
		case AlignRight:
			x -= pdf.GetStringWidth(line)
		}
		pdf.Text(x, b.Y+float64(i)*b.Step, line)
	}
}
