package document

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ashaRao() Data {
	return Data{
		CandidateName: "Asha Rao",
		Domain:        "Data Science",
		JoiningDate:   time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
		EndDate:       time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC),
		RefNo:         "OL482913",
	}
}

const (
	idxMain      = 8
	idxFirstTerm = 9
	idxNotice    = 15
	idxHeading   = 16
	idxAgreement = 17
	idxAnd       = 18
	idxRole      = 22
)

func TestLayout_FixedPositions(t *testing.T) {
	blocks, err := NewRenderer().Layout(ashaRao())
	require.NoError(t, err)
	require.Len(t, blocks, 23)

	assert.Equal(t, []string{"Suvidha Mahila Mandal, Walni"}, blocks[0].Lines)
	assert.Equal(t, AlignCenter, blocks[0].Align)
	assert.Equal(t, 20.0, blocks[0].Y)

	assert.Len(t, blocks[1].Lines, 3)
	assert.Equal(t, 25.0, blocks[1].Y)
	assert.InDelta(t, 11*1.2*25.4/72, blocks[1].Step, 1e-9)

	assert.Len(t, blocks[2].Lines, 4)
	assert.Equal(t, AlignRight, blocks[2].Align)
	assert.Equal(t, 190.0, blocks[2].X)

	assert.Equal(t, []string{"Date:10-01-2024"}, blocks[3].Lines)
	assert.Equal(t, 50.0, blocks[3].Y)
	assert.Equal(t, []string{"Ref. No. OL482913"}, blocks[4].Lines)
	assert.Equal(t, 55.0, blocks[4].Y)

	assert.True(t, blocks[5].Bold)
	assert.Equal(t, 65.0, blocks[5].Y)
	assert.Equal(t, []string{"Asha Rao,"}, blocks[7].Lines)
	assert.Equal(t, 80.0, blocks[7].Y)

	assert.Equal(t, 90.0, blocks[idxMain].Y)
	assert.Greater(t, len(blocks[idxMain].Lines), 1, "body paragraph wraps")
}

func TestLayout_TermsAdvanceByWrappedLines(t *testing.T) {
	blocks, err := NewRenderer().Layout(ashaRao())
	require.NoError(t, err)

	y := 103.0
	for i := 0; i < 6; i++ {
		term := blocks[idxFirstTerm+i]
		assert.InDelta(t, y, term.Y, 1e-9, "term %d", i+1)
		assert.True(t, strings.HasPrefix(term.Lines[0], "\x95 "), "bullet encoded in cp1252")
		y += float64(len(term.Lines)) * 5
	}

	assert.Contains(t, strings.Join(blocks[idxFirstTerm+1].Lines, " "), "from 10-01-2024 to 10-06-2024.")

	notice := blocks[idxNotice]
	assert.InDelta(t, y+5, notice.Y, 1e-9)

	heading := blocks[idxHeading]
	assert.InDelta(t, notice.Y+float64(len(notice.Lines))*4+10, heading.Y, 1e-9)
	assert.True(t, heading.Bold)

	agr := blocks[idxAgreement]
	assert.InDelta(t, heading.Y+5, agr.Y, 1e-9)

	and := blocks[idxAnd]
	assert.InDelta(t, agr.Y+float64(len(agr.Lines))*5+10, and.Y, 1e-9)
	assert.Equal(t, []string{"Asha Rao(                    )"}, blocks[idxAnd+1].Lines)
	assert.InDelta(t, and.Y+5, blocks[idxAnd+1].Y, 1e-9)
	assert.InDelta(t, and.Y+10, blocks[idxAnd+2].Y, 1e-9)
	assert.InDelta(t, and.Y+20, blocks[idxAnd+3].Y, 1e-9)
	assert.InDelta(t, and.Y+25, blocks[idxRole].Y, 1e-9)
}

func TestLayout_WrapsWithinContentWidth(t *testing.T) {
	r := NewRenderer()
	blocks, err := r.Layout(ashaRao())
	require.NoError(t, err)

	pdf := newPDF()
	for _, b := range blocks[idxMain:idxHeading] {
		setFont(pdf, b.Size, b.Bold)
		for _, line := range b.Lines {
			assert.LessOrEqual(t, pdf.GetStringWidth(line), ContentWidth+0.01, line)
		}
	}
}

func TestRender_Deterministic(t *testing.T) {
	r := NewRenderer()

	first, err := r.Render(ashaRao())
	require.NoError(t, err)
	second, err := r.Render(ashaRao())
	require.NoError(t, err)

	assert.True(t, bytes.HasPrefix(first, []byte("%PDF-")))
	assert.Equal(t, first, second)

	other := ashaRao()
	other.RefNo = "OL000001"
	third, err := r.Render(other)
	require.NoError(t, err)
	assert.NotEqual(t, first, third)
}

func TestRender_NonLatinNameDoesNotFail(t *testing.T) {
	data := ashaRao()
	data.CandidateName = "आशा राव"

	out, err := NewRenderer().Render(data)
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}

func TestRender_RejectsInvalidData(t *testing.T) {
	tests := map[string]func(*Data){
		"empty name": func(d *Data) { d.CandidateName = " " },
		"empty ref":  func(d *Data) { d.RefNo = "" },
		"zero date":  func(d *Data) { d.EndDate = time.Time{} },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			d := ashaRao()
			mutate(&d)
			_, err := NewRenderer().Render(d)
			assert.ErrorIs(t, err, ErrInvalidData)
		})
	}
}

func writePNG(t *testing.T) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for x := 0; x < 4; x++ {
		for y := 0; y < 4; y++ {
			img.Set(x, y, color.RGBA{R: 124, G: 58, B: 237, A: 255})
		}
	}
	path := filepath.Join(t.TempDir(), "logo.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())
	return path
}

func TestRender_WithLogo(t *testing.T) {
	opts, err := LoadLogo(writePNG(t))
	require.NoError(t, err)
	require.Len(t, opts, 1)

	withLogo, err := NewRenderer(opts...).Render(ashaRao())
	require.NoError(t, err)
	plain, err := NewRenderer().Render(ashaRao())
	require.NoError(t, err)

	assert.Greater(t, len(withLogo), len(plain))
}

func TestLoadLogo(t *testing.T) {
	opts, err := LoadLogo("")
	require.NoError(t, err)
	assert.Empty(t, opts)

	_, err = LoadLogo(filepath.Join(t.TempDir(), "missing.png"))
	assert.Error(t, err)

	bmp := filepath.Join(t.TempDir(), "logo.bmp")
	require.NoError(t, os.WriteFile(bmp, []byte("BM"), 0o600))
	_, err = LoadLogo(bmp)
	assert.Error(t, err)
}
