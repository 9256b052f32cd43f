// Package certimage renders course completion certificates as PNG images.
package certimage

import (
	"bytes"
	"fmt"
	"image/color"
	"sync"
	"time"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

const (
	width  = 1600
	height = 1131
)

var (
	colorInk    = color.RGBA{R: 0x1f, G: 0x29, B: 0x37, A: 0xff}
	colorAccent = color.RGBA{R: 0x7c, G: 0x3a, B: 0xed, A: 0xff}
	colorMuted  = color.RGBA{R: 0x6b, G: 0x72, B: 0x80, A: 0xff}
	colorPaper  = color.RGBA{R: 0xff, G: 0xfb, B: 0xf2, A: 0xff}
)

// Data what goes on the certificate
type Data struct {
	StudentName string
	CourseTitle string
	IssuedAt    time.Time
	Code        string
	SiteName    string
}

// Renderer holds parsed font faces. Faces cache glyphs, so Render is serialised.
type Renderer struct {
	mu      sync.Mutex
	title   font.Face
	name    font.Face
	body    font.Face
	caption font.Face
}

// NewRenderer parses the bundled Go fonts
func NewRenderer() (*Renderer, error) {
	regular, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse regular font: %w", err)
	}
	bold, err := truetype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse bold font: %w", err)
	}
	face := func(f *truetype.Font, size float64) font.Face {
		return truetype.NewFace(f, &truetype.Options{Size: size, DPI: 72, Hinting: font.HintingFull})
	}
	return &Renderer{
		title:   face(bold, 72),
		name:    face(bold, 96),
		body:    face(regular, 40),
		caption: face(regular, 26),
	}, nil
}

// Render draws the certificate and encodes it as PNG
func (r *Renderer) Render(d Data) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	dc := gg.NewContext(width, height)
	w, h := float64(width), float64(height)

	dc.SetColor(colorPaper)
	dc.Clear()

	// double border
	dc.SetColor(colorAccent)
	dc.SetLineWidth(14)
	dc.DrawRectangle(40, 40, w-80, h-80)
	dc.Stroke()
	dc.SetLineWidth(3)
	dc.DrawRectangle(70, 70, w-140, h-140)
	dc.Stroke()

	site := d.SiteName
	if site == "" {
		site = "Our Coding Kiddos"
	}

	dc.SetFontFace(r.caption)
	dc.SetColor(colorMuted)
	dc.DrawStringAnchored(site, w/2, 170, 0.5, 0.5)

	dc.SetFontFace(r.title)
	dc.SetColor(colorAccent)
	dc.DrawStringAnchored("Certificate of Completion", w/2, 270, 0.5, 0.5)

	dc.SetFontFace(r.body)
	dc.SetColor(colorMuted)
	dc.DrawStringAnchored("This certifies that", w/2, 400, 0.5, 0.5)

	dc.SetFontFace(r.name)
	dc.SetColor(colorInk)
	dc.DrawStringAnchored(d.StudentName, w/2, 520, 0.5, 0.5)

	dc.SetColor(colorAccent)
	dc.SetLineWidth(2)
	dc.DrawLine(w/2-420, 590, w/2+420, 590)
	dc.Stroke()

	dc.SetFontFace(r.body)
	dc.SetColor(colorMuted)
	dc.DrawStringAnchored("has successfully completed the course", w/2, 660, 0.5, 0.5)

	dc.SetColor(colorInk)
	dc.DrawStringWrapped(d.CourseTitle, w/2, 760, 0.5, 0.5, w-400, 1.3, gg.AlignCenter)

	dc.SetFontFace(r.caption)
	dc.SetColor(colorMuted)
	issued := d.IssuedAt
	if issued.IsZero() {
		issued = time.Now()
	}
	dc.DrawStringAnchored("Issued "+issued.UTC().Format("January 2, 2006"), w/2-380, h-170, 0.5, 0.5)
	dc.DrawStringAnchored("Verification code "+d.Code, w/2+380, h-170, 0.5, 0.5)

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
