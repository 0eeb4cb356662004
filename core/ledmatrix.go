package core

import "image/color"

// MatrixSize is the edge length of the square LED grid.
const MatrixSize = 8

// DefaultBrightness is the boot-time brightness scale.
const DefaultBrightness = 255

// Expression ids. The first five are the canonical faces of the
// interaction states and share their numbering on the wire.
const (
	ExprSleep     = 0x00
	ExprWake      = 0x01
	ExprListen    = 0x02
	ExprThink     = 0x03
	ExprTalk      = 0x04
	ExprHappy     = 0x05
	ExprSad       = 0x06
	ExprSurprised = 0x07
	ExprConfused  = 0x08
	ExprCurious   = 0x09
	ExprShy       = 0x0A
	ExprAngry     = 0x0B
	ExprLove      = 0x0C
	ExprTired     = 0x0D
	ExprExcited   = 0x0E
	ExprBlank     = 0x0F
)

// expressionNames holds the lowercase display names, indexed by id.
var expressionNames = [16]string{
	"sleep", "wake", "listen", "think", "talk", "happy", "sad",
	"surprised", "confused", "curious", "shy", "angry", "love",
	"tired", "excited", "blank",
}

// ExpressionName returns the display name for an expression id, or
// "unknown" for ids outside the table.
func ExpressionName(id uint8) string {
	if int(id) < len(expressionNames) {
		return expressionNames[id]
	}
	return "unknown"
}

// ExpressionByName resolves a lowercase expression name, for scripts
// and host tooling.
func ExpressionByName(name string) (uint8, bool) {
	for id, n := range expressionNames {
		if n == name {
			return uint8(id), true
		}
	}
	return 0, false
}

// Eye geometry. Two filled circles, symmetric about the grid center.
const (
	eyeLeftX  = 2
	eyeRightX = 5
	eyeRadius = 2
)

// eyeSpec is one row of the expression table: vertical eye center plus
// fill color.
type eyeSpec struct {
	cy int
	c  color.RGBA
}

// expressionTable maps expression id to eye placement and color.
// Unrecognized ids fall back to exprFallback.
var expressionTable = [16]eyeSpec{
	ExprSleep:     {4, color.RGBA{R: 50, G: 50, B: 50}},
	ExprWake:      {4, color.RGBA{R: 0, G: 255, B: 0}},
	ExprListen:    {4, color.RGBA{R: 0, G: 150, B: 255}},
	ExprThink:     {3, color.RGBA{R: 255, G: 200, B: 0}},
	ExprTalk:      {4, color.RGBA{R: 255, G: 100, B: 100}},
	ExprHappy:     {4, color.RGBA{R: 255, G: 255, B: 0}},
	ExprSad:       {5, color.RGBA{R: 0, G: 0, B: 255}},
	ExprSurprised: {3, color.RGBA{R: 255, G: 255, B: 255}},
	ExprConfused:  {4, color.RGBA{R: 255, G: 165, B: 0}},
	ExprCurious:   {4, color.RGBA{R: 255, G: 255, B: 150}},
	ExprShy:       {5, color.RGBA{R: 255, G: 182, B: 193}},
	ExprAngry:     {4, color.RGBA{R: 255, G: 0, B: 0}},
	ExprLove:      {4, color.RGBA{R: 255, G: 105, B: 180}},
	ExprTired:     {4, color.RGBA{R: 128, G: 128, B: 128}},
	ExprExcited:   {3, color.RGBA{R: 255, G: 0, B: 255}},
	ExprBlank:     {4, color.RGBA{R: 200, G: 200, B: 200}},
}

var exprFallback = eyeSpec{4, color.RGBA{R: 255, G: 255, B: 255}}

// Eye colors for the per-eye override path. A closed eye is dim gray,
// an open eye the default active blue.
var (
	eyeClosedColor = color.RGBA{R: 50, G: 50, B: 50}
	eyeOpenColor   = color.RGBA{R: 0, G: 150, B: 255}
)

// Matrix renders expressions onto an 8x8 addressable-LED grid. Pixels
// are stored unscaled; brightness is applied once at flush time so a
// brightness change never loses color information. Mutations mark the
// frame dirty and Refresh pushes it to the strip in one batched write.
type Matrix struct {
	strip LEDStrip

	// pixels holds raw colors indexed x*MatrixSize+y, which is also
	// the strip's physical LED order.
	pixels [MatrixSize * MatrixSize]color.RGBA
	out    [MatrixSize * MatrixSize]color.RGBA

	brightness uint8
	dirty      bool
}

func NewMatrix(strip LEDStrip) *Matrix {
	return &Matrix{strip: strip, brightness: DefaultBrightness, dirty: true}
}

// SetPixel stores a raw color. Out-of-range coordinates are ignored.
func (m *Matrix) SetPixel(x, y int, c color.RGBA) {
	if x < 0 || x >= MatrixSize || y < 0 || y >= MatrixSize {
		return
	}
	m.pixels[x*MatrixSize+y] = c
	m.dirty = true
}

// Pixel returns the raw stored color. Out-of-range coordinates return
// the zero color.
func (m *Matrix) Pixel(x, y int) color.RGBA {
	if x < 0 || x >= MatrixSize || y < 0 || y >= MatrixSize {
		return color.RGBA{}
	}
	return m.pixels[x*MatrixSize+y]
}

// Fill sets every pixel to the same raw color.
func (m *Matrix) Fill(c color.RGBA) {
	for i := range m.pixels {
		m.pixels[i] = c
	}
	m.dirty = true
}

// Clear blanks the grid.
func (m *Matrix) Clear() {
	m.Fill(color.RGBA{})
}

// SetBrightness changes the flush-time scale factor. Stored colors are
// untouched.
func (m *Matrix) SetBrightness(b uint8) {
	if b == m.brightness {
		return
	}
	m.brightness = b
	m.dirty = true
}

func (m *Matrix) Brightness() uint8 {
	return m.brightness
}

// SetExpression draws the eye pair for the given id and pushes the
// frame immediately.
func (m *Matrix) SetExpression(id uint8) error {
	spec := exprFallback
	if int(id) < len(expressionTable) {
		spec = expressionTable[id]
	}
	m.Clear()
	m.drawEye(eyeLeftX, spec.cy, eyeRadius, spec.c)
	m.drawEye(eyeRightX, spec.cy, eyeRadius, spec.c)
	return m.Refresh()
}

// SetEyes draws an asymmetric pair: each side is closed (0) or open
// (anything else). Pushes the frame immediately.
func (m *Matrix) SetEyes(left, right uint8) error {
	m.Clear()
	m.drawEye(eyeLeftX, 4, eyeRadius, eyeColor(left))
	m.drawEye(eyeRightX, 4, eyeRadius, eyeColor(right))
	return m.Refresh()
}

func eyeColor(id uint8) color.RGBA {
	if id == 0 {
		return eyeClosedColor
	}
	return eyeOpenColor
}

// drawEye fills the circle dx*dx+dy*dy <= r*r around the center,
// clipped to the grid.
func (m *Matrix) drawEye(cx, cy, r int, c color.RGBA) {
	for x := cx - r; x <= cx+r; x++ {
		for y := cy - r; y <= cy+r; y++ {
			dx := x - cx
			dy := y - cy
			if dx*dx+dy*dy <= r*r {
				m.SetPixel(x, y, c)
			}
		}
	}
}

// Refresh pushes the frame to the strip if anything changed since the
// last push. Safe to call every control-loop tick.
func (m *Matrix) Refresh() error {
	if !m.dirty || m.strip == nil {
		return nil
	}
	b := uint16(m.brightness)
	for i, p := range m.pixels {
		m.out[i] = color.RGBA{
			R: uint8(uint16(p.R) * b / 255),
			G: uint8(uint16(p.G) * b / 255),
			B: uint8(uint16(p.B) * b / 255),
		}
	}
	if err := m.strip.WriteColors(m.out[:]); err != nil {
		return err
	}
	m.dirty = false
	return nil
}
