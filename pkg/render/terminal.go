package render

import (
	"image/color"

	uv "github.com/charmbracelet/ultraviolet"
)

// Draw converts the framebuffer to terminal cells and draws them on the
// screen. Each cell shows two framebuffer rows with the upper half block:
// the foreground is the top pixel and the background the bottom one.
func (fb *Framebuffer) Draw(scr uv.Screen, area uv.Rectangle) {
	for row := area.Min.Y; row < area.Max.Y; row++ {
		topY := (row - area.Min.Y) * 2
		botY := topY + 1
		if topY >= fb.Height {
			break
		}

		for col := area.Min.X; col < area.Max.X; col++ {
			x := col - area.Min.X
			if x >= fb.Width {
				break
			}
			scr.SetCell(col, row, &uv.Cell{
				Content: "▀",
				Width:   1,
				Style: uv.Style{
					Fg: cellColor(fb.GetPixel(x, topY)),
					Bg: cellColor(fb.GetPixel(x, botY)),
				},
			})
		}
	}
}

// cellColor maps transparent pixels to the terminal default color.
func cellColor(c Color) color.Color {
	if c.A == 0 {
		return nil
	}
	return c
}

// TerminalScreen is the part of an ultraviolet terminal the presenter needs.
type TerminalScreen interface {
	uv.Screen
	Display() error
}

// TerminalPresenter shows frames on a terminal, two pixel rows per line.
type TerminalPresenter struct {
	scr    TerminalScreen
	Status string // Drawn over the last line when non-empty
}

// NewTerminalPresenter creates a presenter drawing to scr.
func NewTerminalPresenter(scr TerminalScreen) *TerminalPresenter {
	return &TerminalPresenter{scr: scr}
}

// TargetSize returns the framebuffer size that fills a cols x rows terminal.
func TargetSize(cols, rows int) (width, height int) {
	return cols, rows * 2
}

// Present draws fb to the screen and flushes it.
func (p *TerminalPresenter) Present(fb *Framebuffer) error {
	bounds := p.scr.Bounds()
	fb.Draw(p.scr, bounds)
	if p.Status != "" && bounds.Dy() > 0 {
		p.drawStatus(bounds)
	}
	return p.scr.Display()
}

func (p *TerminalPresenter) drawStatus(bounds uv.Rectangle) {
	row := bounds.Max.Y - 1
	col := bounds.Min.X
	style := uv.Style{Fg: ColorWhite, Bg: ColorBlack}
	for _, r := range p.Status {
		if col >= bounds.Max.X {
			return
		}
		p.scr.SetCell(col, row, &uv.Cell{Content: string(r), Width: 1, Style: style})
		col++
	}
}
