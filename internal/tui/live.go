package tui

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"
)

const (
	width       = 70
	height      = 20
	clearScreen = "\033[2J\033[H"
	hideCursor  = "\033[?25l"
	showCursor  = "\033[?25h"
)

// LiveRenderer draws a running simulation as ASCII frames. It is used as a
// host observer: OnStep receives every recorded row and redraws at most
// frameRate times per second.
type LiveRenderer struct {
	out       io.Writer
	model     string
	frameRate int
	lastFrame time.Time
	now       func() time.Time
	canvas    [][]rune
	trail     []struct{ x, y int }
	frames    int
}

func NewLiveRenderer(out io.Writer, model string, frameRate int) *LiveRenderer {
	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = make([]rune, width)
	}
	if frameRate <= 0 {
		frameRate = 30
	}
	return &LiveRenderer{
		out:       out,
		model:     model,
		frameRate: frameRate,
		now:       time.Now,
		canvas:    canvas,
		trail:     make([]struct{ x, y int }, 0, 50),
	}
}

func (r *LiveRenderer) OnStep(t float64, names []string, row []float64) {
	now := r.now()
	if now.Sub(r.lastFrame) < time.Second/time.Duration(r.frameRate) {
		return
	}
	r.lastFrame = now

	r.clear()

	value := func(name string) (float64, bool) {
		for i, n := range names {
			if n == name {
				return row[i], true
			}
		}
		return 0, false
	}

	theta, hasTheta := value("theta")
	pos, hasPos := value("x")
	switch {
	case hasTheta && hasPos:
		r.drawCartpole(pos, theta)
	case hasTheta:
		r.drawPendulum(theta)
	default:
		r.drawGeneric(row)
	}

	r.render(t, names, row)
}

// Frames returns how many frames have been drawn.
func (r *LiveRenderer) Frames() int { return r.frames }

func (r *LiveRenderer) clear() {
	for y := range r.canvas {
		for x := range r.canvas[y] {
			r.canvas[y][x] = ' '
		}
	}
}

func (r *LiveRenderer) set(x, y int, c rune) {
	if x >= 0 && x < width && y >= 0 && y < height {
		r.canvas[y][x] = c
	}
}

func (r *LiveRenderer) line(x1, y1, x2, y2 int, c rune) {
	dx := abs(x2 - x1)
	dy := abs(y2 - y1)
	sx, sy := 1, 1
	if x1 > x2 {
		sx = -1
	}
	if y1 > y2 {
		sy = -1
	}
	err := dx - dy
	for {
		r.set(x1, y1, c)
		if x1 == x2 && y1 == y2 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x1 += sx
		}
		if e2 < dx {
			err += dx
			y1 += sy
		}
	}
}

func (r *LiveRenderer) drawPendulum(theta float64) {
	px, py := width/2, 3
	length := 10.0
	bx := px + int(length*math.Sin(theta))
	by := py + int(length*math.Cos(theta))

	r.trail = append(r.trail, struct{ x, y int }{bx, by})
	if len(r.trail) > 40 {
		r.trail = r.trail[1:]
	}

	for i, pt := range r.trail {
		if i < len(r.trail)/2 {
			r.set(pt.x, pt.y, '.')
		} else {
			r.set(pt.x, pt.y, 'o')
		}
	}

	r.set(px, py, '+')
	r.line(px, py, bx, by, '|')
	r.set(bx, by, 'O')
}

// drawCartpole draws the cart on an overhead rail with the pendulum
// hanging below it.
func (r *LiveRenderer) drawCartpole(pos, theta float64) {
	ry := 3
	cx := width/2 + int(pos*8)

	for i := 5; i < width-5; i++ {
		r.set(i, ry, '=')
	}
	for dx := -3; dx <= 3; dx++ {
		r.set(cx+dx, ry+1, '#')
	}

	plen := 10.0
	px := cx + int(plen*math.Sin(theta))
	py := ry + 2 + int(plen*math.Cos(theta))
	r.line(cx, ry+2, px, py, '|')
	r.set(px, py, 'O')
}

func (r *LiveRenderer) drawGeneric(x []float64) {
	cy := height / 2
	for i := 5; i < width-5; i++ {
		r.set(i, cy, '-')
	}

	if len(x) == 0 {
		return
	}

	bw := (width - 15) / len(x)
	if bw < 3 {
		bw = 3
	}

	maxVal := 1.0
	for _, v := range x {
		if math.Abs(v) > maxVal {
			maxVal = math.Abs(v)
		}
	}

	for i, v := range x {
		bx := 8 + i*bw
		bh := int((v / maxVal) * float64(height/3))
		if bh > 0 {
			for y := cy - 1; y >= cy-bh && y >= 1; y-- {
				r.set(bx, y, '#')
			}
		} else {
			for y := cy + 1; y <= cy-bh && y < height-1; y++ {
				r.set(bx, y, '#')
			}
		}
	}
}

func (r *LiveRenderer) render(t float64, names []string, row []float64) {
	var b strings.Builder
	b.WriteString(clearScreen)
	b.WriteString(fmt.Sprintf("  %s  t=%.2fs\n", r.model, t))
	b.WriteString("  " + strings.Repeat("-", width) + "\n")

	for _, line := range r.canvas {
		b.WriteString("  ")
		b.WriteString(string(line))
		b.WriteString("\n")
	}

	b.WriteString("  " + strings.Repeat("-", width) + "\n")

	b.WriteString("  ")
	for i, v := range row {
		if i >= 4 {
			break
		}
		b.WriteString(fmt.Sprintf("%s=%.3f ", names[i], v))
	}
	b.WriteString("\n")

	io.WriteString(r.out, b.String())
	r.frames++
}

func (r *LiveRenderer) Start() { io.WriteString(r.out, hideCursor) }
func (r *LiveRenderer) Stop()  { io.WriteString(r.out, showCursor) }

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
