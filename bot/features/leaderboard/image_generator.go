package leaderboard

import (
	"bytes"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	log "github.com/sirupsen/logrus"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomono"
)

// Entry is one leaderboard line
type Entry struct {
	Rank     int
	Username string
	Drops    int64
}

// Style defines the look of the leaderboard card
type Style struct {
	Width     int
	MinHeight int
	Padding   int
	RowHeight int
	// BarColor tints the drop bars, RGBA
	BarColor   [4]float64
	PodiumRGBA [3][4]float64
}

// ImageGenerator renders leaderboards as PNG cards
type ImageGenerator struct {
	style Style
}

// NewImageGenerator creates a generator with the default pastel style
func NewImageGenerator() *ImageGenerator {
	return &ImageGenerator{
		style: Style{
			Width:     380,
			MinHeight: 120,
			Padding:   15,
			RowHeight: 26,
			BarColor:  [4]float64{1, 0.71, 0.76, 0.35},
			PodiumRGBA: [3][4]float64{
				{1, 0.84, 0, 0.1},
				{0.8, 0.8, 0.8, 0.08},
				{0.8, 0.5, 0.2, 0.06},
			},
		},
	}
}

// Generate renders the entries under a title
func (g *ImageGenerator) Generate(title string, entries []Entry) ([]byte, error) {
	start := time.Now()
	defer func() {
		log.WithFields(log.Fields{
			"duration_ms": time.Since(start).Milliseconds(),
			"row_count":   len(entries),
		}).Debug("Leaderboard image generation completed")
	}()

	// title + header + rows + bottom padding
	height := 30 + 25 + len(entries)*g.style.RowHeight + g.style.Padding
	if height < g.style.MinHeight {
		height = g.style.MinHeight
	}

	dc := gg.NewContext(g.style.Width, height)
	g.drawBackground(dc, height)

	titleFace, err := loadFont(gobold.TTF, 13)
	if err != nil {
		return nil, fmt.Errorf("failed to load title font: %w", err)
	}
	face, err := loadFont(gomono.TTF, 11)
	if err != nil {
		return nil, fmt.Errorf("failed to load font: %w", err)
	}

	dc.SetFontFace(titleFace)
	dc.SetRGB(1, 0.9, 0.95)
	drawSharpText(dc, title, float64(g.style.Padding), 20)

	dc.SetFontFace(face)
	y := float64(50)
	rankX := float64(g.style.Padding)
	userX := rankX + 25
	dropsX := float64(g.style.Width - g.style.Padding - 60)

	dc.SetRGBA(0.3, 0.3, 0.4, 0.4)
	dc.DrawRectangle(0, y-15, float64(g.style.Width), 20)
	dc.Fill()
	dc.SetRGB(1, 1, 1)
	drawSharpText(dc, "#", rankX, y)
	drawSharpText(dc, "User", userX, y)
	drawSharpText(dc, "Drops", dropsX, y)

	if len(entries) == 0 {
		dc.SetRGB(0.7, 0.7, 0.7)
		dc.DrawStringAnchored("No drops yet", float64(g.style.Width)/2, y+30, 0.5, 0.5)
		return encode(dc)
	}

	var maxDrops int64
	for _, e := range entries {
		if e.Drops > maxDrops {
			maxDrops = e.Drops
		}
	}

	y += float64(g.style.RowHeight) + 4
	barWidth := dropsX - userX - 10
	for i, e := range entries {
		rowTop := y - 15
		if i < len(g.style.PodiumRGBA) {
			c := g.style.PodiumRGBA[i]
			dc.SetRGBA(c[0], c[1], c[2], c[3])
			dc.DrawRectangle(0, rowTop, float64(g.style.Width), float64(g.style.RowHeight))
			dc.Fill()
		}

		// drop bar behind the username, scaled to the leader
		if maxDrops > 0 {
			b := g.style.BarColor
			dc.SetRGBA(b[0], b[1], b[2], b[3])
			w := barWidth * float64(e.Drops) / float64(maxDrops)
			dc.DrawRoundedRectangle(userX-3, rowTop+4, w, float64(g.style.RowHeight-8), 3)
			dc.Fill()
		}

		if i < len(g.style.PodiumRGBA) {
			drawMedal(dc, i, e.Rank, rankX+3, y-4)
			dc.SetFontFace(face)
		} else {
			dc.SetRGB(0.85, 0.85, 0.9)
			drawSharpText(dc, fmt.Sprintf("%d", e.Rank), rankX, y)
		}

		dc.SetRGB(1, 1, 1)
		drawSharpText(dc, truncate(e.Username, 22), userX, y)
		dc.SetRGB(1, 0.85, 0.9)
		drawSharpText(dc, fmt.Sprintf("%d", e.Drops), dropsX, y)

		y += float64(g.style.RowHeight)
	}

	return encode(dc)
}

func (g *ImageGenerator) drawBackground(dc *gg.Context, height int) {
	for i := 0; i < height; i++ {
		t := float64(i) / float64(height)
		dc.SetRGB(0.08+t*0.04, 0.03+t*0.03, 0.1+t*0.08)
		dc.DrawLine(0, float64(i), float64(g.style.Width), float64(i))
		dc.Stroke()
	}
}

func drawMedal(dc *gg.Context, place, rank int, x, y float64) {
	medals := [3][3]float64{
		{1, 0.84, 0},
		{0.75, 0.75, 0.75},
		{0.8, 0.5, 0.2},
	}
	c := medals[place]
	dc.SetRGB(c[0], c[1], c[2])
	dc.DrawCircle(x, y, 6)
	dc.Fill()

	if rankFace, err := loadFont(gobold.TTF, 9); err == nil {
		dc.SetFontFace(rankFace)
	}
	dc.SetRGB(0, 0, 0)
	dc.DrawStringAnchored(fmt.Sprintf("%d", rank), x, y-1, 0.5, 0.4)
}

// drawSharpText draws text over a faint offset shadow
func drawSharpText(dc *gg.Context, text string, x, y float64) {
	dc.Push()
	dc.SetRGBA(0, 0, 0, 0.5)
	dc.DrawString(text, x+0.5, y+0.5)
	dc.Pop()
	dc.DrawString(text, x, y)
}

func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max-1]) + "…"
}

func encode(dc *gg.Context) ([]byte, error) {
	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode PNG: %w", err)
	}
	return buf.Bytes(), nil
}

func loadFont(fontData []byte, size float64) (font.Face, error) {
	f, err := truetype.Parse(fontData)
	if err != nil {
		return nil, err
	}
	return truetype.NewFace(f, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	}), nil
}
