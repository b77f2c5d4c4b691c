package locator

import (
	"math"

	"github.com/zoeyai/screentext/pkg/vision/ocr"
)

// Frame 识别坐标系到绝对坐标系的换算
// 识别坐标先除以放大倍数回到裁剪图坐标，截断到裁剪范围内，再加上裁剪偏移
type Frame struct {
	OffsetX int
	OffsetY int
	// ScaleX, ScaleY 预处理放大倍数
	ScaleX float64
	ScaleY float64
	// Width, Height 裁剪图尺寸
	Width  int
	Height int
}

// scaleCoord 缩放坐标（识别坐标 -> 裁剪图坐标）
func scaleCoord(v int, scale float64) int {
	if scale <= 0 {
		return v
	}
	return int(math.Round(float64(v) / scale))
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ToAbsolute 识别坐标转绝对坐标，结果落在 [OffsetX, OffsetX+Width) x [OffsetY, OffsetY+Height)
func (f Frame) ToAbsolute(p Point) Point {
	x := clamp(scaleCoord(p.X, f.ScaleX), 0, f.Width-1)
	y := clamp(scaleCoord(p.Y, f.ScaleY), 0, f.Height-1)
	return Point{X: f.OffsetX + x, Y: f.OffsetY + y}
}

// ToSize 识别尺寸转裁剪图尺寸，不超出从 p 开始的剩余范围
func (f Frame) ToSize(p Point, s Size) Size {
	local := f.ToAbsolute(p)
	maxW := f.Width - (local.X - f.OffsetX)
	maxH := f.Height - (local.Y - f.OffsetY)
	return Size{
		Width:  clamp(scaleCoord(s.Width, f.ScaleX), 0, maxW),
		Height: clamp(scaleCoord(s.Height, f.ScaleY), 0, maxH),
	}
}

// ToMatch 将识别单词换算为定位结果
func (f Frame) ToMatch(tok ocr.Token) TextMatch {
	topLeft := Point{X: tok.Box.Min.X, Y: tok.Box.Min.Y}
	size := Size{Width: tok.Box.Dx(), Height: tok.Box.Dy()}

	pos := f.ToAbsolute(topLeft)
	sz := f.ToSize(topLeft, size)
	return TextMatch{
		Text:     tok.Text,
		Position: pos,
		Size:     sz,
		Center: Point{
			X: pos.X + sz.Width/2,
			Y: pos.Y + sz.Height/2,
		},
		Confidence: tok.Confidence,
	}
}
