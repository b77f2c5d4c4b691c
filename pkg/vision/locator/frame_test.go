package locator

import (
	"image"
	"testing"

	"github.com/zoeyai/screentext/pkg/vision/ocr"
)

func TestFrameToAbsolute(t *testing.T) {
	f := Frame{OffsetX: 100, OffsetY: 50, ScaleX: 3.2, ScaleY: 3.2, Width: 30, Height: 20}

	tests := []struct {
		in   Point
		want Point
	}{
		{Point{0, 0}, Point{100, 50}},
		{Point{32, 16}, Point{110, 55}},
		{Point{200, 100}, Point{129, 69}}, // 超出裁剪范围，截断到右下角
		{Point{-10, -5}, Point{100, 50}},  // 负坐标截断到左上角
	}

	for _, tt := range tests {
		got := f.ToAbsolute(tt.in)
		if got != tt.want {
			t.Errorf("ToAbsolute(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestFrameIdentity(t *testing.T) {
	f := Frame{ScaleX: 1, ScaleY: 1, Width: 240, Height: 80}
	if got := f.ToAbsolute(Point{37, 12}); got != (Point{37, 12}) {
		t.Errorf("无偏移无缩放时坐标不应改变: %v", got)
	}
}

func TestFrameToMatch(t *testing.T) {
	f := Frame{OffsetX: 100, OffsetY: 50, ScaleX: 3.2, ScaleY: 3.2, Width: 30, Height: 20}

	m := f.ToMatch(ocr.Token{Text: "OK", Box: image.Rect(32, 16, 64, 48), Confidence: 0.8})
	if m.Position != (Point{110, 55}) {
		t.Errorf("位置错误: %v", m.Position)
	}
	if m.Size != (Size{10, 10}) {
		t.Errorf("尺寸错误: %v", m.Size)
	}
	if m.Center != (Point{115, 60}) {
		t.Errorf("中心点应为位置加半尺寸: %v", m.Center)
	}
	if m.Text != "OK" || m.Confidence != 0.8 {
		t.Errorf("文字或置信度错误: %+v", m)
	}

	// 尺寸不超出裁剪范围
	edge := f.ToMatch(ocr.Token{Text: "X", Box: image.Rect(80, 48, 200, 120), Confidence: 0.9})
	if edge.Position.X+edge.Size.Width > 130 || edge.Position.Y+edge.Size.Height > 70 {
		t.Errorf("结果超出搜索区域: %+v", edge)
	}
}
