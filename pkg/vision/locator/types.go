package locator

import "image"

// Point 表示二维坐标点
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Size 宽高
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Region 搜索区域（绝对坐标）
type Region struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Rect 转换为 image.Rectangle
func (r Region) Rect() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

// Empty 面积是否为零
func (r Region) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// TextMatch 文字定位结果，坐标均为绝对坐标
type TextMatch struct {
	Text     string `json:"text"`
	Position Point  `json:"position"`
	Size     Size   `json:"size"`
	// Center Position + Size/2
	Center Point `json:"center"`
	// Confidence 置信度 (0-1)
	Confidence float64 `json:"confidence"`
}
