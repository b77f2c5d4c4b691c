package vision

import (
	"github.com/zoeyai/screentext/pkg/vision/locator"
	"github.com/zoeyai/screentext/pkg/vision/ocr"
)

// Version 版本号
const Version = "1.0.0"

// ============ 类型别名 ============

type (
	// Point 二维坐标点
	Point = locator.Point
	// Size 宽高
	Size = locator.Size
	// Region 搜索区域
	Region = locator.Region
	// TextMatch 文字定位结果
	TextMatch = locator.TextMatch
	// Option 定位选项
	Option = locator.Option
	// Locator 文字定位器
	Locator = locator.Locator
	// Engine OCR 引擎接口
	Engine = ocr.Engine
)

// 定位选项
var (
	WithRegion      = locator.WithRegion
	WithRegionImage = locator.WithRegionImage
)

// NewPoint 创建新的 Point
func NewPoint(x, y int) Point {
	return Point{X: x, Y: y}
}

// NewRegion 从左上角坐标和宽高创建区域
func NewRegion(x, y, w, h int) Region {
	return Region{X: x, Y: y, Width: w, Height: h}
}
