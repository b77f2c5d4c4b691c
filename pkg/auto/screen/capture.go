// Package screen 提供屏幕截图和编码功能
package screen

import (
	"fmt"
	"image"

	"github.com/go-vgo/robotgo"
)

// CaptureScreen 截取全屏
func CaptureScreen() (image.Image, error) {
	img, err := robotgo.CaptureImg()
	if err != nil {
		return nil, fmt.Errorf("截屏失败: %w", err)
	}
	return img, nil
}

// CaptureRegion 截取屏幕区域
func CaptureRegion(x, y, width, height int) (image.Image, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("截取区域无效: %dx%d", width, height)
	}
	img, err := robotgo.CaptureImg(x, y, width, height)
	if err != nil {
		return nil, fmt.Errorf("截取区域失败: %w", err)
	}
	return img, nil
}

// CapturePNG 截取全屏并编码为 PNG
func CapturePNG() ([]byte, error) {
	img, err := CaptureScreen()
	if err != nil {
		return nil, err
	}
	return EncodeImage(img, "png", 0)
}

// GetScreenSize 获取屏幕尺寸
func GetScreenSize() (width, height int) {
	return robotgo.GetScreenSize()
}

// GetDisplayCount 获取显示器数量
func GetDisplayCount() int {
	return robotgo.DisplaysNum()
}

// Capturer 屏幕截图源
// Width 或 Height 为 0 时截取全屏
type Capturer struct {
	X, Y          int
	Width, Height int
}

// NewRegionCapturer 创建区域截图源
func NewRegionCapturer(x, y, width, height int) *Capturer {
	return &Capturer{X: x, Y: y, Width: width, Height: height}
}

// FullScreen 是否截取全屏
func (c *Capturer) FullScreen() bool {
	return c == nil || c.Width == 0 || c.Height == 0
}

// Capture 截取一帧
func (c *Capturer) Capture() (image.Image, error) {
	if c.FullScreen() {
		return CaptureScreen()
	}
	return CaptureRegion(c.X, c.Y, c.Width, c.Height)
}
