package cv

import (
	"errors"

	"gocv.io/x/gocv"
)

var (
	// ErrEmptyImage 图像为空或无法解码
	ErrEmptyImage = errors.New("图像为空")
	// ErrEmptyRegion 裁剪区域与图像没有交集
	ErrEmptyRegion = errors.New("区域面积为零")
	// ErrUnsupportedInput 不支持的输入类型
	ErrUnsupportedInput = errors.New("不支持的图像输入类型")
)

// IsEmpty 判断 Mat 是否为空，零值 Mat 也视为空
func IsEmpty(mat gocv.Mat) bool {
	return mat.Ptr() == nil || mat.Empty()
}
