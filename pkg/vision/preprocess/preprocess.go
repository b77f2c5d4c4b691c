// Package preprocess 将屏幕截图转换为适合 OCR 的二值图
//
// 流程: 灰度 -> 小图放大 -> CLAHE -> 双边滤波 -> 锐化 -> 三种二值化候选 -> 择优 -> 形态学清理
package preprocess

import (
	"errors"
	"fmt"
	"image"
	"math"

	"gocv.io/x/gocv"

	"github.com/zoeyai/screentext/pkg/vision/cv"
)

// ErrPreprocessingFailed 预处理失败
var ErrPreprocessingFailed = errors.New("图像预处理失败")

const (
	// minSide 短边小于该值时放大
	minSide = 32
	// targetSide 放大后的目标短边
	targetSide = 64.0
	// minUpscale 最小放大倍数
	minUpscale = 2.0

	claheClipLimit = 2.0
	claheTileSize  = 8

	bilateralDiameter   = 9
	bilateralSigmaColor = 75
	bilateralSigmaSpace = 75

	adaptiveBlockSize = 11
	adaptiveC         = 2
)

// Method 二值化方法
type Method int

const (
	MethodAdaptiveGaussian Method = iota
	MethodAdaptiveMean
	MethodOtsu
)

func (m Method) String() string {
	switch m {
	case MethodAdaptiveGaussian:
		return "adaptive_gaussian"
	case MethodAdaptiveMean:
		return "adaptive_mean"
	case MethodOtsu:
		return "otsu"
	default:
		return "unknown"
	}
}

// Result 预处理结果
type Result struct {
	// Binary 单通道二值图 (0/255)，尺寸不小于输入
	Binary gocv.Mat
	// ScaleX, ScaleY 实际放大倍数 (输出尺寸 / 输入尺寸)，未放大时为 1
	ScaleX float64
	ScaleY float64
	// Method 被选中的二值化方法
	Method Method
}

// Close 释放二值图
func (r *Result) Close() error {
	return r.Binary.Close()
}

// UpscaleFactor 计算放大倍数，不需要放大时返回 1
func UpscaleFactor(width, height int) float64 {
	short := width
	if height < short {
		short = height
	}
	if short <= 0 || short >= minSide {
		return 1
	}
	return math.Max(minUpscale, targetSide/float64(short))
}

// Preprocess 对输入图像做完整预处理，输入不会被修改
// 任何一步失败（包括底层绑定 panic）都返回 ErrPreprocessingFailed
func Preprocess(src gocv.Mat) (result *Result, err error) {
	if cv.IsEmpty(src) || src.Cols() == 0 || src.Rows() == 0 {
		return nil, fmt.Errorf("%w: 输入为空", ErrPreprocessingFailed)
	}

	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("%w: %v", ErrPreprocessingFailed, r)
		}
	}()

	gray, err := cv.ToGray(src)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPreprocessingFailed, err)
	}
	defer gray.Close()

	scaled, scaleX, scaleY := upscale(gray)
	defer scaled.Close()

	enhanced := enhance(scaled)
	defer enhanced.Close()

	candidates := binarize(enhanced)
	defer func() {
		for _, c := range candidates {
			c.Binary.Close()
		}
	}()

	idx := Select(candidates)
	cleaned := cleanup(candidates[idx].Binary)
	if cleaned.Empty() {
		cleaned.Close()
		return nil, fmt.Errorf("%w: 清理结果为空", ErrPreprocessingFailed)
	}

	return &Result{
		Binary: cleaned,
		ScaleX: scaleX,
		ScaleY: scaleY,
		Method: candidates[idx].Method,
	}, nil
}

// upscale 短边过小时按三次插值放大
func upscale(gray gocv.Mat) (gocv.Mat, float64, float64) {
	w, h := gray.Cols(), gray.Rows()
	scale := UpscaleFactor(w, h)
	if scale == 1 {
		return gray.Clone(), 1, 1
	}

	newW := int(math.Round(float64(w) * scale))
	newH := int(math.Round(float64(h) * scale))

	dst := gocv.NewMat()
	gocv.Resize(gray, &dst, image.Point{X: newW, Y: newH}, 0, 0, gocv.InterpolationCubic)
	return dst, float64(newW) / float64(w), float64(newH) / float64(h)
}

// enhance CLAHE -> 双边滤波 -> 锐化
func enhance(gray gocv.Mat) gocv.Mat {
	clahe := gocv.NewCLAHEWithParams(claheClipLimit, image.Point{X: claheTileSize, Y: claheTileSize})
	defer clahe.Close()

	equalized := gocv.NewMat()
	defer equalized.Close()
	clahe.Apply(gray, &equalized)

	smoothed := gocv.NewMat()
	defer smoothed.Close()
	gocv.BilateralFilter(equalized, &smoothed, bilateralDiameter, bilateralSigmaColor, bilateralSigmaSpace)

	kernel := sharpenKernel()
	defer kernel.Close()

	sharpened := gocv.NewMat()
	gocv.Filter2D(smoothed, &sharpened, gocv.MatTypeCV8U, kernel, image.Pt(-1, -1), 0, gocv.BorderDefault)
	return sharpened
}

// sharpenKernel [[-1,-1,-1],[-1,9,-1],[-1,-1,-1]]
func sharpenKernel() gocv.Mat {
	kernel := gocv.NewMatWithSize(3, 3, gocv.MatTypeCV32F)
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			kernel.SetFloatAt(r, c, -1)
		}
	}
	kernel.SetFloatAt(1, 1, 9)
	return kernel
}

// binarize 生成三种候选，顺序固定为 Gaussian、Mean、Otsu
func binarize(src gocv.Mat) []Candidate {
	gaussian := gocv.NewMat()
	gocv.AdaptiveThreshold(src, &gaussian, 255, gocv.AdaptiveThresholdGaussian, gocv.ThresholdBinary, adaptiveBlockSize, adaptiveC)

	mean := gocv.NewMat()
	gocv.AdaptiveThreshold(src, &mean, 255, gocv.AdaptiveThresholdMean, gocv.ThresholdBinary, adaptiveBlockSize, adaptiveC)

	otsu := gocv.NewMat()
	gocv.Threshold(src, &otsu, 0, 255, gocv.ThresholdBinary|gocv.ThresholdOtsu)

	return []Candidate{
		{Method: MethodAdaptiveGaussian, Binary: gaussian},
		{Method: MethodAdaptiveMean, Binary: mean},
		{Method: MethodOtsu, Binary: otsu},
	}
}

// cleanup 开运算(2x2 椭圆) -> 闭运算(3x1 矩形) -> 闭运算(2x2 椭圆)
func cleanup(binary gocv.Mat) gocv.Mat {
	ellipse := gocv.GetStructuringElement(gocv.MorphEllipse, image.Pt(2, 2))
	defer ellipse.Close()
	rect := gocv.GetStructuringElement(gocv.MorphRect, image.Pt(3, 1))
	defer rect.Close()

	opened := gocv.NewMat()
	defer opened.Close()
	gocv.MorphologyEx(binary, &opened, gocv.MorphOpen, ellipse)

	joined := gocv.NewMat()
	defer joined.Close()
	gocv.MorphologyEx(opened, &joined, gocv.MorphClose, rect)

	dst := gocv.NewMat()
	gocv.MorphologyEx(joined, &dst, gocv.MorphClose, ellipse)
	return dst
}
