// Package locator 在屏幕截图中识别与定位文字
//
// 流程: 裁剪搜索区域 -> 预处理 -> OCR -> 置信度过滤 -> 坐标换算回绝对坐标。
// 公开方法不返回错误：识别失败、图像无效、OCR 关闭都表现为"没有结果"。
//
// 基本用法:
//
//	loc := locator.New(ocr.NewAdapter(engine, true), 4)
//	if m := loc.FindText("start", screenshot, locator.WithRegion(0, 0, 800, 200)); m != nil {
//	    fmt.Printf("位置: (%d, %d)\n", m.Center.X, m.Center.Y)
//	}
package locator

import (
	"errors"
	"fmt"
	"image"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/disintegration/imaging"
	"github.com/panjf2000/ants/v2"
	"gocv.io/x/gocv"

	"github.com/zoeyai/screentext/internal/logger"
	"github.com/zoeyai/screentext/pkg/vision/cv"
	"github.com/zoeyai/screentext/pkg/vision/ocr"
	"github.com/zoeyai/screentext/pkg/vision/preprocess"
)

// 置信度阈值（严格大于）
const (
	FindConfidenceThreshold    = 0.5
	ExtractConfidenceThreshold = 0.3
)

// Locator 文字定位器，除 OCR 适配器外不保存任何调用间状态
type Locator struct {
	adapter *ocr.Adapter
	workers int
}

// New 创建定位器，workers 为批量识别的并发数（<=0 时使用 CPU 数）
func New(adapter *ocr.Adapter, workers int) *Locator {
	if adapter == nil {
		adapter = ocr.NewAdapter(nil, false)
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Locator{adapter: adapter, workers: workers}
}

// Enabled OCR 是否可用
func (l *Locator) Enabled() bool {
	return l.adapter.Enabled()
}

// Workers 批量识别并发数
func (l *Locator) Workers() int {
	return l.workers
}

// Close 释放 OCR 引擎
func (l *Locator) Close() error {
	return l.adapter.Close()
}

// RecognizeText 识别整块区域的文字
// 目标图像优先级: WithRegionImage > 按 WithRegion 裁剪 > 整张截图
func (l *Locator) RecognizeText(capture interface{}, opts ...Option) (string, bool) {
	startTime := time.Now()
	text, err := l.recognizeText(capture, applyOptions(opts))
	l.logResult(startTime, err, fmt.Sprintf("识别文字: %s", text))
	return text, err == nil
}

// FindText 查找包含 target 的第一个单词（不区分大小写，置信度 > 0.5）
func (l *Locator) FindText(target string, capture interface{}, opts ...Option) *TextMatch {
	startTime := time.Now()
	match, err := l.findText(target, capture, applyOptions(opts))
	if err != nil {
		l.logResult(startTime, err, fmt.Sprintf("未找到文字: %s", target))
		return nil
	}
	l.logResult(startTime, nil, fmt.Sprintf("找到文字: %s (%d, %d)", target, match.Center.X, match.Center.Y))
	return match
}

// ExtractAllText 返回所有置信度 > 0.3 的单词，保持引擎顺序
func (l *Locator) ExtractAllText(capture interface{}, opts ...Option) []TextMatch {
	startTime := time.Now()
	matches, err := l.extractAll(capture, applyOptions(opts))
	if err != nil {
		l.logResult(startTime, err, "提取文字失败")
		return []TextMatch{}
	}
	l.logResult(startTime, nil, fmt.Sprintf("提取到 %d 个文本", len(matches)))
	return matches
}

// ExtractAllBatch 并发处理多张截图，结果下标与输入一致
// 预处理并行执行，OCR 调用仍由适配器串行化
func (l *Locator) ExtractAllBatch(captures []interface{}, opts ...Option) [][]TextMatch {
	results := make([][]TextMatch, len(captures))
	if len(captures) == 0 {
		return results
	}

	pool, err := ants.NewPool(l.workers)
	if err != nil {
		logger.Warn("创建识别协程池失败，改为顺序执行: %v", err)
		for i, c := range captures {
			results[i] = l.ExtractAllText(c, opts...)
		}
		return results
	}
	defer pool.Release()

	var wg sync.WaitGroup
	for i, c := range captures {
		wg.Add(1)
		idx, capture := i, c
		err := pool.Submit(func() {
			defer wg.Done()
			results[idx] = l.ExtractAllText(capture, opts...)
		})
		if err != nil {
			wg.Done()
			logger.Warn("提交识别任务失败: %v", err)
			results[idx] = []TextMatch{}
		}
	}
	wg.Wait()

	return results
}

// recognizeText 整块识别
func (l *Locator) recognizeText(capture interface{}, o *options) (string, error) {
	if !l.Enabled() {
		return "", ocr.ErrFeatureDisabled
	}

	result, _, err := l.prepare(capture, o)
	if err != nil {
		return "", err
	}
	defer result.Close()

	return l.adapter.Recognize(result.Binary)
}

// findText 查找第一个匹配单词
func (l *Locator) findText(target string, capture interface{}, o *options) (*TextMatch, error) {
	if !l.Enabled() {
		return nil, ocr.ErrFeatureDisabled
	}
	tokens, frame, err := l.tokens(capture, o)
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(target)
	for _, tok := range tokens {
		if tok.Confidence > FindConfidenceThreshold && strings.Contains(strings.ToLower(tok.Text), needle) {
			match := frame.ToMatch(tok)
			return &match, nil
		}
	}
	return nil, ocr.ErrNoMatch
}

// extractAll 提取所有单词
func (l *Locator) extractAll(capture interface{}, o *options) ([]TextMatch, error) {
	if !l.Enabled() {
		return nil, ocr.ErrFeatureDisabled
	}

	tokens, frame, err := l.tokens(capture, o)
	if err != nil {
		return nil, err
	}

	matches := make([]TextMatch, 0, len(tokens))
	for _, tok := range tokens {
		if tok.Confidence > ExtractConfidenceThreshold {
			matches = append(matches, frame.ToMatch(tok))
		}
	}
	return matches, nil
}

// tokens 预处理后按单词识别
func (l *Locator) tokens(capture interface{}, o *options) ([]ocr.Token, Frame, error) {
	result, frame, err := l.prepare(capture, o)
	if err != nil {
		return nil, Frame{}, err
	}
	defer result.Close()

	tokens, err := l.adapter.RecognizeTokens(result.Binary)
	if err != nil {
		return nil, Frame{}, err
	}
	return tokens, frame, nil
}

// prepare 加载目标图像并预处理，返回识别坐标系
func (l *Locator) prepare(capture interface{}, o *options) (*preprocess.Result, Frame, error) {
	mat, offset, err := loadTarget(capture, o)
	defer mat.Close()
	if err != nil {
		return nil, Frame{}, err
	}

	result, err := preprocess.Preprocess(mat)
	if err != nil {
		return nil, Frame{}, err
	}

	frame := Frame{
		OffsetX: offset.X,
		OffsetY: offset.Y,
		ScaleX:  result.ScaleX,
		ScaleY:  result.ScaleY,
		Width:   mat.Cols(),
		Height:  mat.Rows(),
	}
	return result, frame, nil
}

// loadTarget 按优先级取得目标图像，返回图像与其左上角的绝对坐标
func loadTarget(capture interface{}, o *options) (mat gocv.Mat, offset image.Point, err error) {
	defer func() {
		if r := recover(); r != nil {
			mat, offset, err = gocv.NewMat(), image.Point{}, fmt.Errorf("%w: %v", cv.ErrEmptyImage, r)
		}
	}()

	if o.regionImage != nil {
		mat, err := cv.LoadImageInput(o.regionImage)
		if err != nil {
			return mat, image.Point{}, err
		}
		var offset image.Point
		if o.region != nil {
			offset = image.Pt(o.region.X, o.region.Y)
		} else if img, ok := o.regionImage.(image.Image); ok {
			offset = img.Bounds().Min
		}
		return mat, offset, nil
	}

	if o.region == nil {
		mat, err := cv.LoadImageInput(capture)
		var offset image.Point
		if img, ok := capture.(image.Image); ok && err == nil {
			offset = img.Bounds().Min
		}
		return mat, offset, err
	}

	if o.region.Empty() {
		return gocv.NewMat(), image.Point{}, fmt.Errorf("%w: %+v", cv.ErrEmptyRegion, *o.region)
	}

	// image.Image 先裁剪再转换，避免整屏转换
	if img, ok := capture.(image.Image); ok && img != nil {
		rect := o.region.Rect().Intersect(img.Bounds())
		if rect.Empty() {
			return gocv.NewMat(), image.Point{}, fmt.Errorf("%w: %+v", cv.ErrEmptyRegion, *o.region)
		}
		mat, err := cv.ImageToMat(imaging.Crop(img, rect))
		return mat, rect.Min, err
	}

	full, err := cv.LoadImageInput(capture)
	if err != nil {
		return full, image.Point{}, err
	}
	defer full.Close()

	mat, rect, err := cv.CropImage(full, o.region.Rect())
	return mat, rect.Min, err
}

// logResult 记录定位事件，OCR 关闭时不记录
func (l *Locator) logResult(startTime time.Time, err error, detail string) {
	if errors.Is(err, ocr.ErrFeatureDisabled) {
		return
	}
	elapsed := float64(time.Since(startTime).Microseconds()) / 1000
	if err != nil {
		logger.LogEvent("TEXT", false, elapsed, fmt.Sprintf("%s: %v", detail, err))
		return
	}
	logger.LogEvent("TEXT", true, elapsed, detail)
}
