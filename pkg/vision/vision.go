// Package vision 提供屏幕文字识别的统一入口
//
// 根据 config.OCRConfig 选择 OCR 引擎（tesseract 或 PaddleOCR）并组装 locator.Locator，
// 同时提供全局默认定位器与便捷函数。
//
// 基本用法:
//
//	// 查找按钮文字
//	if m := vision.FindText("start", "screen.png"); m != nil {
//	    fmt.Printf("找到位置: (%d, %d)\n", m.Center.X, m.Center.Y)
//	}
//
//	// 识别指定区域
//	text, ok := vision.RecognizeText(screenshot, vision.WithRegion(100, 50, 200, 40))
package vision

import (
	"fmt"
	"sync"

	"github.com/zoeyai/screentext/internal/logger"
	"github.com/zoeyai/screentext/pkg/config"
	"github.com/zoeyai/screentext/pkg/vision/locator"
	"github.com/zoeyai/screentext/pkg/vision/ocr"
	"github.com/zoeyai/screentext/pkg/vision/ocr/paddle"
	"github.com/zoeyai/screentext/pkg/vision/ocr/tesseract"
)

// 全局单例实例
var (
	globalLocator *locator.Locator
	globalMu      sync.Mutex
)

// NewEngine 按配置创建 OCR 引擎
func NewEngine(cfg *config.OCRConfig) (ocr.Engine, error) {
	switch cfg.Engine {
	case config.EngineTesseract:
		return tesseract.New(tesseract.FromOCRConfig(cfg))
	case config.EnginePaddle:
		return paddle.New(paddle.FromOCRConfig(cfg))
	default:
		return nil, fmt.Errorf("不支持的 OCR 引擎: %s", cfg.Engine)
	}
}

// NewLocator 按配置创建定位器
// OCR 关闭或引擎创建失败时返回的定位器对所有调用都返回空结果
func NewLocator(cfg *config.OCRConfig) *locator.Locator {
	return newLocatorWith(cfg, NewEngine)
}

func newLocatorWith(cfg *config.OCRConfig, build func(*config.OCRConfig) (ocr.Engine, error)) *locator.Locator {
	if cfg == nil {
		cfg = config.DefaultOCRConfig()
	}
	if !cfg.EnableOCR {
		logger.Info("OCR 已关闭")
		return locator.New(ocr.NewAdapter(nil, false), cfg.Workers)
	}

	engine, err := build(cfg)
	if err != nil {
		logger.Warn("OCR 引擎不可用，文字识别已关闭: %v", err)
		return locator.New(ocr.NewAdapter(nil, false), cfg.Workers)
	}

	logger.Info("OCR 引擎初始化成功: %s", cfg.Engine)
	return locator.New(ocr.NewAdapter(engine, true), cfg.Workers)
}

// GetGlobalLocator 获取全局定位器，首次调用时按默认配置文件与环境变量创建
func GetGlobalLocator() *locator.Locator {
	globalMu.Lock()
	defer globalMu.Unlock()

	if globalLocator == nil {
		cfg, err := config.Load()
		if err != nil {
			logger.Warn("加载 OCR 配置失败，使用默认配置: %v", err)
			cfg = config.DefaultOCRConfig()
		}
		globalLocator = NewLocator(cfg)
	}
	return globalLocator
}

// InitLocator 使用指定配置初始化全局定位器，替换已有实例
func InitLocator(cfg *config.OCRConfig) *locator.Locator {
	loc := NewLocator(cfg)
	SetGlobalLocator(loc)
	return loc
}

// SetGlobalLocator 替换全局定位器
func SetGlobalLocator(loc *locator.Locator) {
	globalMu.Lock()
	defer globalMu.Unlock()

	if globalLocator != nil && globalLocator != loc {
		globalLocator.Close()
	}
	globalLocator = loc
}

// ClearCache 释放全局定位器，下次使用时重新创建
func ClearCache() {
	globalMu.Lock()
	defer globalMu.Unlock()

	if globalLocator != nil {
		globalLocator.Close()
		globalLocator = nil
	}
}

// ============ 便捷函数 ============

// RecognizeText 识别截图（或区域）中的文字
func RecognizeText(capture interface{}, opts ...Option) (string, bool) {
	return GetGlobalLocator().RecognizeText(capture, opts...)
}

// FindText 查找文字位置，未找到返回 nil
func FindText(target string, capture interface{}, opts ...Option) *TextMatch {
	return GetGlobalLocator().FindText(target, capture, opts...)
}

// ExtractAllText 提取所有文字
func ExtractAllText(capture interface{}, opts ...Option) []TextMatch {
	return GetGlobalLocator().ExtractAllText(capture, opts...)
}

// ExtractAllBatch 批量提取文字
func ExtractAllBatch(captures []interface{}, opts ...Option) [][]TextMatch {
	return GetGlobalLocator().ExtractAllBatch(captures, opts...)
}
