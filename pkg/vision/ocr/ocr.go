// Package ocr 封装 OCR 引擎调用
//
// Engine 是底层识别引擎的最小能力接口（tesseract、PaddleOCR 等），
// Adapter 在其上负责开关控制、调用串行化、结果归一化与错误隔离。
//
// 基本用法:
//
//	engine, err := tesseract.New(tesseract.DefaultConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	adapter := ocr.NewAdapter(engine, true)
//	defer adapter.Close()
//
//	text, err := adapter.Recognize(binary)
package ocr

import (
	"errors"
	"image"

	"gocv.io/x/gocv"
)

var (
	// ErrFeatureDisabled OCR 已关闭或引擎不可用
	ErrFeatureDisabled = errors.New("OCR 未启用")
	// ErrEngineInvocationFailed 引擎调用失败
	ErrEngineInvocationFailed = errors.New("OCR 引擎调用失败")
	// ErrNoMatch 没有符合条件的识别结果
	ErrNoMatch = errors.New("未找到匹配文字")
)

// RawToken 引擎原始输出的单词
type RawToken struct {
	Text string
	// Box 在输入图像坐标系中的边界框
	Box image.Rectangle
	// Confidence 引擎原生置信度 (0-100)
	Confidence float64
}

// Token 归一化后的单词
type Token struct {
	Text string
	Box  image.Rectangle
	// Confidence 置信度 (0-1)
	Confidence float64
}

// Engine OCR 引擎能力接口
type Engine interface {
	// Recognize 识别整张图的文字
	Recognize(img gocv.Mat) (string, error)
	// RecognizeTokens 按单词识别，返回引擎顺序的结果
	RecognizeTokens(img gocv.Mat) ([]RawToken, error)
	// Close 释放引擎资源
	Close() error
}

// NoopEngine 关闭 OCR 时使用的空引擎
type NoopEngine struct{}

func (NoopEngine) Recognize(gocv.Mat) (string, error) { return "", ErrFeatureDisabled }

func (NoopEngine) RecognizeTokens(gocv.Mat) ([]RawToken, error) { return nil, ErrFeatureDisabled }

func (NoopEngine) Close() error { return nil }
