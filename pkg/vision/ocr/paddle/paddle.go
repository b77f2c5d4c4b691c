// Package paddle 基于 PaddleOCR (go-ocr, ONNX Runtime) 的 OCR 引擎
package paddle

import (
	"fmt"
	"image"
	"strings"

	goocr "github.com/getcharzp/go-ocr"
	"gocv.io/x/gocv"

	"github.com/zoeyai/screentext/internal/logger"
	"github.com/zoeyai/screentext/pkg/config"
	"github.com/zoeyai/screentext/pkg/vision/cv"
	"github.com/zoeyai/screentext/pkg/vision/ocr"
)

// Config PaddleOCR 配置
type Config struct {
	// OnnxRuntimeLibPath ONNX Runtime 动态库路径
	OnnxRuntimeLibPath string
	// DetModelPath 检测模型路径
	DetModelPath string
	// RecModelPath 识别模型路径
	RecModelPath string
	// DictPath 字典文件路径
	DictPath string
}

// DefaultConfig 默认配置，按可执行文件位置自动查找模型
func DefaultConfig() Config {
	return Config{
		OnnxRuntimeLibPath: firstExisting(onnxRuntimeCandidates()),
		DetModelPath:       firstExisting(modelCandidates("det.onnx")),
		RecModelPath:       firstExisting(modelCandidates("rec.onnx")),
		DictPath:           firstExisting(modelCandidates("dict.txt")),
	}
}

// FromOCRConfig 从运行配置生成，未配置的路径使用自动查找结果
func FromOCRConfig(c *config.OCRConfig) Config {
	cfg := DefaultConfig()
	if c.OnnxRuntimeLibPath != "" {
		cfg.OnnxRuntimeLibPath = c.OnnxRuntimeLibPath
	}
	if c.DetModelPath != "" {
		cfg.DetModelPath = c.DetModelPath
	}
	if c.RecModelPath != "" {
		cfg.RecModelPath = c.RecModelPath
	}
	if c.DictPath != "" {
		cfg.DictPath = c.DictPath
	}
	return cfg
}

// Available 模型与运行库文件是否齐全
func (c Config) Available() bool {
	return fileExists(c.OnnxRuntimeLibPath) &&
		fileExists(c.DetModelPath) &&
		fileExists(c.RecModelPath) &&
		fileExists(c.DictPath)
}

// IsAvailable 检查默认配置是否可用
func IsAvailable() bool {
	return DefaultConfig().Available()
}

// Engine PaddleOCR 引擎
type Engine struct {
	engine goocr.Engine
	config Config
}

// New 创建引擎
func New(cfg Config) (*Engine, error) {
	if !cfg.Available() {
		return nil, fmt.Errorf("PaddleOCR 模型文件不完整: %s", cfg.DetModelPath)
	}

	engine, err := goocr.NewPaddleOcrEngine(goocr.Config{
		OnnxRuntimeLibPath: cfg.OnnxRuntimeLibPath,
		DetModelPath:       cfg.DetModelPath,
		RecModelPath:       cfg.RecModelPath,
		DictPath:           cfg.DictPath,
	})
	if err != nil {
		return nil, fmt.Errorf("创建 OCR 引擎失败: %w", err)
	}

	logger.Info("PaddleOCR 引擎初始化成功")
	return &Engine{engine: engine, config: cfg}, nil
}

// run 执行检测加识别
func (e *Engine) run(img gocv.Mat) ([]goocr.RecResult, error) {
	if e.engine == nil {
		return nil, fmt.Errorf("引擎已关闭")
	}
	src, err := cv.MatToImage(img)
	if err != nil {
		return nil, err
	}
	results, err := e.engine.RunOCR(src)
	if err != nil {
		return nil, fmt.Errorf("OCR 识别失败: %w", err)
	}
	return results, nil
}

// Recognize 识别整张图，按引擎顺序以空格拼接
func (e *Engine) Recognize(img gocv.Mat) (string, error) {
	results, err := e.run(img)
	if err != nil {
		return "", err
	}

	texts := make([]string, 0, len(results))
	for _, r := range results {
		if t := strings.TrimSpace(r.Text); t != "" {
			texts = append(texts, t)
		}
	}
	return strings.Join(texts, " "), nil
}

// RecognizeTokens 识别文本框，Score (0-1) 换算为 0-100
func (e *Engine) RecognizeTokens(img gocv.Mat) ([]ocr.RawToken, error) {
	results, err := e.run(img)
	if err != nil {
		return nil, err
	}

	tokens := make([]ocr.RawToken, 0, len(results))
	for _, r := range results {
		tokens = append(tokens, convertResult(r))
	}
	return tokens, nil
}

// convertResult go-ocr RecResult: Box [4]int{x1, y1, x2, y2}, Score 0-1
func convertResult(r goocr.RecResult) ocr.RawToken {
	return ocr.RawToken{
		Text:       r.Text,
		Box:        image.Rect(r.Box[0], r.Box[1], r.Box[2], r.Box[3]),
		Confidence: float64(r.Score) * 100,
	}
}

// Close 释放引擎
func (e *Engine) Close() error {
	if e.engine != nil {
		e.engine.Destroy()
		e.engine = nil
	}
	return nil
}
