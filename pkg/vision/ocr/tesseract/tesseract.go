// Package tesseract 基于 gosseract 的 OCR 引擎
package tesseract

import (
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"
	"gocv.io/x/gocv"

	"github.com/zoeyai/screentext/pkg/config"
	"github.com/zoeyai/screentext/pkg/vision/cv"
	"github.com/zoeyai/screentext/pkg/vision/ocr"
)

// Config tesseract 配置
type Config struct {
	// Language 语言，默认 eng
	Language string
	// PageSegMode 页面分割模式，默认 8（单词）
	PageSegMode int
	// Whitelist 字符白名单，默认字母数字
	Whitelist string
	// TessdataPrefix tessdata 目录，空则使用系统默认
	TessdataPrefix string
}

// DefaultConfig 默认配置：单词模式 + 字母数字白名单
func DefaultConfig() Config {
	return Config{
		Language:    "eng",
		PageSegMode: config.PSMSingleWord,
		Whitelist:   config.AlphaNumericWhitelist,
	}
}

// FromOCRConfig 从运行配置生成
func FromOCRConfig(c *config.OCRConfig) Config {
	return Config{
		Language:       c.Language,
		PageSegMode:    c.PageSegMode,
		Whitelist:      c.Whitelist,
		TessdataPrefix: c.TessdataPrefix,
	}
}

// ModeString 以命令行参数形式描述当前模式
func (c Config) ModeString() string {
	s := fmt.Sprintf("--psm %d", c.PageSegMode)
	if c.Whitelist != "" {
		s += " -c tessedit_char_whitelist=" + c.Whitelist
	}
	return s
}

// Engine tesseract 引擎
// gosseract.Client 不是并发安全的，调用方需串行使用（ocr.Adapter 已保证）
type Engine struct {
	client *gosseract.Client
	config Config
}

// New 创建引擎，分割模式与白名单在此固定
func New(cfg Config) (*Engine, error) {
	client := gosseract.NewClient()

	if cfg.TessdataPrefix != "" {
		if err := client.SetTessdataPrefix(cfg.TessdataPrefix); err != nil {
			client.Close()
			return nil, fmt.Errorf("设置 tessdata 目录失败: %w", err)
		}
	}
	if cfg.Language != "" {
		if err := client.SetLanguage(cfg.Language); err != nil {
			client.Close()
			return nil, fmt.Errorf("设置语言失败: %w", err)
		}
	}
	if err := client.SetPageSegMode(gosseract.PageSegMode(cfg.PageSegMode)); err != nil {
		client.Close()
		return nil, fmt.Errorf("设置分割模式失败: %w", err)
	}
	if cfg.Whitelist != "" {
		if err := client.SetWhitelist(cfg.Whitelist); err != nil {
			client.Close()
			return nil, fmt.Errorf("设置白名单失败: %w", err)
		}
	}

	return &Engine{client: client, config: cfg}, nil
}

// Version tesseract 版本
func Version() string {
	return gosseract.Version()
}

// Config 返回引擎配置
func (e *Engine) Config() Config {
	return e.config
}

// setImage 编码为 PNG 后交给 tesseract
func (e *Engine) setImage(img gocv.Mat) error {
	data, err := cv.EncodePNG(img)
	if err != nil {
		return err
	}
	return e.client.SetImageFromBytes(data)
}

// Recognize 识别整张图
func (e *Engine) Recognize(img gocv.Mat) (string, error) {
	if err := e.setImage(img); err != nil {
		return "", err
	}
	return e.client.Text()
}

// RecognizeTokens 单词级识别，置信度为 tesseract 原生 0-100
func (e *Engine) RecognizeTokens(img gocv.Mat) ([]ocr.RawToken, error) {
	if err := e.setImage(img); err != nil {
		return nil, err
	}

	boxes, err := e.client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return nil, fmt.Errorf("获取单词边界失败: %w", err)
	}

	tokens := make([]ocr.RawToken, 0, len(boxes))
	for _, b := range boxes {
		tokens = append(tokens, ocr.RawToken{
			Text:       strings.TrimSpace(b.Word),
			Box:        b.Box,
			Confidence: b.Confidence,
		})
	}
	return tokens, nil
}

// Close 释放客户端
func (e *Engine) Close() error {
	if e.client == nil {
		return nil
	}
	err := e.client.Close()
	e.client = nil
	return err
}
