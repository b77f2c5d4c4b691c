package ocr

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"gocv.io/x/gocv"

	"github.com/zoeyai/screentext/internal/logger"
)

// Adapter OCR 引擎适配器
// 同一 Adapter 上的引擎调用串行执行
type Adapter struct {
	engine  Engine
	enabled atomic.Bool
	mu      sync.Mutex
}

// NewAdapter 创建适配器，enabled 为 false 或 engine 为 nil 时使用空引擎
func NewAdapter(engine Engine, enabled bool) *Adapter {
	if !enabled || engine == nil {
		return &Adapter{engine: NoopEngine{}}
	}
	a := &Adapter{engine: engine}
	a.enabled.Store(true)
	return a
}

// Enabled 是否启用
func (a *Adapter) Enabled() bool {
	return a != nil && a.enabled.Load()
}

// Recognize 识别整张图，换行替换为空格并去除首尾空白
// 结果为空时返回 ErrNoMatch
func (a *Adapter) Recognize(img gocv.Mat) (string, error) {
	if !a.Enabled() {
		return "", ErrFeatureDisabled
	}

	startTime := time.Now()
	var text string
	err := a.invoke(func() error {
		var err error
		text, err = a.engine.Recognize(img)
		return err
	})
	elapsed := float64(time.Since(startTime).Microseconds()) / 1000
	if err != nil {
		logger.LogEvent("OCR", false, elapsed, err.Error())
		return "", err
	}

	text = normalizeText(text)
	if text == "" {
		logger.LogEvent("OCR", false, elapsed, "未识别到文字")
		return "", ErrNoMatch
	}

	logger.LogEvent("OCR", true, elapsed, fmt.Sprintf("识别到文字: %s", text))
	return text, nil
}

// RecognizeTokens 按单词识别，置信度换算到 [0,1]，空白单词被丢弃
func (a *Adapter) RecognizeTokens(img gocv.Mat) ([]Token, error) {
	if !a.Enabled() {
		return nil, ErrFeatureDisabled
	}

	startTime := time.Now()
	var raw []RawToken
	err := a.invoke(func() error {
		var err error
		raw, err = a.engine.RecognizeTokens(img)
		return err
	})
	elapsed := float64(time.Since(startTime).Microseconds()) / 1000
	if err != nil {
		logger.LogEvent("OCR", false, elapsed, err.Error())
		return nil, err
	}

	tokens := make([]Token, 0, len(raw))
	for _, r := range raw {
		text := strings.TrimSpace(r.Text)
		if text == "" {
			continue
		}
		tokens = append(tokens, Token{
			Text:       text,
			Box:        r.Box,
			Confidence: NormalizeConfidence(r.Confidence),
		})
	}

	logger.LogEvent("OCR", true, elapsed, fmt.Sprintf("识别到 %d 个文本", len(tokens)))
	return tokens, nil
}

// invoke 加锁调用引擎，错误与 panic 统一包装为 ErrEngineInvocationFailed
func (a *Adapter) invoke(call func() error) (err error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrEngineInvocationFailed, r)
		}
	}()

	if err := call(); err != nil {
		return fmt.Errorf("%w: %v", ErrEngineInvocationFailed, err)
	}
	return nil
}

// Close 释放引擎
func (a *Adapter) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.engine == nil {
		return nil
	}
	err := a.engine.Close()
	a.engine = NoopEngine{}
	a.enabled.Store(false)
	return err
}

// NormalizeConfidence 0-100 换算到 0-1 并截断
func NormalizeConfidence(conf float64) float64 {
	c := conf / 100
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}

// normalizeText 换行转空格后去除首尾空白
func normalizeText(text string) string {
	text = strings.NewReplacer("\r", " ", "\n", " ").Replace(text)
	return strings.TrimSpace(text)
}
