// Package text 提供基于屏幕截图的文字等待与检测
package text

import (
	"context"
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/zoeyai/screentext/internal/logger"
	"github.com/zoeyai/screentext/pkg/vision/locator"
)

// DefaultPollInterval 默认轮询间隔
const DefaultPollInterval = 200 * time.Millisecond

// ErrTextNotFound 等待结束仍未找到文字
var ErrTextNotFound = errors.New("text not found")

// Capturer 截图源
type Capturer interface {
	Capture() (image.Image, error)
}

// Finder 文字查找器，*locator.Locator 实现了该接口
type Finder interface {
	FindText(target string, capture interface{}, opts ...locator.Option) *locator.TextMatch
}

// WaitForText 循环截图查找文字，直到找到或 ctx 结束
func WaitForText(ctx context.Context, finder Finder, capturer Capturer, target string, opts ...locator.Option) (*locator.TextMatch, error) {
	return waitForText(ctx, finder, capturer, target, DefaultPollInterval, opts)
}

// TextExists 截图一次检查文字是否存在
func TextExists(finder Finder, capturer Capturer, target string, opts ...locator.Option) bool {
	img, err := capturer.Capture()
	if err != nil {
		logger.Warn("截图失败: %v", err)
		return false
	}
	return finder.FindText(target, img, opts...) != nil
}

func waitForText(ctx context.Context, finder Finder, capturer Capturer, target string, interval time.Duration, opts []locator.Option) (*locator.TextMatch, error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	attempts := 0
	for {
		img, err := capturer.Capture()
		if err != nil {
			return nil, err
		}
		attempts++

		if m := finder.FindText(target, img, opts...); m != nil {
			logger.Debug("第 %d 次截图找到文字: %s", attempts, target)
			return m, nil
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("等待文字超时 %q (%d 次): %w", target, attempts, errors.Join(ErrTextNotFound, ctx.Err()))
		case <-ticker.C:
		}
	}
}
