package text

import (
	"context"
	"errors"
	"image"
	"sync/atomic"
	"testing"
	"time"

	"github.com/zoeyai/screentext/pkg/vision/locator"
)

type fakeCapturer struct {
	err   error
	calls int32
}

func (c *fakeCapturer) Capture() (image.Image, error) {
	atomic.AddInt32(&c.calls, 1)
	if c.err != nil {
		return nil, c.err
	}
	return image.NewGray(image.Rect(0, 0, 8, 8)), nil
}

// fakeFinder 第 foundAt 次调用时返回结果，0 表示永远找不到
type fakeFinder struct {
	foundAt int32
	calls   int32
	opts    int
}

func (f *fakeFinder) FindText(target string, capture interface{}, opts ...locator.Option) *locator.TextMatch {
	n := atomic.AddInt32(&f.calls, 1)
	f.opts = len(opts)
	if f.foundAt == 0 || n < f.foundAt {
		return nil
	}
	return &locator.TextMatch{Text: target, Confidence: 0.9}
}

func TestWaitForTextFound(t *testing.T) {
	finder := &fakeFinder{foundAt: 3}
	capturer := &fakeCapturer{}

	m, err := waitForText(context.Background(), finder, capturer, "start", time.Millisecond, []locator.Option{locator.WithRegion(0, 0, 4, 4)})
	if err != nil {
		t.Fatalf("等待失败: %v", err)
	}
	if m == nil || m.Text != "start" {
		t.Fatalf("结果错误: %+v", m)
	}
	if finder.calls != 3 || capturer.calls != 3 {
		t.Errorf("应截图并查找 3 次: capture=%d find=%d", capturer.calls, finder.calls)
	}
	if finder.opts != 1 {
		t.Errorf("选项未透传: %d", finder.opts)
	}
}

func TestWaitForTextTimeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	finder := &fakeFinder{}
	_, err := waitForText(ctx, finder, &fakeCapturer{}, "start", 5*time.Millisecond, nil)
	if !errors.Is(err, ErrTextNotFound) {
		t.Errorf("应返回 ErrTextNotFound: %v", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("应包含 ctx 错误: %v", err)
	}
	if finder.calls < 1 {
		t.Error("超时前至少查找一次")
	}
}

func TestWaitForTextCanceledStillTriesOnce(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	finder := &fakeFinder{foundAt: 1}
	m, err := WaitForText(ctx, finder, &fakeCapturer{}, "start")
	if err != nil || m == nil {
		t.Errorf("首次即找到时应返回结果: %v %v", m, err)
	}
}

func TestWaitForTextCaptureError(t *testing.T) {
	boom := errors.New("no display")
	_, err := WaitForText(context.Background(), &fakeFinder{}, &fakeCapturer{err: boom}, "start")
	if !errors.Is(err, boom) {
		t.Errorf("截图错误应直接返回: %v", err)
	}
}

func TestTextExists(t *testing.T) {
	if !TextExists(&fakeFinder{foundAt: 1}, &fakeCapturer{}, "start") {
		t.Error("应检测到文字")
	}

	finder := &fakeFinder{}
	if TextExists(finder, &fakeCapturer{}, "start") {
		t.Error("不应检测到文字")
	}
	if finder.calls != 1 {
		t.Errorf("只应查找一次: %d", finder.calls)
	}

	if TextExists(&fakeFinder{foundAt: 1}, &fakeCapturer{err: errors.New("x")}, "start") {
		t.Error("截图失败时应返回 false")
	}
}
