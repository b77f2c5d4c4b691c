package vision

import (
	"errors"
	"testing"

	"gocv.io/x/gocv"

	"github.com/zoeyai/screentext/pkg/config"
	"github.com/zoeyai/screentext/pkg/vision/ocr"
)

type stubEngine struct{ closed bool }

func (s *stubEngine) Recognize(gocv.Mat) (string, error) { return "", nil }

func (s *stubEngine) RecognizeTokens(gocv.Mat) ([]ocr.RawToken, error) { return nil, nil }

func (s *stubEngine) Close() error {
	s.closed = true
	return nil
}

func TestVersion(t *testing.T) {
	if Version == "" {
		t.Error("Version 不应为空")
	}
	t.Logf("Version: %s", Version)
}

func TestPointAndRegion(t *testing.T) {
	p := NewPoint(10, 20)
	if p.X != 10 || p.Y != 20 {
		t.Errorf("Point 创建错误: got (%d, %d), want (10, 20)", p.X, p.Y)
	}

	r := NewRegion(10, 20, 100, 50)
	rect := r.Rect()
	if rect.Min.X != 10 || rect.Min.Y != 20 || rect.Max.X != 110 || rect.Max.Y != 70 {
		t.Errorf("Region 转换错误: %v", rect)
	}
	if r.Empty() {
		t.Error("非零区域不应为空")
	}
	if !NewRegion(0, 0, 0, 10).Empty() {
		t.Error("零宽区域应为空")
	}
}

func TestNewLocatorDisabled(t *testing.T) {
	cfg := config.DefaultOCRConfig()
	cfg.EnableOCR = false

	built := false
	loc := newLocatorWith(cfg, func(*config.OCRConfig) (ocr.Engine, error) {
		built = true
		return &stubEngine{}, nil
	})

	if loc.Enabled() {
		t.Error("关闭 OCR 时定位器不应启用")
	}
	if built {
		t.Error("关闭 OCR 时不应创建引擎")
	}
}

func TestNewLocatorEngineFailureDegrades(t *testing.T) {
	cfg := config.DefaultOCRConfig()
	loc := newLocatorWith(cfg, func(*config.OCRConfig) (ocr.Engine, error) {
		return nil, errors.New("libtesseract not found")
	})

	if loc.Enabled() {
		t.Error("引擎创建失败时应降级为关闭")
	}
	if m := loc.FindText("start", []byte("whatever")); m != nil {
		t.Errorf("降级后不应有结果: %+v", m)
	}
}

func TestNewLocatorEnabled(t *testing.T) {
	cfg := config.DefaultOCRConfig()
	cfg.Workers = 3

	engine := &stubEngine{}
	loc := newLocatorWith(cfg, func(*config.OCRConfig) (ocr.Engine, error) {
		return engine, nil
	})

	if !loc.Enabled() {
		t.Error("引擎可用时应启用")
	}
	if loc.Workers() != 3 {
		t.Errorf("并发数应来自配置: %d", loc.Workers())
	}

	loc.Close()
	if !engine.closed {
		t.Error("关闭定位器应释放引擎")
	}
}

func TestNewEngineUnknown(t *testing.T) {
	cfg := config.DefaultOCRConfig()
	cfg.Engine = "easyocr"

	if _, err := NewEngine(cfg); err == nil {
		t.Error("未知引擎应报错")
	}
}

func TestGlobalLocator(t *testing.T) {
	defer ClearCache()

	cfg := config.DefaultOCRConfig()
	cfg.EnableOCR = false

	loc := InitLocator(cfg)
	if GetGlobalLocator() != loc {
		t.Error("InitLocator 应替换全局定位器")
	}
	if _, ok := RecognizeText(nil); ok {
		t.Error("关闭 OCR 时不应识别出文字")
	}
	if m := FindText("start", nil); m != nil {
		t.Errorf("关闭 OCR 时不应有结果: %+v", m)
	}
	if all := ExtractAllText(nil); len(all) != 0 {
		t.Errorf("关闭 OCR 时应返回空结果: %+v", all)
	}
	if batch := ExtractAllBatch([]interface{}{nil, nil}); len(batch) != 2 {
		t.Errorf("批量结果数量应与输入一致: %d", len(batch))
	}

	ClearCache()
	SetGlobalLocator(loc)
	if GetGlobalLocator() != loc {
		t.Error("SetGlobalLocator 应设置全局定位器")
	}
}

func TestSetOptions(t *testing.T) {
	defer ResetOptions()

	opts := DefaultOptions
	opts.LogLevel = "DEBUG"
	opts.LogConsole = false
	if err := SetOptions(opts); err != nil {
		t.Fatalf("设置选项失败: %v", err)
	}
	if GetOptions().LogLevel != "DEBUG" {
		t.Errorf("选项未生效: %+v", GetOptions())
	}
}
