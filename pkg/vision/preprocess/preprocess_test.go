package preprocess

import (
	"bytes"
	"errors"
	"math/rand"
	"testing"

	"gocv.io/x/gocv"
)

// newNoisyGlyphImage 生成带随机噪声与字形块的彩色图，随机种子固定
func newNoisyGlyphImage(w, h int) gocv.Mat {
	rng := rand.New(rand.NewSource(42))
	mat := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(230, 230, 230, 0), h, w, gocv.MatTypeCV8UC3)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := uint8(200 + rng.Intn(56))
			mat.SetUCharAt3(y, x, 0, v)
			mat.SetUCharAt3(y, x, 1, v)
			mat.SetUCharAt3(y, x, 2, v)
		}
	}
	// 字形块
	for i := 0; i < 6; i++ {
		x0 := 10 + i*25
		for y := 20; y < 45; y++ {
			for x := x0; x < x0+8; x++ {
				if x < w && y < h {
					mat.SetUCharAt3(y, x, 0, 20)
					mat.SetUCharAt3(y, x, 1, 20)
					mat.SetUCharAt3(y, x, 2, 20)
				}
			}
		}
	}
	return mat
}

func assertBinary(t *testing.T, mat gocv.Mat) {
	t.Helper()
	if mat.Channels() != 1 {
		t.Fatalf("输出应为单通道, 实际为 %d", mat.Channels())
	}
	for _, v := range mat.ToBytes() {
		if v != 0 && v != 255 {
			t.Fatalf("输出应只含 0 和 255, 出现 %d", v)
		}
	}
}

func TestPreprocessOutput(t *testing.T) {
	src := newNoisyGlyphImage(180, 60)
	defer src.Close()

	result, err := Preprocess(src)
	if err != nil {
		t.Fatalf("预处理失败: %v", err)
	}
	defer result.Close()

	assertBinary(t, result.Binary)
	if result.Binary.Cols() != 180 || result.Binary.Rows() != 60 {
		t.Errorf("大图不应放大: %dx%d", result.Binary.Cols(), result.Binary.Rows())
	}
	if result.ScaleX != 1 || result.ScaleY != 1 {
		t.Errorf("未放大时缩放比应为 1: %.2f, %.2f", result.ScaleX, result.ScaleY)
	}
	t.Logf("选中的二值化方法: %s", result.Method)
}

func TestPreprocessUpscale(t *testing.T) {
	tests := []struct {
		w, h         int
		wantW, wantH int
	}{
		{10, 10, 64, 64},   // 64/10 = 6.4
		{100, 20, 320, 64}, // 64/20 = 3.2
		{50, 31, 103, 64},  // 64/31 = 2.0645...
		{40, 31, 83, 64},
		{100, 32, 100, 32}, // 短边达到 32 不放大
	}

	for _, tt := range tests {
		src := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(255, 255, 255, 0), tt.h, tt.w, gocv.MatTypeCV8UC3)
		result, err := Preprocess(src)
		src.Close()
		if err != nil {
			t.Errorf("%dx%d 预处理失败: %v", tt.w, tt.h, err)
			continue
		}
		if result.Binary.Cols() != tt.wantW || result.Binary.Rows() != tt.wantH {
			t.Errorf("%dx%d 放大后应为 %dx%d, 实际 %dx%d", tt.w, tt.h, tt.wantW, tt.wantH,
				result.Binary.Cols(), result.Binary.Rows())
		}
		if sx := float64(tt.wantW) / float64(tt.w); result.ScaleX != sx {
			t.Errorf("%dx%d ScaleX 应为 %.4f, 实际 %.4f", tt.w, tt.h, sx, result.ScaleX)
		}
		result.Close()
	}
}

func TestUpscaleFactor(t *testing.T) {
	if f := UpscaleFactor(200, 40); f != 1 {
		t.Errorf("短边 40 不应放大, 实际 %.2f", f)
	}
	if f := UpscaleFactor(200, 31); f < 2 {
		t.Errorf("放大倍数不应小于 2, 实际 %.2f", f)
	}
	if f := UpscaleFactor(8, 100); f != 8 {
		t.Errorf("短边 8 应放大 8 倍, 实际 %.2f", f)
	}
}

func TestPreprocessChannels(t *testing.T) {
	for _, typ := range []gocv.MatType{gocv.MatTypeCV8UC1, gocv.MatTypeCV8UC3, gocv.MatTypeCV8UC4} {
		src := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(128, 128, 128, 255), 40, 40, typ)
		result, err := Preprocess(src)
		src.Close()
		if err != nil {
			t.Errorf("类型 %v 预处理失败: %v", typ, err)
			continue
		}
		assertBinary(t, result.Binary)
		result.Close()
	}
}

func TestPreprocessEmptyInput(t *testing.T) {
	empty := gocv.NewMat()
	defer empty.Close()

	if _, err := Preprocess(empty); !errors.Is(err, ErrPreprocessingFailed) {
		t.Errorf("空图像应返回 ErrPreprocessingFailed, 实际为 %v", err)
	}

	if _, err := Preprocess(gocv.Mat{}); !errors.Is(err, ErrPreprocessingFailed) {
		t.Errorf("零值 Mat 应返回 ErrPreprocessingFailed, 实际为 %v", err)
	}
}

func TestPreprocessDoesNotModifyInput(t *testing.T) {
	src := newNoisyGlyphImage(120, 50)
	defer src.Close()
	before := src.ToBytes()

	result, err := Preprocess(src)
	if err != nil {
		t.Fatalf("预处理失败: %v", err)
	}
	result.Close()

	if !bytes.Equal(before, src.ToBytes()) {
		t.Error("预处理不应修改输入图像")
	}
}

func TestBinarizationDeterminism(t *testing.T) {
	src := newNoisyGlyphImage(160, 70)
	defer src.Close()

	var first []byte
	var firstMethod Method
	for i := 0; i < 5; i++ {
		result, err := Preprocess(src)
		if err != nil {
			t.Fatalf("第 %d 次预处理失败: %v", i+1, err)
		}
		out := result.Binary.ToBytes()
		if i == 0 {
			first = out
			firstMethod = result.Method
		} else {
			if result.Method != firstMethod {
				t.Errorf("第 %d 次选择了不同的方法: %s != %s", i+1, result.Method, firstMethod)
			}
			if !bytes.Equal(first, out) {
				t.Errorf("第 %d 次输出与第一次不一致", i+1)
			}
		}
		result.Close()
	}
}
