package preprocess

import (
	"math"
	"testing"

	"gocv.io/x/gocv"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestScoreComponents(t *testing.T) {
	tests := []struct {
		name  string
		stats []ComponentStats
		want  float64
	}{
		{"无连通域", nil, 0},
		{
			"三个有效字形",
			[]ComponentStats{
				{Area: 50, Width: 5, Height: 10, AspectRatio: 0.5},
				{Area: 50, Width: 5, Height: 10, AspectRatio: 0.5},
				{Area: 50, Width: 5, Height: 10, AspectRatio: 0.5},
			},
			3*0.7 + 0.5*0.3,
		},
		{
			"超出包络的被忽略",
			[]ComponentStats{
				{Area: 50, Width: 5, Height: 10, AspectRatio: 0.5},
				{Area: 5, Width: 5, Height: 10, AspectRatio: 0.5},      // 面积过小
				{Area: 6000, Width: 60, Height: 100, AspectRatio: 0.6}, // 面积过大
				{Area: 50, Width: 2, Height: 10, AspectRatio: 0.2},     // 太窄
				{Area: 50, Width: 50, Height: 4, AspectRatio: 12.5},    // 太矮
			},
			1*0.7 + 0.5*0.3,
		},
		{
			"平均面积加分有上限",
			[]ComponentStats{
				{Area: 4000, Width: 80, Height: 50, AspectRatio: 1.6},
			},
			1*0.7 + 10*0.3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ScoreComponents(tt.stats); !almostEqual(got, tt.want) {
				t.Errorf("得分错误: 期望 %.4f, 实际 %.4f", tt.want, got)
			}
		})
	}
}

func TestGlyphEnvelopeBounds(t *testing.T) {
	edges := []ComponentStats{
		{Area: 10, Width: 3, Height: 8, AspectRatio: 3.0 / 8},
		{Area: 5000, Width: 200, Height: 100, AspectRatio: 2},
		{Area: 100, Width: 10, Height: 100, AspectRatio: 0.1},
		{Area: 100, Width: 100, Height: 10, AspectRatio: 10},
	}
	for _, s := range edges {
		if !s.IsGlyph() {
			t.Errorf("边界值应在包络内: %+v", s)
		}
	}
}

// newBlobs 在黑底上画 n 个 5x10 的白色矩形
func newBlobs(n int) gocv.Mat {
	mat := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), 40, 20*n+10, gocv.MatTypeCV8UC1)
	for i := 0; i < n; i++ {
		x0 := 10 + i*20
		for y := 10; y < 20; y++ {
			for x := x0; x < x0+5; x++ {
				mat.SetUCharAt(y, x, 255)
			}
		}
	}
	return mat
}

func TestScoreMat(t *testing.T) {
	mat := newBlobs(4)
	defer mat.Close()

	stats, err := ComponentsOf(mat)
	if err != nil {
		t.Fatalf("连通域计算失败: %v", err)
	}
	if len(stats) != 4 {
		t.Fatalf("应有 4 个连通域, 实际 %d", len(stats))
	}
	for _, s := range stats {
		if s.Area != 50 || s.Width != 5 || s.Height != 10 {
			t.Errorf("连通域统计错误: %+v", s)
		}
	}

	score, err := Score(mat)
	if err != nil {
		t.Fatalf("打分失败: %v", err)
	}
	if want := 4*0.7 + 0.5*0.3; !almostEqual(score, want) {
		t.Errorf("得分错误: 期望 %.4f, 实际 %.4f", want, score)
	}
}

func TestSelectPrefersMoreGlyphs(t *testing.T) {
	few := newBlobs(1)
	many := newBlobs(5)
	none := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), 40, 110, gocv.MatTypeCV8UC1)

	candidates := []Candidate{
		{Method: MethodAdaptiveGaussian, Binary: few},
		{Method: MethodAdaptiveMean, Binary: many},
		{Method: MethodOtsu, Binary: none},
	}
	defer func() {
		for _, c := range candidates {
			c.Binary.Close()
		}
	}()

	if got := Select(candidates); got != 1 {
		t.Errorf("应选择字形最多的候选, 实际选择 %d", got)
	}
}

func TestSelectTieBreak(t *testing.T) {
	a := newBlobs(3)
	b := newBlobs(3)
	c := newBlobs(3)

	candidates := []Candidate{
		{Method: MethodAdaptiveGaussian, Binary: a},
		{Method: MethodAdaptiveMean, Binary: b},
		{Method: MethodOtsu, Binary: c},
	}
	defer func() {
		for _, c := range candidates {
			c.Binary.Close()
		}
	}()

	if got := Select(candidates); got != 0 {
		t.Errorf("并列时应选择第一个候选, 实际选择 %d", got)
	}
}

func TestSelectFallbackOnError(t *testing.T) {
	good := newBlobs(5)
	defer good.Close()
	broken := gocv.NewMat()
	defer broken.Close()

	candidates := []Candidate{
		{Method: MethodAdaptiveGaussian, Binary: newBlobs(1)},
		{Method: MethodAdaptiveMean, Binary: good},
		{Method: MethodOtsu, Binary: broken},
	}
	defer candidates[0].Binary.Close()

	if got := Select(candidates); got != 0 {
		t.Errorf("打分出错时应退回高斯候选, 实际选择 %d", got)
	}
}

func TestComponentsIgnoreBackground(t *testing.T) {
	mat := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), 30, 30, gocv.MatTypeCV8UC1)
	defer mat.Close()

	stats, err := ComponentsOf(mat)
	if err != nil {
		t.Fatalf("连通域计算失败: %v", err)
	}
	if len(stats) != 0 {
		t.Errorf("全黑图不应有前景连通域, 实际 %d", len(stats))
	}

	// 对角相邻的像素在 8 连通下属于同一连通域
	mat.SetUCharAt(5, 5, 255)
	mat.SetUCharAt(6, 6, 255)
	stats, _ = ComponentsOf(mat)
	if len(stats) != 1 || stats[0].Area != 2 {
		t.Errorf("8 连通统计错误: %+v", stats)
	}
}
