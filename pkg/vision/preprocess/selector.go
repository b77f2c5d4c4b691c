package preprocess

import (
	"fmt"
	"math"

	"gocv.io/x/gocv"

	"github.com/zoeyai/screentext/internal/logger"
)

// 字形包络：落在范围内的连通域视为可能的字符
const (
	glyphMinArea   = 10
	glyphMaxArea   = 5000
	glyphMinWidth  = 3
	glyphMaxWidth  = 200
	glyphMinHeight = 8
	glyphMaxHeight = 100
	glyphMinAspect = 0.1
	glyphMaxAspect = 10.0
)

// Candidate 二值化候选
type Candidate struct {
	Method Method
	Binary gocv.Mat
}

// ComponentStats 连通域统计
type ComponentStats struct {
	Area        int
	Width       int
	Height      int
	AspectRatio float64
}

// IsGlyph 是否落在字形包络内
func (s ComponentStats) IsGlyph() bool {
	return s.Area >= glyphMinArea && s.Area <= glyphMaxArea &&
		s.Width >= glyphMinWidth && s.Width <= glyphMaxWidth &&
		s.Height >= glyphMinHeight && s.Height <= glyphMaxHeight &&
		s.AspectRatio >= glyphMinAspect && s.AspectRatio <= glyphMaxAspect
}

// ScoreComponents 根据连通域计算候选得分
// score = 有效数量*0.7 + min(平均面积/100, 10)*0.3
func ScoreComponents(stats []ComponentStats) float64 {
	count := 0
	total := 0
	for _, s := range stats {
		if !s.IsGlyph() {
			continue
		}
		count++
		total += s.Area
	}

	avgArea := 0.0
	if count > 0 {
		avgArea = float64(total) / float64(count)
	}
	return float64(count)*0.7 + math.Min(avgArea/100, 10)*0.3
}

// ComponentsOf 计算二值图的 8 连通域统计，不含背景（标签 0）
func ComponentsOf(binary gocv.Mat) (stats []ComponentStats, err error) {
	defer func() {
		if r := recover(); r != nil {
			stats = nil
			err = fmt.Errorf("连通域计算异常: %v", r)
		}
	}()

	if binary.Empty() {
		return nil, fmt.Errorf("二值图为空")
	}

	labels := gocv.NewMat()
	defer labels.Close()
	raw := gocv.NewMat()
	defer raw.Close()
	centroids := gocv.NewMat()
	defer centroids.Close()

	n := gocv.ConnectedComponentsWithStats(binary, &labels, &raw, &centroids)

	stats = make([]ComponentStats, 0, n)
	for i := 1; i < n; i++ {
		w := int(raw.GetIntAt(i, int(gocv.CC_STAT_WIDTH)))
		h := int(raw.GetIntAt(i, int(gocv.CC_STAT_HEIGHT)))
		aspect := 0.0
		if h > 0 {
			aspect = float64(w) / float64(h)
		}
		stats = append(stats, ComponentStats{
			Area:        int(raw.GetIntAt(i, int(gocv.CC_STAT_AREA))),
			Width:       w,
			Height:      h,
			AspectRatio: aspect,
		})
	}
	return stats, nil
}

// Score 计算单个二值图的得分
func Score(binary gocv.Mat) (float64, error) {
	stats, err := ComponentsOf(binary)
	if err != nil {
		return 0, err
	}
	return ScoreComponents(stats), nil
}

// Select 返回得分最高的候选下标
// 并列时取靠前者；任一候选打分出错时退回第一个（自适应高斯）
func Select(candidates []Candidate) int {
	if len(candidates) == 0 {
		return 0
	}

	best := 0
	bestScore := math.Inf(-1)
	for i, c := range candidates {
		score, err := Score(c.Binary)
		if err != nil {
			logger.Debug("二值化打分失败，使用 %s: %v", candidates[0].Method, err)
			return 0
		}
		logger.Debug("二值化候选 %s 得分 %.2f", c.Method, score)
		if score > bestScore {
			best = i
			bestScore = score
		}
	}
	return best
}
