package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"image"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/zoeyai/screentext/internal/logger"
	"github.com/zoeyai/screentext/pkg/auto/screen"
	"github.com/zoeyai/screentext/pkg/config"
	"github.com/zoeyai/screentext/pkg/vision"
)

// 版本信息 (可通过 ldflags 注入)
var (
	Version   = "1.0.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// output 命令输出
type output struct {
	Text    string             `json:"text,omitempty"`
	Found   *bool              `json:"found,omitempty"`
	Match   *vision.TextMatch  `json:"match,omitempty"`
	Matches []vision.TextMatch `json:"matches,omitempty"`
	Error   string             `json:"error,omitempty"`
}

func main() {
	// 命令行参数
	var (
		imagePath   = flag.String("image", "", "图片文件路径，为空则截取屏幕")
		findText    = flag.String("find", "", "要查找的文字")
		extractAll  = flag.Bool("all", false, "提取所有文字")
		regionStr   = flag.String("region", "", "识别区域 x,y,w,h")
		configFile  = flag.String("config", "", "配置文件路径")
		disableOCR  = flag.Bool("disable-ocr", false, "关闭 OCR")
		logLevel    = flag.String("log-level", "", "日志级别 (DEBUG, INFO, WARN, ERROR)")
		showVersion = flag.Bool("version", false, "显示版本信息")
		showHelp    = flag.Bool("help", false, "显示帮助信息")
	)

	flag.Parse()

	// 显示版本
	if *showVersion {
		printVersion()
		return
	}

	// 显示帮助
	if *showHelp {
		printHelp()
		return
	}

	// 日志输出到 stderr，stdout 只输出 JSON
	logger.Default().SetConsole(false)
	logger.Default().SetOutput(os.Stderr)

	// 加载配置
	cfg, err := loadConfig(*configFile)
	if err != nil {
		logger.Warn("加载配置失败: %v", err)
	}
	if cfg == nil {
		cfg = config.DefaultOCRConfig()
	}

	// 命令行参数优先级高于配置文件
	if *disableOCR {
		cfg.EnableOCR = false
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	logger.Default().SetLevel(logger.ParseLevel(cfg.LogLevel))

	var opts []vision.Option
	if *regionStr != "" {
		r, err := parseRegion(*regionStr)
		if err != nil {
			fmt.Fprintf(os.Stderr, "[ERROR] %v\n", err)
			printHelp()
			os.Exit(2)
		}
		if *imagePath == "" {
			w, h := screen.GetScreenSize()
			r = clampRegion(r, w, h)
		}
		opts = append(opts, vision.WithRegion(r.X, r.Y, r.Width, r.Height))
	}

	// 读取图片或截屏
	capture, err := loadCapture(*imagePath)
	if err != nil {
		writeJSON(os.Stdout, output{Error: err.Error()})
		return
	}

	loc := vision.NewLocator(cfg)
	defer loc.Close()

	var out output
	switch {
	case *findText != "":
		out.Match = loc.FindText(*findText, capture, opts...)
		found := out.Match != nil
		out.Found = &found
	case *extractAll:
		out.Matches = loc.ExtractAllText(capture, opts...)
	default:
		out.Text, _ = loc.RecognizeText(capture, opts...)
	}

	writeJSON(os.Stdout, out)
	logger.Default().Sync()
}

// loadConfig 按路径加载配置，路径为空使用默认配置文件
func loadConfig(path string) (*config.OCRConfig, error) {
	if path == "" {
		return config.Load()
	}
	return config.NewManagerWithFile(path).LoadWithEnv()
}

// loadCapture 读取图片文件，路径为空时截取全屏
func loadCapture(path string) (interface{}, error) {
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("读取图片失败: %w", err)
		}
		return data, nil
	}

	logger.Debug("显示器数量: %d", screen.GetDisplayCount())
	data, err := screen.CapturePNG()
	if err != nil {
		return nil, err
	}
	return data, nil
}

// parseRegion 解析 "x,y,w,h"
func parseRegion(s string) (vision.Region, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return vision.Region{}, fmt.Errorf("区域格式错误: %q，应为 x,y,w,h", s)
	}

	vals := make([]int, 4)
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return vision.Region{}, fmt.Errorf("区域格式错误: %q: %w", s, err)
		}
		vals[i] = v
	}
	if vals[2] < 0 || vals[3] < 0 {
		return vision.Region{}, fmt.Errorf("区域宽高不能为负: %q", s)
	}
	return vision.NewRegion(vals[0], vals[1], vals[2], vals[3]), nil
}

// clampRegion 将区域限制在屏幕范围内，屏幕尺寸未知时原样返回
func clampRegion(r vision.Region, screenW, screenH int) vision.Region {
	if screenW <= 0 || screenH <= 0 {
		return r
	}
	rect := r.Rect().Intersect(image.Rect(0, 0, screenW, screenH))
	return vision.NewRegion(rect.Min.X, rect.Min.Y, rect.Dx(), rect.Dy())
}

func writeJSON(w io.Writer, v interface{}) {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "[ERROR] 输出结果失败: %v\n", err)
	}
}

// printVersion 打印版本信息
func printVersion() {
	fmt.Printf("screentext v%s\n", Version)
	fmt.Printf("Build Time: %s\n", BuildTime)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}

// printHelp 打印帮助信息
func printHelp() {
	fmt.Println("screentext - 屏幕文字识别与定位工具")
	fmt.Println()
	fmt.Println("用法:")
	fmt.Println("  screentext [选项]")
	fmt.Println()
	fmt.Println("选项:")
	fmt.Println("  -image string       图片文件路径，为空则截取屏幕")
	fmt.Println("  -find string        查找文字并输出位置")
	fmt.Println("  -all                提取所有文字及位置")
	fmt.Println("  -region x,y,w,h     只识别指定区域")
	fmt.Println("  -config string      配置文件路径")
	fmt.Println("  -disable-ocr        关闭 OCR")
	fmt.Println("  -log-level string   日志级别 (DEBUG, INFO, WARN, ERROR)")
	fmt.Println("  -version            显示版本信息")
	fmt.Println("  -help               显示帮助信息")
	fmt.Println()
	fmt.Println("示例:")
	fmt.Println("  # 识别截图中的文字")
	fmt.Println("  screentext -image shot.png")
	fmt.Println()
	fmt.Println("  # 在屏幕指定区域查找按钮")
	fmt.Println("  screentext -find start -region 0,0,800,600")
	fmt.Println()
	fmt.Println("  # 提取所有文字")
	fmt.Println("  screentext -image shot.png -all")
	fmt.Println()
	fmt.Printf("配置文件位置: %s\n", config.GetDefaultManager().GetConfigFile())
}
