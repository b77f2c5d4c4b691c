package vision

import (
	"github.com/zoeyai/screentext/internal/logger"
)

// Options 全局日志选项
type Options struct {
	LogEnabled bool   // 是否启用日志
	LogLevel   string // 日志级别
	LogConsole bool   // 是否输出到控制台
	LogFile    bool   // 是否输出到文件
	LogPath    string // 日志文件路径
}

// DefaultOptions 默认配置
var DefaultOptions = Options{
	LogEnabled: true,
	LogLevel:   "INFO",
	LogConsole: true,
	LogFile:    false,
	LogPath:    "screentext.log",
}

// globalOptions 全局配置实例
var globalOptions = DefaultOptions

// GetOptions 获取当前全局配置
func GetOptions() Options {
	return globalOptions
}

// SetOptions 设置全局配置并应用到默认 logger
func SetOptions(opts Options) error {
	globalOptions = opts

	l := logger.Default()
	l.SetEnabled(opts.LogEnabled)
	l.SetLevel(logger.ParseLevel(opts.LogLevel))
	l.SetConsole(opts.LogConsole)
	return l.SetFile(opts.LogFile, opts.LogPath)
}

// ResetOptions 重置为默认配置
func ResetOptions() error {
	return SetOptions(DefaultOptions)
}
