// Package config 管理文字识别的运行配置
//
// 配置来源按优先级从低到高：默认值 -> 配置文件 (~/.screentext/config.json) -> .env 文件 -> 环境变量。
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"github.com/shirou/gopsutil/v4/cpu"
)

// 引擎类型
const (
	EngineTesseract = "tesseract"
	EnginePaddle    = "paddle"
)

// 字母数字白名单，偏向按钮文字与计数器
const AlphaNumericWhitelist = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// PSMSingleWord tesseract 单词分割模式
const PSMSingleWord = 8

// 环境变量名
const (
	EnvEnableOCR      = "SCREENTEXT_ENABLE_OCR"
	EnvEngine         = "SCREENTEXT_OCR_ENGINE"
	EnvLanguage       = "SCREENTEXT_OCR_LANGUAGE"
	EnvPageSegMode    = "SCREENTEXT_OCR_PSM"
	EnvWhitelist      = "SCREENTEXT_OCR_WHITELIST"
	EnvTessdataPrefix = "SCREENTEXT_TESSDATA_PREFIX"
	EnvModelDir       = "SCREENTEXT_MODEL_DIR"
	EnvWorkers        = "SCREENTEXT_WORKERS"
	EnvLogLevel       = "SCREENTEXT_LOG_LEVEL"
)

// OCRConfig 文字识别配置
type OCRConfig struct {
	// EnableOCR 是否启用 OCR，关闭后所有识别调用直接返回空结果
	EnableOCR bool `json:"enable_ocr"`
	// Engine OCR 引擎 (tesseract, paddle)
	Engine string `json:"engine"`
	// Language tesseract 语言
	Language string `json:"language"`
	// PageSegMode tesseract 页面分割模式
	PageSegMode int `json:"page_seg_mode"`
	// Whitelist 字符白名单
	Whitelist string `json:"whitelist"`
	// TessdataPrefix tessdata 目录，空则使用系统默认
	TessdataPrefix string `json:"tessdata_prefix,omitempty"`

	// PaddleOCR 模型文件，空则自动查找
	OnnxRuntimeLibPath string `json:"onnx_runtime_lib_path,omitempty"`
	DetModelPath       string `json:"det_model_path,omitempty"`
	RecModelPath       string `json:"rec_model_path,omitempty"`
	DictPath           string `json:"dict_path,omitempty"`

	// Workers 批量识别的并发数
	Workers int `json:"workers"`
	// LogLevel 日志级别
	LogLevel string `json:"log_level"`
}

// DefaultOCRConfig 默认配置
func DefaultOCRConfig() *OCRConfig {
	return &OCRConfig{
		EnableOCR:   true,
		Engine:      EngineTesseract,
		Language:    "eng",
		PageSegMode: PSMSingleWord,
		Whitelist:   AlphaNumericWhitelist,
		Workers:     DefaultWorkers(),
		LogLevel:    "INFO",
	}
}

// DefaultWorkers 默认并发数：逻辑 CPU 数
func DefaultWorkers() int {
	n, err := cpu.Counts(true)
	if err != nil || n <= 0 {
		return runtime.NumCPU()
	}
	return n
}

// Validate 检查配置是否合法
func (c *OCRConfig) Validate() error {
	switch c.Engine {
	case EngineTesseract, EnginePaddle:
	default:
		return fmt.Errorf("不支持的 OCR 引擎: %s", c.Engine)
	}
	if c.PageSegMode < 0 || c.PageSegMode > 13 {
		return fmt.Errorf("页面分割模式超出范围: %d", c.PageSegMode)
	}
	if c.Workers <= 0 {
		return fmt.Errorf("并发数必须大于 0: %d", c.Workers)
	}
	return nil
}

// ApplyEnv 用环境变量覆盖配置，envFiles 中的 .env 文件会先被加载（不覆盖已有变量）
func (c *OCRConfig) ApplyEnv(envFiles ...string) error {
	for _, f := range envFiles {
		if _, err := os.Stat(f); os.IsNotExist(err) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("加载环境文件失败: %s: %w", f, err)
		}
	}

	if v, ok := lookupEnv(EnvEnableOCR); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("解析 %s 失败: %w", EnvEnableOCR, err)
		}
		c.EnableOCR = b
	}
	if v, ok := lookupEnv(EnvEngine); ok {
		c.Engine = strings.ToLower(v)
	}
	if v, ok := lookupEnv(EnvLanguage); ok {
		c.Language = v
	}
	if v, ok := lookupEnv(EnvPageSegMode); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("解析 %s 失败: %w", EnvPageSegMode, err)
		}
		c.PageSegMode = n
	}
	if v, ok := lookupEnv(EnvWhitelist); ok {
		c.Whitelist = v
	}
	if v, ok := lookupEnv(EnvTessdataPrefix); ok {
		c.TessdataPrefix = v
	}
	if v, ok := lookupEnv(EnvModelDir); ok {
		c.OnnxRuntimeLibPath = filepath.Join(v, "lib", onnxRuntimeLibName())
		c.DetModelPath = filepath.Join(v, "paddle_weights", "det.onnx")
		c.RecModelPath = filepath.Join(v, "paddle_weights", "rec.onnx")
		c.DictPath = filepath.Join(v, "paddle_weights", "dict.txt")
	}
	if v, ok := lookupEnv(EnvWorkers); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("解析 %s 失败: %w", EnvWorkers, err)
		}
		c.Workers = n
	}
	if v, ok := lookupEnv(EnvLogLevel); ok {
		c.LogLevel = v
	}
	return nil
}

func lookupEnv(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

// onnxRuntimeLibName 当前平台的 ONNX Runtime 库文件名
func onnxRuntimeLibName() string {
	switch runtime.GOOS {
	case "windows":
		return "onnxruntime.dll"
	case "darwin":
		return fmt.Sprintf("onnxruntime_%s.dylib", runtime.GOARCH)
	default:
		return fmt.Sprintf("onnxruntime_%s.so", runtime.GOARCH)
	}
}

// Manager 配置管理器
type Manager struct {
	configDir  string
	configFile string
	mu         sync.RWMutex
}

// NewManager 创建配置管理器
func NewManager() *Manager {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}
	return NewManagerWithDir(filepath.Join(homeDir, ".screentext"))
}

// NewManagerWithDir 使用指定目录创建配置管理器
func NewManagerWithDir(configDir string) *Manager {
	return &Manager{
		configDir:  configDir,
		configFile: filepath.Join(configDir, "config.json"),
	}
}

// NewManagerWithFile 使用指定配置文件创建配置管理器
func NewManagerWithFile(configFile string) *Manager {
	return &Manager{
		configDir:  filepath.Dir(configFile),
		configFile: configFile,
	}
}

// ensureDir 确保配置目录存在
func (m *Manager) ensureDir() error {
	return os.MkdirAll(m.configDir, 0755)
}

// Load 加载配置文件，文件不存在时返回默认配置
// 文件中缺失的字段保持默认值
func (m *Manager) Load() (*OCRConfig, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if _, err := os.Stat(m.configFile); os.IsNotExist(err) {
		return DefaultOCRConfig(), nil
	}

	data, err := os.ReadFile(m.configFile)
	if err != nil {
		return DefaultOCRConfig(), fmt.Errorf("读取配置文件失败: %w", err)
	}

	config := DefaultOCRConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return DefaultOCRConfig(), fmt.Errorf("解析配置文件失败: %w", err)
	}

	return config, nil
}

// LoadWithEnv 加载配置文件后应用 .env 与环境变量覆盖
func (m *Manager) LoadWithEnv() (*OCRConfig, error) {
	config, err := m.Load()
	if err != nil {
		return config, err
	}
	envFiles := []string{".env", filepath.Join(m.configDir, ".env")}
	if err := config.ApplyEnv(envFiles...); err != nil {
		return config, err
	}
	return config, config.Validate()
}

// Save 保存配置
func (m *Manager) Save(config *OCRConfig) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.ensureDir(); err != nil {
		return fmt.Errorf("创建配置目录失败: %w", err)
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("序列化配置失败: %w", err)
	}

	if err := os.WriteFile(m.configFile, data, 0600); err != nil {
		return fmt.Errorf("写入配置文件失败: %w", err)
	}

	return nil
}

// Clear 清除配置
func (m *Manager) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, err := os.Stat(m.configFile); os.IsNotExist(err) {
		return nil
	}

	return os.Remove(m.configFile)
}

// GetConfigDir 获取配置目录
func (m *Manager) GetConfigDir() string {
	return m.configDir
}

// GetConfigFile 获取配置文件路径
func (m *Manager) GetConfigFile() string {
	return m.configFile
}

// Exists 检查配置文件是否存在
func (m *Manager) Exists() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, err := os.Stat(m.configFile)
	return err == nil
}

// 全局配置管理器
var defaultManager = NewManager()

// GetDefaultManager 获取默认配置管理器
func GetDefaultManager() *Manager {
	return defaultManager
}

// Load 使用默认管理器加载配置（含环境变量覆盖）
func Load() (*OCRConfig, error) {
	return defaultManager.LoadWithEnv()
}

// Save 使用默认管理器保存配置
func Save(config *OCRConfig) error {
	return defaultManager.Save(config)
}

// Clear 使用默认管理器清除配置
func Clear() error {
	return defaultManager.Clear()
}
