package paddle

import (
	"os"
	"path/filepath"
	"runtime"
)

// getExecutableDir 获取可执行文件所在目录
func getExecutableDir() string {
	execPath, err := os.Executable()
	if err != nil {
		return "."
	}
	// 解析符号链接
	execPath, err = filepath.EvalSymlinks(execPath)
	if err != nil {
		return "."
	}
	return filepath.Dir(execPath)
}

// getResourcesDir 获取资源目录（跨平台）
func getResourcesDir() string {
	execDir := getExecutableDir()

	if runtime.GOOS == "darwin" {
		// .app bundle: Contents/MacOS/screentext 与 Contents/Resources/models
		resourcesDir := filepath.Join(execDir, "..", "Resources")
		if fileExists(resourcesDir) {
			return resourcesDir
		}
	}

	return execDir
}

// onnxRuntimeCandidates 按平台列出 ONNX Runtime 库的候选路径
func onnxRuntimeCandidates() []string {
	execDir := getExecutableDir()
	resourcesDir := getResourcesDir()
	arch := runtime.GOARCH

	switch runtime.GOOS {
	case "darwin":
		frameworksDir := filepath.Join(execDir, "..", "Frameworks")
		return []string{
			filepath.Join(frameworksDir, "libonnxruntime.dylib"),
			filepath.Join(execDir, "libonnxruntime.dylib"),
			filepath.Join(resourcesDir, "lib", "onnxruntime_"+arch+".dylib"),
			filepath.Join("models", "lib", "onnxruntime_"+arch+".dylib"),
		}
	case "windows":
		return []string{
			filepath.Join(execDir, "onnxruntime.dll"),
			filepath.Join(resourcesDir, "onnxruntime.dll"),
			filepath.Join("models", "lib", "onnxruntime.dll"),
			"onnxruntime.dll",
		}
	default:
		return []string{
			filepath.Join(execDir, "libonnxruntime.so"),
			filepath.Join(resourcesDir, "lib", "onnxruntime_"+arch+".so"),
			filepath.Join("models", "lib", "onnxruntime_"+arch+".so"),
			filepath.Join(".", "lib", "onnxruntime_"+arch+".so"),
		}
	}
}

// modelCandidates 列出模型文件的候选路径
func modelCandidates(filename string) []string {
	return []string{
		filepath.Join(getResourcesDir(), "models", "paddle_weights", filename),
		filepath.Join(getExecutableDir(), "models", "paddle_weights", filename),
		filepath.Join("models", "paddle_weights", filename),
	}
}

// firstExisting 返回第一个存在的路径，都不存在时返回最后一个
func firstExisting(paths []string) string {
	for _, p := range paths {
		if fileExists(p) {
			return p
		}
	}
	return paths[len(paths)-1]
}

// fileExists 检查文件是否存在
func fileExists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}
