package screen

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// EncodeImage 将图像编码为字节
// format: "png" 或 "jpeg"，默认 "png"
// quality: JPEG 质量 1-100，默认 80
func EncodeImage(img image.Image, format string, quality int) ([]byte, error) {
	if img == nil {
		return nil, fmt.Errorf("图像为空")
	}
	if quality <= 0 || quality > 100 {
		quality = 80
	}

	var f imaging.Format
	switch format {
	case "", "png":
		f = imaging.PNG
	case "jpeg", "jpg":
		f = imaging.JPEG
	default:
		return nil, fmt.Errorf("不支持的格式: %s", format)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, f, imaging.JPEGQuality(quality)); err != nil {
		return nil, fmt.Errorf("%s 编码失败: %w", f, err)
	}
	return buf.Bytes(), nil
}

// ImageToBase64 将图像转换为 data URL
func ImageToBase64(img image.Image, format string, quality int) (string, error) {
	data, err := EncodeImage(img, format, quality)
	if err != nil {
		return "", err
	}

	mimeType := "image/png"
	if format == "jpeg" || format == "jpg" {
		mimeType = "image/jpeg"
	}
	return fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(data)), nil
}
