package cv

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	"gocv.io/x/gocv"
)

// ReadImage 读取图像文件
func ReadImage(filename string) (gocv.Mat, error) {
	mat := gocv.IMRead(filename, gocv.IMReadColor)
	if mat.Empty() {
		mat.Close()
		return gocv.NewMat(), fmt.Errorf("%w: 无法读取 %s", ErrEmptyImage, filename)
	}
	return mat, nil
}

// DecodeImage 解码 PNG/JPEG 数据为 BGR Mat
func DecodeImage(data []byte) (gocv.Mat, error) {
	if len(data) == 0 {
		return gocv.NewMat(), ErrEmptyImage
	}
	mat, err := gocv.IMDecode(data, gocv.IMReadColor)
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("%w: 解码失败: %v", ErrEmptyImage, err)
	}
	if mat.Empty() {
		mat.Close()
		return gocv.NewMat(), fmt.Errorf("%w: 无法解码图像数据", ErrEmptyImage)
	}
	return mat, nil
}

// EncodePNG 将 Mat 编码为 PNG
func EncodePNG(mat gocv.Mat) ([]byte, error) {
	if IsEmpty(mat) {
		return nil, ErrEmptyImage
	}
	buf, err := gocv.IMEncode(gocv.PNGFileExt, mat)
	if err != nil {
		return nil, fmt.Errorf("编码 PNG 失败: %w", err)
	}
	defer buf.Close()

	// NativeByteBuffer 关闭后内存失效，需要复制
	data := make([]byte, buf.Len())
	copy(data, buf.GetBytes())
	return data, nil
}

// ToGray 转换为灰度图，支持 1/3/4 通道
func ToGray(src gocv.Mat) (gocv.Mat, error) {
	switch src.Channels() {
	case 1:
		return src.Clone(), nil
	case 3:
		dst := gocv.NewMat()
		gocv.CvtColor(src, &dst, gocv.ColorBGRToGray)
		return dst, nil
	case 4:
		dst := gocv.NewMat()
		gocv.CvtColor(src, &dst, gocv.ColorBGRAToGray)
		return dst, nil
	default:
		return gocv.NewMat(), fmt.Errorf("不支持的通道数: %d", src.Channels())
	}
}

// ClampRect 将矩形限制在 width x height 的图像范围内
func ClampRect(rect image.Rectangle, width, height int) image.Rectangle {
	return rect.Canon().Intersect(image.Rect(0, 0, width, height))
}

// CropImage 裁剪图像，返回裁剪结果与实际使用的区域
// 区域超出图像的部分会被截掉，截后为空返回 ErrEmptyRegion
func CropImage(img gocv.Mat, rect image.Rectangle) (gocv.Mat, image.Rectangle, error) {
	if IsEmpty(img) {
		return gocv.NewMat(), image.Rectangle{}, ErrEmptyImage
	}

	clamped := ClampRect(rect, img.Cols(), img.Rows())
	if clamped.Empty() {
		return gocv.NewMat(), clamped, fmt.Errorf("%w: %v", ErrEmptyRegion, rect)
	}

	region := img.Region(clamped)
	defer region.Close()
	return region.Clone(), clamped, nil
}

// ImageToMat 将 image.Image 转换为 gocv.Mat
// 灰度图保持单通道，其余转为 BGR
func ImageToMat(img image.Image) (mat gocv.Mat, err error) {
	// 类型化 nil 指针（如 (*image.RGBA)(nil)）调用 Bounds 会 panic
	defer func() {
		if r := recover(); r != nil {
			mat, err = gocv.NewMat(), fmt.Errorf("%w: %v", ErrEmptyImage, r)
		}
	}()

	if img == nil || img.Bounds().Empty() {
		return gocv.NewMat(), ErrEmptyImage
	}

	if gray, ok := img.(*image.Gray); ok {
		gray = compactGray(gray)
		m, err := gocv.ImageGrayToMatGray(gray)
		if err != nil {
			return gocv.NewMat(), fmt.Errorf("图像转换失败: %w", err)
		}
		return m, nil
	}

	// 子图等非零原点的图像先复制为紧凑的 NRGBA
	if img.Bounds().Min != (image.Point{}) {
		img = imaging.Clone(img)
	}

	rgb, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("图像转换失败: %w", err)
	}
	// 转换为 BGR（OpenCV 默认格式）
	dst := gocv.NewMat()
	gocv.CvtColor(rgb, &dst, gocv.ColorRGBToBGR)
	rgb.Close()
	return dst, nil
}

// compactGray SubImage 得到的灰度图行距大于宽度，按行复制为紧凑布局
func compactGray(src *image.Gray) *image.Gray {
	b := src.Bounds()
	if b.Min == (image.Point{}) && src.Stride == b.Dx() {
		return src
	}
	dst := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		off := src.PixOffset(b.Min.X, b.Min.Y+y)
		copy(dst.Pix[y*dst.Stride:(y+1)*dst.Stride], src.Pix[off:off+b.Dx()])
	}
	return dst
}

// MatToImage 将 gocv.Mat 转换为 image.Image
func MatToImage(mat gocv.Mat) (image.Image, error) {
	if IsEmpty(mat) {
		return nil, ErrEmptyImage
	}
	img, err := mat.ToImage()
	if err != nil {
		return nil, fmt.Errorf("Mat 转换失败: %w", err)
	}
	return img, nil
}

// LoadImageInput 加载图像输入，返回的 Mat 由调用方关闭
// 支持 gocv.Mat、*gocv.Mat、image.Image、[]byte (编码数据)、string (文件路径)
func LoadImageInput(input interface{}) (gocv.Mat, error) {
	switch v := input.(type) {
	case nil:
		return gocv.NewMat(), ErrEmptyImage
	case gocv.Mat:
		if IsEmpty(v) {
			return gocv.NewMat(), ErrEmptyImage
		}
		return v.Clone(), nil
	case *gocv.Mat:
		if v == nil || IsEmpty(*v) {
			return gocv.NewMat(), ErrEmptyImage
		}
		return v.Clone(), nil
	case image.Image:
		return ImageToMat(v)
	case []byte:
		return DecodeImage(v)
	case string:
		return ReadImage(v)
	default:
		return gocv.NewMat(), fmt.Errorf("%w: %T", ErrUnsupportedInput, input)
	}
}
