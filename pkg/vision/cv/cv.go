// Package cv 提供文字识别流水线使用的图像输入与转换工具
//
// 支持的输入类型:
//   - gocv.Mat / *gocv.Mat
//   - image.Image
//   - []byte (PNG/JPEG 编码数据)
//   - string (图像文件路径)
//
// 基本用法:
//
//	mat, err := cv.LoadImageInput("screen.png")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer mat.Close()
//
//	region, rect, err := cv.CropImage(mat, image.Rect(100, 50, 300, 90))
package cv
