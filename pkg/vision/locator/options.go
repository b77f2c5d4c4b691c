package locator

// Option 定位选项
type Option func(*options)

type options struct {
	region      *Region
	regionImage interface{}
}

func applyOptions(opts []Option) *options {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithRegion 只在指定区域内识别，结果坐标仍为绝对坐标
func WithRegion(x, y, width, height int) Option {
	return func(o *options) {
		o.region = &Region{X: x, Y: y, Width: width, Height: height}
	}
}

// WithRegionImage 直接使用已裁剪好的区域图像
// 同时设置 WithRegion 时，区域左上角作为结果坐标偏移
func WithRegionImage(img interface{}) Option {
	return func(o *options) {
		o.regionImage = img
	}
}
