package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	"image/png"
	"os"

	"github.com/lecturebuddies/docproc/internal/ocr"
)

func (e *Extractor) extractImage(ctx context.Context, path string) Result {
	img, err := loadImageRGB(path)
	if err != nil {
		return errorResult(labelImage, err)
	}
	if e.ocr == nil {
		return ocrUnavailableResult()
	}
	ctx, cancel := context.WithTimeout(ctx, e.ocrTimeout)
	defer cancel()
	raw, err := e.ocr.Recognize(ctx, img)
	if err != nil {
		if ocr.IsEngineMissing(err) {
			return ocrUnavailableResult()
		}
		return errorResult(labelImage, err)
	}
	text := Normalize(raw)
	if text == "" {
		return emptyResult(msgEmptyImage)
	}
	return textResult(text)
}

// loadImageRGB decodes the image at path and re-encodes it as an opaque 8-bit RGB
// PNG so the OCR engine sees the same representation whatever the source palette
// or alpha channel.
func loadImageRGB(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	src, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	rgb := toRGB(src)
	if rgb.Bounds().Empty() {
		return nil, errors.New("decode image: empty image")
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, rgb); err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}
	return buf.Bytes(), nil
}

// toRGB copies src into a fully opaque NRGBA image. Alpha is discarded rather than
// composited, so non-premultiplied sources keep their stored color channels.
func toRGB(src image.Image) *image.NRGBA {
	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(src.At(x, y)).(color.NRGBA)
			c.A = 0xff
			dst.SetNRGBA(x-b.Min.X, y-b.Min.Y, c)
		}
	}
	return dst
}
