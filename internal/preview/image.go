package preview

import (
	"context"
	"fmt"
	"image"
	"os"
	"strconv"

	"github.com/disintegration/imaging"
	"github.com/rwcarlsen/goexif/exif"

	// Decoders for the formats the detector classifies as images.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ImageExtractor decodes an image to a bitmap capped at a maximum dimension,
// preserving aspect ratio, and records original and displayed sizes plus any
// EXIF capture metadata.
type ImageExtractor struct{}

func (i *ImageExtractor) ID() string { return "image" }

func (i *ImageExtractor) Extract(ctx context.Context, path string, limits Limits) (Preview, error) {
	f, err := os.Open(path)
	if err != nil {
		return Preview{}, &FilesystemError{Path: path, Err: err}
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return ErrorPreview(i.ID(), fmt.Errorf("%w: %v", ErrCorruptOrEncrypted, err)), nil
	}

	bounds := img.Bounds()
	origW, origH := bounds.Dx(), bounds.Dy()

	display := img
	if origW > limits.MaxImageDim || origH > limits.MaxImageDim {
		display = imaging.Fit(img, limits.MaxImageDim, limits.MaxImageDim, imaging.Lanczos)
	}
	dispBounds := display.Bounds()

	p := Preview{
		Category:    CategoryImage,
		Image:       display,
		ExtractorID: i.ID(),
	}
	p.SetMeta("format", format)
	p.SetMeta("width", strconv.Itoa(origW))
	p.SetMeta("height", strconv.Itoa(origH))
	p.SetMeta("display_width", strconv.Itoa(dispBounds.Dx()))
	p.SetMeta("display_height", strconv.Itoa(dispBounds.Dy()))
	p.SetMeta("color_mode", colorMode(img))

	addExifMeta(&p, path)
	return p, nil
}

// colorMode names the decoded color model.
func colorMode(img image.Image) string {
	switch img.(type) {
	case *image.Gray, *image.Gray16:
		return "grayscale"
	case *image.CMYK:
		return "cmyk"
	case *image.Paletted:
		return "indexed"
	case *image.NRGBA, *image.NRGBA64, *image.RGBA, *image.RGBA64:
		return "rgba"
	case *image.YCbCr:
		return "ycbcr"
	default:
		return "unknown"
	}
}

// addExifMeta records camera metadata when the file carries an EXIF block.
// Absence of EXIF is not an error.
func addExifMeta(p *Preview, path string) {
	f, err := os.Open(path)
	if err != nil {
		return
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil {
		return
	}

	if tag, err := x.Get(exif.Make); err == nil {
		if s, err := tag.StringVal(); err == nil && s != "" {
			p.SetMeta("camera_make", s)
		}
	}
	if tag, err := x.Get(exif.Model); err == nil {
		if s, err := tag.StringVal(); err == nil && s != "" {
			p.SetMeta("camera_model", s)
		}
	}
	if dt, err := x.DateTime(); err == nil {
		p.SetMeta("taken", dt.Format("2006-01-02 15:04:05"))
	}
}
