package document

import (
	"errors"
	"fmt"

	"github.com/pivotpdftools/pivot-pdf/ir/raw"
)

// ImageParams describes pre-decoded image data for embedding. The
// library does no pixel work: callers hand over bytes already in the
// encoding named by Filter (DCTDecode for JPEG, or raw samples with
// an empty Filter) plus the parameters viewers need to decode them.
type ImageParams struct {
	Width  int
	Height int
	// ColorSpace is a PDF color space name: DeviceRGB, DeviceGray...
	ColorSpace       string
	BitsPerComponent int
	// Filter names the encoding Data is already in; empty means raw.
	Filter string
	Data   []byte
}

// ImageRef is an opaque handle to a registered image.
type ImageRef struct {
	ref  raw.ObjectRef
	name string
}

// IsValid reports whether the handle came from RegisterImage.
func (r ImageRef) IsValid() bool { return r.name != "" }

// RegisterImage writes the image XObject immediately and returns a
// handle that can be drawn on any page, any number of times.
func (d *Document) RegisterImage(img ImageParams) (ImageRef, error) {
	if d.closed {
		return ImageRef{}, ErrDocumentClosed
	}
	if img.Width <= 0 || img.Height <= 0 {
		return ImageRef{}, errors.New("register image: dimensions must be positive")
	}
	if len(img.Data) == 0 {
		return ImageRef{}, errors.New("register image: no data")
	}
	bits := img.BitsPerComponent
	if bits == 0 {
		bits = 8
	}
	colorSpace := img.ColorSpace
	if colorSpace == "" {
		colorSpace = "DeviceRGB"
	}

	dict := raw.Dict()
	dict.Set("Type", raw.Name("XObject"))
	dict.Set("Subtype", raw.Name("Image"))
	dict.Set("Width", raw.Int(int64(img.Width)))
	dict.Set("Height", raw.Int(int64(img.Height)))
	dict.Set("ColorSpace", raw.Name(colorSpace))
	dict.Set("BitsPerComponent", raw.Int(int64(bits)))

	ref, err := d.graph.MakeRawStream(img.Data, dict, img.Filter)
	if err != nil {
		return ImageRef{}, fmt.Errorf("register image: %w", err)
	}
	d.imageCount++
	return ImageRef{ref: ref, name: fmt.Sprintf("Im%d", d.imageCount)}, nil
}

// DrawImage places a registered image into the rectangle with corner
// (x, y) and the given size, in page coordinates.
func (d *Document) DrawImage(img ImageRef, x, y, width, height float64) error {
	page, err := d.openPage()
	if err != nil {
		return err
	}
	if !img.IsValid() {
		return errors.New("draw image: invalid handle")
	}
	page.rec.UseXObject(img.name, img.ref)
	page.cs.Save()
	page.cs.Concat(width, 0, 0, height, x, y)
	page.cs.DoXObject(img.name)
	page.cs.Restore()
	return nil
}
