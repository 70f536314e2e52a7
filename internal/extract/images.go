package extract

import (
	"bytes"

	"github.com/xuri/excelize/v2"
)

// sheetImage is one embedded picture with its payload, in sheet
// order.
type sheetImage struct {
	sheet  string
	anchor string
	data   []byte
	ext    string
}

// readImages collects every picture anchored in the given sheets.
// Cells and sheets that fail to read are skipped.
func readImages(f *excelize.File, sheets []string) []sheetImage {
	var images []sheetImage
	for _, sheet := range sheets {
		cells, err := f.GetPictureCells(sheet)
		if err != nil {
			continue
		}
		for _, cell := range cells {
			pics, err := f.GetPictures(sheet, cell)
			if err != nil {
				continue
			}
			for _, pic := range pics {
				if len(pic.File) == 0 {
					continue
				}
				images = append(images, sheetImage{
					sheet:  sheet,
					anchor: cell,
					data:   pic.File,
					ext:    sniffExt(pic.File),
				})
			}
		}
	}
	return images
}

// sniffExt determines the image extension from magic bytes. Unknown
// payloads default to .png.
func sniffExt(data []byte) string {
	switch {
	case bytes.HasPrefix(data, []byte("\x89PNG")):
		return ".png"
	case len(data) >= 2 && data[0] == 0xff && data[1] == 0xd8:
		return ".jpg"
	case bytes.HasPrefix(data, []byte("GIF8")):
		return ".gif"
	case bytes.HasPrefix(data, []byte("BM")):
		return ".bmp"
	}
	return ".png"
}
