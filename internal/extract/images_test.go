package extract

import (
	"bytes"
	"context"
	_ "image/png" // AddPictureFromBytes decodes the payload; the PNG decoder must be registered
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/hyperjump/bunrui/internal/models"
)

// minimalPNG is a valid 1x1 PNG. excelize decodes picture payloads to
// size the drawing, so the fixture must parse as a real image rather
// than just carry a PNG signature.
var minimalPNG = []byte("\x89\x50\x4e\x47\x0d\x0a\x1a\x0a\x00\x00\x00\x0d\x49\x48\x44\x52\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00\x90\x77\x53\xde\x00\x00\x00\x10\x49\x44\x41\x54\x78\x9c\x62\x62\x64\x64\x04\x04\x00\x00\xff\xff\x00\x12\x00\x06\xad\x77\x19\x65\x00\x00\x00\x00\x49\x45\x4e\x44\xae\x42\x60\x82")

func TestSniffExt(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want string
	}{
		{name: "png", data: []byte("\x89PNG\r\n\x1a\n...."), want: ".png"},
		{name: "jpeg", data: []byte{0xff, 0xd8, 0xff, 0xe0}, want: ".jpg"},
		{name: "gif", data: []byte("GIF89a...."), want: ".gif"},
		{name: "bmp", data: []byte("BM...."), want: ".bmp"},
		{name: "unknown defaults to png", data: []byte("plain bytes"), want: ".png"},
		{name: "empty", data: nil, want: ".png"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sniffExt(tt.data); got != tt.want {
				t.Errorf("sniffExt = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractFile_images(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "pictures.xlsx")

	payload := minimalPNG
	f := excelize.NewFile()
	defer f.Close()
	f.SetCellValue("Sheet1", "A1", "chart screenshot")
	if err := f.AddPictureFromBytes("Sheet1", "C3", &excelize.Picture{
		Extension: ".png",
		File:      payload,
	}); err != nil {
		t.Fatalf("failed to add picture: %v", err)
	}
	if err := f.SaveAs(src); err != nil {
		t.Fatalf("failed to save fixture: %v", err)
	}

	e := NewExtractor(Options{
		DataDir:       filepath.Join(dir, "data"),
		IncludeImages: true,
	}, nil, nil, nil)
	res, err := e.ExtractFile(context.Background(), src)
	if err != nil {
		t.Fatalf("ExtractFile failed: %v", err)
	}
	if res.ImageCount != 1 {
		t.Fatalf("ImageCount = %d, want 1", res.ImageCount)
	}

	written, err := os.ReadFile(filepath.Join(res.OutputDir, "images", "image1.png"))
	if err != nil {
		t.Fatalf("failed to read extracted image: %v", err)
	}
	if !bytes.Equal(written, payload) {
		t.Error("extracted image bytes differ from the embedded payload")
	}

	var infos []models.ImageInfo
	readJSONFile(t, filepath.Join(res.OutputDir, "images.json"), &infos)
	if len(infos) != 1 {
		t.Fatalf("images.json entries = %d, want 1", len(infos))
	}
	if infos[0].Sheet != "Sheet1" || infos[0].Filepath != "images/image1.png" {
		t.Errorf("image info = %+v, want sheet and relative path", infos[0])
	}
	if infos[0].Anchor != "C3" {
		t.Errorf("Anchor = %q, want C3", infos[0].Anchor)
	}
}

func TestExtractFile_imagesExcluded(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "pictures.xlsx")

	f := excelize.NewFile()
	defer f.Close()
	f.SetCellValue("Sheet1", "A1", "text")
	if err := f.AddPictureFromBytes("Sheet1", "C3", &excelize.Picture{
		Extension: ".png",
		File:      minimalPNG,
	}); err != nil {
		t.Fatalf("failed to add picture: %v", err)
	}
	if err := f.SaveAs(src); err != nil {
		t.Fatalf("failed to save fixture: %v", err)
	}

	e := NewExtractor(Options{DataDir: filepath.Join(dir, "data")}, nil, nil, nil)
	res, err := e.ExtractFile(context.Background(), src)
	if err != nil {
		t.Fatalf("ExtractFile failed: %v", err)
	}
	if res.ImageCount != 0 {
		t.Errorf("ImageCount = %d, want 0 with images excluded", res.ImageCount)
	}
	if _, err := os.Stat(filepath.Join(res.OutputDir, "images.json")); !os.IsNotExist(err) {
		t.Error("images.json should not be written without IncludeImages")
	}
}
