package media

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	return buf.Bytes()
}

func TestExtract_Full(t *testing.T) {
	data := pngBytes(t, 4, 3)
	md, err := ImageExtractor{}.Extract(data, "a.png")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if md.Kind != Full || md.Format != "png" {
		t.Fatalf("want full png, got %+v", md)
	}
	w, h, ok := md.Dimensions()
	if !ok || w != 4 || h != 3 {
		t.Fatalf("Dimensions = %d,%d,%v", w, h, ok)
	}
	if md.Size != int64(len(data)) || md.Digest != Hash(data) {
		t.Fatalf("size/digest mismatch: %+v", md)
	}
}

func TestExtract_PartialOnUnknownFormat(t *testing.T) {
	data := []byte("definitely not an image")
	md, err := ImageExtractor{}.Extract(data, "a.jpg")
	if err != nil {
		t.Fatalf("Extract must not fail on unknown formats: %v", err)
	}
	if md.Kind != Partial || md.Kind.String() != "partial" {
		t.Fatalf("want partial, got %v", md.Kind)
	}
	if _, _, ok := md.Dimensions(); ok {
		t.Fatal("partial metadata must not report dimensions")
	}
	if md.Digest == "" || md.Size != int64(len(data)) {
		t.Fatalf("partial must still carry size and digest: %+v", md)
	}
}

func TestExtract_Empty(t *testing.T) {
	if _, err := (ImageExtractor{}).Extract(nil, "a.jpg"); !errors.Is(err, ErrEmpty) {
		t.Fatalf("want ErrEmpty, got %v", err)
	}
}

func TestHash_StableAndDistinct(t *testing.T) {
	a := Hash([]byte("abc"))
	if a != "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad" {
		t.Fatalf("unexpected sha256: %s", a)
	}
	if Hash([]byte("abd")) == a {
		t.Fatal("different inputs must hash differently")
	}
}

func TestIsValidImage(t *testing.T) {
	if !IsValidImage(pngBytes(t, 1, 1)) {
		t.Fatal("png must be valid")
	}
	if IsValidImage([]byte("nope")) || IsValidImage(nil) {
		t.Fatal("garbage and empty input must be invalid")
	}
}
