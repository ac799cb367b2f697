package scanning

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif" // Register GIF decoder
	"image/jpeg"
	"image/png"
	"net/http"
	"strings"

	"github.com/gen2brain/go-fitz"
	"github.com/gen2brain/heic"
)

// preparedImage is image data in a format every OCR provider accepts.
type preparedImage struct {
	data      []byte
	mimeType  string // image/png or image/jpeg
	converted bool
}

// format returns the short format name used by Gemini ("png", "jpeg").
func (p preparedImage) format() string {
	return strings.TrimPrefix(p.mimeType, "image/")
}

// prepareImage passes PNG and JPEG through untouched and converts everything
// else (PDF first page, HEIC/HEIF, GIF) to PNG. An empty content type is
// sniffed from the data.
func prepareImage(imageData []byte, contentType string) (preparedImage, error) {
	if len(imageData) == 0 {
		return preparedImage{}, fmt.Errorf("empty image data")
	}

	mimeType := normalizeMIMEType(contentType)
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = normalizeMIMEType(http.DetectContentType(imageData))
	}

	switch {
	case mimeType == "application/pdf":
		pngData, err := pdfToPNG(imageData)
		if err != nil {
			return preparedImage{}, fmt.Errorf("converting PDF to image: %w", err)
		}
		return preparedImage{data: pngData, mimeType: "image/png", converted: true}, nil
	case isHEICFormat(imageData) || isHEICMimeType(mimeType):
		img, err := heic.Decode(bytes.NewReader(imageData))
		if err != nil {
			return preparedImage{}, fmt.Errorf("decoding HEIC/HEIF image: %w", err)
		}
		return encodePNG(img)
	case mimeType == "image/png":
		return preparedImage{data: imageData, mimeType: "image/png"}, nil
	case mimeType == "image/jpeg" || mimeType == "image/jpg":
		return preparedImage{data: imageData, mimeType: "image/jpeg"}, nil
	}

	img, _, err := image.Decode(bytes.NewReader(imageData))
	if err != nil {
		return preparedImage{}, fmt.Errorf("unsupported image format %q. Supported formats: JPEG, PNG, GIF, HEIC, HEIF, PDF: %w", mimeType, err)
	}
	return encodePNG(img)
}

// pdfToPNG renders the first page of a PDF; invoices are single page.
func pdfToPNG(pdfData []byte) ([]byte, error) {
	doc, err := fitz.NewFromMemory(pdfData)
	if err != nil {
		return nil, fmt.Errorf("opening PDF: %w", err)
	}
	defer doc.Close()

	img, err := doc.Image(0)
	if err != nil {
		return nil, fmt.Errorf("rendering PDF page: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encoding PNG: %w", err)
	}
	return buf.Bytes(), nil
}

func encodePNG(img image.Image) (preparedImage, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return preparedImage{}, fmt.Errorf("encoding PNG: %w", err)
	}
	return preparedImage{data: buf.Bytes(), mimeType: "image/png", converted: true}, nil
}

// isHEICFormat checks for an ftyp box with a HEIC-family brand at offset 4.
func isHEICFormat(data []byte) bool {
	if len(data) < 12 || string(data[4:8]) != "ftyp" {
		return false
	}
	switch string(data[8:12]) {
	case "heic", "heif", "mif1", "msf1":
		return true
	}
	return false
}

func isHEICMimeType(mimeType string) bool {
	mimeType = strings.ToLower(mimeType)
	return strings.Contains(mimeType, "heic") || strings.Contains(mimeType, "heif")
}

// jpegQuality is used when callers ask for JPEG re-encoding of a decoded image.
const jpegQuality = 90

// toJPEG re-encodes any decodable image as JPEG. Ollama vision models handle
// JPEG more reliably than large PNG renders.
func toJPEG(p preparedImage) (preparedImage, error) {
	if p.mimeType == "image/jpeg" {
		return p, nil
	}
	img, _, err := image.Decode(bytes.NewReader(p.data))
	if err != nil {
		return preparedImage{}, fmt.Errorf("decoding image: %w", err)
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return preparedImage{}, fmt.Errorf("encoding JPEG: %w", err)
	}
	return preparedImage{data: buf.Bytes(), mimeType: "image/jpeg", converted: true}, nil
}
