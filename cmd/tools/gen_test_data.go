package main

import (
	"bytes"
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

func main() {
	outputDir := flag.String("out", "./data", "serving root to populate")
	flag.Parse()

	if err := os.MkdirAll(*outputDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Unable to create %s: %v\n", *outputDir, err)
		os.Exit(1)
	}

	fmt.Println("Generating sample files for the file server...")

	// 1. The two files the server checks for at startup
	write(filepath.Join(*outputDir, "tiny.txt"), []byte("This is a tiny file, it fits in a single block.\n"))
	write(filepath.Join(*outputDir, "hamlet.txt"), hamlet())

	// 2. Zero-length file, still answered with one block
	write(filepath.Join(*outputDir, "empty.txt"), nil)

	// 3. Binary payloads spanning many blocks
	genImage(filepath.Join(*outputDir, "gradient.png"))
	genPDF(filepath.Join(*outputDir, "report.pdf"))

	fmt.Printf("\nReady: start the server with ROOT_DIR=%s REQUIRED_FILES='tiny.txt|hamlet.txt'\n", *outputDir)
}

func write(path string, data []byte) {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		fmt.Printf("Error writing %s: %v\n", path, err)
		return
	}
	fmt.Printf("Generated %s (%d bytes)\n", path, len(data))
}

// hamlet repeats a soliloquy until it needs several response blocks.
func hamlet() []byte {
	soliloquy := strings.Join([]string{
		"To be, or not to be, that is the question:",
		"Whether 'tis nobler in the mind to suffer",
		"The slings and arrows of outrageous fortune,",
		"Or to take arms against a sea of troubles",
		"And by opposing end them.",
		"",
	}, "\n")
	return bytes.Repeat([]byte(soliloquy), 200)
}

// genPDF creates a small document, served as an opaque binary file.
func genPDF(path string) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 20)
	pdf.Cell(40, 20, "File server sample report")
	pdf.Ln(20)

	pdf.SetFont("Arial", "", 12)
	pdf.MultiCell(0, 10, "This document is fetched block by block and verified with SHA-256.", "", "", false)

	if err := pdf.OutputFileAndClose(path); err != nil {
		fmt.Printf("Error writing PDF: %v\n", err)
		return
	}
	fmt.Printf("Generated %s\n", path)
}

// genImage creates an 800x600 gradient PNG.
func genImage(path string) {
	width, height := 800, 600
	img := image.NewRGBA(image.Rectangle{image.Point{0, 0}, image.Point{width, height}})

	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{uint8(x % 255), 100, 200, 0xff})
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		fmt.Printf("Error encoding image: %v\n", err)
		return
	}
	write(path, buf.Bytes())
}
