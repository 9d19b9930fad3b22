package main

import (
	"flag"
	"log"

	"github.com/abaddouh/texture-annotator/internal/annotator"
)

func main() {
	sourcePath := flag.String("source", "", "Path to the source texture image")
	destPath := flag.String("output", "./new-texture.png", "Output path for the annotated texture")
	text := flag.String("text", "New Text", "Text to draw onto the texture")
	flag.Parse()

	if *sourcePath == "" {
		log.Fatal("Please provide the path to the source texture using the -source flag")
	}

	if err := annotator.Annotate(*sourcePath, *destPath, *text); err != nil {
		log.Fatalf("Error annotating texture: %v", err)
	}
}
