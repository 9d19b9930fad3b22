package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"sync"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/abaddouh/texture-annotator/internal/annotator"
	"github.com/abaddouh/texture-annotator/internal/server"
	"github.com/abaddouh/texture-annotator/internal/watcher"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found")
	}

	texturePath := flag.String("path", os.Getenv("TEXTURE_PATH"), "Path to the directory containing source textures")
	outputPath := flag.String("output", os.Getenv("OUTPUT_PATH"), "Path to output the annotated textures")
	text := flag.String("text", "New Text", "Text to draw onto watched textures")
	port := flag.Int("port", 8080, "Port to serve annotated textures")
	workerCount := flag.Int("workers", runtime.NumCPU(), "Number of worker goroutines")

	flag.Parse()

	if *texturePath == "" {
		log.Fatal("Please provide the path to the texture directory using the -path flag or TEXTURE_PATH environment variable")
	}

	if *outputPath == "" {
		*outputPath = "./annotated"
	}

	if err := os.MkdirAll(*outputPath, os.ModePerm); err != nil {
		log.Fatal(err)
	}

	w, err := watcher.New(*texturePath)
	if err != nil {
		log.Fatal(err)
	}

	srv := server.New(*port, *outputPath)

	// Create a context that we can cancel
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Create a WaitGroup to wait for all goroutines to finish
	var wg sync.WaitGroup

	// Start the worker pool
	jobQueue := make(chan watcher.Job, 100)
	for i := 0; i < *workerCount; i++ {
		wg.Add(1)
		go worker(ctx, &wg, *outputPath, *text, jobQueue)
	}

	// Start the watcher
	wg.Add(1)
	go func() {
		defer wg.Done()
		w.Start(ctx, jobQueue)
	}()

	// Start the server
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := srv.Start(ctx); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	// Handle graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	<-c
	log.Println("Shutting down...")
	cancel()

	// Wait for all goroutines to finish
	wg.Wait()

	log.Println("Shutdown complete")
}

func worker(ctx context.Context, wg *sync.WaitGroup, outputPath, text string, jobs <-chan watcher.Job) {
	defer wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-jobs:
			if !ok {
				return
			}
			destPath := filepath.Join(outputPath, filepath.Base(job.FilePath))
			if err := annotator.Annotate(job.FilePath, destPath, text); err != nil {
				log.Printf("Error annotating %s: %v", job.FilePath, err)
			}
		}
	}
}
