package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/cors"

	"github.com/abaddouh/texture-annotator/internal/annotator"
)

type Server struct {
	port       int
	outputPath string
	srv        *http.Server

	mu            sync.RWMutex
	textures      map[string]string
	annotated     int
	lastAnnotated time.Time
}

func New(port int, outputPath string) *Server {
	return &Server{
		port:       port,
		outputPath: outputPath,
		textures:   make(map[string]string),
	}
}

func (s *Server) Start(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/textures/", s.textureHandler)
	mux.HandleFunc("/annotate", s.annotateHandler)
	mux.HandleFunc("/health", s.healthHandler)

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"*"},
		MaxAge:         300,
	})

	s.srv = &http.Server{
		Addr:    fmt.Sprintf(":%d", s.port),
		Handler: c.Handler(mux),
	}

	log.Printf("Starting HTTP server on port %d...\n", s.port)

	go func() {
		<-ctx.Done()
		log.Println("Server is shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	if err := s.srv.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}

	return nil
}

func (s *Server) textureHandler(w http.ResponseWriter, r *http.Request) {
	log.Printf("Received request for: %s", r.URL.Path)

	filePath := filepath.Join(s.outputPath, r.URL.Path[len("/textures/"):])
	log.Printf("Attempting to serve file: %s", filePath)

	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		log.Printf("File does not exist: %s", filePath)
		http.NotFound(w, r)
		return
	}

	http.ServeFile(w, r, filePath)
}

func (s *Server) annotateHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		http.Error(w, "Invalid multipart form", http.StatusBadRequest)
		return
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		http.Error(w, "Missing image file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	text := r.FormValue("text")
	if text == "" {
		http.Error(w, "Missing text field", http.StatusBadRequest)
		return
	}

	img, err := annotator.Decode(file)
	if err != nil {
		http.Error(w, "Unsupported or corrupt image", http.StatusBadRequest)
		return
	}

	annotator.DrawText(img, text, annotator.Defaults())

	textureID := uuid.New().String()
	destPath := filepath.Join(s.outputPath, textureID+".png")

	if err := annotator.Save(destPath, img); err != nil {
		log.Printf("Error saving annotated texture: %v", err)
		http.Error(w, "Failed to save annotated texture", http.StatusInternalServerError)
		return
	}

	s.mu.Lock()
	s.textures[textureID] = destPath
	s.annotated++
	s.lastAnnotated = time.Now()
	s.mu.Unlock()

	response := map[string]string{
		"texture_id":  textureID,
		"texture_url": fmt.Sprintf("http://localhost:%d/textures/%s.png", s.port, textureID),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	annotated := s.annotated
	lastAnnotated := s.lastAnnotated
	s.mu.RUnlock()

	response := struct {
		Status        string    `json:"status"`
		LastAnnotated time.Time `json:"last_annotated"`
		Annotated     int       `json:"annotated"`
	}{
		Status:        "healthy",
		LastAnnotated: lastAnnotated,
		Annotated:     annotated,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// GetTexturePath returns the on-disk path for a previously annotated texture.
func (s *Server) GetTexturePath(textureID string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	path, ok := s.textures[textureID]
	return path, ok
}
