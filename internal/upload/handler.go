package upload

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// Policy configures what the upload endpoint accepts and where bytes land.
type Policy struct {
	MaxSize          int64
	AllowContentType func(string) bool
	ObjectKey        func(originalName string) string
}

// DefaultPolicy mirrors the deployment rules for image uploads: 5MB cap,
// image payloads only, timestamped object keys.
func DefaultPolicy() Policy {
	return Policy{
		MaxSize: 5 << 20,
		AllowContentType: func(ct string) bool {
			return strings.HasPrefix(ct, "image/")
		},
		ObjectKey: func(name string) string {
			return fmt.Sprintf("%d-%s-%s", time.Now().UnixMilli(), uuid.NewString()[:8], filepath.Base(name))
		},
	}
}

// BlobStore defines the interface for blob persistence.
type BlobStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Get(ctx context.Context, key string) ([]byte, string, error)
}

// Handler holds the upload HTTP handlers.
type Handler struct {
	blobs  BlobStore
	policy Policy
}

func NewHandler(blobs BlobStore, policy Policy) *Handler {
	return &Handler{blobs: blobs, policy: policy}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeMsg(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}

// Upload accepts a multipart "image" field and stores it in the blob store.
// The content type is sniffed from the payload, not taken from the client.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	// Slack above MaxSize so the size check below answers 400, not a
	// truncated multipart parse error.
	r.Body = http.MaxBytesReader(w, r.Body, h.policy.MaxSize*2+1024)

	file, header, err := r.FormFile("image")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeMsg(w, http.StatusBadRequest, "File size too large. Maximum size is 5MB.")
			return
		}
		writeMsg(w, http.StatusBadRequest, "No image file provided")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		log.Printf("read upload: %v", err)
		writeMsg(w, http.StatusInternalServerError, "File upload failed")
		return
	}
	if int64(len(data)) > h.policy.MaxSize {
		writeMsg(w, http.StatusBadRequest, "File size too large. Maximum size is 5MB.")
		return
	}

	contentType := http.DetectContentType(data)
	if !h.policy.AllowContentType(contentType) {
		writeMsg(w, http.StatusBadRequest, "Only image files are allowed!")
		return
	}

	key := h.policy.ObjectKey(header.Filename)
	if err := h.blobs.Put(r.Context(), key, data, contentType); err != nil {
		log.Printf("blob upload error: %v", err)
		writeMsg(w, http.StatusInternalServerError, "File upload failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":      "Image uploaded successfully",
		"filename":     key,
		"originalname": header.Filename,
		"size":         len(data),
		"url":          "/uploads/" + key,
	})
}

// Serve streams a stored object back by its key.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	data, contentType, err := h.blobs.Get(r.Context(), key)
	if err != nil {
		writeMsg(w, http.StatusNotFound, "File not found")
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Write(data)
}
