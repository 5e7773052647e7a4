package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "MONGODB_URI", "MONGO_DB", "JWT_SECRET", "MINIO_BUCKET", "MINIO_USE_SSL"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	if cfg.Port != "3000" {
		t.Fatalf("expected default port 3000, got %q", cfg.Port)
	}
	if cfg.MongoDB != "user-auth" {
		t.Fatalf("expected default db user-auth, got %q", cfg.MongoDB)
	}
	if cfg.JWTSecret != "" {
		t.Fatalf("JWT_SECRET has no default, got %q", cfg.JWTSecret)
	}
	if cfg.MinioUseSSL {
		t.Fatal("MINIO_USE_SSL must default to false")
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "8081")
	t.Setenv("MONGODB_URI", "mongodb://db:27017")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("MINIO_USE_SSL", "true")

	cfg := Load()
	if cfg.Port != "8081" {
		t.Fatalf("expected port 8081, got %q", cfg.Port)
	}
	if cfg.MongoURI != "mongodb://db:27017" {
		t.Fatalf("unexpected mongo uri %q", cfg.MongoURI)
	}
	if cfg.JWTSecret != "s3cret" {
		t.Fatalf("unexpected secret %q", cfg.JWTSecret)
	}
	if !cfg.MinioUseSSL {
		t.Fatal("expected MinioUseSSL true")
	}
}
