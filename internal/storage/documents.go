package storage

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/rental-service/internal/config"
)

// DocumentStore is the boundary to identity-document blob storage: signed,
// time-limited URL issuance by path and delete-by-path. Byte-level upload
// handling lives outside this service.
type DocumentStore interface {
	SignedURL(ctx context.Context, path string) (string, error)
	Delete(ctx context.Context, path string) error
}

// LocalDocumentStore serves documents off the local filesystem, issuing
// HMAC-signed URLs that expire.
type LocalDocumentStore struct {
	rootDir string
	baseURL string
	secret  []byte
	ttl     time.Duration
	logger  *zap.Logger
}

// NewLocalDocumentStore builds the store.
func NewLocalDocumentStore(cfg config.DocumentsConfig, logger *zap.Logger) *LocalDocumentStore {
	return &LocalDocumentStore{
		rootDir: cfg.RootDir,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		secret:  []byte(cfg.SigningSecret),
		ttl:     cfg.SignedURLTTL(),
		logger:  logger,
	}
}

// SignedURL issues a time-limited URL for the stored document.
func (s *LocalDocumentStore) SignedURL(_ context.Context, path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", fmt.Errorf("document path required")
	}
	expires := time.Now().Add(s.ttl).Unix()
	return fmt.Sprintf("%s/%s?expires=%d&signature=%s",
		s.baseURL, strings.TrimLeft(path, "/"), expires, s.sign(path, expires)), nil
}

// VerifySignature checks a previously issued URL's signature and expiry.
func (s *LocalDocumentStore) VerifySignature(path string, expires int64, signature string) bool {
	if time.Now().Unix() > expires {
		return false
	}
	expected := s.sign(path, expires)
	return hmac.Equal([]byte(expected), []byte(signature))
}

// Delete removes the document blob. Missing files are not an error: the
// reference may already have been cleaned up.
func (s *LocalDocumentStore) Delete(_ context.Context, path string) error {
	if strings.TrimSpace(path) == "" {
		return nil
	}
	full := filepath.Join(s.rootDir, filepath.Clean("/"+path))
	if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
		return err
	}
	s.logger.Debug("document deleted", zap.String("path", path))
	return nil
}

func (s *LocalDocumentStore) sign(path string, expires int64) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(strings.TrimLeft(path, "/") + ":" + strconv.FormatInt(expires, 10)))
	return hex.EncodeToString(mac.Sum(nil))
}
