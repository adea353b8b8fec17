package initializers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"gopkg.in/yaml.v3"
)

var (
	ErrFileTooLarge       = errors.New("file size exceeds the limit")
	ErrFileTypeNotAllowed = errors.New("file type is not allowed")
)

const defaultKeyDir = "uploads"

type StorageConfig struct {
	Endpoint         string
	AccessKey        string
	SecretKey        string
	Bucket           string
	UseSSL           bool
	MaxSize          int64
	FileTypes        []string
	Expiry           time.Duration
	ExternalEndpoint string
	ExternalUseSSL   bool
}

// uploadsConfigYAML overrides the upload policy read from the environment.
type uploadsConfigYAML struct {
	MaxFileSize        int64    `yaml:"max_file_size"`
	AllowedFileTypes   []string `yaml:"allowed_file_types"`
	PresignedURLExpiry int      `yaml:"presigned_url_expiry"` // seconds
}

func loadUploadsConfig(path string) (*uploadsConfigYAML, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg uploadsConfigYAML
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &cfg, nil
}

// LoadStorageConfig reads MINIO_* and the upload policy from the environment,
// then applies config/uploads.yaml (or UPLOADS_CONFIG_FILE) on top when it exists.
func LoadStorageConfig() StorageConfig {
	conf := StorageConfig{
		Endpoint:         os.Getenv("MINIO_ENDPOINT"),
		AccessKey:        os.Getenv("MINIO_ACCESS_KEY"),
		SecretKey:        os.Getenv("MINIO_SECRET_KEY"),
		Bucket:           os.Getenv("MINIO_BUCKET"),
		UseSSL:           parseBool(os.Getenv("MINIO_USE_SSL")),
		MaxSize:          parseInt64(os.Getenv("MAX_FILE_SIZE"), 10485760),
		FileTypes:        parseFileTypes(os.Getenv("ALLOWED_FILE_TYPES")),
		Expiry:           parseExpiry(os.Getenv("PRESIGNED_URL_EXPIRY")),
		ExternalEndpoint: os.Getenv("MINIO_EXTERNAL_ENDPOINT"),
	}
	conf.ExternalUseSSL = externalUseSSL(conf.ExternalEndpoint, os.Getenv("MINIO_EXTERNAL_USE_SSL"), conf.UseSSL)

	path := strings.TrimSpace(os.Getenv("UPLOADS_CONFIG_FILE"))
	if path == "" {
		path = "config/uploads.yaml"
	}
	yamlCfg, err := loadUploadsConfig(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			slog.Warn("ignoring uploads config", "path", path, "err", err)
		}
		return conf
	}
	return conf.withOverrides(yamlCfg)
}

func (c StorageConfig) withOverrides(y *uploadsConfigYAML) StorageConfig {
	if y.MaxFileSize > 0 {
		c.MaxSize = y.MaxFileSize
	}
	if len(y.AllowedFileTypes) > 0 {
		c.FileTypes = y.AllowedFileTypes
	}
	if y.PresignedURLExpiry > 0 {
		c.Expiry = time.Duration(y.PresignedURLExpiry) * time.Second
	}
	return c
}

// externalUseSSL picks the scheme for signed URLs: an explicit flag wins, then the
// scheme of the external endpoint, then the internal setting.
func externalUseSSL(endpoint, flag string, fallback bool) bool {
	if v := strings.TrimSpace(flag); v != "" {
		return parseBool(v)
	}
	raw := strings.TrimSpace(endpoint)
	if strings.HasPrefix(raw, "https://") {
		return true
	}
	if strings.HasPrefix(raw, "http://") {
		return false
	}
	return fallback
}

// CheckFileAllowed validates an upload against the size limit and the MIME allow-list.
func (c StorageConfig) CheckFileAllowed(size int64, mime string) error {
	if size > c.MaxSize {
		return ErrFileTooLarge
	}
	incoming := baseMIME(mime)
	for _, t := range c.FileTypes {
		if baseMIME(t) == incoming {
			return nil
		}
	}
	return ErrFileTypeNotAllowed
}

// ObjectStorage stores listing images in a single bucket. Only keys are persisted
// by callers; readable URLs are signed on demand.
type ObjectStorage struct {
	client   *minio.Client
	external *minio.Client
	conf     StorageConfig
}

// NewObjectStorage connects to MinIO and creates the bucket when missing.
func NewObjectStorage(ctx context.Context, conf StorageConfig) (*ObjectStorage, error) {
	client, err := minio.New(conf.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(conf.AccessKey, conf.SecretKey, ""),
		Secure: conf.UseSSL,
	})
	if err != nil {
		return nil, err
	}
	exists, err := client.BucketExists(ctx, conf.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", conf.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, conf.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", conf.Bucket, err)
		}
	}

	s := &ObjectStorage{client: client, external: client, conf: conf}

	extEndpoint := strings.TrimPrefix(strings.TrimPrefix(conf.ExternalEndpoint, "http://"), "https://")
	if extEndpoint != "" && extEndpoint != conf.Endpoint {
		external, err := minio.New(extEndpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(conf.AccessKey, conf.SecretKey, ""),
			Secure: conf.ExternalUseSSL,
			Region: "us-east-1",
		})
		if err != nil {
			return nil, err
		}
		s.external = external
	}

	slog.Info("object storage ready", "bucket", conf.Bucket)
	return s, nil
}

func (s *ObjectStorage) CheckFileAllowed(size int64, mime string) error {
	return s.conf.CheckFileAllowed(size, mime)
}

func (s *ObjectStorage) UploadObject(ctx context.Context, r io.Reader, size int64, key, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, s.conf.Bucket, key, r, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("put object %s: %w", key, err)
	}
	return key, nil
}

// SignedReadURL returns a time-limited GET URL for key. A zero expiry uses the configured one.
func (s *ObjectStorage) SignedReadURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	if expiry <= 0 {
		expiry = s.conf.Expiry
	}
	reqParams := make(url.Values)
	reqParams.Set("response-content-disposition", fmt.Sprintf("inline; filename=\"%s\"", sanitizeFilename(filepath.Base(key))))
	u, err := s.external.PresignedGetObject(ctx, s.conf.Bucket, key, expiry, reqParams)
	if err != nil {
		return "", fmt.Errorf("presign %s: %w", key, err)
	}
	return u.String(), nil
}

func (s *ObjectStorage) RemoveObject(ctx context.Context, key string) error {
	return s.client.RemoveObject(ctx, s.conf.Bucket, key, minio.RemoveObjectOptions{})
}

// GenerateUniqueKey builds "<dir>/<uuid><ext>" for an upload. The extension is taken
// from the original filename and lower-cased; the directory hint is reduced to safe
// path segments and falls back to "uploads".
func GenerateUniqueKey(originalFilename, directoryHint string) string {
	return sanitizeKeyDir(directoryHint) + "/" + uuid.NewString() + sanitizeExt(filepath.Ext(originalFilename))
}

func sanitizeKeyDir(hint string) string {
	var segments []string
	for _, seg := range strings.Split(strings.ReplaceAll(hint, "\\", "/"), "/") {
		seg = strings.ToLower(strings.TrimSpace(seg))
		var b strings.Builder
		for _, r := range seg {
			if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
				b.WriteRune(r)
			}
		}
		if b.Len() > 0 {
			segments = append(segments, b.String())
		}
	}
	if len(segments) == 0 {
		return defaultKeyDir
	}
	return strings.Join(segments, "/")
}

func sanitizeExt(ext string) string {
	ext = strings.ToLower(ext)
	if len(ext) < 2 || len(ext) > 10 {
		return ""
	}
	for _, r := range ext[1:] {
		if !((r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')) {
			return ""
		}
	}
	return ext
}

func parseBool(val string) bool {
	return strings.ToLower(strings.TrimSpace(val)) == "true"
}

func parseInt64(val string, def int64) int64 {
	if val == "" {
		return def
	}
	v, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return def
	}
	return v
}

func parseFileTypes(val string) []string {
	if val == "" {
		return []string{"image/jpeg", "image/png", "image/webp"}
	}
	parts := strings.Split(val, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func parseExpiry(val string) time.Duration {
	if val == "" {
		return time.Hour
	}
	v, err := strconv.Atoi(val)
	if err != nil || v <= 0 {
		return time.Hour
	}
	return time.Duration(v) * time.Second
}

func baseMIME(mime string) string {
	if mime == "" {
		return ""
	}
	parts := strings.Split(mime, ";")
	return strings.ToLower(strings.TrimSpace(parts[0]))
}

func sanitizeFilename(name string) string {
	cleaned := strings.NewReplacer("\"", "", "\\", "", "/", "", "..", "").Replace(name)
	b := make([]rune, 0, len(cleaned))
	for _, r := range cleaned {
		if r < 32 || r == 127 {
			continue
		}
		b = append(b, r)
	}
	s := strings.Join(strings.Fields(string(b)), " ")
	if s == "" {
		s = "file"
	}
	return s
}
