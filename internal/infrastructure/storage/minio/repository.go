package minio

import (
	"bytes"
	"context"
	stderrors "errors"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/minio/minio-go/v7"

	"github.com/turtacn/SeqPrep/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/SeqPrep/internal/preprocessing/vocab"
	"github.com/turtacn/SeqPrep/pkg/errors"
)

var (
	ErrObjectNotFound = errors.New(errors.ErrCodeNotFound, "object not found")
	ErrUploadFailed   = errors.New(errors.ErrCodeStorageError, "upload failed")
	ErrDownloadFailed = errors.New(errors.ErrCodeStorageError, "download failed")
)

const (
	vocabularyPrefix   = "vocabularies/"
	artifactPrefix     = "runs/"
	metaVocabularySize = "Vocabulary-Size"
)

// VocabularyRepository persists vocabularies as JSON objects under
// "vocabularies/<name>".
type VocabularyRepository interface {
	Put(ctx context.Context, name string, v *vocab.Vocabulary) error
	Get(ctx context.Context, name string) (*vocab.Vocabulary, error)
	Exists(ctx context.Context, name string) (bool, error)
	List(ctx context.Context) ([]string, error)
	Delete(ctx context.Context, name string) error
}

// ArtifactStore uploads scenario run files under "runs/<run>/".
type ArtifactStore interface {
	UploadDir(ctx context.Context, run, dir string) ([]string, error)
}

type repository struct {
	client *MinIOClient
	logger logging.Logger
}

// NewVocabularyRepository returns a VocabularyRepository over client.
func NewVocabularyRepository(client *MinIOClient) VocabularyRepository {
	return &repository{client: client, logger: client.logger}
}

// NewArtifactStore returns an ArtifactStore over client.
func NewArtifactStore(client *MinIOClient) ArtifactStore {
	return &repository{client: client, logger: client.logger}
}

func vocabularyKey(name string) string {
	return vocabularyPrefix + strings.TrimPrefix(name, "/")
}

func isNotFound(err error) bool {
	var resp minio.ErrorResponse
	if stderrors.As(err, &resp) {
		return resp.Code == "NoSuchKey" || resp.Code == "NoSuchBucket"
	}
	return false
}

func (r *repository) Put(ctx context.Context, name string, v *vocab.Vocabulary) error {
	var buf bytes.Buffer
	if _, err := v.WriteTo(&buf); err != nil {
		return err
	}
	key := vocabularyKey(name)
	info, err := r.client.api.PutObject(ctx, r.client.Bucket(), key, &buf, int64(buf.Len()), minio.PutObjectOptions{
		ContentType:  "application/json",
		UserMetadata: map[string]string{metaVocabularySize: strconv.Itoa(v.Size())},
	})
	if err != nil {
		return ErrUploadFailed.WithCause(err).WithDetail("key=" + key)
	}
	r.logger.Info("Vocabulary uploaded",
		logging.String("key", key),
		logging.Int("size", v.Size()),
		logging.String("etag", info.ETag))
	return nil
}

func (r *repository) Get(ctx context.Context, name string) (*vocab.Vocabulary, error) {
	key := vocabularyKey(name)
	obj, err := r.client.api.GetObject(ctx, r.client.Bucket(), key, minio.GetObjectOptions{})
	if err != nil {
		if isNotFound(err) {
			return nil, ErrObjectNotFound.WithDetail("key=" + key)
		}
		return nil, ErrDownloadFailed.WithCause(err).WithDetail("key=" + key)
	}
	defer obj.Close()

	v := vocab.New()
	if _, err := v.ReadFrom(obj); err != nil {
		// The SDK defers request errors to the first Read.
		if isNotFound(err) {
			return nil, ErrObjectNotFound.WithDetail("key=" + key)
		}
		return nil, err
	}
	return v, nil
}

func (r *repository) Exists(ctx context.Context, name string) (bool, error) {
	_, err := r.client.api.StatObject(ctx, r.client.Bucket(), vocabularyKey(name), minio.StatObjectOptions{})
	if err == nil {
		return true, nil
	}
	if isNotFound(err) {
		return false, nil
	}
	return false, errors.Wrap(err, errors.ErrCodeStorageError, "failed to stat vocabulary")
}

func (r *repository) List(ctx context.Context) ([]string, error) {
	var names []string
	for obj := range r.client.api.ListObjects(ctx, r.client.Bucket(), minio.ListObjectsOptions{Prefix: vocabularyPrefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, errors.Wrap(obj.Err, errors.ErrCodeStorageError, "failed to list vocabularies")
		}
		names = append(names, strings.TrimPrefix(obj.Key, vocabularyPrefix))
	}
	return names, nil
}

func (r *repository) Delete(ctx context.Context, name string) error {
	if err := r.client.api.RemoveObject(ctx, r.client.Bucket(), vocabularyKey(name), minio.RemoveObjectOptions{}); err != nil {
		return errors.Wrap(err, errors.ErrCodeStorageError, "failed to delete vocabulary")
	}
	return nil
}

// UploadDir uploads every regular file directly inside dir and returns the
// object keys written.
func (r *repository) UploadDir(ctx context.Context, run, dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStorageError, "failed to read run directory").WithDetail("dir=" + dir)
	}
	var keys []string
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		key := path.Join(artifactPrefix, run, e.Name())
		if err := r.uploadFile(ctx, key, filepath.Join(dir, e.Name())); err != nil {
			return keys, err
		}
		keys = append(keys, key)
	}
	r.logger.Info("Run artefacts uploaded", logging.String("run", run), logging.Int("files", len(keys)))
	return keys, nil
}

func (r *repository) uploadFile(ctx context.Context, key, filePath string) error {
	f, err := os.Open(filePath)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeStorageError, "failed to open artefact").WithDetail("path=" + filePath)
	}
	defer f.Close()
	st, err := f.Stat()
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeStorageError, "failed to stat artefact").WithDetail("path=" + filePath)
	}
	if _, err := r.client.api.PutObject(ctx, r.client.Bucket(), key, f, st.Size(), minio.PutObjectOptions{
		ContentType: contentType(key),
	}); err != nil {
		return ErrUploadFailed.WithCause(err).WithDetail("key=" + key)
	}
	return nil
}

func contentType(key string) string {
	switch path.Ext(key) {
	case ".json":
		return "application/json"
	case ".jsonl":
		return "application/x-ndjson"
	case ".yaml", ".yml":
		return "application/yaml"
	}
	return "application/octet-stream"
}
