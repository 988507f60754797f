package voice

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// ErrDayAbsent signals that no log exists for the requested day.
// The reader skips absent days silently.
var ErrDayAbsent = errors.New("telemetry log absent for day")

// logFileName returns the log name for a UTC day key ("YYYY-MM-DD").
func logFileName(date string) string {
	return "voice-" + date + ".jsonl"
}

// LogSource provides the raw bytes of one day's telemetry log.
type LogSource interface {
	// ReadDay returns the full log content for a UTC day key.
	// Returns ErrDayAbsent when no log was written that day.
	ReadDay(ctx context.Context, date string) ([]byte, error)
}

// DirSource reads day logs from a local directory.
type DirSource struct {
	dir string
}

// NewDirSource creates a source reading from dir.
func NewDirSource(dir string) *DirSource {
	return &DirSource{dir: dir}
}

// ReadDay reads one day's log file from the directory.
func (s *DirSource) ReadDay(ctx context.Context, date string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, logFileName(date)))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrDayAbsent
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read telemetry log: %w", err)
	}
	return data, nil
}

// S3SourceConfig holds configuration for an object-storage log source.
type S3SourceConfig struct {
	Bucket          string
	Prefix          string // key prefix, e.g. "telemetry/voice"
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Endpoint        string // optional, for S3-compatible stores
}

// S3Source reads day logs shipped to object storage. Deployments that
// rotate logs off the app host point the reader here instead of at a
// local directory.
type S3Source struct {
	client *s3.Client
	bucket string
	prefix string
}

// NewS3Source creates a source reading from an S3 bucket.
func NewS3Source(cfg S3SourceConfig) (*S3Source, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("bucket is required")
	}
	if cfg.AccessKeyID == "" || cfg.SecretAccessKey == "" {
		return nil, errors.New("credentials are required")
	}
	if cfg.Region == "" {
		cfg.Region = "auto"
	}

	opts := s3.Options{
		Region: cfg.Region,
		Credentials: aws.NewCredentialsCache(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)),
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
		opts.UsePathStyle = true
	}

	return &S3Source{
		client: s3.New(opts),
		bucket: cfg.Bucket,
		prefix: cfg.Prefix,
	}, nil
}

// ReadDay fetches one day's log object.
func (s *S3Source) ReadDay(ctx context.Context, date string) ([]byte, error) {
	key := logFileName(date)
	if s.prefix != "" {
		key = s.prefix + "/" + key
	}

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, ErrDayAbsent
		}
		return nil, fmt.Errorf("failed to fetch telemetry log %s: %w", key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read telemetry log %s: %w", key, err)
	}
	return data, nil
}
