package backup

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ErrNotConfigured is returned by archive operations without S3 settings.
var ErrNotConfigured = errors.New("archive not configured: S3 credentials missing")

// s3Client is an interface for testability.
type s3Client interface {
	PutObject(ctx context.Context, input *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, input *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, input *s3.DeleteObjectInput, opts ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	ListObjectsV2(ctx context.Context, input *s3.ListObjectsV2Input, opts ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// S3Config holds S3-compatible storage configuration.
type S3Config struct {
	Endpoint  string `mapstructure:"endpoint"`
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
}

func (c S3Config) complete() bool {
	return c.Bucket != "" && c.AccessKey != "" && c.SecretKey != ""
}

// Config holds archiver configuration. Without a passphrase exports are
// stored as plain JSON. A zero Interval disables scheduled archives.
type Config struct {
	S3            S3Config      `mapstructure:"s3"`
	Passphrase    string        `mapstructure:"passphrase"`
	Interval      time.Duration `mapstructure:"interval"`
	RetentionDays int           `mapstructure:"retention_days"`
}

// Source produces the exports to archive.
type Source interface {
	ListUserIDs(ctx context.Context) ([]string, error)
	Export(ctx context.Context, userID string) ([]byte, error)
}

// State represents the archiver state.
type State string

const (
	StateIdle     State = "idle"
	StateRunning  State = "running"
	StateDisabled State = "disabled"
	StateError    State = "error"
)

// Status holds the current archiver status.
type Status struct {
	State       State      `json:"state"`
	LastArchive *time.Time `json:"last_archive,omitempty"`
	Error       string     `json:"error,omitempty"`
	InProgress  bool       `json:"in_progress"`
}

// StatusCallback is called whenever the archiver state changes.
type StatusCallback func(Status)

// Object is one archived export.
type Object struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"lastModified"`
}

// Archiver uploads exports to S3-compatible storage.
type Archiver struct {
	mu       sync.RWMutex
	cfg      Config
	status   Status
	callback StatusCallback
	client   s3Client
	source   Source
	logger   *slog.Logger
	now      func() time.Time

	cancel context.CancelFunc
	done   chan struct{}
}

// NewArchiver creates an archiver. It is disabled until S3 is configured.
func NewArchiver(cfg Config, source Source, logger *slog.Logger, callback StatusCallback) *Archiver {
	if logger == nil {
		logger = slog.Default()
	}
	a := &Archiver{
		cfg:      cfg,
		source:   source,
		callback: callback,
		logger:   logger.With("component", "archive"),
		now:      time.Now,
		status:   Status{State: StateDisabled},
	}
	if cfg.S3.complete() {
		a.client = newS3Client(cfg.S3)
		a.status.State = StateIdle
	}
	return a
}

func newS3Client(cfg S3Config) *s3.Client {
	opts := s3.Options{
		Region:       cfg.Region,
		Credentials:  credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		UsePathStyle: true,
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
	}
	return s3.New(opts)
}

// UpdateS3Config hot-reloads the S3 configuration.
func (a *Archiver) UpdateS3Config(s3cfg S3Config) {
	a.mu.Lock()
	a.cfg.S3 = s3cfg
	if s3cfg.complete() {
		a.client = newS3Client(s3cfg)
		a.status.State = StateIdle
	} else {
		a.client = nil
		a.status.State = StateDisabled
	}
	status := a.status
	a.mu.Unlock()
	if a.callback != nil {
		a.callback(status)
	}
}

// Enabled reports whether S3 is configured.
func (a *Archiver) Enabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.client != nil
}

// Start begins the scheduled archive loop.
func (a *Archiver) Start(ctx context.Context) {
	a.mu.Lock()
	if a.status.State == StateDisabled || a.cfg.Interval <= 0 || a.source == nil {
		a.mu.Unlock()
		return
	}
	interval := a.cfg.Interval
	ctx, a.cancel = context.WithCancel(ctx)
	a.done = make(chan struct{})
	a.mu.Unlock()

	go func() {
		defer close(a.done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := a.RunAll(ctx); err != nil {
					a.logger.Error("scheduled archive failed", "error", err)
				}
			}
		}
	}()
}

// Stop gracefully stops the archive loop.
func (a *Archiver) Stop() {
	a.mu.RLock()
	cancel := a.cancel
	done := a.done
	a.mu.RUnlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

// Status returns the current archiver status.
func (a *Archiver) Status() Status {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.status
}

func (a *Archiver) setStatus(s Status) {
	a.mu.Lock()
	a.status = s
	a.mu.Unlock()
	if a.callback != nil {
		a.callback(s)
	}
}

func (a *Archiver) snapshot() (s3Client, Config) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.client, a.cfg
}

func prefix(userID string) string {
	return userID + "/"
}

// Archive uploads one export for the user, encrypted when a passphrase is
// configured, and returns its key.
func (a *Archiver) Archive(ctx context.Context, userID string, export []byte) (string, error) {
	client, cfg := a.snapshot()
	if client == nil {
		return "", ErrNotConfigured
	}

	a.setStatus(Status{State: StateRunning, InProgress: true})

	body, ext := export, ".json"
	if cfg.Passphrase != "" {
		enc, err := Encrypt(export, cfg.Passphrase)
		if err != nil {
			a.setStatus(Status{State: StateError, Error: err.Error()})
			return "", fmt.Errorf("encrypt export: %w", err)
		}
		body, ext = enc, ".json.enc"
	}

	now := a.now().UTC()
	key := prefix(userID) + "export-" + now.Format("2006-01-02T150405.000Z") + ext
	_, err := client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(cfg.S3.Bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentLength: aws.Int64(int64(len(body))),
	})
	if err != nil {
		a.setStatus(Status{State: StateError, Error: err.Error()})
		return "", fmt.Errorf("upload to s3: %w", err)
	}

	a.setStatus(Status{State: StateIdle, LastArchive: &now})
	a.logger.Info("export archived", "user_id", userID, "key", key, "bytes", len(body))
	return key, nil
}

// ArchiveUser exports and archives one user's document.
func (a *Archiver) ArchiveUser(ctx context.Context, userID string) (string, error) {
	if a.source == nil {
		return "", errors.New("archive: no export source")
	}
	data, err := a.source.Export(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("export %s: %w", userID, err)
	}
	return a.Archive(ctx, userID, data)
}

// RunAll archives every user and prunes archives past the retention
// period. It keeps going after a per-user failure and returns the first.
func (a *Archiver) RunAll(ctx context.Context) error {
	if a.source == nil {
		return errors.New("archive: no export source")
	}
	ids, err := a.source.ListUserIDs(ctx)
	if err != nil {
		return fmt.Errorf("list users: %w", err)
	}
	_, cfg := a.snapshot()
	retention := cfg.RetentionDays
	if retention <= 0 {
		retention = 30
	}
	before := a.now().UTC().AddDate(0, 0, -retention)

	var first error
	for _, id := range ids {
		if _, err := a.ArchiveUser(ctx, id); err != nil {
			a.logger.Error("archive user", "user_id", id, "error", err)
			if first == nil {
				first = err
			}
			continue
		}
		if _, err := a.Cleanup(ctx, id, before); err != nil {
			a.logger.Warn("cleanup archives", "user_id", id, "error", err)
		}
	}
	return first
}

// List returns the user's archives, newest first.
func (a *Archiver) List(ctx context.Context, userID string) ([]Object, error) {
	client, cfg := a.snapshot()
	if client == nil {
		return nil, ErrNotConfigured
	}
	var out []Object
	input := &s3.ListObjectsV2Input{
		Bucket: aws.String(cfg.S3.Bucket),
		Prefix: aws.String(prefix(userID)),
	}
	for {
		page, err := client.ListObjectsV2(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("list archives: %w", err)
		}
		for _, obj := range page.Contents {
			o := Object{Key: aws.ToString(obj.Key), Size: aws.ToInt64(obj.Size)}
			if obj.LastModified != nil {
				o.LastModified = *obj.LastModified
			}
			out = append(out, o)
		}
		if !aws.ToBool(page.IsTruncated) || page.NextContinuationToken == nil {
			break
		}
		input.ContinuationToken = page.NextContinuationToken
	}
	slices.SortFunc(out, func(x, y Object) int { return strings.Compare(y.Key, x.Key) })
	return out, nil
}

// Download fetches an archive of the user and returns the plain export.
func (a *Archiver) Download(ctx context.Context, userID, key string) ([]byte, error) {
	client, cfg := a.snapshot()
	if client == nil {
		return nil, ErrNotConfigured
	}
	if !strings.HasPrefix(key, prefix(userID)) {
		return nil, fmt.Errorf("archive %q does not belong to user", key)
	}
	result, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(cfg.S3.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("download from s3: %w", err)
	}
	defer result.Body.Close()

	data, err := io.ReadAll(result.Body)
	if err != nil {
		return nil, fmt.Errorf("read archive: %w", err)
	}
	return Open(data, cfg.Passphrase)
}

// Cleanup deletes the user's archives modified before the cutoff and
// returns how many were removed.
func (a *Archiver) Cleanup(ctx context.Context, userID string, before time.Time) (int, error) {
	client, cfg := a.snapshot()
	if client == nil {
		return 0, nil
	}
	objs, err := a.List(ctx, userID)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, o := range objs {
		if !o.LastModified.Before(before) {
			continue
		}
		if _, err := client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(cfg.S3.Bucket),
			Key:    aws.String(o.Key),
		}); err != nil {
			a.logger.Warn("delete archive", "key", o.Key, "error", err)
			continue
		}
		n++
	}
	return n, nil
}
