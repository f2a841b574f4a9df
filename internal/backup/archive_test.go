package backup

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

type mockObject struct {
	data     []byte
	modified time.Time
}

// mockS3Client implements s3Client for testing.
type mockS3Client struct {
	mu      sync.Mutex
	objects map[string]mockObject
	now     time.Time
	putErr  error
}

func newMockS3() *mockS3Client {
	return &mockS3Client{objects: make(map[string]mockObject), now: time.Now()}
}

func (m *mockS3Client) PutObject(_ context.Context, input *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if m.putErr != nil {
		return nil, m.putErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	data, _ := io.ReadAll(input.Body)
	m.objects[*input.Key] = mockObject{data: data, modified: m.now}
	return &s3.PutObjectOutput{}, nil
}

func (m *mockS3Client) GetObject(_ context.Context, input *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	obj, ok := m.objects[*input.Key]
	if !ok {
		return nil, &s3NotFound{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(obj.data))}, nil
}

func (m *mockS3Client) DeleteObject(_ context.Context, input *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, *input.Key)
	return &s3.DeleteObjectOutput{}, nil
}

func (m *mockS3Client) ListObjectsV2(_ context.Context, input *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var keys []string
	for k := range m.objects {
		if strings.HasPrefix(k, aws.ToString(input.Prefix)) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	out := &s3.ListObjectsV2Output{IsTruncated: aws.Bool(false)}
	for _, k := range keys {
		obj := m.objects[k]
		out.Contents = append(out.Contents, types.Object{
			Key:          aws.String(k),
			Size:         aws.Int64(int64(len(obj.data))),
			LastModified: aws.Time(obj.modified),
		})
	}
	return out, nil
}

func (m *mockS3Client) setNow(t time.Time) {
	m.mu.Lock()
	m.now = t
	m.mu.Unlock()
}

type s3NotFound struct{}

func (e *s3NotFound) Error() string { return "NoSuchKey" }

type fakeSource struct {
	users []string
	fail  string
}

func (s fakeSource) ListUserIDs(context.Context) ([]string, error) { return s.users, nil }

func (s fakeSource) Export(_ context.Context, userID string) ([]byte, error) {
	if userID == s.fail {
		return nil, errors.New("boom")
	}
	return []byte(`{"inventory":[],"user":{"id":"` + userID + `"}}`), nil
}

func newTestArchiver(cfg Config, src Source, cb StatusCallback) (*Archiver, *mockS3Client) {
	a := NewArchiver(cfg, src, nil, cb)
	mock := newMockS3()
	a.client = mock
	a.status.State = StateIdle
	return a, mock
}

func TestArchiverStateLifecycle(t *testing.T) {
	a := NewArchiver(Config{}, nil, nil, nil)
	if a.Status().State != StateDisabled {
		t.Errorf("state = %q, want %q", a.Status().State, StateDisabled)
	}
	if _, err := a.Archive(context.Background(), "u1", []byte("{}")); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("err = %v, want %v", err, ErrNotConfigured)
	}

	a2 := NewArchiver(Config{S3: S3Config{Bucket: "test", AccessKey: "key", SecretKey: "secret"}}, nil, nil, nil)
	if a2.Status().State != StateIdle {
		t.Errorf("state = %q, want %q", a2.Status().State, StateIdle)
	}
	if !a2.Enabled() {
		t.Error("archiver with S3 config should be enabled")
	}
}

func TestUpdateS3Config(t *testing.T) {
	var received []Status
	var mu sync.Mutex
	cb := func(s Status) {
		mu.Lock()
		received = append(received, s)
		mu.Unlock()
	}

	a := NewArchiver(Config{}, nil, nil, cb)
	a.UpdateS3Config(S3Config{Bucket: "test", AccessKey: "key", SecretKey: "secret", Region: "us-east-1"})
	if a.Status().State != StateIdle {
		t.Errorf("state after set = %q, want %q", a.Status().State, StateIdle)
	}
	a.UpdateS3Config(S3Config{})
	if a.Status().State != StateDisabled {
		t.Errorf("state after clear = %q, want %q", a.Status().State, StateDisabled)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(received) != 2 {
		t.Fatalf("received %d callbacks, want 2", len(received))
	}
}

func TestArchiveEncryptedRoundTrip(t *testing.T) {
	ctx := context.Background()
	a, mock := newTestArchiver(Config{Passphrase: "pw"}, nil, nil)

	export := []byte(`{"inventory":[]}`)
	key, err := a.Archive(ctx, "u1", export)
	if err != nil {
		t.Fatalf("archive: %v", err)
	}
	if !strings.HasPrefix(key, "u1/export-") || !strings.HasSuffix(key, ".json.enc") {
		t.Errorf("key = %q", key)
	}
	if !IsEncrypted(mock.objects[key].data) {
		t.Error("stored object is not encrypted")
	}

	got, err := a.Download(ctx, "u1", key)
	if err != nil {
		t.Fatalf("download: %v", err)
	}
	if !bytes.Equal(got, export) {
		t.Errorf("download = %q, want %q", got, export)
	}

	if _, err := a.Download(ctx, "u2", key); err == nil {
		t.Error("expected error downloading another user's archive")
	}
	if a.Status().LastArchive == nil {
		t.Error("last archive not recorded")
	}
}

func TestArchivePlain(t *testing.T) {
	a, mock := newTestArchiver(Config{}, nil, nil)

	key, err := a.Archive(context.Background(), "u1", []byte(`{}`))
	if err != nil {
		t.Fatalf("archive: %v", err)
	}
	if !strings.HasSuffix(key, ".json") || string(mock.objects[key].data) != `{}` {
		t.Errorf("key %q data %q", key, mock.objects[key].data)
	}
}

func TestArchiveUploadFailure(t *testing.T) {
	a, mock := newTestArchiver(Config{}, nil, nil)
	mock.putErr = errors.New("network down")

	if _, err := a.Archive(context.Background(), "u1", []byte(`{}`)); err == nil {
		t.Fatal("expected upload error")
	}
	if s := a.Status(); s.State != StateError || s.Error == "" {
		t.Errorf("status = %+v, want error state", s)
	}
}

func TestRunAllAndCleanup(t *testing.T) {
	ctx := context.Background()
	a, mock := newTestArchiver(Config{RetentionDays: 7}, fakeSource{users: []string{"u1", "bad", "u2"}, fail: "bad"}, nil)

	now := time.Date(2026, 5, 20, 3, 0, 0, 0, time.UTC)
	a.now = func() time.Time { return now }

	// an old archive past retention
	mock.setNow(now.AddDate(0, 0, -10))
	a.now = func() time.Time { return now.AddDate(0, 0, -10) }
	if _, err := a.Archive(ctx, "u1", []byte(`{}`)); err != nil {
		t.Fatalf("archive: %v", err)
	}
	mock.setNow(now)
	a.now = func() time.Time { return now }

	if err := a.RunAll(ctx); err == nil {
		t.Error("expected the failing user to be reported")
	}

	list, err := a.List(ctx, "u1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("u1 archives = %d, want 1 (old one pruned)", len(list))
	}
	if !list[0].LastModified.Equal(now) {
		t.Errorf("kept archive modified %v, want %v", list[0].LastModified, now)
	}

	list, _ = a.List(ctx, "u2")
	if len(list) != 1 {
		t.Errorf("u2 archives = %d, want 1", len(list))
	}
}

func TestArchiverStopSafety(t *testing.T) {
	a, _ := newTestArchiver(Config{Interval: time.Hour}, fakeSource{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	a.Start(ctx)
	cancel()
	a.Stop()
	a.Stop()

	disabled := NewArchiver(Config{Interval: time.Hour}, fakeSource{}, nil, nil)
	disabled.Start(context.Background())
	disabled.Stop()
}
