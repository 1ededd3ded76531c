package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/minio/minio-go/v7"
)

// fakeObjects is an in-memory bucket that answers like S3: a missing key
// fails StatObject with NoSuchKey and RemoveObject always succeeds.
type fakeObjects struct {
	mu       sync.Mutex
	buckets  map[string]bool
	objects  map[string][]byte
	types    map[string]string
	removes  []string
	statErr  error
	existErr error
}

func newFakeObjects(buckets ...string) *fakeObjects {
	f := &fakeObjects{
		buckets: map[string]bool{},
		objects: map[string][]byte{},
		types:   map[string]string{},
	}
	for _, b := range buckets {
		f.buckets[b] = true
	}
	return f
}

func (f *fakeObjects) BucketExists(_ context.Context, bucket string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.buckets[bucket], f.existErr
}

func (f *fakeObjects) MakeBucket(_ context.Context, bucket string, _ minio.MakeBucketOptions) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.buckets[bucket] = true
	return nil
}

func (f *fakeObjects) PutObject(_ context.Context, bucket, key string, r io.Reader, _ int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return minio.UploadInfo{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[bucket+"/"+key] = data
	f.types[bucket+"/"+key] = opts.ContentType
	return minio.UploadInfo{Bucket: bucket, Key: key, Size: int64(len(data))}, nil
}

func (f *fakeObjects) StatObject(_ context.Context, bucket, key string, _ minio.StatObjectOptions) (minio.ObjectInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.statErr != nil {
		return minio.ObjectInfo{}, f.statErr
	}
	data, ok := f.objects[bucket+"/"+key]
	if !ok {
		return minio.ObjectInfo{}, minio.ErrorResponse{Code: "NoSuchKey", StatusCode: 404, Key: key}
	}
	return minio.ObjectInfo{Key: key, Size: int64(len(data))}, nil
}

func (f *fakeObjects) RemoveObject(_ context.Context, bucket, key string, _ minio.RemoveObjectOptions) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removes = append(f.removes, key)
	delete(f.objects, bucket+"/"+key)
	return nil
}

func TestIsNoSuchKey(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"no such key", minio.ErrorResponse{Code: "NoSuchKey", StatusCode: 404}, true},
		{"head not found", minio.ErrorResponse{Code: "NotFound", StatusCode: 404}, true},
		{"wrapped", fmt.Errorf("stat: %w", minio.ErrorResponse{Code: "NoSuchKey"}), true},
		{"access denied", minio.ErrorResponse{Code: "AccessDenied", StatusCode: 403}, false},
		{"plain error", errors.New("connection reset"), false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := isNoSuchKey(c.err); got != c.want {
				t.Fatalf("isNoSuchKey(%v) = %v; want %v", c.err, got, c.want)
			}
		})
	}
}

func TestNewMinioStore_CreatesMissingBucket(t *testing.T) {
	ctx := context.Background()
	api := newFakeObjects()
	if _, err := newMinioStore(ctx, api, "images"); err != nil {
		t.Fatalf("newMinioStore: %v", err)
	}
	if !api.buckets["images"] {
		t.Fatal("bucket not created")
	}

	api.existErr = errors.New("dial tcp: refused")
	if _, err := newMinioStore(ctx, api, "images"); err == nil || !strings.Contains(err.Error(), "check bucket images") {
		t.Fatalf("want bucket check error, got %v", err)
	}
}

func TestMinioStore_SaveExistsDelete(t *testing.T) {
	ctx := context.Background()
	api := newFakeObjects("images")
	s, err := newMinioStore(ctx, api, "images")
	if err != nil {
		t.Fatalf("newMinioStore: %v", err)
	}

	ref, err := s.Save(ctx, []byte("hello"), "Photo.PNG", "queue-1")
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !strings.HasPrefix(ref, "queue-1/") || !strings.HasSuffix(ref, ".png") {
		t.Fatalf("unexpected key: %q", ref)
	}
	if ct := api.types["images/"+ref]; ct != "image/png" {
		t.Fatalf("content type = %q", ct)
	}

	if ok, err := s.Exists(ctx, ref); err != nil || !ok {
		t.Fatalf("Exists = %v, %v", ok, err)
	}
	deleted, err := s.Delete(ctx, "/"+ref)
	if err != nil || !deleted {
		t.Fatalf("Delete = %v, %v", deleted, err)
	}
	if ok, err := s.Exists(ctx, ref); err != nil || ok {
		t.Fatalf("after delete Exists = %v, %v", ok, err)
	}

	// S3 removes succeed for missing keys; only the stat says nothing was there.
	deleted, err = s.Delete(ctx, ref)
	if err != nil || deleted {
		t.Fatalf("second Delete must report false without error, got %v, %v", deleted, err)
	}
	if len(api.removes) != 1 || api.removes[0] != ref {
		t.Fatalf("RemoveObject calls = %v; want exactly one for %q", api.removes, ref)
	}
}

func TestMinioStore_ErrorPaths(t *testing.T) {
	ctx := context.Background()
	api := newFakeObjects("images")
	s, _ := newMinioStore(ctx, api, "images")

	if _, err := s.Exists(ctx, "../etc/passwd"); !errors.Is(err, ErrInvalidRef) {
		t.Fatalf("want ErrInvalidRef, got %v", err)
	}
	if _, err := s.Delete(ctx, " "); !errors.Is(err, ErrInvalidRef) {
		t.Fatalf("want ErrInvalidRef, got %v", err)
	}

	denied := minio.ErrorResponse{Code: "AccessDenied", StatusCode: 403}
	api.statErr = denied
	if ok, err := s.Exists(ctx, "queue-1/a.png"); ok || !errors.Is(err, denied) {
		t.Fatalf("stat failure must surface: %v, %v", ok, err)
	}
	if deleted, err := s.Delete(ctx, "queue-1/a.png"); deleted || err == nil {
		t.Fatalf("Delete must not remove when the stat fails: %v, %v", deleted, err)
	}
	if len(api.removes) != 0 {
		t.Fatalf("RemoveObject called despite stat failure: %v", api.removes)
	}
}
