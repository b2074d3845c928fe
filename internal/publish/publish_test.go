package publish

import (
	"context"
	stderrors "errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kata-shadcn/kata-registry/internal/config"
	"github.com/kata-shadcn/kata-registry/internal/contenthash"
	"github.com/kata-shadcn/kata-registry/internal/errors"
)

type fakeS3 struct {
	mu      sync.Mutex
	objects map[string]*s3.PutObjectInput
	bodies  map[string][]byte
	fail    string
}

func newFakeS3() *fakeS3 {
	return &fakeS3{
		objects: make(map[string]*s3.PutObjectInput),
		bodies:  make(map[string][]byte),
	}
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	key := aws.ToString(in.Key)
	if key == f.fail {
		return nil, stderrors.New("access denied")
	}
	f.objects[key] = in
	f.bodies[key] = body
	return &s3.PutObjectOutput{}, nil
}

func writeOutput(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"hero1.json":         `{"name":"hero1"}`,
		"about.json":         `{"name":"about"}`,
		"index.json":         `{"total":2}`,
		"index-compact.json": `{"total":2,"items":[]}`,
		".DS_Store":          "junk",
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	}
	return dir
}

func TestKey(t *testing.T) {
	assert.Equal(t, "r/hero1.json", Key("r/", "hero1.json"))
	assert.Equal(t, "r/hero1.json", Key("r", "hero1.json"))
	assert.Equal(t, "hero1.json", Key("", "hero1.json"))
	assert.Equal(t, "cdn/r/blocks/a.json", Key("cdn/r/", filepath.Join("blocks", "a.json")))
}

func TestPlan(t *testing.T) {
	dir := writeOutput(t)

	objects, err := New(nil, Options{Prefix: "r/"}).Plan(dir)
	require.NoError(t, err)

	keys := make([]string, len(objects))
	for i, o := range objects {
		keys[i] = o.Key
	}
	assert.Equal(t, []string{"r/about.json", "r/hero1.json", "r/index-compact.json", "r/index.json"}, keys)
	assert.Equal(t, contenthash.Bytes([]byte(`{"name":"about"}`)), objects[0].SHA256)
	assert.Equal(t, int64(len(`{"name":"about"}`)), objects[0].Size)
}

func TestPublish_UploadsEveryFile(t *testing.T) {
	dir := writeOutput(t)
	client := newFakeS3()

	var mu sync.Mutex
	var seen []string
	p := New(client, Options{
		Bucket:       "registry",
		Prefix:       "r/",
		CacheControl: "public, max-age=300",
		Concurrency:  2,
		OnObject: func(o Object) {
			mu.Lock()
			seen = append(seen, o.Key)
			mu.Unlock()
		},
	})

	result, err := p.Publish(context.Background(), dir)
	require.NoError(t, err)

	assert.Len(t, result.Objects, 4)
	assert.Len(t, client.objects, 4)
	assert.Len(t, seen, 4)
	assert.False(t, result.DryRun)

	in := client.objects["r/hero1.json"]
	require.NotNil(t, in)
	assert.Equal(t, "registry", aws.ToString(in.Bucket))
	assert.Equal(t, "application/json", aws.ToString(in.ContentType))
	assert.Equal(t, "public, max-age=300", aws.ToString(in.CacheControl))
	assert.Equal(t, contenthash.Bytes([]byte(`{"name":"hero1"}`)), in.Metadata[MetadataSHA256])
	assert.Equal(t, `{"name":"hero1"}`, string(client.bodies["r/hero1.json"]))
}

func TestPublish_DryRun(t *testing.T) {
	dir := writeOutput(t)

	var planned []string
	result, err := New(nil, Options{
		Prefix:   "r/",
		DryRun:   true,
		OnObject: func(o Object) { planned = append(planned, o.Key) },
	}).Publish(context.Background(), dir)
	require.NoError(t, err)

	assert.True(t, result.DryRun)
	assert.Len(t, planned, 4)
	assert.Positive(t, result.Bytes)
}

func TestPublish_RequiresBucket(t *testing.T) {
	_, err := New(newFakeS3(), Options{}).Publish(context.Background(), writeOutput(t))
	assert.True(t, errors.HasCode(err, "KR161"), "got %v", err)
}

func TestPublish_UploadFailure(t *testing.T) {
	client := newFakeS3()
	client.fail = "r/index.json"

	_, err := New(client, Options{Bucket: "registry", Prefix: "r/"}).Publish(context.Background(), writeOutput(t))
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, "KR152"), "got %v", err)
	assert.Contains(t, err.Error(), "access denied")
}

func TestPublish_MissingDir(t *testing.T) {
	_, err := New(nil, Options{DryRun: true}).Publish(context.Background(), filepath.Join(t.TempDir(), "nope"))
	assert.True(t, errors.HasCode(err, "KR152"), "got %v", err)
}

func TestNewClient(t *testing.T) {
	client := NewClient(config.PublishConfig{
		Region:    "eu-west-1",
		Endpoint:  "http://localhost:9000",
		PathStyle: true,
	})

	opts := client.Options()
	assert.Equal(t, "eu-west-1", opts.Region)
	assert.True(t, opts.UsePathStyle)
	assert.Equal(t, "http://localhost:9000", aws.ToString(opts.BaseEndpoint))
}

func TestEnvCredentials(t *testing.T) {
	t.Setenv("AWS_ACCESS_KEY_ID", "")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "")
	_, err := envCredentials(context.Background())
	assert.True(t, errors.HasCode(err, "KR152"))

	t.Setenv("AWS_ACCESS_KEY_ID", "AKID")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "secret")
	creds, err := envCredentials(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "AKID", creds.AccessKeyID)
}
