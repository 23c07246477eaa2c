package media

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tubeaccounts/backend/internal/config"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestObjectKey(t *testing.T) {
	key := objectKey("/users/", "/tmp/Avatar.PNG")
	assert.Regexp(t, regexp.MustCompile(`^users/\d{4}/\d{2}/\d{2}/[0-9a-f-]{36}\.png$`), key)

	assert.False(t, strings.HasPrefix(objectKey("", "a.jpg"), "/"))
}

func TestLocalUploader_Upload(t *testing.T) {
	dir := t.TempDir()
	u, err := NewLocalUploader(dir, "http://localhost:8000/media/")
	require.NoError(t, err)

	src := writeTemp(t, "avatar.png", "pixels")

	res, err := u.Upload(context.Background(), src)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(res.URL, "http://localhost:8000/media/"))
	assert.True(t, strings.HasSuffix(res.URL, res.Key))
	assert.NotContains(t, res.URL, "media//")

	data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(res.Key)))
	require.NoError(t, err)
	assert.Equal(t, "pixels", string(data))

	_, err = os.Stat(src)
	assert.True(t, os.IsNotExist(err), "temp file should be removed after upload")
}

func TestLocalUploader_Errors(t *testing.T) {
	u, err := NewLocalUploader(t.TempDir(), "http://x")
	require.NoError(t, err)

	_, err = u.Upload(context.Background(), "")
	assert.ErrorIs(t, err, ErrNoFile)

	_, err = u.Upload(context.Background(), filepath.Join(t.TempDir(), "missing.png"))
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	src := writeTemp(t, "a.png", "x")
	_, err = u.Upload(ctx, src)
	assert.ErrorIs(t, err, context.Canceled)
	_, statErr := os.Stat(src)
	assert.True(t, os.IsNotExist(statErr), "temp file is removed on failure too")
}

type fakeS3 struct {
	in   *s3.PutObjectInput
	body string
	err  error
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.in = in
	if in.Body != nil {
		b, _ := io.ReadAll(in.Body)
		f.body = string(b)
	}
	if f.err != nil {
		return nil, f.err
	}
	return &s3.PutObjectOutput{}, nil
}

func TestS3Uploader_Upload(t *testing.T) {
	fake := &fakeS3{}
	u := newS3Uploader(fake, config.S3Config{
		Bucket: "avatars",
		Region: "eu-west-1",
		Prefix: "users",
	})

	src := writeTemp(t, "cover.jpg", "jpeg-bytes")
	res, err := u.Upload(context.Background(), src)
	require.NoError(t, err)

	require.NotNil(t, fake.in)
	assert.Equal(t, "avatars", aws.ToString(fake.in.Bucket))
	assert.Equal(t, res.Key, aws.ToString(fake.in.Key))
	assert.Equal(t, "image/jpeg", aws.ToString(fake.in.ContentType))
	assert.Equal(t, int64(len("jpeg-bytes")), aws.ToInt64(fake.in.ContentLength))
	assert.Equal(t, "jpeg-bytes", fake.body)
	assert.True(t, strings.HasPrefix(res.Key, "users/"))
	assert.Equal(t, "https://avatars.s3.eu-west-1.amazonaws.com/"+res.Key, res.URL)

	_, err = os.Stat(src)
	assert.True(t, os.IsNotExist(err))
}

func TestS3Uploader_PublicURL(t *testing.T) {
	withEndpoint := newS3Uploader(&fakeS3{}, config.S3Config{Bucket: "b", Endpoint: "http://minio:9000/"})
	assert.Equal(t, "http://minio:9000/b", withEndpoint.publicURL)

	explicit := newS3Uploader(&fakeS3{}, config.S3Config{Bucket: "b", PublicURL: "https://cdn.test"})
	assert.Equal(t, "https://cdn.test", explicit.publicURL)
}

func TestS3Uploader_PutFails(t *testing.T) {
	fake := &fakeS3{err: errors.New("access denied")}
	u := newS3Uploader(fake, config.S3Config{Bucket: "b", Region: "us-east-1"})

	src := writeTemp(t, "a.png", "x")
	_, err := u.Upload(context.Background(), src)
	assert.ErrorContains(t, err, "access denied")

	_, statErr := os.Stat(src)
	assert.True(t, os.IsNotExist(statErr), "temp file is removed on failure too")
}

func TestNewS3Uploader_ConfigError(t *testing.T) {
	orig := loadDefaultAWSConfig
	t.Cleanup(func() { loadDefaultAWSConfig = orig })
	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("no credentials")
	}

	_, err := NewS3Uploader(context.Background(), config.S3Config{Bucket: "b"})
	assert.ErrorContains(t, err, "no credentials")
}

func TestNew(t *testing.T) {
	cfg := config.DefaultConfig().Upload
	cfg.Local.Dir = t.TempDir()

	u, err := New(context.Background(), cfg)
	require.NoError(t, err)
	assert.IsType(t, &LocalUploader{}, u)

	cfg.Driver = "ftp"
	_, err = New(context.Background(), cfg)
	assert.Error(t, err)
}
