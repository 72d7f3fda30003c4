package recordFs

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	s3iface.S3API
	objects map[string]string
	pages   [][]string
}

func (f *fakeS3) PutObject(in *s3.PutObjectInput) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[aws.StringValue(in.Key)] = string(data)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(in *s3.GetObjectInput) (*s3.GetObjectOutput, error) {
	body := f.objects[aws.StringValue(in.Key)]
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(body))}, nil
}

func (f *fakeS3) ListObjectsV2Pages(in *s3.ListObjectsV2Input, fn func(*s3.ListObjectsV2Output, bool) bool) error {
	for i, keys := range f.pages {
		page := &s3.ListObjectsV2Output{}
		for _, k := range keys {
			page.Contents = append(page.Contents, &s3.Object{Key: aws.String(k), Size: aws.Int64(int64(len(k)))})
		}
		if !fn(page, i == len(f.pages)-1) {
			break
		}
	}
	return nil
}

func TestBucket_UploadAndDownload(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "live.ass")
	require.NoError(t, os.WriteFile(src, []byte("[Script Info]\n"), 0o644))

	fake := &fakeS3{objects: map[string]string{}}
	b := &Bucket{Client: fake, Name: "bucket", Prefix: "danmaku"}

	key, err := b.Upload(src)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, "danmaku/"))
	assert.True(t, strings.HasSuffix(key, "-live.ass"))
	assert.Equal(t, "[Script Info]\n", fake.objects[key])

	got, err := b.Download(key, filepath.Join(dir, "fetched"))
	require.NoError(t, err)
	data, err := os.ReadFile(got)
	require.NoError(t, err)
	assert.Equal(t, "[Script Info]\n", string(data))
}

func TestBucket_ListSkipsDirectoriesAndOtherFiles(t *testing.T) {
	fake := &fakeS3{pages: [][]string{
		{"danmaku/", "danmaku/a.ass", "danmaku/cover.png"},
		{"danmaku/b.ass"},
	}}
	b := &Bucket{Client: fake, Name: "bucket", Prefix: "danmaku"}

	recs, err := b.List()
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "danmaku/a.ass", recs[0].Key)
	assert.Equal(t, "danmaku/b.ass", recs[1].Key)
}

func TestAvailableRecordings(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.ass", "a.ass", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.ass"), 0o755))

	recs, err := AvailableRecordings(dir)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "a.ass", recs[0].Key)
	assert.Equal(t, filepath.Join(dir, "b.ass"), recs[1].LocalPath)

	recs, err = AvailableRecordings(filepath.Join(dir, "missing"))
	require.NoError(t, err)
	assert.Empty(t, recs)
}
