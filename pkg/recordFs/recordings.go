// Package recordFs stores danmaku recordings on disk and in S3.
package recordFs

import (
	"fmt"
	"io"
	"log"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/google/uuid"

	"danmaku-player/pkg/sharedTypes"
)

// Ext is the file extension of recordings.
const Ext = ".ass"

// AvailableRecordings lists the recordings in dir, newest name last.
func AvailableRecordings(dir string) ([]sharedTypes.Recording, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var recs []sharedTypes.Recording
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), Ext) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		recs = append(recs, sharedTypes.Recording{
			Key:          entry.Name(),
			Size:         info.Size(),
			LastModified: info.ModTime(),
			LocalPath:    filepath.Join(dir, entry.Name()),
		})
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].Key < recs[j].Key })

	log.Printf("AvailableRecordings completed | dir=%s | found=%d recording(s)", dir, len(recs))
	return recs, nil
}

// Upload stores the file at localPath under a unique key and returns it.
func (b *Bucket) Upload(localPath string) (string, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	key := path.Join(b.Prefix, uuid.NewString()+"-"+filepath.Base(localPath))
	_, err = b.Client.PutObject(&s3.PutObjectInput{
		Bucket:      aws.String(b.Name),
		Key:         aws.String(key),
		Body:        f,
		ContentType: aws.String("text/x-ssa"),
	})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", localPath, err)
	}

	log.Printf("Upload completed | bucket=%s | key=%s", b.Name, key)
	return key, nil
}

// List returns every recording under the bucket prefix.
func (b *Bucket) List() ([]sharedTypes.Recording, error) {
	input := &s3.ListObjectsV2Input{
		Bucket: aws.String(b.Name),
		Prefix: aws.String(b.Prefix),
	}

	var recs []sharedTypes.Recording
	err := b.Client.ListObjectsV2Pages(input, func(page *s3.ListObjectsV2Output, lastPage bool) bool {
		for _, obj := range page.Contents {
			if obj.Key == nil || strings.HasSuffix(*obj.Key, "/") {
				continue
			}
			if !strings.HasSuffix(*obj.Key, Ext) {
				continue
			}
			recs = append(recs, sharedTypes.Recording{
				Key:          *obj.Key,
				Size:         aws.Int64Value(obj.Size),
				LastModified: aws.TimeValue(obj.LastModified),
			})
		}
		return !lastPage
	})
	if err != nil {
		return nil, err
	}
	return recs, nil
}

// Download fetches key into dir and returns the local path.
func (b *Bucket) Download(key, dir string) (string, error) {
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return "", err
	}

	result, err := b.Client.GetObject(&s3.GetObjectInput{
		Bucket: aws.String(b.Name),
		Key:    aws.String(key),
	})
	if err != nil {
		return "", fmt.Errorf("download %s: %w", key, err)
	}
	defer result.Body.Close()

	localPath := filepath.Join(dir, filepath.Base(key))
	out, err := os.Create(localPath)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(out, result.Body); err != nil {
		out.Close()
		return "", fmt.Errorf("write %s: %w", localPath, err)
	}
	return localPath, out.Close()
}
