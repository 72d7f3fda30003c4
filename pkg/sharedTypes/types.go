package sharedTypes

import "time"

// Recording is one danmaku track stored locally or in the bucket.
type Recording struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"lastModified,omitempty"`
	LocalPath    string    `json:"localPath,omitempty"`
}
