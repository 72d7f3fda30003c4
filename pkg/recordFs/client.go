package recordFs

import (
	"errors"
	"os"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
)

// ErrMissingCredentials is returned when the AWS environment is incomplete.
var ErrMissingCredentials = errors.New("missing one or more required environment variables: AWS_DEFAULT_REGION, AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY")

// Bucket locates recordings in S3.
type Bucket struct {
	Client s3iface.S3API
	Name   string
	Prefix string
}

// BucketFromEnv builds a client from AWS_* variables and the bucket from
// RECORD_BUCKET / RECORD_PREFIX.
func BucketFromEnv() (*Bucket, error) {
	name := os.Getenv("RECORD_BUCKET")
	if name == "" {
		return nil, errors.New("RECORD_BUCKET is not set")
	}

	region := os.Getenv("AWS_DEFAULT_REGION")
	accessKey := os.Getenv("AWS_ACCESS_KEY_ID")
	secretKey := os.Getenv("AWS_SECRET_ACCESS_KEY")
	if region == "" || accessKey == "" || secretKey == "" {
		return nil, ErrMissingCredentials
	}

	sess, err := session.NewSession(&aws.Config{
		Region:      aws.String(region),
		Credentials: credentials.NewStaticCredentials(accessKey, secretKey, ""),
	})
	if err != nil {
		return nil, err
	}

	return &Bucket{
		Client: s3.New(sess),
		Name:   name,
		Prefix: os.Getenv("RECORD_PREFIX"),
	}, nil
}
