package blob

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePutter struct {
	in   *s3.PutObjectInput
	body []byte
	err  error
}

func (f *fakePutter) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.in = in
	f.body, _ = io.ReadAll(in.Body)
	return &s3.PutObjectOutput{}, nil
}

func TestUpload(t *testing.T) {
	fp := &fakePutter{}
	s := newS3Store(fp, "product-images", "https://cdn.example.com/storage/")

	err := s.Upload(context.Background(), "/store-1/widget.png", []byte("png"), "image/png")
	require.NoError(t, err)

	assert.Equal(t, "product-images", aws.ToString(fp.in.Bucket))
	assert.Equal(t, "store-1/widget.png", aws.ToString(fp.in.Key))
	assert.Equal(t, "image/png", aws.ToString(fp.in.ContentType))
	assert.Equal(t, []byte("png"), fp.body)
}

func TestUploadDefaultsContentType(t *testing.T) {
	fp := &fakePutter{}
	s := newS3Store(fp, "b", "https://cdn.example.com")

	require.NoError(t, s.Upload(context.Background(), "a/b", nil, ""))
	assert.Equal(t, "application/octet-stream", aws.ToString(fp.in.ContentType))
}

func TestUploadError(t *testing.T) {
	s := newS3Store(&fakePutter{err: errors.New("denied")}, "b", "https://cdn.example.com")

	err := s.Upload(context.Background(), "a/b", nil, "")
	assert.ErrorContains(t, err, "denied")
}

func TestPublicURL(t *testing.T) {
	s := newS3Store(&fakePutter{}, "b", "https://cdn.example.com/storage/v1/object/public/b/")
	assert.Equal(t, "https://cdn.example.com/storage/v1/object/public/b/store-1/w.png", s.PublicURL("store-1/w.png"))
}
