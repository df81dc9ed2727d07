package filestorage

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockS3 struct {
	mock.Mock
}

func (m *mockS3) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*s3.PutObjectOutput)
	return out, args.Error(1)
}

func (m *mockS3) DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*s3.DeleteObjectOutput)
	return out, args.Error(1)
}

func (m *mockS3) HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*s3.HeadObjectOutput)
	return out, args.Error(1)
}

func TestS3Storage_Put(t *testing.T) {
	api := new(mockS3)
	st := newS3Storage(api, "offer-letters", "http://minio:9000/offer-letters")

	api.On("PutObject", mock.Anything, mock.MatchedBy(func(in *s3.PutObjectInput) bool {
		body, _ := io.ReadAll(in.Body)
		return *in.Bucket == "offer-letters" && *in.Key == "OL482913.pdf" &&
			*in.ContentType == ContentTypePDF && string(body) == "%PDF-1.3" && *in.ContentLength == 8
	})).Return(&s3.PutObjectOutput{}, nil)

	url, err := st.Put(context.Background(), "OL482913.pdf", []byte("%PDF-1.3"), ContentTypePDF)
	require.NoError(t, err)
	assert.Equal(t, "http://minio:9000/offer-letters/OL482913.pdf", url)
	api.AssertExpectations(t)
}

func TestS3Storage_PutError(t *testing.T) {
	api := new(mockS3)
	st := newS3Storage(api, "b", "http://x/b")
	api.On("PutObject", mock.Anything, mock.Anything).Return(nil, errors.New("access denied"))

	_, err := st.Put(context.Background(), "OL1.pdf", []byte("x"), ContentTypePDF)
	assert.ErrorContains(t, err, "access denied")
}

func TestS3Storage_Exists(t *testing.T) {
	api := new(mockS3)
	st := newS3Storage(api, "b", "http://x/b")

	api.On("HeadObject", mock.Anything, mock.MatchedBy(func(in *s3.HeadObjectInput) bool {
		return *in.Key == "present.pdf"
	})).Return(&s3.HeadObjectOutput{}, nil)
	api.On("HeadObject", mock.Anything, mock.MatchedBy(func(in *s3.HeadObjectInput) bool {
		return *in.Key == "missing.pdf"
	})).Return(nil, &s3types.NotFound{})
	api.On("HeadObject", mock.Anything, mock.MatchedBy(func(in *s3.HeadObjectInput) bool {
		return *in.Key == "generic.pdf"
	})).Return(nil, &smithy.GenericAPIError{Code: "NotFound"})
	api.On("HeadObject", mock.Anything, mock.MatchedBy(func(in *s3.HeadObjectInput) bool {
		return *in.Key == "broken.pdf"
	})).Return(nil, errors.New("connection reset"))

	ctx := context.Background()

	ok, err := st.Exists(ctx, "present.pdf")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = st.Exists(ctx, "missing.pdf")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = st.Exists(ctx, "generic.pdf")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = st.Exists(ctx, "broken.pdf")
	assert.Error(t, err)
}

func TestS3Storage_DeleteIgnoresMissing(t *testing.T) {
	api := new(mockS3)
	st := newS3Storage(api, "b", "http://x/b")
	api.On("DeleteObject", mock.Anything, mock.Anything).Return(nil, &s3types.NoSuchKey{}).Once()
	api.On("DeleteObject", mock.Anything, mock.Anything).Return(nil, errors.New("throttled")).Once()

	assert.NoError(t, st.Delete(context.Background(), "OL1.pdf"))
	assert.Error(t, st.Delete(context.Background(), "OL1.pdf"))
}

func TestObjectBaseURL(t *testing.T) {
	tests := []struct {
		name string
		cfg  S3Config
		want string
	}{
		{"public override", S3Config{PublicBaseURL: "https://cdn.example.org/letters", Bucket: "b"}, "https://cdn.example.org/letters"},
		{"path style endpoint", S3Config{Endpoint: "http://minio:9000/", Bucket: "b", PathStyle: true}, "http://minio:9000/b"},
		{"virtual host endpoint", S3Config{Endpoint: "https://r2.example.com", Bucket: "b"}, "https://b.r2.example.com"},
		{"aws", S3Config{Bucket: "b", Region: "ap-south-1"}, "https://b.s3.ap-south-1.amazonaws.com"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, objectBaseURL(tt.cfg))
		})
	}
}
