package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	sc "github.com/dmitrijs2005/gophnotes/internal/server/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *sc.Config {
	return &sc.Config{
		S3Region:       "us-east-1",
		S3RootUser:     "minioadmin",
		S3RootPassword: "minioadmin",
		S3BaseEndpoint: "http://127.0.0.1:9000",
		S3Bucket:       "gophnotes",
	}
}

func restoreSeams(t *testing.T) {
	origLoad := loadDefaultAWSConfig
	origNew := newS3ClientFromConfig
	origPut := putObject
	origPresign := presignGetObject
	t.Cleanup(func() {
		loadDefaultAWSConfig = origLoad
		newS3ClientFromConfig = origNew
		putObject = origPut
		presignGetObject = origPresign
	})
}

func TestNewS3Store_AppliesConfig(t *testing.T) {
	restoreSeams(t)

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		var lo awsconfig.LoadOptions
		for _, fn := range optFns {
			require.NoError(t, fn(&lo))
		}
		assert.Equal(t, "us-east-1", lo.Region)
		require.NotNil(t, lo.Credentials)
		creds, err := lo.Credentials.Retrieve(ctx)
		require.NoError(t, err)
		assert.Equal(t, "minioadmin", creds.AccessKeyID)
		return aws.Config{Region: lo.Region, Credentials: lo.Credentials}, nil
	}

	var opts s3.Options
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		for _, fn := range optFns {
			fn(&opts)
		}
		return s3.NewFromConfig(cfg, optFns...)
	}

	st, err := NewS3Store(context.Background(), testConfig())
	require.NoError(t, err)
	assert.Equal(t, "gophnotes", st.bucket)
	require.NotNil(t, opts.BaseEndpoint)
	assert.Equal(t, "http://127.0.0.1:9000", *opts.BaseEndpoint)
	assert.True(t, opts.UsePathStyle)
}

func TestNewS3Store_LoadError(t *testing.T) {
	restoreSeams(t)
	loadDefaultAWSConfig = func(context.Context, ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("no config")
	}

	_, err := NewS3Store(context.Background(), testConfig())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load aws config")
}

func TestPutAndPresign(t *testing.T) {
	restoreSeams(t)
	st, err := NewS3Store(context.Background(), testConfig())
	require.NoError(t, err)

	var gotPut *s3.PutObjectInput
	putObject = func(_ *s3.Client, _ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		gotPut = in
		return &s3.PutObjectOutput{}, nil
	}
	var gotTTL time.Duration
	presignGetObject = func(_ *s3.PresignClient, _ context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		var po s3.PresignOptions
		for _, fn := range optFns {
			fn(&po)
		}
		gotTTL = po.Expires
		return &v4.PresignedHTTPRequest{URL: "http://signed/" + aws.ToString(in.Bucket) + "/" + aws.ToString(in.Key)}, nil
	}

	require.NoError(t, st.Put(context.Background(), "k.md", "text/markdown", []byte("# hi\n")))
	require.NotNil(t, gotPut)
	assert.Equal(t, "gophnotes", aws.ToString(gotPut.Bucket))
	assert.Equal(t, "text/markdown", aws.ToString(gotPut.ContentType))
	assert.Equal(t, int64(5), aws.ToInt64(gotPut.ContentLength))
	b, _ := io.ReadAll(gotPut.Body)
	assert.Equal(t, "# hi\n", string(b))

	url, err := st.PresignGet(context.Background(), "k.md", 15*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, "http://signed/gophnotes/k.md", url)
	assert.Equal(t, 15*time.Minute, gotTTL)
}

func TestPutAndPresign_Errors(t *testing.T) {
	restoreSeams(t)
	st, err := NewS3Store(context.Background(), testConfig())
	require.NoError(t, err)

	putObject = func(*s3.Client, context.Context, *s3.PutObjectInput, ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		return nil, errors.New("denied")
	}
	presignGetObject = func(*s3.PresignClient, context.Context, *s3.GetObjectInput, ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return nil, errors.New("bad creds")
	}

	err = st.Put(context.Background(), "k", "text/plain", nil)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "denied"))

	_, err = st.PresignGet(context.Background(), "k", time.Minute)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad creds")
}
