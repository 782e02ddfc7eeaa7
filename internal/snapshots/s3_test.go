package snapshots

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/annokeeper/internal/carddoc"
	"github.com/dmitrijs2005/annokeeper/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePutter struct {
	in   *s3.PutObjectInput
	body []byte
	err  error
}

func (f *fakePutter) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.in = in
	if in.Body != nil {
		f.body, _ = io.ReadAll(in.Body)
	}
	if f.err != nil {
		return nil, f.err
	}
	return &s3.PutObjectOutput{}, nil
}

func fixedArchiver(p objectPutter) *S3Archiver {
	a := newArchiver(p, "snapshots")
	a.now = func() time.Time { return time.Date(2024, 3, 7, 23, 30, 0, 0, time.FixedZone("X", -2*3600)) }
	a.newID = func() string { return "0000-id" }
	return a
}

func TestKey(t *testing.T) {
	at := time.Date(2024, 1, 5, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, "cards/42/2024/01/05/abc.json", Key(42, at, "abc"))
}

func TestArchive_PutsDefinition(t *testing.T) {
	p := &fakePutter{}
	a := fixedArchiver(p)

	def := carddoc.Definition{Raw: map[string]any{"definition": map[string]any{"title": "Revenue"}}}
	key, err := a.Archive(context.Background(), 42, def)
	require.NoError(t, err)

	// 23:30 at UTC-2 is the next day in UTC
	assert.Equal(t, "cards/42/2024/03/08/0000-id.json", key)
	assert.Equal(t, "snapshots", aws.ToString(p.in.Bucket))
	assert.Equal(t, key, aws.ToString(p.in.Key))
	assert.Equal(t, "application/json", aws.ToString(p.in.ContentType))

	var got map[string]any
	require.NoError(t, json.Unmarshal(p.body, &got))
	assert.Equal(t, def.Raw, got)
}

func TestArchive_PutError(t *testing.T) {
	a := fixedArchiver(&fakePutter{err: errors.New("access denied")})

	_, err := a.Archive(context.Background(), 1, carddoc.Definition{Raw: map[string]any{}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access denied")
}

func TestArchive_EncodeError(t *testing.T) {
	a := fixedArchiver(&fakePutter{})

	_, err := a.Archive(context.Background(), 1, carddoc.Definition{Raw: map[string]any{"bad": make(chan int)}})
	require.Error(t, err)
}

func TestNewS3Archiver(t *testing.T) {
	_, err := NewS3Archiver(context.Background(), Settings{})
	require.ErrorIs(t, err, common.ErrValidation)

	a, err := NewS3Archiver(context.Background(), Settings{
		Bucket:    "snapshots",
		Region:    "us-east-1",
		Endpoint:  "http://127.0.0.1:9000",
		AccessKey: "minio",
		SecretKey: "minio123",
		PathStyle: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "snapshots", a.bucket)
	_, ok := a.client.(*s3.Client)
	assert.True(t, ok)
}
