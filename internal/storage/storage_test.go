package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseURI(t *testing.T) {
	tests := []struct {
		uri    string
		bucket string
		key    string
		ok     bool
	}{
		{"s3://models/v1/classifier.json", "models", "v1/classifier.json", true},
		{"s3://models/a", "models", "a", true},
		{"s3://models/", "", "", false},
		{"s3://models", "", "", false},
		{"./models/classifier.json", "", "", false},
		{"", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			bucket, key, ok := ParseURI(tt.uri)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.bucket, bucket)
			assert.Equal(t, tt.key, key)
		})
	}
}

func TestURI_RoundTrip(t *testing.T) {
	bucket, key, ok := ParseURI(URI("resumes", "7/cv.pdf"))
	require.True(t, ok)
	assert.Equal(t, "resumes", bucket)
	assert.Equal(t, "7/cv.pdf", key)
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	_, err := store.Get(ctx, "b", "k")
	require.Error(t, err)

	require.NoError(t, store.Put(ctx, "b", "k", "application/pdf", []byte("data")))
	got, err := store.Get(ctx, "b", "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("data"), got)
	assert.Equal(t, "application/pdf", store.ContentType("b", "k"))
}
