package snapshot

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	rerrors "github.com/vango-dev/rangeui/internal/errors"
	"github.com/vango-dev/rangeui/pkg/memhost"
)

// fakeS3 is an in-memory S3API.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string]*s3.PutObjectInput
	bodies  map[string][]byte
	putErr  error
	pages   int
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: make(map[string]*s3.PutObjectInput), bodies: make(map[string][]byte)}
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[*in.Bucket+"/"+*in.Key] = in
	f.bodies[*in.Bucket+"/"+*in.Key] = body
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := *in.Bucket + "/" + *in.Key
	put, ok := f.objects[id]
	if !ok {
		return nil, &types.NoSuchKey{Message: aws.String("no such key")}
	}
	return &s3.GetObjectOutput{
		Body:        io.NopCloser(bytes.NewReader(f.bodies[id])),
		ContentType: put.ContentType,
		Metadata:    put.Metadata,
	}, nil
}

// ListObjectsV2 returns one key per page to exercise pagination.
func (f *fakeS3) ListObjectsV2(_ context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pages++

	var keys []string
	for id := range f.objects {
		bucket, key, _ := strings.Cut(id, "/")
		if bucket == *in.Bucket && strings.HasPrefix(key, aws.ToString(in.Prefix)) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	start := 0
	if in.ContinuationToken != nil {
		for i, k := range keys {
			if k == *in.ContinuationToken {
				start = i
			}
		}
	}
	out := &s3.ListObjectsV2Output{}
	if start < len(keys) {
		out.Contents = []types.Object{{Key: aws.String(keys[start])}}
	}
	if start+1 < len(keys) {
		out.IsTruncated = aws.Bool(true)
		out.NextContinuationToken = aws.String(keys[start+1])
	}
	return out, nil
}

func storeContract(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	_, err := store.Get(ctx, "missing.html")
	assert.ErrorIs(t, err, ErrNotFound)

	created := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)
	for _, key := range []string{"b.html", "a.html", "other/c.html"} {
		require.NoError(t, store.Put(ctx, &Object{
			Key:         key,
			ContentType: ContentType,
			Body:        []byte("<p>" + key + "</p>"),
			Metadata:    map[string]string{"k": key},
			CreatedAt:   created,
		}))
	}

	obj, err := store.Get(ctx, "a.html")
	require.NoError(t, err)
	assert.Equal(t, "<p>a.html</p>", string(obj.Body))
	assert.Equal(t, ContentType, obj.ContentType)
	assert.Equal(t, "a.html", obj.Metadata["k"])

	keys, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"a.html", "b.html", "other/c.html"}, keys)

	keys, err = store.List(ctx, "other/")
	require.NoError(t, err)
	assert.Equal(t, []string{"other/c.html"}, keys)
}

func TestMemoryStore(t *testing.T) {
	storeContract(t, NewMemoryStore())
}

func TestDiskStore(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "snapshots")
	store, err := NewDiskStore(dir)
	require.NoError(t, err)
	storeContract(t, store)

	obj, err := store.Get(context.Background(), "b.html")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC), obj.CreatedAt.UTC())
}

func TestDiskStoreRejectsEscapingKeys(t *testing.T) {
	store, err := NewDiskStore(t.TempDir())
	require.NoError(t, err)

	for _, key := range []string{"", "../x.html", "/etc/passwd", "page.html.meta"} {
		err := store.Put(context.Background(), &Object{Key: key})
		assert.Error(t, err, "key %q", key)
	}
}

func TestS3Store(t *testing.T) {
	client := newFakeS3()
	store := NewS3Store(client, "pages", "snap/")
	storeContract(t, store)

	put := client.objects["pages/snap/a.html"]
	require.NotNil(t, put, "objects should be written under the prefix")
	assert.Equal(t, ContentType, aws.ToString(put.ContentType))
	assert.Equal(t, 4, client.pages, "one page per key across both listings")
}

func TestS3StoreWrapsErrors(t *testing.T) {
	client := newFakeS3()
	client.putErr = errors.New("access denied")
	store := NewS3Store(client, "pages", "")

	err := store.Put(context.Background(), &Object{Key: "a.html"})
	assert.ErrorContains(t, err, "s3 upload failed")
	assert.ErrorIs(t, err, client.putErr)
}

func TestStaticCredentials(t *testing.T) {
	creds, err := StaticCredentials("AKID", "SECRET", "").Retrieve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "AKID", creds.AccessKeyID)
	assert.Equal(t, "SECRET", creds.SecretAccessKey)
}

func newDoc(t *testing.T, markup string) *memhost.Document {
	t.Helper()
	doc := memhost.NewDocument()
	require.NoError(t, doc.ParseHTML(doc.Body(), strings.NewReader(markup)))
	return doc
}

func TestPublisher(t *testing.T) {
	store := NewMemoryStore()
	now := time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC)
	pub := NewPublisher(store, WithTitle("Demo & Co"), WithClock(func() time.Time { return now }))

	obj, err := pub.Publish(context.Background(), newDoc(t, "<p>hello</p>"), "home")
	require.NoError(t, err)

	assert.Regexp(t, `^home-[0-9a-f]{12}\.html$`, obj.Key)
	assert.Equal(t, "2026-10-17T09:30:00Z", obj.Metadata["rendered-at"])
	assert.True(t, strings.HasPrefix(obj.Metadata["content-sha256"], strings.TrimSuffix(strings.TrimPrefix(obj.Key, "home-"), ".html")))

	stored, err := store.Get(context.Background(), obj.Key)
	require.NoError(t, err)
	page := string(stored.Body)
	assert.Contains(t, page, "<title>Demo &amp; Co</title>")
	assert.Contains(t, page, "<body><p>hello</p></body>")
}

func TestPublisherKeysFollowContent(t *testing.T) {
	pub := NewPublisher(NewMemoryStore())
	ctx := context.Background()

	a, err := pub.Publish(ctx, newDoc(t, "<p>a</p>"), "page")
	require.NoError(t, err)
	again, err := pub.Publish(ctx, newDoc(t, "<p>a</p>"), "page")
	require.NoError(t, err)
	b, err := pub.Publish(ctx, newDoc(t, "<p>b</p>"), "page")
	require.NoError(t, err)

	assert.Equal(t, a.Key, again.Key)
	assert.NotEqual(t, a.Key, b.Key)
}

func TestPublisherErrors(t *testing.T) {
	client := newFakeS3()
	client.putErr = errors.New("boom")
	pub := NewPublisher(NewS3Store(client, "pages", ""))

	_, err := pub.Publish(context.Background(), newDoc(t, ""), "home")
	assert.Equal(t, "E401", rerrors.Code(err))
	assert.ErrorIs(t, err, client.putErr)

	_, err = pub.Publish(context.Background(), newDoc(t, ""), "a/b")
	assert.Equal(t, "E401", rerrors.Code(err))
}
