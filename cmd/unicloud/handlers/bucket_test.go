package handlers

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/unicloud/internal/config"
)

func stubObjectStore(t *testing.T, store *fakeObjectStore) {
	t.Helper()
	stubDeps(t, awsConfig(), newFakeProvider(), nil)
	newObjectStore = func(context.Context, config.AWSConfig) (objectStore, error) { return store, nil }
}

func TestBucket_Lifecycle(t *testing.T) {
	store := &fakeObjectStore{buckets: map[string][]string{}}
	stubObjectStore(t, store)
	ctx := context.Background()

	var out bytes.Buffer
	require.NoError(t, Bucket(ctx, BucketOptions{Action: BucketCreate, Name: "backups", Out: &out}))
	assert.Equal(t, "Bucket backups is ready\n", out.String())

	out.Reset()
	require.NoError(t, Bucket(ctx, BucketOptions{Action: BucketExists, Name: "backups", Out: &out}))
	assert.Equal(t, "Bucket backups exists\n", out.String())

	out.Reset()
	require.NoError(t, Bucket(ctx, BucketOptions{Action: BucketList, Out: &out}))
	assert.Equal(t, "2024-05-01T12:00:00Z  backups\n", out.String())

	store.buckets["backups"] = []string{"etcd/1.db", "etcd/2.db"}
	out.Reset()
	require.NoError(t, Bucket(ctx, BucketOptions{Action: BucketListObjects, Name: "backups", Prefix: "etcd/", Out: &out}))
	assert.Equal(t, "etcd/1.db\netcd/2.db\n", out.String())

	out.Reset()
	require.NoError(t, Bucket(ctx, BucketOptions{Action: BucketDelete, Name: "backups", Out: &out}))
	assert.Equal(t, "Bucket backups deleted\n", out.String())

	err := Bucket(ctx, BucketOptions{Action: BucketExists, Name: "backups", Out: &out})
	assert.EqualError(t, err, "bucket backups does not exist")
}

func TestBucket_Errors(t *testing.T) {
	store := &fakeObjectStore{buckets: map[string][]string{}, err: errors.New("AccessDenied")}
	stubObjectStore(t, store)

	err := Bucket(context.Background(), BucketOptions{Action: BucketCreate, Name: "x", Out: &bytes.Buffer{}})
	assert.EqualError(t, err, "AccessDenied")

	err = Bucket(context.Background(), BucketOptions{Action: "rename", Out: &bytes.Buffer{}})
	assert.ErrorContains(t, err, "unknown bucket action")
}

func TestBucket_RequiresAWS(t *testing.T) {
	stubObjectStore(t, &fakeObjectStore{buckets: map[string][]string{}})
	loadConfig = func(string) (*config.Config, error) {
		return &config.Config{Provider: "hcloud"}, nil
	}

	err := Bucket(context.Background(), BucketOptions{Action: BucketList, Out: &bytes.Buffer{}})
	assert.ErrorContains(t, err, "require the aws provider")
}
