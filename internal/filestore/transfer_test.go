package filestore

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koustreak/dbframe/internal/errs"
	"github.com/koustreak/dbframe/internal/frame"
)

// memStore keeps objects in a map.
type memStore struct {
	objects map[string][]byte
	types   map[string]string
}

func newMemStore() *memStore {
	return &memStore{objects: map[string][]byte{}, types: map[string]string{}}
}

func (m *memStore) Ping(context.Context) error { return nil }
func (m *memStore) Close() error               { return nil }

func (m *memStore) GetObject(_ context.Context, bucket, key string) (Object, error) {
	data, ok := m.objects[bucket+"/"+key]
	if !ok {
		return nil, errs.New(errs.ErrKindNotFound, "no such key")
	}
	return &memObject{Reader: bytes.NewReader(data), info: &ObjectInfo{Key: key, Size: int64(len(data))}}, nil
}

func (m *memStore) PutObject(_ context.Context, bucket, key string, r io.Reader, _ int64, contentType string) (*ObjectInfo, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	m.objects[bucket+"/"+key] = data
	m.types[bucket+"/"+key] = contentType
	return &ObjectInfo{Key: key, Size: int64(len(data)), ContentType: contentType}, nil
}

type memObject struct {
	*bytes.Reader
	info *ObjectInfo
}

func (o *memObject) Close() error       { return nil }
func (o *memObject) Info() *ObjectInfo { return o.info }

func TestWriteThenReadFrame(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	ref := Ref{Bucket: "exports", Key: "orders.csv"}

	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	in, err := frame.New(
		frame.Col("id", int64(1), int64(2)),
		frame.Infer("amount", 9.5, nil),
		frame.Col("paid", true, false),
		frame.Col("at", at, at),
		frame.Col("note", "a,b", `say "hi"`),
	)
	require.NoError(t, err)

	info, err := WriteFrame(ctx, store, ref, in)
	require.NoError(t, err)
	assert.Equal(t, ContentTypeCSV, info.ContentType)
	assert.Equal(t, ContentTypeCSV, store.types["exports/orders.csv"])

	out, err := ReadFrame(ctx, store, ref)
	require.NoError(t, err)
	assert.True(t, in.Equal(out))
}

func TestReadFrame_Missing(t *testing.T) {
	_, err := ReadFrame(context.Background(), newMemStore(), Ref{Bucket: "b", Key: "nope.csv"})
	assert.True(t, errs.IsNotFound(err))
}

func TestParseRef(t *testing.T) {
	tests := []struct {
		in      string
		def     string
		want    Ref
		wantErr bool
	}{
		{in: "raw/orders.csv", want: Ref{Bucket: "raw", Key: "orders.csv"}},
		{in: "raw/2024/orders.csv", want: Ref{Bucket: "raw", Key: "2024/orders.csv"}},
		{in: "orders.csv", def: "lake", want: Ref{Bucket: "lake", Key: "orders.csv"}},
		{in: "orders.csv", wantErr: true},
		{in: "raw/", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseRef(tt.in, tt.def)
			if tt.wantErr {
				assert.True(t, errs.IsInvalidInput(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want.Bucket+"/"+tt.want.Key, got.String())
		})
	}
}

func TestConfigEnabled(t *testing.T) {
	var nilCfg *Config
	assert.False(t, nilCfg.Enabled())
	assert.True(t, DefaultConfig("localhost:9000", "k", "s").Enabled())
}
