package filestore

import (
	"bytes"
	"context"

	"github.com/koustreak/dbframe/internal/frame"
)

// ContentTypeCSV is the content type written for exported frames.
const ContentTypeCSV = "text/csv"

// ReadFrame downloads a CSV object and decodes it into a frame, inferring
// column types from the cells.
func ReadFrame(ctx context.Context, s Store, ref Ref) (*frame.Frame, error) {
	obj, err := s.GetObject(ctx, ref.Bucket, ref.Key)
	if err != nil {
		return nil, err
	}
	defer obj.Close()
	return frame.ReadCSV(obj)
}

// WriteFrame encodes f as CSV and uploads it.
func WriteFrame(ctx context.Context, s Store, ref Ref, f *frame.Frame) (*ObjectInfo, error) {
	var buf bytes.Buffer
	if err := f.WriteCSV(&buf); err != nil {
		return nil, err
	}
	return s.PutObject(ctx, ref.Bucket, ref.Key, &buf, int64(buf.Len()), ContentTypeCSV)
}
