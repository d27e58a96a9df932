// Package imaging turns uploaded bytes into bitmaps and keeps the
// reloadable data-URL form that documents and history store.
package imaging

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"log"
	"net/http"
	"strings"
	"sync"

	"github.com/gogpu/gg/cache"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
	"golang.org/x/sync/errgroup"
)

// ErrDecode marks every failure to turn a source into a bitmap.
var ErrDecode = errors.New("image decode failed")

// DecodeError reports which item of an upload could not be decoded.
type DecodeError struct {
	Name string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("processing %s failed: %v", e.Name, e.Err)
}

func (e *DecodeError) Unwrap() []error {
	return []error{ErrDecode, e.Err}
}

// File is one uploaded item.
type File struct {
	Name string
	Data []byte
}

// Loaded is a successfully decoded upload.
type Loaded struct {
	Name   string
	Source string
	Bitmap image.Image
}

// bitmapsPerShard bounds the decoded-bitmap cache (16 shards).
const bitmapsPerShard = 8

// Decoder decodes image sources, caching bitmaps by source so history
// replay of an unchanged image does not decode it again. Cached bitmaps
// are shared and must not be modified.
type Decoder struct {
	bitmaps *cache.ShardedCache[string, image.Image]
}

func NewDecoder() *Decoder {
	return &Decoder{
		bitmaps: cache.NewSharded[string, image.Image](bitmapsPerShard, cache.StringHasher),
	}
}

// DataURL encodes raw image bytes as a base64 data URL.
func DataURL(data []byte) string {
	mime := http.DetectContentType(data)
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// ParseDataURL returns the bytes carried by a base64 data URL.
func ParseDataURL(source string) ([]byte, error) {
	rest, ok := strings.CutPrefix(source, "data:")
	if !ok {
		return nil, fmt.Errorf("%w: not a data URL", ErrDecode)
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok || !strings.HasSuffix(meta, ";base64") {
		return nil, fmt.Errorf("%w: data URL is not base64", ErrDecode)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return data, nil
}

func decodeBytes(data []byte) (image.Image, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if b := img.Bounds(); b.Empty() {
		return nil, fmt.Errorf("%w: empty %s image", ErrDecode, format)
	}
	return img, nil
}

// Load decodes one uploaded file. The returned source reloads to the same
// bitmap through Resolve.
func (d *Decoder) Load(ctx context.Context, f File) (Loaded, error) {
	if err := ctx.Err(); err != nil {
		return Loaded{}, err
	}
	img, err := decodeBytes(f.Data)
	if err != nil {
		log.Printf("[DECODE] %s: %v", f.Name, err)
		return Loaded{}, &DecodeError{Name: f.Name, Err: err}
	}
	src := DataURL(f.Data)
	d.bitmaps.Set(src, img)
	b := img.Bounds()
	log.Printf("[DECODE] Loaded %s (%dx%d)", f.Name, b.Dx(), b.Dy())
	return Loaded{Name: f.Name, Source: src, Bitmap: img}, nil
}

// LoadBatch decodes files in parallel. A failed item never aborts the
// batch: successes come back in input order and each failure is reported
// as a *DecodeError.
func (d *Decoder) LoadBatch(ctx context.Context, files []File) ([]Loaded, []error) {
	results := make([]Loaded, len(files))
	errs := make([]error, len(files))

	var wg sync.WaitGroup
	for i, f := range files {
		wg.Go(func() {
			results[i], errs[i] = d.Load(ctx, f)
		})
	}
	wg.Wait()

	var loaded []Loaded
	var failed []error
	for i := range files {
		if errs[i] != nil {
			failed = append(failed, errs[i])
			continue
		}
		loaded = append(loaded, results[i])
	}
	return loaded, failed
}

// Resolve returns the bitmap for a data URL, decoding it on a cache miss.
func (d *Decoder) Resolve(ctx context.Context, source string) (image.Image, error) {
	if img, ok := d.bitmaps.Get(source); ok {
		return img, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := ParseDataURL(source)
	if err != nil {
		return nil, err
	}
	img, err := decodeBytes(data)
	if err != nil {
		return nil, err
	}
	d.bitmaps.Set(source, img)
	return img, nil
}

// ResolveAll decodes every source concurrently. It fails if any one does,
// so a caller never sees a partially decoded set.
func (d *Decoder) ResolveAll(ctx context.Context, sources []string) (map[string]image.Image, error) {
	unique := make(map[string]struct{}, len(sources))
	for _, s := range sources {
		unique[s] = struct{}{}
	}
	keys := make([]string, 0, len(unique))
	for s := range unique {
		keys = append(keys, s)
	}
	imgs := make([]image.Image, len(keys))

	g, ctx := errgroup.WithContext(ctx)
	for i, src := range keys {
		g.Go(func() error {
			img, err := d.Resolve(ctx, src)
			if err != nil {
				return err
			}
			imgs[i] = img
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[string]image.Image, len(keys))
	for i, src := range keys {
		out[src] = imgs[i]
	}
	return out, nil
}
