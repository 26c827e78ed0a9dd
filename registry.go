package nitf

import (
	"io"
	"sync"

	"github.com/pkg/errors"
)

// A TagDecoder turns a tag payload into a typed value.
type TagDecoder interface {
	DecodeTag(name string, payload []byte) (interface{}, error)
}

// TagDecoderFunc adapts a function to TagDecoder.
type TagDecoderFunc func(name string, payload []byte) (interface{}, error)

// DecodeTag implements TagDecoder.
func (f TagDecoderFunc) DecodeTag(name string, payload []byte) (interface{}, error) {
	return f(name, payload)
}

// Registry maps tag names to decoders. Header parsing never consults it:
// tags are decoded lazily, on demand, by passing a Registry to Decode.
// A Registry is safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	decoders map[string]TagDecoder
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{decoders: make(map[string]TagDecoder)}
}

// Register binds a decoder to a tag name, replacing any previous one.
func (r *Registry) Register(name string, d TagDecoder) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.decoders[name] = d
}

// Lookup returns the decoder bound to name.
func (r *Registry) Lookup(name string) (TagDecoder, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.decoders[name]
	return d, ok
}

// TryDecode decodes payload with the decoder bound to name. The boolean is
// false when no decoder is registered for name.
func (r *Registry) TryDecode(name string, payload []byte) (interface{}, bool, error) {
	d, ok := r.Lookup(name)
	if !ok {
		return nil, false, nil
	}
	v, err := d.DecodeTag(name, payload)
	if err != nil {
		return nil, true, errors.Wrapf(err, "nitf: could not decode %s", name)
	}
	return v, true, nil
}

// Decode reads the payload of t from src and decodes it. The payload is
// only read when a decoder is registered for the tag.
func (r *Registry) Decode(src io.ReaderAt, t Tag) (interface{}, bool, error) {
	if _, ok := r.Lookup(t.Name); !ok {
		return nil, false, nil
	}
	payload, err := t.Payload(src)
	if err != nil {
		return nil, true, err
	}
	return r.TryDecode(t.Name, payload)
}
