package rest

import (
	"encoding"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Encoder turns a request body value into bytes.
type Encoder interface {
	Encode(v any) ([]byte, error)
	// ContentType is sent with every body this encoder produces.
	ContentType() string
}

// Decoder fills v, a pointer, from a response body.
type Decoder interface {
	Decode(data []byte, v any) error
}

// Codec is both an Encoder and a Decoder.
type Codec interface {
	Encoder
	Decoder
}

var (
	// NoCodec fails every encode and decode. It is the default encoder, so
	// requests with a body need an explicit codec.
	NoCodec Codec = noCodec{}
	JSON    Codec = jsonCodec{}
	XML     Codec = xmlCodec{}
	YAML    Codec = yamlCodec{}
	// Text handles strings, byte slices and encoding.Text(Un)Marshalers.
	// It is the default decoder.
	Text Codec = textCodec{}
)

// CodecByName resolves a codec from its configuration name.
func CodecByName(name string) (Codec, error) {
	switch strings.ToLower(name) {
	case "", "text":
		return Text, nil
	case "none":
		return NoCodec, nil
	case "json":
		return JSON, nil
	case "xml":
		return XML, nil
	case "yaml", "yml":
		return YAML, nil
	default:
		return nil, fmt.Errorf("rest: unknown codec %q", name)
	}
}

type noCodec struct{}

func (noCodec) Encode(any) ([]byte, error) { return nil, ErrNoEncoder }
func (noCodec) ContentType() string        { return "" }
func (noCodec) Decode([]byte, any) error   { return ErrNoDecoder }

type jsonCodec struct{}

func (jsonCodec) Encode(v any) ([]byte, error)    { return json.Marshal(v) }
func (jsonCodec) ContentType() string             { return "application/json" }
func (jsonCodec) Decode(data []byte, v any) error { return json.Unmarshal(data, v) }

type xmlCodec struct{}

func (xmlCodec) Encode(v any) ([]byte, error)    { return xml.Marshal(v) }
func (xmlCodec) ContentType() string             { return "application/xml" }
func (xmlCodec) Decode(data []byte, v any) error { return xml.Unmarshal(data, v) }

type yamlCodec struct{}

func (yamlCodec) Encode(v any) ([]byte, error)    { return yaml.Marshal(v) }
func (yamlCodec) ContentType() string             { return "application/yaml" }
func (yamlCodec) Decode(data []byte, v any) error { return yaml.Unmarshal(data, v) }

type textCodec struct{}

func (textCodec) Encode(v any) ([]byte, error) {
	switch t := v.(type) {
	case string:
		return []byte(t), nil
	case []byte:
		return t, nil
	case encoding.TextMarshaler:
		return t.MarshalText()
	case fmt.Stringer:
		return []byte(t.String()), nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedType, v)
	}
}

func (textCodec) ContentType() string { return "text/plain; charset=utf-8" }

func (textCodec) Decode(data []byte, v any) error {
	switch t := v.(type) {
	case *string:
		*t = string(data)
	case *[]byte:
		*t = append((*t)[:0], data...)
	case encoding.TextUnmarshaler:
		return t.UnmarshalText(data)
	case *struct{}:
	default:
		return fmt.Errorf("%w: %T", ErrUnsupportedType, v)
	}
	return nil
}
