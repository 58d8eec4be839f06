package rest

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/textproto"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

const octetStream = "application/octet-stream"

// FileField is one file part of a multipart body. Either Reader or Path
// supplies the content; Reader wins when both are set.
type FileField struct {
	Name        string
	Filename    string
	ContentType string
	Reader      io.Reader
	Path        string
}

// FileFromReader wraps r as the file field name.
func FileFromReader(name, filename string, r io.Reader) FileField {
	return FileField{Name: name, Filename: filename, Reader: r}
}

// FileFromPath reads the file at path when the body is built. The filename
// and content type are taken from the path.
func FileFromPath(name, path string) FileField {
	return FileField{Name: name, Path: path}
}

func (f FileField) open() (io.Reader, func() error, error) {
	if f.Reader != nil {
		return f.Reader, func() error { return nil }, nil
	}
	if f.Path == "" {
		return nil, nil, fmt.Errorf("file field %q has no content", f.Name)
	}
	fh, err := os.Open(f.Path)
	if err != nil {
		return nil, nil, err
	}
	return fh, fh.Close, nil
}

func (f FileField) header() textproto.MIMEHeader {
	filename := f.Filename
	if filename == "" && f.Path != "" {
		filename = filepath.Base(f.Path)
	}
	ct := f.ContentType
	if ct == "" {
		ct = mime.TypeByExtension(filepath.Ext(filename))
	}
	if ct == "" {
		ct = octetStream
	}

	h := make(textproto.MIMEHeader)
	disp := fmt.Sprintf(`form-data; name="%s"`, escapeQuotes(f.Name))
	if filename != "" {
		disp += fmt.Sprintf(`; filename="%s"`, escapeQuotes(filename))
	}
	h.Set("Content-Disposition", disp)
	h.Set(HeaderContentType, ct)
	return h
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string { return quoteEscaper.Replace(s) }

// encodeMultipart writes text fields in key order, then files in the order
// given.
func encodeMultipart(values url.Values, files []FileField) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		for _, v := range values[k] {
			if err := w.WriteField(k, v); err != nil {
				return nil, "", err
			}
		}
	}

	for _, f := range files {
		if err := writeFile(w, f); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

func writeFile(w *multipart.Writer, f FileField) error {
	r, closeFn, err := f.open()
	if err != nil {
		return err
	}
	defer func() { _ = closeFn() }()

	part, err := w.CreatePart(f.header())
	if err != nil {
		return err
	}
	_, err = io.Copy(part, r)
	return err
}
