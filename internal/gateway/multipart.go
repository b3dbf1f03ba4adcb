package gateway

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
)

// FormFile is a binary part of a car submission.
type FormFile struct {
	Field    string // "thumbnail" or "images"
	Filename string
	Data     []byte
}

type formField struct {
	name  string
	value string
}

// CarForm is the multipart body of car create and update. Parts keep their
// insertion order; a field may repeat.
type CarForm struct {
	fields []formField
	files  []FormFile
}

// NewCarForm creates an empty body.
func NewCarForm() *CarForm { return &CarForm{} }

// Add appends a text part.
func (f *CarForm) Add(name, value string) {
	f.fields = append(f.fields, formField{name: name, value: value})
}

// AddFile appends a binary part.
func (f *CarForm) AddFile(file FormFile) {
	f.files = append(f.files, file)
}

// Get returns the first value of the text part name.
func (f *CarForm) Get(name string) (string, bool) {
	for _, field := range f.fields {
		if field.name == name {
			return field.value, true
		}
	}
	return "", false
}

// Values returns every value of the text part name.
func (f *CarForm) Values(name string) []string {
	var out []string
	for _, field := range f.fields {
		if field.name == name {
			out = append(out, field.value)
		}
	}
	return out
}

// Files returns the binary parts posted under field.
func (f *CarForm) Files(field string) []FormFile {
	var out []FormFile
	for _, file := range f.files {
		if file.Field == field {
			out = append(out, file)
		}
	}
	return out
}

// Encode writes the multipart body, text parts first.
func (f *CarForm) Encode() (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, field := range f.fields {
		if err := w.WriteField(field.name, field.value); err != nil {
			return nil, "", fmt.Errorf("failed to write field %s: %w", field.name, err)
		}
	}
	for _, file := range f.files {
		part, err := w.CreateFormFile(file.Field, file.Filename)
		if err != nil {
			return nil, "", fmt.Errorf("failed to create part %s: %w", file.Field, err)
		}
		if _, err := part.Write(file.Data); err != nil {
			return nil, "", fmt.Errorf("failed to write part %s: %w", file.Field, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to close multipart body: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}
