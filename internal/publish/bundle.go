package publish

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	lierrors "github.com/vango-dev/labeled-input/internal/errors"
	"github.com/vango-dev/labeled-input/pkg/host"
	"github.com/vango-dev/labeled-input/pkg/render"
)

// File names in a bundle.
const (
	IndexFile = "index.html"
	StyleFile = "labeled-input.css"
)

// File is one bundle entry.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Bundle is a rendered static site.
type Bundle struct {
	Files []File
}

// Options configures Build.
type Options struct {
	// Attributes are set on the rendered element.
	Attributes map[string]string

	// Title is the page title. Default: "<tag>".
	Title string

	// Logger receives render logs.
	// Default: slog.Default()
	Logger *slog.Logger
}

// Build renders def into a bundle. The page links the style sheet so the
// element's styles are also available outside its shadow root.
func Build(def *host.Definition, opts Options) (*Bundle, error) {
	field, err := render.NewField(def, render.FieldConfig{
		Logger:     opts.Logger,
		Attributes: opts.Attributes,
	})
	if err != nil {
		return nil, err
	}
	defer field.Close()

	title := opts.Title
	if title == "" {
		title = "<" + def.Tag + ">"
	}
	page := render.PageData{
		Title: title,
		Body:  field.HTML(),
	}
	if def.Style != "" {
		page.StyleSheets = []string{StyleFile}
	}

	var buf bytes.Buffer
	if err := render.RenderPage(&buf, page); err != nil {
		return nil, err
	}

	b := &Bundle{Files: []File{{
		Name:        IndexFile,
		ContentType: "text/html; charset=utf-8",
		Data:        buf.Bytes(),
	}}}
	if def.Style != "" {
		b.Files = append(b.Files, File{
			Name:        StyleFile,
			ContentType: "text/css; charset=utf-8",
			Data:        []byte(def.Style),
		})
	}
	return b, nil
}

// File returns the entry called name, or nil.
func (b *Bundle) File(name string) *File {
	for i := range b.Files {
		if b.Files[i].Name == name {
			return &b.Files[i]
		}
	}
	return nil
}

// Size returns the total byte size of the bundle.
func (b *Bundle) Size() int64 {
	var n int64
	for _, f := range b.Files {
		n += int64(len(f.Data))
	}
	return n
}

// WriteDir writes every file into dir, creating it if needed.
func (b *Bundle) WriteDir(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return lierrors.New("E040").WithDetail("create " + dir).Wrap(err)
	}
	for _, f := range b.Files {
		path := filepath.Join(dir, f.Name)
		if err := os.WriteFile(path, f.Data, 0644); err != nil {
			return lierrors.New("E040").WithDetail(fmt.Sprintf("write %s", path)).Wrap(err)
		}
	}
	return nil
}
