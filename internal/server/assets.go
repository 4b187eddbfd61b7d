package server

import (
	"bytes"
	"errors"
	"io/fs"
	"log/slog"
	"mime"
	"net/http"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/html"
	"github.com/tdewolff/minify/v2/js"
)

type asset struct {
	data        []byte
	contentType string
}

// assets serves the viewer from memory, minified once at startup.
type assets struct {
	files   map[string]asset
	modTime time.Time
}

func newMinifier() *minify.M {
	m := minify.New()
	m.AddFunc("text/html", html.Minify)
	m.AddFunc("text/css", css.Minify)
	m.AddFuncRegexp(regexp.MustCompile(`^(application|text)/(x-)?(java|ecma)script$`), js.Minify)
	return m
}

func loadAssets(src fs.FS, logger *slog.Logger) (*assets, error) {
	m := newMinifier()
	a := &assets{files: make(map[string]asset), modTime: time.Now()}

	err := fs.WalkDir(src, ".", func(name string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		data, err := fs.ReadFile(src, name)
		if err != nil {
			return err
		}

		ctype := mime.TypeByExtension(path.Ext(name))
		if ctype == "" {
			ctype = http.DetectContentType(data)
		}
		mediatype, _, _ := strings.Cut(ctype, ";")
		if out, err := m.Bytes(mediatype, data); err == nil {
			data = out
		} else if !errors.Is(err, minify.ErrNotExist) {
			logger.Warn("serving asset unminified", "file", name, "err", err)
		}

		a.files[name] = asset{data: data, contentType: ctype}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (a *assets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(path.Clean("/"+r.URL.Path), "/")
	if name == "" || strings.HasSuffix(r.URL.Path, "/") {
		name = path.Join(name, "index.html")
	}
	f, ok := a.files[name]
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", f.contentType)
	http.ServeContent(w, r, name, a.modTime, bytes.NewReader(f.data))
}
