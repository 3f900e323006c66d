// Package web holds the page templates.
package web

import (
	"embed"
	"errors"
	"io/fs"
	"net/http"

	"github.com/gofiber/template/html/v2"
)

//go:embed views/*.html
var files embed.FS

// Views returns the template directory.
func Views() fs.FS {
	sub, err := fs.Sub(files, "views")
	if err != nil {
		panic(err)
	}
	return sub
}

// NewEngine returns the Fiber view engine over the embedded templates.
func NewEngine() *html.Engine {
	engine := html.NewFileSystem(http.FS(Views()), ".html")
	engine.AddFunc("dict", dict)
	return engine
}

// dict builds a map from alternating keys and values so a template can pass
// several values to a nested template.
func dict(pairs ...interface{}) (map[string]interface{}, error) {
	if len(pairs)%2 != 0 {
		return nil, errors.New("dict: odd number of arguments")
	}
	m := make(map[string]interface{}, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		k, ok := pairs[i].(string)
		if !ok {
			return nil, errors.New("dict: keys must be strings")
		}
		m[k] = pairs[i+1]
	}
	return m, nil
}
