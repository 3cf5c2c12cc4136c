package pipeline

import (
	"fmt"
	"path/filepath"

	"github.com/reglet-dev/tmplkit/domain/ports"
)

// Context is the render context handed to every engine in a chain.
type Context struct {
	helpers  map[string]any
	RenderID string
	File     string
}

// ResolvePath maps a path referenced from the file being rendered to a
// location under that file's directory. Absolute paths and paths climbing out
// of the directory are rejected, whether File itself is relative or absolute.
func (c *Context) ResolvePath(logical string) (string, error) {
	if logical == "" {
		return "", fmt.Errorf("empty path")
	}
	if filepath.IsAbs(logical) {
		return "", fmt.Errorf("path %q must be relative", logical)
	}
	if !filepath.IsLocal(logical) {
		return "", fmt.Errorf("path %q escapes the directory of %s", logical, c.File)
	}
	return filepath.Join(filepath.Dir(c.File), logical), nil
}

// Helpers returns the helper functions configured on the pipeline.
func (c *Context) Helpers() map[string]any {
	return c.helpers
}

var (
	_ ports.PathResolver   = (*Context)(nil)
	_ ports.HelperProvider = (*Context)(nil)
)
