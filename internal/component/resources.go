package component

import (
	"net/url"
	"os"
	"path/filepath"

	"github.com/san-kum/fmukit/internal/fmi"
)

// resolveResources turns the resource location URI into a directory. A
// non-file scheme is accepted with a warning; an unparsable location falls
// back to the resources directory of an unpacked FMU, relative to the
// running executable.
func (c *Component) resolveResources(location string) string {
	u, err := url.Parse(location)
	if err == nil && u.Scheme != "" && u.Path != "" {
		if u.Scheme != "file" {
			c.Logf(fmi.Warning, "logStatusWarning", "Bad URL scheme: %s. Trying to continue.", u.Scheme)
		}
		return filepath.FromSlash(u.Path)
	}

	c.Logf(fmi.Warning, "logStatusWarning", "Cannot parse resource location: %s", location)
	dir := fallbackResources()
	c.Logf(fmi.Warning, "logStatusWarning", "Rolled back to default location: %s", dir)
	return dir
}

func fallbackResources() string {
	exe, err := os.Executable()
	if err != nil {
		return filepath.Join("..", "..", "resources")
	}
	return filepath.Join(filepath.Dir(exe), "..", "..", "resources")
}

// ResourcePath joins name onto the resource directory.
func (c *Component) ResourcePath(name string) string {
	return filepath.Join(c.resources, name)
}

// ResourceURI converts a directory into the file URI expected as a resource
// location.
func ResourceURI(dir string) string {
	abs, err := filepath.Abs(dir)
	if err != nil {
		abs = dir
	}
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String()
}
