package component

import (
	"fmt"

	"github.com/san-kum/fmukit/internal/fmi"
)

// Log sends msg to the instance logger when the category is unknown, is
// enabled, or is a debug category while debug logging is on.
func (c *Component) Log(status fmi.Status, category, msg string) {
	enabled, known := c.categories[category]
	if !known || enabled || (c.debugLogging && c.debug[category]) {
		c.logger(c.name, status, category, msg)
	}
}

func (c *Component) Logf(status fmi.Status, category, format string, args ...any) {
	c.Log(status, category, fmt.Sprintf(format, args...))
}

// SetDebugLogging switches debug logging. With no categories it sets the
// global debug flag; otherwise it enables or disables each named category.
// Unknown categories are reported and skipped.
func (c *Component) SetDebugLogging(on bool, categories ...string) {
	if len(categories) == 0 {
		c.debugLogging = on
		return
	}
	for _, name := range categories {
		if _, ok := c.categories[name]; !ok {
			c.Logf(fmi.Warning, "logStatusWarning",
				"The log category %q is not recognized by the FMU. Please check its availability in %s.",
				name, "modelDescription.xml")
			continue
		}
		c.categories[name] = on
	}
}

// CategoryEnabled reports the enabled flag of a category.
func (c *Component) CategoryEnabled(name string) (enabled, known bool) {
	enabled, known = c.categories[name]
	return
}

func (c *Component) DebugLogging() bool { return c.debugLogging }
