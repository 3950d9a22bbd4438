package stylesheet

import "github.com/jrnewell/goog-webfont-dl/internal/model"

// subsetCursor tracks the subset comment that applies to the next
// @font-face rule. It is either empty or holds one pending subset name.
type subsetCursor struct {
	pending bool
	name    string
}

// observe records a comment. Empty comments leave the cursor untouched.
func (c *subsetCursor) observe(comment string) {
	if comment == "" {
		return
	}
	c.pending, c.name = true, comment
}

func (c *subsetCursor) reset() {
	c.pending, c.name = false, ""
}

// take returns the subset for the rule being processed and clears the
// cursor. Without a pending comment the subset is model.DefaultSubset.
func (c *subsetCursor) take() string {
	defer c.reset()
	if !c.pending {
		return model.DefaultSubset
	}
	return c.name
}
