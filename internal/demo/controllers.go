package demo

import (
	"fmt"
	"strings"

	"github.com/aretw0/arbor/pkg/dispatch"
	"github.com/aretw0/arbor/pkg/session"
)

// posts is the static content backing the demo. A real application would
// load these from storage.
var posts = map[string]string{
	"1": "Growing a dispatch tree",
	"2": "Sessions without a framework",
	"3": "Detachable requests in practice",
}

func rootController() *dispatch.Controller {
	root := dispatch.NewController("Root", "")

	root.End(func(c *dispatch.Context) bool {
		if c.Response().Body().Len() == 0 && !c.Error() {
			c.Response().WriteString("nothing to render\n")
		}
		return true
	})

	root.Action(dispatch.ActionSpec{
		Name:       "index",
		Path:       "/",
		Attributes: map[string]string{"doc": "Greets the visitor and counts visits per session"},
	}, func(c *dispatch.Context) bool {
		visits := 1
		switch prev := session.Value(c, "visits").(type) {
		case int:
			visits = prev + 1
		case float64: // stores that round-trip through JSON widen ints
			visits = int(prev) + 1
		}
		session.SetValue(c, "visits", visits)

		greeting := c.Translate("blog", "Welcome, visitor", 1)
		counter := fmt.Sprintf(c.Translate("blog", "%d visit", visits), visits)
		c.Response().WriteString(greeting + " (" + counter + ")\n")

		if u := c.URIForAction("/blog/index", nil, nil, nil); u != nil {
			c.Response().WriteString("blog: " + u.String() + "\n")
		}
		return true
	})

	return root
}

func blogController() *dispatch.Controller {
	blog := dispatch.NewController("Blog", "blog")

	blog.Auto(func(c *dispatch.Context) bool {
		c.SetStash("section", "blog")
		return true
	})

	blog.Action(dispatch.ActionSpec{
		Name:       "index",
		Path:       "/blog",
		Attributes: map[string]string{"doc": "Lists all posts"},
	}, func(c *dispatch.Context) bool {
		for id, title := range posts {
			u := c.URIForAction("/blog/view", nil, []string{id}, nil)
			if u == nil {
				c.AppendError("view action is not mounted")
				return false
			}
			c.Response().WriteString(title + ": " + u.String() + "\n")
		}
		return true
	})

	blog.Action(dispatch.ActionSpec{
		Name:       "view",
		Args:       1,
		Attributes: map[string]string{"doc": "Shows a single post"},
	}, func(c *dispatch.Context) bool {
		id := c.Request().Args[0]
		title, ok := posts[id]
		if !ok {
			c.Response().SetStatus(404)
			c.Response().WriteString("no such post: " + id + "\n")
			return false
		}
		c.Response().WriteString("# " + title + "\n")
		return true
	})

	blog.Action(dispatch.ActionSpec{
		Name:       "api",
		Attributes: map[string]string{"doc": "Lists posts as JSON"},
	}, func(c *dispatch.Context) bool {
		c.SetStash("posts", posts)
		if !c.SetCustomView("json") {
			c.AppendError("json view is not registered")
			return false
		}
		if err := c.CustomView().Render(c); err != nil {
			c.AppendError(err.Error())
			return false
		}
		return true
	})

	blog.Action(dispatch.ActionSpec{
		Name:       "archive",
		Args:       dispatch.VariableArgs,
		Attributes: map[string]string{"doc": "Filters posts by arbitrary path segments"},
	}, func(c *dispatch.Context) bool {
		c.Response().WriteString("archive filter: " + strings.Join(c.Request().Args, "/") + "\n")
		return true
	})

	return blog
}
