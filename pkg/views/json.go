// Package views provides ready-made view implementations. A view renders a
// context's stash into its response; actions select one with SetCustomView
// or call Render directly.
package views

import (
	"encoding/json"
	"strings"

	"github.com/aretw0/arbor/pkg/dispatch"
)

// JSON renders the stash as a JSON object. Keys starting with "_" are
// reserved for plugins (sessions and the like) and are never exposed.
type JSON struct {
	// Indent pretty-prints the output when set.
	Indent string
}

func (v *JSON) Name() string { return "json" }

func (v *JSON) Render(c *dispatch.Context) error {
	exposed := map[string]any{}
	for k, value := range c.Stash().Map() {
		if strings.HasPrefix(k, "_") {
			continue
		}
		exposed[k] = value
	}

	var (
		data []byte
		err  error
	)
	if v.Indent != "" {
		data, err = json.MarshalIndent(exposed, "", v.Indent)
	} else {
		data, err = json.Marshal(exposed)
	}
	if err != nil {
		return err
	}

	c.Response().SetContentType("application/json")
	_, err = c.Response().Write(data)
	return err
}
