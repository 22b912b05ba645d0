package dispatch

import (
	"net/url"
	"strings"
)

// URIFor builds a canonical URI from an explicit path, positional args and
// query parameters. An empty path falls back to the current action's
// controller namespace. The resulting path always carries a leading slash.
//
// Query parameters are serialized in REVERSE iteration order of the input
// mapping. This reproduces a historical ordering quirk kept deliberately for
// compatibility with URIs already in the wild; see the package tests.
func (c *Context) URIFor(path string, args []string, query Params) *url.URL {
	uri := &url.URL{}
	if c.request != nil && c.request.URI != nil {
		uri.Scheme = c.request.URI.Scheme
		uri.Host = c.request.URI.Host
	}

	p := path
	if p == "" {
		// The namespace never carries a leading slash.
		if ctl := c.Controller(); ctl != nil {
			p = ctl.Namespace()
		}
	}

	if len(args) > 0 {
		if p == "/" {
			p += strings.Join(args, "/")
		} else {
			p = p + "/" + strings.Join(args, "/")
		}
	}

	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	uri.Path = p

	if !query.Empty() {
		var sb strings.Builder
		for i := len(query) - 1; i >= 0; i-- {
			if sb.Len() > 0 {
				sb.WriteByte('&')
			}
			sb.WriteString(url.QueryEscape(query[i].Key))
			sb.WriteByte('=')
			sb.WriteString(url.QueryEscape(query[i].Value))
		}
		uri.RawQuery = sb.String()
	}

	return uri
}

// ActionURI builds a URI for an action, re-deriving the path from the live
// dispatch table so generated links stay correct when mounts change. A nil
// action means the currently executing one.
//
// If the action consumes N captures and fewer were supplied, the missing
// captures are pulled from the front of args. If it consumes none, supplied
// captures are demoted to leading args. Returns nil when no path is
// resolvable for the action.
func (c *Context) ActionURI(action *Action, captures, args []string, query Params) *url.URL {
	localAction := action
	if localAction == nil {
		localAction = c.action
	}

	localArgs := append([]string(nil), args...)
	localCaptures := append([]string(nil), captures...)

	expanded := c.dispatcher.ExpandAction(c, localAction)
	if expanded != nil && expanded.NumberOfCaptures() > 0 {
		for len(localCaptures) < expanded.NumberOfCaptures() && len(localArgs) > 0 {
			localCaptures = append(localCaptures, localArgs[0])
			localArgs = localArgs[1:]
		}
	} else {
		localArgs = append(localCaptures, localArgs...)
		localCaptures = nil
	}

	path := c.dispatcher.URIForAction(localAction, localCaptures)
	if path == "" {
		reverse := ""
		if localAction != nil {
			reverse = localAction.Reverse()
		}
		c.logger.Warn("cannot find a uri for action", "action", reverse, "captures", localCaptures)
		return nil
	}

	return c.URIFor(path, localArgs, query)
}

// URIForAction builds a URI for the action registered at the given private
// path. Returns nil and logs a warning when no such action exists.
func (c *Context) URIForAction(path string, captures, args []string, query Params) *url.URL {
	action := c.dispatcher.ActionByPath(path)
	if action == nil {
		c.logger.Warn("cannot find action", "path", path)
		return nil
	}
	return c.ActionURI(action, captures, args, query)
}
