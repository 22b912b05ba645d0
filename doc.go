/*
Package arbor is a request-dispatch engine for building server-side web
applications around controllers, actions, and an explicit per-request context.

It implements a "Chained Dispatch with Detachable Requests" architecture,
separating the dispatch table (Routes) from the per-request state (Context)
and the wire protocol (Transports).

# Concept

Arbor treats an application as a tree of controller namespaces. Each public
action is mounted at a path; a matched request runs a chain of components
around it: the nearest Begin hook, every Auto hook from the root namespace
down, the action itself, and the nearest End hook. The Context carries the
request, the response under construction, a free-form stash, and the error
and state flags the chain communicates through. This Hexagonal Architecture
keeps the engine independent of any particular server: HTTP, CLI
introspection, and agent tooling are all adapters.

# Key Features

  - Chained dispatch: Begin/Auto/Action/End with deny-by-failure Autos.
  - Detachable requests: an action can suspend the chain, finish work on
    another goroutine, and resume exactly where it left off.
  - Live URI generation: links are derived from the dispatch table, so they
    stay correct when mounts change.
  - Pluggable sessions, per-request profiling, and OpenAPI export of the
    public surface.

# Usage

Create an application, register controllers, and hand it to a transport
adapter.

	package main

	import (
		"log"
		"net/http"

		"github.com/aretw0/arbor"
		adapter "github.com/aretw0/arbor/pkg/adapters/http"
		"github.com/aretw0/arbor/pkg/dispatch"
	)

	func main() {
		app, err := arbor.New("hello")
		if err != nil {
			log.Fatal(err)
		}

		root := dispatch.NewController("Root", "")
		root.Action(dispatch.ActionSpec{Name: "index", Path: "/"}, func(c *dispatch.Context) bool {
			c.Response().WriteString("Hello, world!")
			return true
		})
		if err := app.Register(root); err != nil {
			log.Fatal(err)
		}

		log.Fatal(http.ListenAndServe(":3000", adapter.NewHandler(app)))
	}
*/
package arbor
