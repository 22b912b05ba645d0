/*
Package dispatch implements the request-context core of arbor: per-request
state (stash, action stack, response, locale, async detachment), action
resolution from URIs and back, and the execution engine that drives
controller/filter/action chains.

# Concept

Every inbound request gets its own Context. The Context owns the Request and
Response, a Stash for scratch data, and the ordered stack of components
currently executing. Controllers register Actions with the Dispatcher, which
matches request paths to actions, runs the Begin -> Auto -> Action -> End
chain through Context.Execute, and renders canonical URIs back from live
route data.

A handler may suspend the synchronous chain with Context.DetachAsync and
resume it later with Context.AttachAsync; the remaining chain components are
replayed strictly in order once every detachment has been matched.

# Concurrency

A Context is confined to one logical thread of control: there is no internal
locking because exactly one goroutine executes a request's handler chain at a
time, and suspension happens only at the explicit async boundaries.
Concurrency across requests comes from independent Context instances.
*/
package dispatch
