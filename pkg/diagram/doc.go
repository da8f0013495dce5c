// Package diagram composes the document, tree, layout, visibility, search
// and interaction packages into a single interactive view.
//
// # Ownership
//
// A [View] owns the graph and every piece of state derived from it. Hosts
// (the terminal explorer, a WebSocket session) call View methods from one
// goroutine; a View is not safe for concurrent use.
//
// # Versions
//
// Every structural rebuild ([View.Load], an accepted [View.Edit]) increments
// the view version. Deferred work captured before a rebuild must not act on
// the new graph:
//
//	run := view.Guard(view.Version(), func() { view.FireSearch(ctx, ticket) })
//	time.AfterFunc(ticket.Delay, func() { post(run) })
//
// Operations that name a node id which no longer exists are no-ops.
//
// # Rendering boundary
//
// [View.Scene] returns the nodes and edges to draw. Operations that want the
// viewport adjusted (load, relayout, search focus) queue a
// [ViewportRequest]; the host renders the scene first and then drains
// [View.TakeViewportRequests]. Requests queued before the latest rebuild are
// discarded at that point.
package diagram
