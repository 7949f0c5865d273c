// Package dom is the in-memory document model the element runtime renders
// into.
//
// It covers the subset of the platform the runtime needs: element and text
// nodes, attributes, the input value property, event listeners with
// bubbling, open shadow roots with composed propagation and target
// retargeting, id lookup, focus, and HTML serialization.
//
// # Element Lifecycle Hooks
//
// A Document reports structural changes through Hooks. The element registry
// in pkg/host installs them to learn when a host node is connected,
// disconnected, or has an attribute changed:
//
//	doc := dom.NewDocument()
//	doc.SetHooks(dom.Hooks{
//	    Connected: func(n *dom.Node) { ... },
//	})
//
// A Document is not safe for concurrent use. Each document is driven from a
// single goroutine, together with its scheduler.
package dom
