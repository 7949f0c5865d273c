// Package host bridges runtime instances to custom element hosts.
//
// A Definition names a tag, its component, the attributes it observes, an
// optional style payload and whether it renders into a shadow root. The
// Registry plays the part of the platform's element registry: it creates
// or upgrades host nodes, and, once installed on a document, turns
// insertions, removals and attribute writes into Connect, Disconnect and
// AttributeChanged calls on the element's Adapter.
//
//	reg := host.NewRegistry(sched)
//	reg.Install(doc)
//	if err := reg.Define(def); err != nil {
//	    return err
//	}
//	el, err := reg.Create(doc, "labeled-input", host.Options{Target: doc.Body()})
//
// Disconnecting an element runs the cleanups returned by its on-mount
// callbacks but keeps the instance; only Destroy tears it down.
package host
