// Package preview serves a live preview of a custom element.
//
// The page at / carries a server-rendered snapshot of the element. The
// page script opens /ws, which creates a private Session: its own
// document, scheduler and element. Interactions are sent as ClientMessage
// values; after each one the server replies with the component events it
// raised and a fresh render of the element.
//
//	srv := preview.New(preview.Options{
//	    Definition: labeledinput.Definition(),
//	    Attributes: map[string]string{"name": "email", "label": "Email"},
//	})
//	err := srv.ListenAndServe(ctx, "localhost:4600")
package preview
