// Package render provides server-side rendering for custom elements.
//
// A Field hosts one element in a private document so it can be rendered,
// driven with synthetic events and serialized. Shadow roots serialize as
// declarative <template shadowrootmode="open"> children, so the markup
// renders without script.
//
// # Basic Usage
//
//	f, err := render.NewField(labeledinput.Definition(), render.FieldConfig{
//	    Attributes: map[string]string{"name": "email", "label": "Email"},
//	})
//	if err != nil {
//	    return err
//	}
//	markup := f.HTML()
//
// # Full Page Rendering
//
//	err := render.RenderPage(w, render.PageData{
//	    Title: "Preview",
//	    Body:  f.HTML(),
//	})
//
// Body and inline styles and scripts are written unescaped and must be
// trusted; titles, meta values and URLs are escaped.
package render
