package dom

import (
	"bytes"
	"fmt"
	"io"
)

// RenderOptions configures serialization.
type RenderOptions struct {
	// Shadow includes attached shadow roots as declarative
	// <template shadowrootmode="open"> children.
	Shadow bool

	// LiveValues serializes the value property of form controls: as a value
	// attribute for <input> and as text content for <textarea>. This gives a
	// snapshot of what the user sees rather than the markup alone.
	LiveValues bool
}

// OuterHTML serializes n with shadow roots and live values included.
func (n *Node) OuterHTML() string {
	var buf bytes.Buffer
	_ = Render(&buf, n, RenderOptions{Shadow: true, LiveValues: true})
	return buf.String()
}

// InnerHTML serializes the children of n.
func (n *Node) InnerHTML() string {
	var buf bytes.Buffer
	opts := RenderOptions{Shadow: true, LiveValues: true}
	for _, c := range n.children {
		_ = Render(&buf, c, opts)
	}
	return buf.String()
}

// Render streams n to w.
func Render(w io.Writer, n *Node, opts RenderOptions) error {
	if n == nil {
		return nil
	}

	switch n.Type {
	case ElementNode:
		return renderElement(w, n, opts)
	case TextNode:
		return renderText(w, n)
	case DocumentNode, ShadowRootNode:
		return renderChildren(w, n, opts)
	default:
		return fmt.Errorf("dom: unknown node type: %d", n.Type)
	}
}

func renderElement(w io.Writer, n *Node, opts RenderOptions) error {
	if _, err := fmt.Fprintf(w, "<%s", n.Tag); err != nil {
		return err
	}

	liveInput := opts.LiveValues && n.Tag == "input" && n.hasValue
	for _, a := range n.attrs {
		if liveInput && a.Name == "value" {
			continue
		}
		if _, err := fmt.Fprintf(w, ` %s="%s"`, a.Name, escapeAttr(a.Value)); err != nil {
			return err
		}
	}
	if liveInput {
		if _, err := fmt.Fprintf(w, ` value="%s"`, escapeAttr(n.value)); err != nil {
			return err
		}
	}
	if _, err := w.Write([]byte{'>'}); err != nil {
		return err
	}

	if isVoid(n.Tag) {
		return nil
	}

	if opts.Shadow && n.shadow != nil {
		if _, err := io.WriteString(w, `<template shadowrootmode="open">`); err != nil {
			return err
		}
		if err := renderChildren(w, n.shadow, opts); err != nil {
			return err
		}
		if _, err := io.WriteString(w, `</template>`); err != nil {
			return err
		}
	}

	switch {
	case opts.LiveValues && n.Tag == "textarea" && n.hasValue:
		if _, err := io.WriteString(w, escapeHTML(n.value)); err != nil {
			return err
		}
	case isRawText(n.Tag):
		if _, err := io.WriteString(w, n.TextContent()); err != nil {
			return err
		}
	default:
		if err := renderChildren(w, n, opts); err != nil {
			return err
		}
	}

	_, err := fmt.Fprintf(w, "</%s>", n.Tag)
	return err
}

func renderText(w io.Writer, n *Node) error {
	_, err := io.WriteString(w, escapeHTML(n.Data))
	return err
}

func renderChildren(w io.Writer, n *Node, opts RenderOptions) error {
	for _, c := range n.children {
		if err := Render(w, c, opts); err != nil {
			return err
		}
	}
	return nil
}
