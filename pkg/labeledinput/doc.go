// Package labeledinput is a labeled text, number, password or textarea
// field with inline validation, packaged as a custom element.
//
// The element observes name, placeholder, value, label, errormessage,
// validator, type, min, max and rows. The type attribute picks the control;
// unknown types render a text input. Number fields store float64 values,
// and an empty number input stores nil.
//
// Validation runs whenever the value changes and when the control loses
// focus. The validator property accepts a Validator, a plain function
// returning a message, or a boolean; the attribute form only understands
// "false". A failing check writes the message to the error text and raises
// an "error" event whose detail is the message.
//
// Other events: "input" and "change" carry the value, "blur" carries the
// value after validation, "keypress" and "keyup" carry the key.
//
//	reg := host.NewRegistry(sched)
//	reg.Install(doc)
//	labeledinput.Define(reg)
//	el, _ := reg.Create(doc, labeledinput.Tag, host.Options{
//	    Target: doc.Body(),
//	    Props: map[string]any{
//	        "name":      "password",
//	        "type":      "password",
//	        "label":     "Password",
//	        "validator": labeledinput.MinLength(8, "too short"),
//	    },
//	})
package labeledinput
