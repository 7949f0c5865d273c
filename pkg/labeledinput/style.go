package labeledinput

// Style is the style sheet injected into each field's rendering root. The
// label sits after the control in markup and is flipped above it with
// column-reverse, so the :placeholder-shown + label rules can float it.
const Style = `.error{color:red;font-size:75%}` +
	`.field{display:flex;flex-flow:column-reverse;margin-bottom:1.5em}` +
	`label,input,textarea{transition:all 0.2s;touch-action:manipulation}` +
	`label{position:relative;font-size:0.8em;top:0em}` +
	`input,textarea{font-size:1em;border:0;border-bottom:1px solid #ccc;font-family:inherit;font-weight:200;-webkit-appearance:none;border-radius:0;padding:0;cursor:text}` +
	`textarea{resize:vertical}` +
	`input:focus,textarea:focus{outline:0;border-bottom:1px solid #666}` +
	`input:placeholder-shown+label,textarea:placeholder-shown+label{cursor:text;max-width:0%;white-space:nowrap;overflow:unset;text-overflow:ellipsis;transform-origin:left top;transform:translate(0, 1.2em) scale(1.2)}` +
	`::-webkit-input-placeholder{opacity:0;transition:inherit}` +
	`::-moz-placeholder{opacity:0;transition:inherit}` +
	`input:focus::-webkit-input-placeholder{opacity:0.5}` +
	`input:focus::-moz-placeholder{opacity:0.5}` +
	`input:not(:placeholder-shown)+label,input:focus+label,textarea:focus+label{transform:translate(0, 0) scale(1);cursor:pointer}`
