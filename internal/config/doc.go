// Package config provides configuration parsing for labeled-input.
//
// The configuration is stored in labeled-input.json or labeled-input.yaml
// next to the pages that use the field. This package handles loading,
// saving, and validating configuration.
//
// # Configuration File Structure
//
//	tag: labeled-input
//	shadow: true
//	dispatch: composed
//	style: ./field.css
//	attributes:
//	  name: email
//	  label: Email
//	log:
//	  level: info
//	  format: json
//	preview:
//	  host: localhost
//	  port: 4600
//	publish:
//	  output: dist
//	  bucket: my-widgets
//	  prefix: fields
//	  region: eu-west-1
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Preview:", cfg.PreviewURL())
package config
