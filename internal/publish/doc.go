// Package publish renders a custom element into a static bundle and uploads
// it to S3.
//
// A Bundle holds index.html, a page with the server-rendered element, and
// the element's style sheet as a separate file. WriteDir writes it to disk;
// a Publisher uploads it under a key prefix:
//
//	b, err := publish.Build(labeledinput.Definition(), publish.Options{
//	    Attributes: map[string]string{"name": "email", "label": "Email"},
//	})
//	p, err := publish.NewPublisher(s3.NewFromConfig(cfg), "my-bucket", "demo")
//	keys, err := p.Publish(ctx, b)
package publish
