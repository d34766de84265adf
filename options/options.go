// Package options defines the functional option contract shared by the constructors in this module.
package options

// ClientOption is implemented by options accepted by a constructor of T.
// Example:
// ```
//
//	type traceOpt struct{ on bool }
//	func (o *traceOpt) Apply(c *Client) { c.trace = o.on }
//	func (o *traceOpt) ClientOptionName() string { return "trace" }
//
// ```
type ClientOption[T any] interface {
	Apply(*T)
	ClientOptionName() string
}

// ApplyOptions applies opts to target in order. Nil options are skipped.
func ApplyOptions[T any](target *T, opts ...ClientOption[T]) {
	for _, o := range opts {
		if o == nil {
			continue
		}
		o.Apply(target)
	}
}

// Names returns the option names in order, which is mostly useful in logs.
func Names[T any](opts ...ClientOption[T]) []string {
	names := make([]string, 0, len(opts))
	for _, o := range opts {
		if o == nil {
			continue
		}
		names = append(names, o.ClientOptionName())
	}
	return names
}
