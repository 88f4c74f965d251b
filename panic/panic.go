// Package panic contains a crash inside a single unit of work, so one
// bad image never takes the whole tool down.
package panic

// Do runs fn; if it panics, handler receives the recovered value.
func Do(fn func(), handler func(r interface{})) {
	defer func() {
		if r := recover(); r != nil {
			handler(r)
		}
	}()

	fn()
}
