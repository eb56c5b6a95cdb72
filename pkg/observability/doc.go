/*
Package observability exports loop activity as Prometheus metrics.

Metrics plugs into the loop through repl.Hooks and serves its registry over HTTP:

	m := observability.NewMetrics("replet")
	r, _ := repl.New[Command](src, g, dec, h, repl.WithHooks(m.Hooks()))
	go m.Serve(ctx, ":2112", logger)
*/
package observability
