// Package observability turns engine lifecycle hooks into Prometheus metrics
// and serves them, together with the latest committed state, over HTTP.
//
//	m := observability.NewMetrics()
//	eng := engine.New(features, engine.WithLifecycleHooks(m.Hooks()))
//	srv := observability.NewServer(m, features)
//	go srv.ListenAndServe(ctx, ":2112")
package observability
