// Package refresh periodically re-imports remote-managed forms.
//
// A form is due when its update interval (forms.SyncSettings.UpdateInterval)
// is non-zero and at least that long has passed since its provenance record
// was last updated. The coordinator is an ordinary caller of the service's
// Import, so re-imports take the same per-URL lock as imports started from
// the API or the CLI.
//
//	c := refresh.New(svc, refresh.WithInterval(cfg.Refresh.GetInterval()))
//	go func() { _ = c.Start(ctx) }()
//	defer c.Stop()
package refresh
