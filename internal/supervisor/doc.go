// Package supervisor discovers app bundles and drives each app's
// lifecycle state machine.
//
// States: Discovered → Validated → {Failed};
// Validated → Launched → Running → {Reloading → Running | Closing → Closed}.
//
// Discovery scans the configured apps root; every candidate's manifest
// is read and validated independently, with a per-candidate timeout so
// one slow or hanging read never stalls the rest of the scan. Valid
// descriptors enter the in-memory catalog; invalid ones are recorded as
// failed with a reason and excluded.
//
// Launch registers the app's capability set, creates a window container
// sized per the descriptor, and asks the renderer for a content surface.
// Close tears all of that down and revokes capabilities so no grant
// outlives its instance. Reload re-validates the fresh manifest first
// and preserves the running instance when re-validation fails.
//
// Operations on the same app id are serialized: a close arriving while
// a launch is in flight queues behind it instead of racing a partially
// constructed container. Distinct app ids proceed concurrently.
package supervisor
