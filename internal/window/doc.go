// Package window tracks live window containers and mediates focus.
//
// The Registry keeps an ordered list of containers per stacking layer
// and owns z-order assignment: z values grow monotonically within a
// layer and freed slots are never reused in a session, so the most
// recently raised container is always on top. Layer order is fixed:
// panel < dock < widget < notification < overlay.
//
// The FocusCoordinator holds the focused container as an id into the
// Registry, never a pointer, with a bounded most-recent-first history.
// Focus transfer is synchronous and has no failure mode: requesting
// focus on an unregistered container is a benign no-op, which tolerates
// races between close and focus-follow.
package window
