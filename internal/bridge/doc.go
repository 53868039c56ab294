// Package bridge dispatches privileged calls from running apps to host
// providers. Every call is named "category.action", checked against the
// caller's granted capability set before the provider runs, and
// serialized per app id so an app observes its own calls in order.
package bridge
