// Package providers contains the host-side implementations of the
// privileged services apps call through the bridge. Each subpackage
// serves one capability category and is only reachable by apps whose
// manifest granted that category.
package providers
