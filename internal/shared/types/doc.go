// Package types provides shared data structures for the mini-app host.
//
// This package defines the core types used across all host components,
// ensuring type safety and consistent data structures.
//
// Core Types:
//   - AppDescriptor: Validated app manifest contents
//   - CapabilitySet: Per-category permission grants
//   - AppInstance: Running occurrence of an app id
//   - WindowContainer: On-screen region with layer and z-order
//
// State Management:
//   - InstanceState: Lifecycle state enum (discovered through closed)
//   - Layer: Fixed window stacking layers (panel through overlay)
//   - ScanReport: Aggregated discovery results
//
// The CapabilitySet is deliberately a tagged struct with one explicit
// field per category rather than a nested map: an absent category and a
// false action are distinguishable at compile time.
package types
