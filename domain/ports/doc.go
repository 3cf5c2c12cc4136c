// Package ports defines the interfaces of the template contract.
// Engines, the pipeline and infrastructure adapters depend on these
// abstractions rather than on each other.
package ports
