// Package entities provides core domain entities for tmplkit.
// These are plain data types shared by the template contract, the engine
// registry and the pipeline. Engine-specific types belong in the engines.
package entities
