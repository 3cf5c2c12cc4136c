package ports

// LibraryRegistry stores heavyweight third-party libraries that engines load
// once and share across instances.
type LibraryRegistry interface {
	// Get returns the library stored under name. Absent keys yield (nil, false).
	Get(name string) (any, bool)

	// Set stores a library under name. Last write wins.
	Set(name string, lib any)

	// LoadOrStore returns the library under name, calling create to create and
	// store it when absent. create runs at most once per name.
	LoadOrStore(name string, create func() (any, error)) (any, error)
}
