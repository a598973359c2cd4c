package storage

// Archive persists run artifacts (reports, snapshots) outside the
// mention store. Names are slash-separated paths.
type Archive interface {
	Store(name string, data []byte) error
	Retrieve(name string) ([]byte, error)
	List(prefix string) ([]string, error)
	Delete(name string) error
}
