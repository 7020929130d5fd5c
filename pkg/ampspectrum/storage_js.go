//go:build js && wasm

package ampspectrum

// NewSQLiteStorage is unavailable in the browser build.
func NewSQLiteStorage(dbPath string) (Storage, error) {
	return nil, ErrPersistenceDisabled
}
