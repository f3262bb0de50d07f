package repository

// FileStoreOption applies a configuration option to the FileStore.
type FileStoreOption func(*FileStore)

// WithIndent sets the JSON indentation used for written artifacts.
func WithIndent(indent string) FileStoreOption {
	return func(s *FileStore) {
		s.indent = indent
	}
}
