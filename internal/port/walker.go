package port

// DirectoryLister enumerates the entries of one directory.
type DirectoryLister interface {
	List(dir string) ([]FileInfo, error)
}

type FileInfo struct {
	Name    string
	Path    string
	ModTime int64
	Size    int64
}
