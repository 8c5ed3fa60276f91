package archive

import "fmt"

// ArchiveError reports an archive that cannot be opened, read or written.
type ArchiveError struct {
	Op    string // open, extract, write
	Path  string
	Entry string
	Err   error
}

func (e *ArchiveError) Error() string {
	if e.Entry != "" {
		return fmt.Sprintf("%s %s (entry %s): %v", e.Op, e.Path, e.Entry, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *ArchiveError) Unwrap() error { return e.Err }
