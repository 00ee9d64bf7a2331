package corpus

import "errors"

var (
	// ErrDocsPathNotFound indicates the configured docs directory does not exist.
	ErrDocsPathNotFound = errors.New("documentation path not found")

	// ErrDocsDirWalkFailed indicates filesystem traversal of the docs directory failed.
	ErrDocsDirWalkFailed = errors.New("documentation directory walk failed")

	// ErrFileReadFailed indicates reading a document failed.
	ErrFileReadFailed = errors.New("documentation file read failed")

	// ErrInvalidFrontMatter indicates a document's front matter could not be parsed.
	ErrInvalidFrontMatter = errors.New("invalid front matter")

	// ErrDuplicateID indicates two documents resolve to the same id.
	ErrDuplicateID = errors.New("duplicate document id")

	// ErrPathCollision indicates two documents map to the same route.
	ErrPathCollision = errors.New("path collision detected")
)
