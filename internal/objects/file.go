package objects

import (
	"github.com/vk/buildmodel/internal/fsmodel"
	"github.com/vk/buildmodel/internal/props"
)

// FilePropertyFactory builds the filesystem-valued scalar properties. The
// real implementation lives with the file engine; the facade only forwards.
type FilePropertyFactory interface {
	DirectoryProperty() (*props.Scalar, error)
	FileProperty() (*props.Scalar, error)
}

// FileCollectionFactory builds path-collection properties: a flat file
// collection and a recursive file tree.
type FileCollectionFactory interface {
	FileCollection() (*props.List, error)
	FileTree() (*props.List, error)
}

// defaultFileFactory keeps sessions runnable without a real file engine.
// The properties it builds carry the model types but no filesystem
// resolution.
type defaultFileFactory struct {
	host props.Host
}

func (d defaultFileFactory) DirectoryProperty() (*props.Scalar, error) {
	return props.NewScalarOf(d.host, fsmodel.DirectoryType)
}

func (d defaultFileFactory) FileProperty() (*props.Scalar, error) {
	return props.NewScalarOf(d.host, fsmodel.FileType)
}

func (d defaultFileFactory) FileCollection() (*props.List, error) {
	return props.NewList(d.host, fsmodel.FileType)
}

func (d defaultFileFactory) FileTree() (*props.List, error) {
	return props.NewList(d.host, fsmodel.FileType)
}
