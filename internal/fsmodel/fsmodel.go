// Package fsmodel defines the filesystem-valued types of the object model:
// directories and regular files as model values, and the capsule types that
// let them travel through the cty-typed construction surface.
//
// Resolution against a real filesystem is owned by an external file engine;
// this package only models the values and their type identities.
package fsmodel

import (
	"reflect"

	"github.com/zclconf/go-cty/cty"
)

// Directory is a model value identifying a filesystem directory.
type Directory struct {
	Path string
}

// RegularFile is a model value identifying a single regular file.
type RegularFile struct {
	Path string
}

// DirectoryType is the cty identity of Directory values.
var DirectoryType = cty.Capsule("directory", reflect.TypeOf(Directory{}))

// FileType is the cty identity of RegularFile values.
var FileType = cty.Capsule("regular file", reflect.TypeOf(RegularFile{}))

// DirectoryVal wraps a Directory as a model value.
func DirectoryVal(d Directory) cty.Value {
	return cty.CapsuleVal(DirectoryType, &d)
}

// FileVal wraps a RegularFile as a model value.
func FileVal(f RegularFile) cty.Value {
	return cty.CapsuleVal(FileType, &f)
}
