package models

// Kind classifies a filesystem resource.
type Kind int

const (
	KindOther Kind = iota // symlink, device, socket and anything else
	KindFile
	KindDirectory
)

func (k Kind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindDirectory:
		return "directory"
	default:
		return "other"
	}
}

// Child is one item of a directory listing.
type Child struct {
	Name string
	Kind Kind
}
