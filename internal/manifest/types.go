package manifest

// FileName is the manifest file every package carries at its root.
const FileName = "package.json"

// Package holds the manifest fields the CLI reads.
type Package struct {
	Name         string            `json:"name"`
	Version      string            `json:"version"`
	Main         string            `json:"main"`
	Lib          string            `json:"lib"`
	Dependencies map[string]string `json:"dependencies"`
}

// Entry returns the declared entry field, preferring main over lib.
func (p *Package) Entry() string {
	if p.Main != "" {
		return p.Main
	}
	return p.Lib
}
