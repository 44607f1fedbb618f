package manifest

import "path/filepath"

// Names holds the manifest file and the sibling files one operation may
// create next to it. All siblings live in the manifest's directory and are
// derived from its name, so the scanner can exclude them by basename when
// the manifest sits inside the tree being scanned.
type Names struct {
	// Final is the manifest itself.
	Final string

	// Temp is the in-progress file a new manifest is streamed into before
	// the atomic rename.
	Temp string

	// Previous is the backup the old manifest is renamed to during update.
	Previous string

	// Report is the default verification report file.
	Report string

	// Checkpoint is the verification resume checkpoint file.
	Checkpoint string
}

// Derive computes the sibling names for a manifest path.
func Derive(manifestPath string) Names {
	return Names{
		Final:      manifestPath,
		Temp:       manifestPath + ".inprogress",
		Previous:   manifestPath + ".previous",
		Report:     manifestPath + ".report",
		Checkpoint: manifestPath + ".resume",
	}
}

// Basenames returns the base names of every file in n, for scanner exclusion.
func (n Names) Basenames() []string {
	return []string{
		filepath.Base(n.Final),
		filepath.Base(n.Temp),
		filepath.Base(n.Previous),
		filepath.Base(n.Report),
		filepath.Base(n.Checkpoint),
	}
}

// Dir returns the directory containing the manifest.
func (n Names) Dir() string {
	return filepath.Dir(n.Final)
}
