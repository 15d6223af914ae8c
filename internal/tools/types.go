package tools

// Status captures the resolved state of an external tool.
type Status struct {
	Tool      string            `json:"tool"`
	Version   string            `json:"version,omitempty"`
	Minimum   string            `json:"minimum,omitempty"`
	Path      string            `json:"path,omitempty"`
	Paths     map[string]string `json:"paths,omitempty"`
	Satisfied bool              `json:"satisfied"`
	Error     string            `json:"error,omitempty"`
	Notes     []string          `json:"notes,omitempty"`
}

// BinarySpec describes one executable of a tool.
type BinarySpec struct {
	ID            string
	Executable    string
	VersionSwitch string
}

// ToolDefinition contains what is needed to locate and version a tool.
type ToolDefinition struct {
	Name           string
	MinimumVersion string
	// Optional tools only matter for some encoder backends.
	Optional bool
	Binaries []BinarySpec
}
