package rules

// Rule is one Files: block of a builder config file
type Rule struct {
	// Pattern is the wildcard path from the Files: instruction
	Pattern string
	// Loader is the default loader for matched files
	Loader string
	// StartOffset is added to the previous rule's start position
	StartOffset int
	// FileOffset is the step between consecutive files of this rule
	FileOffset int
	// Properties are the default properties for matched files
	Properties map[string]string
	// Line is where the block's Files: instruction appears
	Line int
}

// Match is a path produced by expanding a rule's pattern
type Match struct {
	Path        string
	IsDirectory bool
}
