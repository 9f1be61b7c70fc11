package promote

import (
	_ "embed"
	"strings"
)

// Short messages (one-liners)
const (
	// Command descriptions
	MsgRootShort       = "Build, order and verify SQL promotion manifests"
	MsgBuildShort      = "Build the promotion manifest for a source tree"
	MsgVerifyShort     = "Verify a manifest against the source tree"
	MsgListShort       = "List the entries of a manifest in promotion order"
	MsgConfigShort     = "Print the effective configuration"
	MsgVersionShort    = "Print version information"
	MsgVersionLong     = "Print detailed version information including commit hash and build date"
	MsgCompletionShort = "Generate shell completion script"

	// Version output
	MsgVersionFormat = "promote version %s\n"
	MsgCommitFormat  = "Commit: %s\n"
	MsgBuiltFormat   = "Built:  %s\n"

	// Error messages
	MsgErrLoadConfig = "failed to load configuration: %w"
	MsgErrResolver   = "failed to open source tree: %w"
	MsgErrFormat     = "invalid output format: %w"

	// Flag descriptions
	MsgFlagVerbose       = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagDryRun        = "Build without writing the manifest"
	MsgFlagBaseDir       = "Root of the source tree (defaults to the current directory)"
	MsgFlagFormat        = "Output format: auto, term, text, json or yaml"
	MsgFlagLabel         = "Promotion label recorded in the manifest"
	MsgFlagAdditional    = "File of additional properties to merge into entries"
	MsgFlagOutput        = "Where to write the manifest, relative to the base directory"
	MsgFlagVerifyLoaders = "Check that every loader the manifest references is defined"
	MsgFlagManifest      = "Manifest to read, relative to the base directory"
	MsgFlagSkipHash      = "Do not compare file hashes"
	MsgFlagSkipVersion   = "Do not compare the manifest's tool version"
	MsgFlagStrict        = "Fail when the tree holds files the manifest does not list"
	MsgFlagTree          = "Show the listed files as a tree"
	MsgFlagInit          = "Print a commented configuration template"
)

// Long messages from embedded files
var (
	//go:embed msgs/root-long.txt
	msgRootLongRaw string
	MsgRootLong    = strings.TrimSpace(msgRootLongRaw)

	//go:embed msgs/build-long.txt
	msgBuildLongRaw string
	MsgBuildLong    = strings.TrimSpace(msgBuildLongRaw)

	//go:embed msgs/build-example.txt
	msgBuildExampleRaw string
	MsgBuildExample    = strings.TrimRight(msgBuildExampleRaw, "\n")

	//go:embed msgs/verify-long.txt
	msgVerifyLongRaw string
	MsgVerifyLong    = strings.TrimSpace(msgVerifyLongRaw)

	//go:embed msgs/verify-example.txt
	msgVerifyExampleRaw string
	MsgVerifyExample    = strings.TrimRight(msgVerifyExampleRaw, "\n")

	//go:embed msgs/list-example.txt
	msgListExampleRaw string
	MsgListExample    = strings.TrimRight(msgListExampleRaw, "\n")

	//go:embed msgs/config-long.txt
	msgConfigLongRaw string
	MsgConfigLong    = strings.TrimSpace(msgConfigLongRaw)

	//go:embed msgs/completion-long.txt
	msgCompletionLongRaw string
	MsgCompletionLong    = strings.TrimSpace(msgCompletionLongRaw)

	//go:embed msgs/usage-template.txt
	msgUsageTemplateRaw string
	MsgUsageTemplate    = strings.TrimSpace(msgUsageTemplateRaw)
)
