package ir

// Version is the datediff module version, reported by the CLI.
const Version = "0.1.0"
