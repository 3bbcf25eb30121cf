package util

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// Options carries the settings that steer a single compilation run. It replaces the teacher's hand-rolled
// os.Args parser: command line parsing itself is now done by cobra in cmd/gonec, and Options is simply the
// struct those commands populate and the compiler stages consume.
type Options struct {
	Src     string // Path to source file. Empty means read from stdin.
	Out     string // Path to output file. Empty means write to stdout.
	Threads int     // Worker count for the checker's optional parallel function-body pass. 0 or 1 means sequential.
	Verbose bool    // Set true if the compiler should log statistical data.
}

// ---------------------
// ----- Constants -----
// ---------------------

// MaxThreads defines the maximum number of worker threads the checker will spawn for its optional parallel pass.
const MaxThreads = 64
