// Package preflight provides readiness checks for the filesystem paths,
// translation cache and translation provider that whisperxsubs depends on.
//
// The "check" command runs RunAll; "convert" runs the directory and cache
// checks before doing any work. Checks for disabled features are skipped.
package preflight
