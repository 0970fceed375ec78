// Package cli parses the warden command line. It validates flag input,
// carries exit codes for main via ExitError, and reduces everything the
// operator typed to the app.Options the application is built from. Flags
// override the YAML settings file; unset flags leave the file's values
// alone.
package cli
