package main

import "flag"

// flagSet is an alias kept local to this binary so flagSetFor's return
// type doesn't leak the stdlib name into every call site.
type flagSet = flag.FlagSet

// newFlagSet builds a stdlib FlagSet scoped to one subcommand name, used
// only for its usage/error messages - the flags registered on it are the
// same across all three subcommands.
func newFlagSet(subcommand string) *flagSet {
	return flag.NewFlagSet(subcommand, flag.ExitOnError)
}
