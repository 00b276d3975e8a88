// Package homedir locates the user's home directory for default
// config and database paths.
package homedir

import (
	"os"
	"os/user"
)

// Get returns the home directory, preferring $HOME so that test
// environments can redirect it.
func Get() string {
	if h := os.Getenv("HOME"); h != "" {
		return h
	}
	usr, err := user.Current()
	if err != nil {
		// No $HOME and no passwd entry; fall back to the working
		// directory rather than guessing.
		return "."
	}
	return usr.HomeDir
}
