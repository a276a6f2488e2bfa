//go:build !dev

package buildmode

// Dev is true for development builds.
const Dev = false
