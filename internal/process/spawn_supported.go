//go:build !(js || wasip1 || ios)

package process

// CanSpawn reports whether this build can launch OS processes.
const CanSpawn = true
