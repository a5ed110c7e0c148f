//go:build js || wasip1 || ios

package process

const CanSpawn = false
