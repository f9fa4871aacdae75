// Package routines provides the registry of local utility routines that debots
// reach through CallEngine actions, plus the built-in set.
package routines
