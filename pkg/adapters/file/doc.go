// Package file stores session checkpoints as JSON files, one per session.
package file
