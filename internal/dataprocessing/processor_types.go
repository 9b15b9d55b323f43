package dataprocessing

import (
	"path/filepath"
	"strings"
)

// FileInput pairs a document path with the column label it gets in the merged table
type FileInput struct {
	Path  string
	Label string
}

// Options configures the merge engine and the intensity pivot
type Options struct {
	// Workers bounds how many files are loaded at once. 0 or 1 means sequential.
	Workers int
}

// DefaultOptions returns sequential processing options
func DefaultOptions() Options {
	return Options{Workers: 1}
}

// FileStem returns the base name of a path without its extension
func FileStem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// ZipInputs pairs paths with labels. A nil labels slice labels every file by its stem.
func ZipInputs(paths, labels []string) []FileInput {
	inputs := make([]FileInput, len(paths))
	for i, p := range paths {
		label := FileStem(p)
		if labels != nil && i < len(labels) {
			label = labels[i]
		}
		inputs[i] = FileInput{Path: p, Label: label}
	}
	return inputs
}
