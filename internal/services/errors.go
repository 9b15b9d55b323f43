package services

import "errors"

// ErrConflictingSelection is returned when a request names both a group and files
var ErrConflictingSelection = errors.New("select documents by group or by file list, not both")
