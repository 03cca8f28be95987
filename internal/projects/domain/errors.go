package domain

import "errors"

var (
	ErrProjectNotFound = errors.New("project not found")
	ErrDuplicateName   = errors.New("project name already exists")
)
