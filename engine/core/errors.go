package core

import (
	"errors"
)

var (
	ErrSingularTransform      = errors.New("transform is singular and has no inverse")
	ErrDegenerateBasis        = errors.New("degenerate orientation basis")
	ErrInvalidShapeParams     = errors.New("invalid shape parameters")
	ErrShaderCompile          = errors.New("shader program failed to compile or link")
	ErrRenderTargetIncomplete = errors.New("render target is incomplete")
	ErrUnknownUniform         = errors.New("unknown shader parameter")
	ErrResourceNotFound       = errors.New("resource not found")
	ErrInvalidConfig          = errors.New("invalid configuration")
	ErrUnknown                = errors.New("unknown")
)
