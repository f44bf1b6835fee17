package graph

import "errors"

var (
	// ErrConfig reports a node that cannot be built: bad control points,
	// out-of-range parameters or a dangling input reference.
	ErrConfig = errors.New("terrain config")
	// ErrCompute reports an evaluation that produced NaN or Inf.
	ErrCompute = errors.New("terrain compute")
)
