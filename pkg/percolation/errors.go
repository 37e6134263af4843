package percolation

import "errors"

var (
	// ErrInvalidArgument 网格边长不是正数
	ErrInvalidArgument = errors.New("percolation: 参数非法")
	// ErrOutOfRange 行或列不在 [0, N) 范围内
	ErrOutOfRange = errors.New("percolation: 坐标越界")
)
