package analytics

import (
	"errors"
	"fmt"
)

// ErrInvalidArgument 请求参数非法（预测月数非正、月份越界等）
var ErrInvalidArgument = errors.New("invalid argument")

func invalidArgument(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}
