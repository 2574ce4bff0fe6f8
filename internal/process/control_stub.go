//go:build !linux

package process

import (
	"github.com/rileyhilliard/pstop/internal/errors"
)

func getNice(_ int32) (int, error) {
	return 0, errors.ErrUnsupported
}

func setNice(_ int32, _ int) error {
	return errors.ErrUnsupported
}

func getAffinity(_ int32) ([]int, error) {
	return nil, errors.ErrUnsupported
}

func setAffinity(_ int32, _ []int) error {
	return errors.ErrUnsupported
}

func setIOPriority(_ int32, _ int) error {
	return errors.ErrUnsupported
}

func classify(err error) error {
	return err
}
