//go:build !linux

package diag

import (
	"fmt"
	"os"
)

func OpenSerial(path string, baud int) (*os.File, error) {
	return nil, fmt.Errorf("diag: serial unsupported on this OS (need linux)")
}
