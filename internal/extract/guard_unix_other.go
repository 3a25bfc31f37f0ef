//go:build unix && !linux

package extract

import "golang.org/x/sys/unix"

func redirectFD(from, to int) error {
	return unix.Dup2(from, to)
}
