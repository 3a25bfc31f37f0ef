//go:build linux

package extract

import "golang.org/x/sys/unix"

func redirectFD(from, to int) error {
	return unix.Dup3(from, to, 0)
}
