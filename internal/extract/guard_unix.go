//go:build unix

package extract

import (
	"os"

	"golang.org/x/sys/unix"
)

// NewStreamGuard duplicates stdout and stderr, then swaps /dev/null onto
// file descriptors 1 and 2 while extractions hold the guard. The
// duplicates give the logger and the CLI a path to the terminal that
// survives suppression. Descriptor setup failure degrades to an inert
// guard rather than an error.
func NewStreamGuard() StreamGuard {
	savedOut, err := dupFD(int(os.Stdout.Fd()))
	if err != nil {
		return NewNoopGuard()
	}
	savedErr, err := dupFD(int(os.Stderr.Fd()))
	if err != nil {
		_ = unix.Close(savedOut)
		return NewNoopGuard()
	}
	null, err := os.OpenFile(os.DevNull, os.O_WRONLY, 0)
	if err != nil {
		_ = unix.Close(savedOut)
		_ = unix.Close(savedErr)
		return NewNoopGuard()
	}

	outFile := os.NewFile(uintptr(savedOut), "stdout")
	errFile := os.NewFile(uintptr(savedErr), "stderr")

	return &fdGuard{
		out:    outFile,
		errOut: errFile,
		silence: func() error {
			if err := redirectFD(int(null.Fd()), 1); err != nil {
				return err
			}
			return redirectFD(int(null.Fd()), 2)
		},
		restore: func() error {
			if err := redirectFD(savedOut, 1); err != nil {
				return err
			}
			return redirectFD(savedErr, 2)
		},
		closer: func() error {
			err := null.Close()
			if cerr := outFile.Close(); err == nil {
				err = cerr
			}
			if cerr := errFile.Close(); err == nil {
				err = cerr
			}
			return err
		},
	}
}

func dupFD(fd int) (int, error) {
	return unix.FcntlInt(uintptr(fd), unix.F_DUPFD_CLOEXEC, 3)
}
