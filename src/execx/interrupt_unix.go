//go:build unix

package execx

import (
	"os"

	"golang.org/x/sys/unix"
)

// interrupt sends SIGINT so encoders such as ffmpeg finalize their output.
func interrupt(p *os.Process) error {
	return unix.Kill(p.Pid, unix.SIGINT)
}
