//go:build !unix

package execx

import "os"

func interrupt(p *os.Process) error {
	return p.Kill()
}
