//go:build !linux

package hostid

func uname() (string, error) {
	return "", ErrUnsupported
}
