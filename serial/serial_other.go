//go:build !linux

package serial

func FindPortName(description string) (string, error) {
	// no-op for other OSes
	return "", NoTracePortFound
}
