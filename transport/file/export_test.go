package file

import "github.com/vpbank/msgproxy/pkg/msgproxy/stage"

// BuildForTest exposes the unexported constructor to this package's tests.
func BuildForTest(position int, path string) (stage.Stage, error) {
	return newFile(position, path, nil)
}
