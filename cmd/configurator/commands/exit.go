package commands

import (
	"errors"
	"io/fs"

	"github.com/saleor/configurator-sub007/pkg/engine"
)

// Exit codes. Diff always exits 0 on a clean run: reporting changes is
// not a failure, only a crash is.
const (
	exitOK          = 0
	exitGeneric     = 1
	exitInvalidArgs = 2
	exitFileMissing = 3
	exitNetwork     = 4
	exitPermission  = 5
)

// errUsage marks invalid command-line arguments.
var errUsage = errors.New("invalid arguments")

// exitCode maps an error to the process exit code. This is the single
// switch over the error taxonomy; everything below returns classified
// errors and never calls os.Exit.
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, errUsage):
		return exitInvalidArgs
	case errors.Is(err, fs.ErrNotExist):
		return exitFileMissing
	case engine.IsTransport(err):
		return exitNetwork
	case engine.IsPermission(err):
		return exitPermission
	default:
		// Validation and duplicate document errors, aggregate stage
		// failures, and anything unclassified.
		return exitGeneric
	}
}
