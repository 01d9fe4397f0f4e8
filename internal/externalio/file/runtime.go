package file

import "errors"

// Flushes remaining lines and closes the file
func (mod *OutModule) Shutdown() (err error) {
	if mod == nil {
		return
	}
	_, flushErr := mod.FlushBuffer()

	var closeErr error
	if mod.sink != nil {
		closeErr = mod.sink.Close()
	}
	err = errors.Join(flushErr, closeErr)
	return
}
