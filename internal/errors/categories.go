package errors

import (
	"errors"
	"io/fs"
	"syscall"
)

// Category-specific error constructors for file and rewrite operations

// File errors

// FileError classifies an error returned by the os package for path.
func FileError(err error, op string, path string) *Error {
	var code string
	var message string
	switch {
	case errors.Is(err, fs.ErrNotExist):
		code = UndefinedFile
		message = "could not open file \"" + path + "\": No such file or directory"
	case errors.Is(err, fs.ErrPermission):
		code = InsufficientPrivilege
		message = "could not access file \"" + path + "\": Permission denied"
	case errors.Is(err, syscall.ENOSPC):
		code = DiskFull
		message = "could not write to file \"" + path + "\": No space left on device"
	default:
		code = IOError
		message = "could not " + op + " file \"" + path + "\""
	}
	return Wrap(err, code, message).WithPath(path).WithRoutine(op)
}

// Encoding errors

func UnknownEncodingError(name string) *Error {
	return Newf(InvalidParameterValue, "invalid encoding name \"%s\"", name).
		WithHint("Use a WHATWG encoding label such as utf-8, windows-1258 or latin1.")
}

func InvalidByteSequenceError(encoding string, err error) *Error {
	return Wrap(err, CharacterNotInRepertoire, "invalid byte sequence for encoding \""+encoding+"\"")
}

func UntranslatableCharacterError(encoding string, err error) *Error {
	return Wrap(err, UntranslatableCharacter, "character has no equivalent in encoding \""+encoding+"\"")
}

// Configuration errors

func InvalidConfigError(format string, args ...interface{}) *Error {
	return Newf(InvalidParameterValue, format, args...)
}

func ConfigFileParseError(path string, err error) *Error {
	return Wrap(err, ConfigFileError, "could not parse configuration file \""+path+"\"").
		WithPath(path)
}
