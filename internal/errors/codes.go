package errors

// PostgreSQL Error Codes (SQLSTATE) used by sqldumpfix.
// Based on PostgreSQL error codes: https://www.postgresql.org/docs/current/errcodes-appendix.html

// Class 00 - Successful Completion
const (
	SuccessfulCompletion = "00000"
)

// Class 01 - Warning
const (
	Warning = "01000"
)

// Class 22 - Data Exception
const (
	DataException            = "22000"
	CharacterNotInRepertoire = "22021"
	InvalidParameterValue    = "22023"
	UntranslatableCharacter  = "22P05"
)

// Class 42 - Syntax Error or Access Rule Violation
const (
	SyntaxError           = "42601"
	InsufficientPrivilege = "42501"
)

// Class 53 - Insufficient Resources
const (
	DiskFull = "53100"
)

// Class 58 - System Error (errors external to PostgreSQL itself)
const (
	SystemError   = "58000"
	IOError       = "58030"
	UndefinedFile = "58P01"
)

// Class F0 - Configuration File Error
const (
	ConfigFileError = "F0000"
	LockFileExists  = "F0001"
)

// Class XX - Internal Error
const (
	InternalError = "XX000"
)
