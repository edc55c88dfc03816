// Package cmd provides command implementations for the hpcbase CLI.
package cmd

// Exit codes. Code 3 is unused: hpcbase never contacts a remote service.
const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess = 0

	// ExitGeneralError indicates an unspecified error occurred.
	ExitGeneralError = 1

	// ExitValidationError indicates a recipe, values file or config was rejected.
	ExitValidationError = 2

	// ExitPermissionDenied indicates a file could not be written.
	ExitPermissionDenied = 4

	// ExitNotFound indicates a recipe, file or config was not found.
	ExitNotFound = 5
)

// ExitCodeName returns the name of the exit code.
func ExitCodeName(code int) string {
	switch code {
	case ExitSuccess:
		return "Success"
	case ExitGeneralError:
		return "General Error"
	case ExitValidationError:
		return "Validation Error"
	case ExitPermissionDenied:
		return "Permission Denied"
	case ExitNotFound:
		return "Not Found"
	default:
		return "Unknown"
	}
}
