package entities

import (
	"errors"
	"fmt"
	"regexp"
)

// ErrUserAbort is returned when the operator declines or selects nothing.
// It ends the run cleanly and is not reported as a failure.
var ErrUserAbort = errors.New("release aborted by operator")

// ErrAlreadyPublished is returned by build systems when the exact version
// already exists in the registry.
var ErrAlreadyPublished = errors.New("version already published")

// VerificationError reports failing tests on the isolated workspace copy.
type VerificationError struct {
	Package string
}

func (e *VerificationError) Error() string {
	return fmt.Sprintf("tests failed for package %s", e.Package)
}

// PublishError reports a publish failure other than an already published version.
type PublishError struct {
	Package string
	Cause   error
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("failed to publish package %s: %v", e.Package, e.Cause)
}

func (e *PublishError) Unwrap() error { return e.Cause }

// RepositoryError reports a fatal source control failure.
type RepositoryError struct {
	Op    string
	Cause error
}

func (e *RepositoryError) Error() string {
	return fmt.Sprintf("repository %s failed: %v", e.Op, e.Cause)
}

func (e *RepositoryError) Unwrap() error { return e.Cause }

// FilesystemError reports a failed copy, rename or remove with both paths.
type FilesystemError struct {
	Op          string
	Source      string
	Destination string
	Cause       error
}

func (e *FilesystemError) Error() string {
	if e.Destination == "" {
		return fmt.Sprintf("failed to %s %s: %v", e.Op, e.Source, e.Cause)
	}
	return fmt.Sprintf("failed to %s %s to %s: %v", e.Op, e.Source, e.Destination, e.Cause)
}

func (e *FilesystemError) Unwrap() error { return e.Cause }

// IsAlreadyPublished reports whether err means the version already exists in the registry.
func IsAlreadyPublished(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrAlreadyPublished) {
		return true
	}
	return IsAlreadyPublishedMessage(err.Error())
}

// alreadyPublishedPattern matches the registry answers for an existing version:
// "crate version `1.0.0` is already uploaded" and "crate a@1.0.0 already exists on crates.io index".
var alreadyPublishedPattern = regexp.MustCompile(
	`(?i)crate\s+(version\s+)?\S+\s+(is\s+)?already\s+(uploaded|exists)`,
)

// IsAlreadyPublishedMessage reports whether registry output says the version already exists.
func IsAlreadyPublishedMessage(output string) bool {
	return alreadyPublishedPattern.MatchString(output)
}

// ErrPublishRejected is the cause of a PublishError when the build system
// reports a failed publish without an error of its own.
var ErrPublishRejected = errors.New("registry rejected the package")
