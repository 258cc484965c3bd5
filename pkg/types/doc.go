// Package types defines the error taxonomy shared by the array file engine and
// its callers.
//
// Environmental failures (missing or read-only files, a wrong signature, a file
// another instance still holds open, OS I/O errors) are reported as *Error
// values carrying a stable Kind, so callers can branch on intent rather than
// text:
//
//	s, err := filearray.CreateBase(ctx, path, sig, filearray.FailIfOpen, nil)
//	switch types.KindOf(err) {
//	case types.KindNone:
//	    // opened
//	case types.KindFileAlreadyOpen:
//	    // retry later or choose another policy
//	}
//
// "No error" is itself a value of this type: Classify(nil) returns an *Error
// whose Kind is KindNone, so results can be stored, compared and propagated
// uniformly.
//
// Messages come from a replaceable catalogue. A UI layer that wants its own
// wording installs it once with SetMessages.
//
// This package has no dependencies beyond the standard library.
package types
