package plan

import "fmt"

// UnsupportedLanguageError is returned when a component declares a language other than python.
type UnsupportedLanguageError struct {
	Component string
	Language  string
}

func (e *UnsupportedLanguageError) Error() string {
	return fmt.Sprintf("unsupported language for %s component: %s", e.Component, e.Language)
}

// UnsupportedVersionError is returned when the language version is not part of the supported major version.
type UnsupportedVersionError struct {
	Component string
	Version   string
	Err       error
}

func (e *UnsupportedVersionError) Error() string {
	msg := fmt.Sprintf("unsupported %s version for %s component: %s", DefaultLanguage, e.Component, e.Version)
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}

	return msg
}

func (e *UnsupportedVersionError) Unwrap() error {
	return e.Err
}
