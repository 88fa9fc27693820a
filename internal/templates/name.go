package templates

import (
	"fmt"
	"regexp"

	"github.com/vango-dev/projgen/internal/errors"
)

// MaxNameLength is the longest accepted project name, matching npm.
const MaxNameLength = 214

// namePattern accepts lowercase, URL-safe names that start with a letter or digit.
var namePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9._-]*$`)

// reservedNames cannot be used as package names.
var reservedNames = map[string]bool{
	"node_modules": true,
	"favicon.ico":  true,
}

// ValidateName checks that name is safe as a directory segment, a package
// manifest name, an HTML title and JSX text. It returns an E100 error for an
// empty name and an E101 error naming the broken rule otherwise.
func ValidateName(name string) error {
	switch {
	case name == "":
		return errors.New("E100")
	case len(name) > MaxNameLength:
		return invalidName(name, fmt.Sprintf("is %d bytes long; the limit is %d", len(name), MaxNameLength))
	case reservedNames[name]:
		return invalidName(name, "is a reserved name")
	case !namePattern.MatchString(name):
		return invalidName(name, describeViolation(name))
	}
	return nil
}

func invalidName(name, reason string) error {
	return errors.New("E101").WithDetail(fmt.Sprintf("%q %s", name, reason))
}

// describeViolation names the first character rule name breaks.
func describeViolation(name string) string {
	for i, r := range name {
		switch {
		case r >= 'A' && r <= 'Z':
			return "contains uppercase letters"
		case i == 0 && (r == '.' || r == '_' || r == '-'):
			return fmt.Sprintf("starts with %q", r)
		case r == '/' || r == '\\':
			return "contains a path separator"
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '.', r == '_', r == '-':
		default:
			return fmt.Sprintf("contains %q", r)
		}
	}
	return "is not a valid name"
}
