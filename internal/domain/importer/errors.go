package importer

import "errors"

var (
	ErrCorruptInput       = errors.New("import file is unreadable or corrupt")
	ErrUnsupportedFormat  = errors.New("unsupported import format, expected xlsx, xls or csv")
	ErrAffiliationMissing = errors.New("affiliation number not found in import file")
	ErrEmployeeNotMatched = errors.New("no employee matches the affiliation number")
	ErrEmptyFile          = errors.New("import file is empty")
)
