package document

import "errors"

var (
	// ErrImportParse marks a document that is not well-formed structured data,
	// or whose top-level shape is wrong. The whole import is aborted.
	ErrImportParse = errors.New("import parse error")
	// ErrUnrecognizedRecord is the kind of a record skipped during upgrade.
	// It is reported through Report.Dropped and never returned from Import.
	ErrUnrecognizedRecord = errors.New("unrecognized record")
	// ErrUnsupportedFormat is returned for a format name other than json or yaml.
	ErrUnsupportedFormat = errors.New("unsupported document format")
)
