// Package extractors converts uploaded files into raw text.
//
// Each subpackage handles one document type. Registry dispatches a path to
// the extractor for its extension and is the only component that callers
// use: it never returns an error, yielding an empty string for any file it
// cannot read.
package extractors
