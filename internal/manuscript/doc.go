// Package manuscript implements the file-system catalog of manuscripts.
//
// # Layout
//
// Every manuscript lives in a directory under the manuscripts root, named by
// a filesystem-safe projection of its Work title (see DeriveName):
//
//	manuscripts/<name>/<name>.cfg          key:value metadata, one per line
//	manuscripts/<name>/images/             page scans
//	manuscripts/<name>/states/             <page>_bboxes.csv, <page>_lines.csv
//	manuscripts/<name>/exportTranscripts/  transcriptions written out
//	manuscripts/<name>/importTranscripts/  transcriptions brought in
//
// # Metadata
//
// The .cfg file keeps keys in insertion order. Lines are split on the first
// colon, so values may contain colons; backslashes and line breaks in values
// are escaped as \\, \n and \r.
//
// # Concurrency
//
// Operations take explicit absolute paths and never change the process
// working directory. Metadata and page state files are replaced atomically,
// one file at a time: a page's boxes and lines are two renames, boxes first.
// A save interrupted between them leaves new boxes beside old lines, and
// LoadPage then reports boxes without a matching line as unassigned.
// Two Create calls deriving the same name cannot both succeed: the directory
// is created with os.Mkdir and an existing directory is reported as a
// COLLISION error.
package manuscript
