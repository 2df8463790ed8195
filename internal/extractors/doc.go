// Package extractors turns course files into raw text documents.
// Each sub-package handles one format; Set picks one by file extension.
//
// Supported extensions are .txt, .pdf, .docx and .pptx. Any other file, or a
// file that fails to parse, yields no documents and a warning log.
package extractors
