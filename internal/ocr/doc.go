// Package ocr provides Optical Character Recognition (OCR) for manuscript pages
// using Tesseract.
//
// This package wraps the Tesseract OCR engine (via gosseract/v2) for two jobs
// in the annotation workflow: reading the text inside a single annotation box,
// and suggesting an initial set of lines and word boxes for a whole page.
//
// # Prerequisites
//
// Tesseract must be installed on the system:
//   - Ubuntu/Debian: apt-get install tesseract-ocr libtesseract-dev
//   - macOS: brew install tesseract
//   - Windows: Download from https://github.com/UB-Mannheim/tesseract/wiki
//
// Language data files are required for each language:
//   - Ubuntu/Debian: apt-get install tesseract-ocr-grc (Ancient Greek)
//   - Other languages: tesseract-ocr-<lang> packages
//
// # Supported Languages
//
// The default language is English ("eng"). Manuscript work usually needs a
// historical model, selected by its Tesseract language code:
//   - "grc" - Ancient Greek
//   - "lat" - Latin
//   - "ell" - Greek
//   - "enm" - Middle English
//   - "frm" - Middle French
//   - Languages can be combined with '+', e.g. "grc+ell"
//
// # Functions
//
//   - RecognizeBox: OCR of one annotation box, returns text and words in page coordinates
//   - Suggest: Whole-page OCR layout, returns sorted lines and assigned word boxes
//
// # Preprocessing
//
// RecognizeBox crops the box with a small margin, enlarges short crops so
// that a text line is at least MinTextHeight pixels tall, and binarizes the
// result before handing it to Tesseract as an in-memory PNG. No temporary
// files are written.
//
// # Error Handling
//
// Failures of the engine are INTERNAL_ERROR errors whose subject is
// "tesseract". Boxes outside the page are INVALID_INPUT.
package ocr
