package manuscript

import (
	"bytes"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"  // Register BMP format decoder
	_ "golang.org/x/image/tiff" // Register TIFF format decoder
	_ "golang.org/x/image/webp" // Register WebP format decoder

	errs "github.com/ironsheep/glyptodon/internal/errors"
	"github.com/ironsheep/glyptodon/internal/fsutil"
)

// UploadedFile is one page scan handed over by the presentation layer.
// Content is base64 in JSON.
type UploadedFile struct {
	Name    string `json:"name"`
	Content []byte `json:"content"`
}

// imageExts are the extensions Images reports as page scans.
var imageExts = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true,
	".tif": true, ".tiff": true, ".bmp": true, ".webp": true,
}

type decodedUpload struct {
	file   UploadedFile
	img    image.Image
	format string
}

// SaveImages decodes every upload and writes it to dir/images/<name>,
// overwriting files of the same name. It returns the written paths.
//
// The image format is sniffed from the bytes; the name's extension only
// selects the output encoding. Uploads already in the extension's format, and
// names whose extension the encoder does not support, are stored byte for
// byte. Otherwise the decoded image is re-encoded (PNG, JPEG, GIF, TIFF,
// BMP), with any EXIF orientation applied.
//
// The batch is all-or-nothing up to the first write: every name is validated
// and every upload decoded before anything touches the disk, and a bad upload
// fails the whole call with an error naming the file.
func SaveImages(dir string, files []UploadedFile) ([]string, error) {
	decoded := make([]decodedUpload, 0, len(files))
	for _, f := range files {
		if err := errs.ValidateFileName(f.Name); err != nil {
			return nil, err
		}
		if len(f.Content) == 0 {
			return nil, errs.New(errs.ErrCodeInvalidImage, f.Name, "upload is empty")
		}
		_, format, err := image.DecodeConfig(bytes.NewReader(f.Content))
		if err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidImage, err, f.Name, "not a decodable image")
		}
		img, err := imaging.Decode(bytes.NewReader(f.Content), imaging.AutoOrientation(true))
		if err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidImage, err, f.Name, "failed to decode %s image", format)
		}
		decoded = append(decoded, decodedUpload{file: f, img: img, format: format})
	}

	imagesDir := filepath.Join(dir, ImagesDir)
	if err := os.MkdirAll(imagesDir, 0755); err != nil {
		return nil, errs.Wrap(errs.ErrCodeIO, err, dir, "failed to create images directory")
	}

	paths := make([]string, 0, len(decoded))
	for _, d := range decoded {
		path := filepath.Join(imagesDir, d.file.Name)
		if err := writeImage(path, d); err != nil {
			return paths, errs.Wrap(errs.ErrCodeIO, err, d.file.Name, "failed to write image")
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writeImage(path string, d decodedUpload) error {
	format, err := imaging.FormatFromFilename(d.file.Name)
	if err != nil || strings.EqualFold(format.String(), d.format) {
		return fsutil.WriteFileAtomic(path, d.file.Content, 0644)
	}
	return fsutil.WriteAtomic(path, 0644, func(w io.Writer) error {
		return imaging.Encode(w, d.img, format)
	})
}

// Images returns the absolute paths of the page scans in dir/images,
// sorted by file name.
func Images(dir string) ([]string, error) {
	imagesDir := filepath.Join(dir, ImagesDir)
	entries, err := os.ReadDir(imagesDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errs.New(errs.ErrCodeNotFound, dir, "manuscript has no images directory")
		}
		return nil, errs.Wrap(errs.ErrCodeIO, err, dir, "failed to read images directory")
	}

	paths := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !imageExts[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}
		paths = append(paths, filepath.Join(imagesDir, e.Name()))
	}
	return paths, nil
}
