package fetcher

import (
	"archive/tar"
	"compress/gzip"
	"io"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// ExtractTarGz extracts a gzipped tar archive to the destination
// directory, flattening any directory structure inside the archive.
// GHCN-M archives nest their files one directory deep under a
// version-stamped name. Returns the extracted file paths.
func ExtractTarGz(archivePath, destDir string) ([]string, error) {
	f, err := os.Open(archivePath)
	if err != nil {
		return nil, eris.Wrap(err, "open archive")
	}
	defer f.Close() //nolint:errcheck

	gz, err := gzip.NewReader(f)
	if err != nil {
		return nil, eris.Wrap(err, "open gzip stream")
	}
	defer gz.Close() //nolint:errcheck

	var extracted []string
	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrap(err, "read tar header")
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}

		destPath := filepath.Join(destDir, filepath.Base(hdr.Name))
		out, err := os.Create(destPath)
		if err != nil {
			return nil, eris.Wrapf(err, "create %s", destPath)
		}
		if _, err := io.Copy(out, tr); err != nil {
			_ = out.Close()
			return nil, eris.Wrapf(err, "extract %s", hdr.Name)
		}
		if err := out.Close(); err != nil {
			return nil, eris.Wrapf(err, "close %s", destPath)
		}
		extracted = append(extracted, destPath)
	}

	zap.L().Debug("archive extracted",
		zap.String("archive", archivePath),
		zap.Int("files", len(extracted)),
	)
	return extracted, nil
}
