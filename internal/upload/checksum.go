package upload

import (
	"crypto/md5"
	"encoding/hex"
	"io"
	"os"

	"github.com/CLIMB-COVID/pyena/internal/errors"
)

// MD5Sum returns the hex-encoded MD5 digest of the file, the checksum
// method the archive expects on run file entries.
func MD5Sum(path string) (string, error) {
	const op = errors.Op("upload.MD5Sum")

	file, err := os.Open(path)
	if err != nil {
		return "", errors.E(op, errors.KindIO, err)
	}
	defer file.Close()

	hash := md5.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", errors.E(op, errors.KindIO, err)
	}
	return hex.EncodeToString(hash.Sum(nil)), nil
}
