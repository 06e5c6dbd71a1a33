// Package upload stages run data files in the archive's FTP upload
// area and computes the checksums the run metadata must carry.
package upload

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/jlaffaye/ftp"

	"github.com/CLIMB-COVID/pyena/internal/config"
	"github.com/CLIMB-COVID/pyena/internal/errors"
)

// FTPUploader transfers files to the Webin upload area. Each Upload
// opens a fresh connection; there is no session reuse between files.
type FTPUploader struct {
	host    string
	creds   config.Credentials
	timeout time.Duration
}

// NewFTPUploader creates an uploader for the configured transfer host.
func NewFTPUploader(cfg *config.Config) *FTPUploader {
	return &FTPUploader{
		host:    cfg.Transfer.Host,
		creds:   cfg.Credentials,
		timeout: time.Duration(cfg.Transfer.TimeoutSeconds) * time.Second,
	}
}

// Upload stores the file under its base name in the upload area's
// root. Any failure, including a connection timeout, is terminal for
// the caller's run registration.
func (u *FTPUploader) Upload(ctx context.Context, path string) error {
	const op = errors.Op("upload.FTPUploader.Upload")

	file, err := os.Open(path)
	if err != nil {
		return errors.E(op, errors.KindIO, err)
	}
	defer file.Close()

	conn, err := ftp.Dial(u.host,
		ftp.DialWithContext(ctx),
		ftp.DialWithTimeout(u.timeout),
	)
	if err != nil {
		return errors.E(op, errors.KindUpload, err, "failed to connect to transfer host")
	}
	defer conn.Quit()

	if err := conn.Login(u.creds.Username, u.creds.Password); err != nil {
		return errors.E(op, errors.KindUpload, err, "login rejected")
	}

	if err := conn.Stor(filepath.Base(path), file); err != nil {
		return errors.E(op, errors.KindUpload, err, "transfer failed")
	}
	return nil
}
