// Package fileutil holds the copy and move primitives used to place
// classified documents into client folders.
package fileutil

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"
	"hash"
	"io"
	"io/fs"
	"os"
	"syscall"
)

// rename is swapped in tests to simulate moves across filesystems.
var rename = os.Rename

// CopyFile streams src to dst, then applies the source permission bits and
// modification time to dst. dst is created or truncated.
func CopyFile(src, dst string) error {
	return copyFile(src, dst, false)
}

// CopyFileVerified is CopyFile with a size and SHA-256 comparison between
// the bytes read and the bytes written. dst is removed on mismatch.
func CopyFileVerified(src, dst string) error {
	return copyFile(src, dst, true)
}

func copyFile(src, dst string, verify bool) error {
	info, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}

	var (
		reader         io.Reader = in
		writer         io.Writer = out
		readSum, wrSum hash.Hash
	)
	if verify {
		readSum, wrSum = sha256.New(), sha256.New()
		reader = io.TeeReader(in, readSum)
		writer = io.MultiWriter(out, wrSum)
	}

	written, err := io.Copy(writer, reader)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return err
	}

	if verify {
		switch {
		case written != info.Size():
			_ = os.Remove(dst)
			return fmt.Errorf("copy size mismatch: source %d bytes, copied %d bytes", info.Size(), written)
		case !bytes.Equal(readSum.Sum(nil), wrSum.Sum(nil)):
			_ = os.Remove(dst)
			return errors.New("copy hash mismatch: file corrupted during copy")
		}
	}
	return preserveMetadata(dst, info)
}

func preserveMetadata(dst string, info fs.FileInfo) error {
	if err := os.Chmod(dst, info.Mode().Perm()); err != nil {
		return fmt.Errorf("preserve mode: %w", err)
	}
	if err := os.Chtimes(dst, info.ModTime(), info.ModTime()); err != nil {
		return fmt.Errorf("preserve times: %w", err)
	}
	return nil
}

// MoveFile renames src to dst, replacing dst if it exists. Cross-device moves
// fall back to a verified copy followed by removal of src. The move is all or
// nothing: if src cannot be removed after the copy, the copy is deleted and
// src stays where it was.
func MoveFile(src, dst string) error {
	err := rename(src, dst)
	if err == nil || !isCrossDevice(err) {
		return err
	}
	if err := CopyFileVerified(src, dst); err != nil {
		return fmt.Errorf("cross-device copy: %w", err)
	}
	if err := os.Remove(src); err != nil {
		_ = os.Remove(dst)
		return fmt.Errorf("remove source after cross-device copy: %w", err)
	}
	return nil
}

func isCrossDevice(err error) bool {
	var linkErr *os.LinkError
	return errors.As(err, &linkErr) && errors.Is(linkErr.Err, syscall.EXDEV)
}
