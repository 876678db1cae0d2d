package storage

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rohmanhakim/tariff-mirror/internal/metadata"
	"github.com/rohmanhakim/tariff-mirror/pkg/failure"
	"github.com/rohmanhakim/tariff-mirror/pkg/fileutil"
	"github.com/rohmanhakim/tariff-mirror/pkg/hashutil"
)

/*
Responsibilities
- Persist downloaded PDF bytes
- Validate the PDF magic signature before the artifact becomes final
- Ensure deterministic file paths

Output Characteristics
- Stable directory layout: {outputRoot}/{edition}/{filename}
- Idempotent writes
- Overwrite-safe reruns
- An invalid or partial download is never left as a final artifact:
  bytes stream into a .part file and are renamed only after the magic
  check passes. Every failure path purges the .part file.
*/

// pdfMagic is the signature a valid artifact must begin with.
var pdfMagic = []byte("%PDF")

// partSuffix marks an in-progress download next to its final path.
const partSuffix = ".part"

type Sink interface {
	Write(
		localPath string,
		body io.Reader,
		hashAlgo hashutil.HashAlgo,
	) (WriteResult, failure.ClassifiedError)
}

type LocalSink struct {
	metadataSink metadata.MetadataSink
}

func NewLocalSink(
	metadataSink metadata.MetadataSink,
) LocalSink {
	return LocalSink{
		metadataSink: metadataSink,
	}
}

func (s *LocalSink) Write(
	localPath string,
	body io.Reader,
	hashAlgo hashutil.HashAlgo,
) (WriteResult, failure.ClassifiedError) {
	writeResult, err := write(localPath, body, hashAlgo)
	if err != nil {
		var storageError *StorageError
		errors.As(err, &storageError)
		s.metadataSink.RecordError(
			time.Now(),
			"storage",
			"LocalSink.Write",
			mapStorageErrorToMetadataCause(storageError),
			err.Error(),
			[]metadata.Attribute{
				metadata.NewAttr(metadata.AttrWritePath, storageError.Path),
			},
		)
		return WriteResult{}, storageError
	}
	s.metadataSink.RecordArtifact(
		metadata.ArtifactPDF,
		writeResult.Path(),
		[]metadata.Attribute{
			metadata.NewAttr(metadata.AttrWritePath, writeResult.Path()),
			metadata.NewAttr(metadata.AttrField, writeResult.ContentHash()),
		},
	)
	return writeResult, nil
}

func write(
	localPath string,
	body io.Reader,
	hashAlgo hashutil.HashAlgo,
) (WriteResult, failure.ClassifiedError) {
	if err := fileutil.EnsureDir(filepath.Dir(localPath)); err != nil {
		return WriteResult{}, &StorageError{
			Message:   err.Error(),
			Retryable: false,
			Cause:     ErrCausePathError,
			Path:      localPath,
		}
	}

	hasher, err := hashutil.NewHasher(hashAlgo)
	if err != nil {
		return WriteResult{}, &StorageError{
			Message:   err.Error(),
			Retryable: false,
			Cause:     ErrCauseHashComputationFailed,
			Path:      localPath,
		}
	}

	partPath := localPath + partSuffix
	file, err := os.Create(partPath)
	if err != nil {
		return WriteResult{}, &StorageError{
			Message:   err.Error(),
			Retryable: false,
			Cause:     ErrCauseWriteFailure,
			Path:      partPath,
		}
	}

	// Magic check happens on the first bytes while streaming; the file
	// stays a .part until everything below succeeds.
	magic := make([]byte, 0, len(pdfMagic))
	var written uint64

	buf := make([]byte, 32*1024)
	for {
		n, readErr := body.Read(buf)
		if n > 0 {
			chunk := buf[:n]
			if len(magic) < len(pdfMagic) {
				take := len(pdfMagic) - len(magic)
				if take > len(chunk) {
					take = len(chunk)
				}
				magic = append(magic, chunk[:take]...)
			}
			if _, writeErr := file.Write(chunk); writeErr != nil {
				return WriteResult{}, purge(file, partPath, writeErrToStorageError(writeErr, partPath))
			}
			hasher.Write(chunk)
			written += uint64(n)
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			// The body stream died mid-transfer (reset, timeout,
			// cancellation). Transient from the caller's point of view.
			return WriteResult{}, purge(file, partPath, &StorageError{
				Message:   readErr.Error(),
				Retryable: true,
				Cause:     ErrCauseBodyStreamInterrupted,
				Path:      partPath,
			})
		}
	}

	if len(magic) < len(pdfMagic) || string(magic) != string(pdfMagic) {
		return WriteResult{}, purge(file, partPath, &StorageError{
			Message:   "downloaded bytes do not start with the PDF signature",
			Retryable: false,
			Cause:     ErrCauseContentNotPDF,
			Path:      partPath,
		})
	}

	if err := file.Close(); err != nil {
		os.Remove(partPath)
		return WriteResult{}, writeErrToStorageError(err, partPath)
	}

	if err := os.Rename(partPath, localPath); err != nil {
		os.Remove(partPath)
		return WriteResult{}, &StorageError{
			Message:   err.Error(),
			Retryable: false,
			Cause:     ErrCauseWriteFailure,
			Path:      localPath,
		}
	}

	return NewWriteResult(localPath, written, hashutil.HexSum(hasher)), nil
}

// purge closes and removes a .part file on any failure path.
func purge(file *os.File, partPath string, storageErr *StorageError) *StorageError {
	file.Close()
	os.Remove(partPath)
	return storageErr
}

func writeErrToStorageError(err error, path string) *StorageError {
	cause := StorageErrorCause(ErrCauseWriteFailure)
	retryable := false
	// Check if it's a disk full error (ENOSPC)
	if errors.Is(err, syscall.ENOSPC) {
		cause = ErrCauseDiskFull
		retryable = true // disk full is retryable
	}
	return &StorageError{
		Message:   err.Error(),
		Retryable: retryable,
		Cause:     cause,
		Path:      path,
	}
}
