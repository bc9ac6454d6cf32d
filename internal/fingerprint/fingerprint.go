package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// chunkSize bounds memory use while digesting; files are never read whole.
const chunkSize = 64 * 1024

// Digest streams the file at path through SHA-256 and returns the hex
// encoded digest. Any read failure (file deleted or locked mid-read) is
// returned to the caller, which should treat the file as skipped rather
// than failed.
func Digest(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open for digest: %w", err)
	}
	defer file.Close()

	return digestReader(file)
}

func digestReader(r io.Reader) (string, error) {
	hasher := sha256.New()
	buf := make([]byte, chunkSize)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			hasher.Write(buf[:n])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("read for digest: %w", err)
		}
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}
