package stale

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// The fingerprint manifest is a sidecar next to the index: one
// "<hex-xxhash>  <path>" line per indexed file. It lets mtime-only touches be
// told apart from real edits.

// ManifestPath returns the sidecar path for an index file.
func ManifestPath(indexPath string) string {
	return indexPath + ".sum"
}

func fingerprintFile(path string) (uint64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	h := xxhash.New()
	if _, err := io.Copy(h, f); err != nil {
		return 0, err
	}
	return h.Sum64(), nil
}

// WriteFingerprints hashes every path (relative to root) and writes the
// manifest for indexPath. Unreadable files are skipped.
func WriteFingerprints(root, indexPath string, paths []string) error {
	sorted := append([]string(nil), paths...)
	sort.Strings(sorted)

	var b strings.Builder
	for _, rel := range sorted {
		sum, err := fingerprintFile(filepath.Join(root, rel))
		if err != nil {
			continue
		}
		fmt.Fprintf(&b, "%016x  %s\n", sum, rel)
	}
	return os.WriteFile(ManifestPath(indexPath), []byte(b.String()), 0o644)
}

// LoadFingerprints reads the manifest for indexPath. A missing or malformed
// manifest yields an empty map.
func LoadFingerprints(indexPath string) map[string]uint64 {
	prints := make(map[string]uint64)

	f, err := os.Open(ManifestPath(indexPath))
	if err != nil {
		return prints
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		sum, rel, ok := strings.Cut(sc.Text(), "  ")
		if !ok {
			continue
		}
		v, err := strconv.ParseUint(sum, 16, 64)
		if err != nil {
			continue
		}
		prints[rel] = v
	}
	return prints
}
