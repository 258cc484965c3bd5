//go:build !unix

package mmfile

import "os"

// Map reads the entire file where mmap is not used.
func Map(path string) (*Region, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return &Region{data: data}, nil
}
